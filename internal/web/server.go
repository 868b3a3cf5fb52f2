// Package web serves the dashboard: HTML tables and go-echarts charts over
// the decoded telemetry views.
package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/gt7-dashboard/internal/metrics"
	"github.com/yourusername/gt7-dashboard/internal/service"
)

// Server is the dashboard HTTP server.
type Server struct {
	viewer  *service.Viewer
	logger  *logrus.Logger
	server  *http.Server
	metrics bool
}

// Config holds the dashboard server configuration.
type Config struct {
	Addr           string
	Viewer         *service.Viewer
	Logger         *logrus.Logger
	MetricsEnabled bool
}

// NewServer creates the dashboard server and mounts all routes.
func NewServer(cfg Config) *Server {
	s := &Server{
		viewer:  cfg.Viewer,
		logger:  cfg.Logger,
		metrics: cfg.MetricsEnabled,
	}

	r := chi.NewRouter()
	r.Use(s.requestLogger)

	r.Get("/", s.handleIndex)
	r.Get("/session", s.handleSessionDetail)
	r.Get("/leaderboard", s.handleLeaderboard)
	r.Get("/compare", s.handleCompare)
	r.Get("/charts/speed", s.handleSpeedChart)
	r.Get("/charts/line", s.handleDrivingLineChart)
	r.Get("/charts/inputs", s.handleInputsChart)
	r.Get("/reference/cars", s.handleCarsPreview)
	r.Get("/reference/tracks", s.handleTracksPreview)
	r.Post("/reference/reload", s.handleReferenceReload)

	if cfg.MetricsEnabled {
		r.Handle("/metrics", metrics.Handler())
	}

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// Start runs the server until it fails or is shut down.
func (s *Server) Start() error {
	s.logger.WithField("addr", s.server.Addr).Info("Dashboard server starting")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Dashboard server shutting down")
	return s.server.Shutdown(ctx)
}

// Handler exposes the router, for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// requestLogger tags each request with an ID and records render duration.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.New().String()

		next.ServeHTTP(w, r)

		elapsed := time.Since(start)
		metrics.PageRenderDuration.Observe(elapsed.Seconds())

		s.logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     r.Method,
			"path":       r.URL.Path,
			"duration":   elapsed.String(),
		}).Debug("Request served")
	})
}
