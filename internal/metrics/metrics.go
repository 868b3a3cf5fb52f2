// Package metrics provides the centralized Prometheus metrics registry for
// the telemetry dashboard.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	StoreFetchesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "gt7_dashboard",
		Name:      "store_fetches_total",
		Help:      "Total number of telemetry files fetched from object storage",
	})
	StoreErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "gt7_dashboard",
		Name:      "store_errors_total",
		Help:      "Total number of object storage errors",
	})
	DecodeFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "gt7_dashboard",
		Name:      "decode_failures_total",
		Help:      "Total number of malformed session payloads skipped",
	})
	ChartRendersTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gt7_dashboard",
		Name:      "chart_renders_total",
		Help:      "Total number of charts rendered",
	}, []string{"chart"})
	ReferenceReloadsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "gt7_dashboard",
		Name:      "reference_reloads_total",
		Help:      "Total number of reference table reloads",
	})
)

// Gauge metrics
var (
	CacheHitRatio = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "gt7_dashboard",
		Name:      "cache_hit_ratio",
		Help:      "Hit ratio of the telemetry store cache",
	})
	SessionsListed = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "gt7_dashboard",
		Name:      "sessions_listed",
		Help:      "Number of telemetry files in the most recent listing",
	})
)

// Histogram metrics
var (
	StoreListDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "gt7_dashboard",
		Name:      "store_list_duration_seconds",
		Help:      "Duration of object storage listings in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	StoreFetchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "gt7_dashboard",
		Name:      "store_fetch_duration_seconds",
		Help:      "Duration of object storage fetches in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	PageRenderDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "gt7_dashboard",
		Name:      "page_render_duration_seconds",
		Help:      "Duration of dashboard page renders in seconds",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register counter metrics
		registry.MustRegister(StoreFetchesTotal)
		registry.MustRegister(StoreErrorsTotal)
		registry.MustRegister(DecodeFailuresTotal)
		registry.MustRegister(ChartRendersTotal)
		registry.MustRegister(ReferenceReloadsTotal)

		// Register gauge metrics
		registry.MustRegister(CacheHitRatio)
		registry.MustRegister(SessionsListed)

		// Register histogram metrics
		registry.MustRegister(StoreListDuration)
		registry.MustRegister(StoreFetchDuration)
		registry.MustRegister(PageRenderDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}
