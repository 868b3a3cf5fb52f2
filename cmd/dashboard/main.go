// Package main provides the entry point for the telemetry dashboard server.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/gt7-dashboard/internal/config"
	"github.com/yourusername/gt7-dashboard/internal/health"
	"github.com/yourusername/gt7-dashboard/internal/logger"
	"github.com/yourusername/gt7-dashboard/internal/metrics"
	"github.com/yourusername/gt7-dashboard/internal/refdata"
	"github.com/yourusername/gt7-dashboard/internal/scheduler"
	"github.com/yourusername/gt7-dashboard/internal/service"
	"github.com/yourusername/gt7-dashboard/internal/store"
	"github.com/yourusername/gt7-dashboard/internal/web"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var configFile string

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
}

var rootCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Serve the GT7 telemetry dashboard",
	Long:  `Loads the car and track reference tables, connects to the telemetry object store and serves the browsing dashboard.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.LoadWithDefaults(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Load AWS secrets if enabled
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return fmt.Errorf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	// Validate configuration
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Set up logging
	appLog := logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"log_level":   cfg.App.LogLevel,
		"version":     Version,
	}).Info("GT7 telemetry dashboard starting")

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load reference tables
	catalog, err := refdata.NewCatalog(ctx, cfg.Reference.CarsSource, cfg.Reference.TracksSource, appLog)
	if err != nil {
		return fmt.Errorf("failed to load reference tables: %w", err)
	}

	// Connect to the telemetry store
	s3Store, err := store.NewS3Store(ctx, store.S3Config{
		Region:          cfg.Storage.Region,
		Bucket:          cfg.Storage.Bucket,
		Endpoint:        cfg.Storage.Endpoint,
		Prefix:          cfg.Storage.Prefix,
		AccessKeyID:     cfg.Storage.AccessKeyID,
		SecretAccessKey: cfg.Storage.SecretAccessKey,
	}, appLog)
	if err != nil {
		return fmt.Errorf("failed to create telemetry store: %w", err)
	}

	var st store.Store = s3Store
	if cfg.Cache.Enabled {
		st = store.NewCachedStore(s3Store, time.Duration(cfg.Cache.TTLSeconds)*time.Second)
		appLog.WithField("ttl_seconds", cfg.Cache.TTLSeconds).Info("Store cache enabled")
	}

	viewer := service.NewViewer(st, catalog, appLog)

	// Start the health server
	healthServer := health.NewServer(health.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Commit:      GitCommit,
		Port:        cfg.Health.Port,
		Logger:      appLog,
		Store:       s3Store,
	})
	if err := healthServer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start health server: %w", err)
	}

	// Start the reference reload scheduler
	sched := scheduler.NewScheduler(viewer, appLog)
	if err := sched.Start(cfg.Reference.ReloadSchedule); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	// Start the dashboard server
	webServer := web.NewServer(web.Config{
		Addr:           cfg.Addr(),
		Viewer:         viewer,
		Logger:         appLog,
		MetricsEnabled: cfg.Metrics.Enabled,
	})

	errCh := make(chan error, 1)
	go func() {
		if err := webServer.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	healthServer.SetReady(true)

	select {
	case err := <-errCh:
		return fmt.Errorf("dashboard server failed: %w", err)
	case <-ctx.Done():
	}

	appLog.Info("Shutdown signal received")
	healthServer.SetReady(false)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := sched.Stop(shutdownCtx); err != nil {
		appLog.WithError(err).Error("Failed to stop scheduler")
	}
	if err := webServer.Shutdown(shutdownCtx); err != nil {
		appLog.WithError(err).Error("Failed to shut down dashboard server")
	}
	if err := healthServer.Shutdown(); err != nil {
		appLog.WithError(err).Error("Failed to shut down health server")
	}

	appLog.Info("Shutdown complete")
	return nil
}
