// Package main provides a one-shot leaderboard print for scripting and
// smoke-testing a bucket without starting the dashboard.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/gt7-dashboard/internal/config"
	"github.com/yourusername/gt7-dashboard/internal/logger"
	"github.com/yourusername/gt7-dashboard/internal/refdata"
	"github.com/yourusername/gt7-dashboard/internal/service"
	"github.com/yourusername/gt7-dashboard/internal/store"
)

var (
	configFile string
	prefix     string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.Flags().StringVarP(&prefix, "prefix", "p", "", "Key prefix to restrict the listing")
}

var rootCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Print the best-lap leaderboard across all telemetry sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.LoadWithDefaults(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	appLog := logger.NewLogger("warn", cfg.App.Environment)

	catalog, err := refdata.NewCatalog(ctx, cfg.Reference.CarsSource, cfg.Reference.TracksSource, appLog)
	if err != nil {
		return fmt.Errorf("failed to load reference tables: %w", err)
	}

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

	viewer := service.NewViewer(s3Store, catalog, appLog)

	entries, agg, err := viewer.Leaderboard(ctx, prefix)
	if err != nil {
		return fmt.Errorf("failed to compute leaderboard: %w", err)
	}
	if len(entries) == 0 {
		fmt.Println("No sessions with a valid lap time.")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tSESSION\tCAR\tTRACK\tBEST LAP")
	for i, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", i+1, e.SessionKey, e.CarName, e.TrackName, formatLapTime(e.BestLap))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Printf("\n%d ranked sessions, fastest %s, mean %s\n",
		agg.Sessions, formatLapTime(agg.MinBest), formatLapTime(agg.MeanBest))
	return nil
}

func formatLapTime(d time.Duration) string {
	minutes := int(d.Minutes())
	seconds := d.Seconds() - float64(minutes)*60
	return fmt.Sprintf("%d:%06.3f", minutes, seconds)
}
