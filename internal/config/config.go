// Package config provides configuration management for the GT7 telemetry
// dashboard.
package config

import (
	"fmt"
)

// Config represents the complete application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app" validate:"required"`
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Storage   StorageConfig   `mapstructure:"storage" validate:"required"`
	Cache     CacheConfig     `mapstructure:"cache" validate:"required"`
	Reference ReferenceConfig `mapstructure:"reference" validate:"required"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Health    HealthConfig    `mapstructure:"health"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// ServerConfig represents the dashboard HTTP server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port" validate:"required,min=1,max=65535"`
}

// StorageConfig represents the telemetry object-store configuration
type StorageConfig struct {
	Region          string `mapstructure:"region" validate:"required"`
	Bucket          string `mapstructure:"bucket" validate:"required"`
	Endpoint        string `mapstructure:"endpoint"` // S3-compatible endpoint override
	Prefix          string `mapstructure:"prefix"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}

// CacheConfig represents the store memoization layer configuration. The TTL
// is only required when the cache is enabled; see validateCrossField.
type CacheConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	TTLSeconds int  `mapstructure:"ttl_seconds" validate:"gte=0"`
}

// ReferenceConfig represents the reference table sources. A source is a local
// file path or an HTTP(S) URL to a CSV mirror.
type ReferenceConfig struct {
	CarsSource     string `mapstructure:"cars_source" validate:"required"`
	TracksSource   string `mapstructure:"tracks_source" validate:"required"`
	ReloadSchedule string `mapstructure:"reload_schedule"` // Cron spec; empty disables scheduled reloads
}

// MetricsConfig represents Prometheus metrics configuration
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// HealthConfig represents the health check server configuration
type HealthConfig struct {
	Port string `mapstructure:"port"`
}

// Addr returns the dashboard server listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// IsProduction returns whether the app runs in the production environment.
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}
