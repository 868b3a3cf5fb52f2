// Package config provides configuration management for the GT7 telemetry
// dashboard.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	// Register custom validation functions
	_ = v.RegisterValidation("environment", validateEnvironment)
	_ = v.RegisterValidation("loglevel", validateLogLevel)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	cv := NewValidator()
	return cv.Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	err := cv.validator.Struct(cfg)
	if err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	// Additional cross-field validations
	if err := validateCrossField(cfg); err != nil {
		return err
	}

	return nil
}

// validateEnvironment validates the environment field
func validateEnvironment(fl validator.FieldLevel) bool {
	env := fl.Field().String()
	switch env {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

// validateLogLevel validates the log level field
func validateLogLevel(fl validator.FieldLevel) bool {
	level := fl.Field().String()
	switch level {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

// validateCrossField performs cross-field validations
func validateCrossField(cfg *Config) error {
	// Validate the reload schedule with the same parser the scheduler uses
	if cfg.Reference.ReloadSchedule != "" {
		if _, err := cron.ParseStandard(cfg.Reference.ReloadSchedule); err != nil {
			return fmt.Errorf("invalid reference reload_schedule: %w", err)
		}
	}

	// Validate the endpoint override points at an S3-compatible URL
	if ep := cfg.Storage.Endpoint; ep != "" {
		if !strings.HasPrefix(ep, "http://") && !strings.HasPrefix(ep, "https://") {
			return fmt.Errorf("storage endpoint must be an http(s) URL, got %q", ep)
		}
	}

	// Static credentials come in pairs
	if (cfg.Storage.AccessKeyID == "") != (cfg.Storage.SecretAccessKey == "") {
		return fmt.Errorf("storage access_key_id and secret_access_key must be set together")
	}

	// The TTL only matters when the cache is on
	if cfg.Cache.Enabled && cfg.Cache.TTLSeconds <= 0 {
		return fmt.Errorf("cache ttl_seconds must be positive when the cache is enabled")
	}

	return nil
}

// formatValidationErrors converts validator errors into a readable message
func formatValidationErrors(errs validator.ValidationErrors) error {
	messages := make([]string, 0, len(errs))
	for _, err := range errs {
		messages = append(messages, fmt.Sprintf("%s failed on '%s'", err.Namespace(), err.Tag()))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(messages, "; "))
}
