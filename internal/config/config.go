// Package config provides evaluator configuration loaded from environment variables and .env files.
// It uses viper for flexible configuration management with sensible defaults.
package config

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/offerhub/toggles/internal/rollout"
	"github.com/offerhub/toggles/internal/toggle"
)

// Supported deployment environments.
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
	EnvTesting     = "testing"
)

// Supported bucketing hashes.
const (
	HashRolling = "rolling"
	HashXX      = "xxhash"
)

var environments = []string{EnvDevelopment, EnvStaging, EnvProduction, EnvTesting}

// Config holds evaluator configuration loaded from environment variables or .env file.
// Configuration priority: environment variables > .env file > defaults.
type Config struct {
	ServiceName      string // Name attached to every log line
	Environment      string // Deployment environment toggles are evaluated in
	HashAlgorithm    string // Bucketing hash (rolling or xxhash)
	BatchConcurrency int    // Max goroutines per batch evaluation
	HistorySize      int    // Evaluation records kept for analytics
	LogLevel         string // zerolog level name
}

// Load reads configuration from environment variables and .env file (if present).
// Environment variables take precedence over .env file values.
// Load does not validate; call Validate before use.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env") // Optional; silently ignored if file doesn't exist
	_ = v.ReadInConfig()
	v.AutomaticEnv()

	setConfigDefaults(v)

	return &Config{
		ServiceName:      v.GetString("SERVICE_NAME"),
		Environment:      strings.ToLower(strings.TrimSpace(v.GetString("APP_ENV"))),
		HashAlgorithm:    strings.ToLower(strings.TrimSpace(v.GetString("TOGGLE_HASH"))),
		BatchConcurrency: v.GetInt("TOGGLE_BATCH_CONCURRENCY"),
		HistorySize:      v.GetInt("TOGGLE_HISTORY_SIZE"),
		LogLevel:         strings.ToLower(strings.TrimSpace(v.GetString("LOG_LEVEL"))),
	}, nil
}

// setConfigDefaults sets default values for all configuration options.
func setConfigDefaults(v *viper.Viper) {
	v.SetDefault("SERVICE_NAME", "feature-toggles")
	v.SetDefault("APP_ENV", EnvDevelopment)
	v.SetDefault("TOGGLE_HASH", HashRolling)
	v.SetDefault("TOGGLE_BATCH_CONCURRENCY", 1)
	v.SetDefault("TOGGLE_HISTORY_SIZE", 1000)
	v.SetDefault("LOG_LEVEL", "info")
}

// ValidationError represents a configuration validation error with details about what failed.
type ValidationError struct {
	Field   string // Name of the configuration field
	Message string // Human-readable error message
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("config validation failed [%s]: %s", e.Field, e.Message)
}

// Validate returns the first configuration problem as a ValidationError.
func (c *Config) Validate() error {
	if !slices.Contains(environments, c.Environment) {
		return ValidationError{
			Field:   "APP_ENV",
			Message: fmt.Sprintf("must be one of %s, got '%s'", strings.Join(environments, ", "), c.Environment),
		}
	}

	if c.HashAlgorithm != HashRolling && c.HashAlgorithm != HashXX {
		return ValidationError{
			Field:   "TOGGLE_HASH",
			Message: fmt.Sprintf("must be '%s' or '%s', got '%s'", HashRolling, HashXX, c.HashAlgorithm),
		}
	}

	if c.BatchConcurrency < 1 {
		return ValidationError{
			Field:   "TOGGLE_BATCH_CONCURRENCY",
			Message: fmt.Sprintf("must be at least 1, got %d", c.BatchConcurrency),
		}
	}

	if c.HistorySize < 1 {
		return ValidationError{
			Field:   "TOGGLE_HISTORY_SIZE",
			Message: fmt.Sprintf("must be at least 1, got %d", c.HistorySize),
		}
	}

	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return ValidationError{
			Field:   "LOG_LEVEL",
			Message: fmt.Sprintf("unknown level '%s'", c.LogLevel),
		}
	}

	return nil
}

// Hasher returns the configured bucketing hash.
func (c *Config) Hasher() rollout.Hasher {
	if c.HashAlgorithm == HashXX {
		return rollout.XXHash{}
	}
	return rollout.RollingHash{}
}

// NewLogger builds a JSON logger writing to w at the configured level.
func (c *Config) NewLogger(w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Str("service", c.ServiceName).
		Str("environment", c.Environment).
		Logger()
}

// NewEvaluator builds an evaluator for the configured environment, hash and
// batch concurrency. Extra options are applied last.
func (c *Config) NewEvaluator(logger zerolog.Logger, extra ...toggle.Option) *toggle.Evaluator {
	opts := []toggle.Option{
		toggle.WithHasher(c.Hasher()),
		toggle.WithBatchConcurrency(c.BatchConcurrency),
		toggle.WithLogger(logger),
	}
	return toggle.NewEvaluator(c.Environment, append(opts, extra...)...)
}
