package config

import (
	"fmt"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Config holds the configuration for the tidy-spot service.
// Environment variables are parsed from the TIDYSPOT_ prefix.
type Config struct {
	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8099"`

	// Data layout. DBPath defaults to a file under DataDir when empty.
	DataDir string `envconfig:"DATA_DIR" default:"/data"`
	DBPath  string `envconfig:"DB_PATH" default:""`

	// Vision API
	GeminiModel string `envconfig:"GEMINI_MODEL" default:"gemini-2.0-flash"`

	// Scheduler
	SchedulerEnabled bool `envconfig:"SCHEDULER_ENABLED" default:"true"`

	// ONVIF discovery probe window in seconds.
	DiscoveryTimeoutSeconds int `envconfig:"DISCOVERY_TIMEOUT_SECONDS" default:"5"`
}

// ResolveDefaults derives dependent paths and validates the result.
func (c *Config) ResolveDefaults() error {
	if c.DataDir == "" {
		return fmt.Errorf("DATA_DIR must not be empty")
	}
	if c.DBPath == "" {
		c.DBPath = filepath.Join(c.DataDir, "tidyspot.db")
	}
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP_PORT: %d", c.HTTPPort)
	}
	return nil
}

// New creates a new Config by parsing environment variables.
// Environment variables should be prefixed with TIDYSPOT_
// Example: TIDYSPOT_HTTP_PORT, TIDYSPOT_DATA_DIR
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("TIDYSPOT", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("environment", string(cfg.Environment)).
		Int("port", cfg.HTTPPort).
		Str("data_dir", cfg.DataDir).
		Str("db_path", cfg.DBPath).
		Str("gemini_model", cfg.GeminiModel).
		Bool("scheduler_enabled", cfg.SchedulerEnabled).
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config specifically for testing.
func NewForTesting(tmpDir string) *Config {
	cfg := &Config{
		Environment:             EnvTesting,
		HTTPPort:                8099,
		DataDir:                 tmpDir,
		GeminiModel:             "gemini-2.0-flash",
		SchedulerEnabled:        false,
		DiscoveryTimeoutSeconds: 1,
	}
	cfg.DBPath = filepath.Join(tmpDir, "tidyspot.db")
	return cfg
}

// IsTesting returns true if the environment is set to testing
func (c *Config) IsTesting() bool {
	return c.Environment == EnvTesting
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// DreamStateDir returns the directory where generated preview images live.
func (c *Config) DreamStateDir() string {
	return filepath.Join(c.DataDir, "dream_states")
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
