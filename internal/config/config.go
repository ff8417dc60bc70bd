package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Environment represents different deployment environments.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Config holds the configuration for the timeline service.
// Environment variables are parsed from the TIMELINE_ prefix.
type Config struct {
	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Storage driver: postgres, sqlite, diskv, memory, or "auto" which picks
	// postgres when a DSN is set and sqlite otherwise.
	StoreDriver string `envconfig:"STORE_DRIVER" default:"auto"`

	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"data/timelines.db"`
	DiskvPath   string `envconfig:"DISKV_PATH" default:"data/timelines"`

	// Day range for new timelines, inclusive offsets from the due date.
	DayRangeFrom int `envconfig:"DAY_RANGE_FROM" default:"-10"`
	DayRangeTo   int `envconfig:"DAY_RANGE_TO" default:"90"`
}

// ResolveDefaults derives the store driver when set to "auto" and validates
// the resolved configuration.
func (c *Config) ResolveDefaults() error {
	if c.StoreDriver == "" || c.StoreDriver == "auto" {
		if c.PostgresDSN != "" {
			c.StoreDriver = "postgres"
		} else {
			c.StoreDriver = "sqlite"
		}
	}
	allowed := map[string]bool{"postgres": true, "sqlite": true, "diskv": true, "memory": true}
	if !allowed[c.StoreDriver] {
		return fmt.Errorf("unsupported STORE_DRIVER: %s", c.StoreDriver)
	}
	if c.StoreDriver == "postgres" && c.PostgresDSN == "" {
		return fmt.Errorf("STORE_DRIVER=postgres requires POSTGRES_DSN")
	}
	if c.DayRangeFrom > 0 || c.DayRangeTo < 0 || c.DayRangeFrom >= c.DayRangeTo {
		return fmt.Errorf("invalid day range [%d, %d]: must span the due date", c.DayRangeFrom, c.DayRangeTo)
	}
	return nil
}

// New creates a Config from environment variables prefixed with TIMELINE_.
// Example: TIMELINE_HTTP_PORT, TIMELINE_STORE_DRIVER.
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("TIMELINE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("environment", string(cfg.Environment)).
		Int("port", cfg.HTTPPort).
		Str("store_driver", cfg.StoreDriver).
		Int("day_range_from", cfg.DayRangeFrom).
		Int("day_range_to", cfg.DayRangeTo).
		Bool("postgres_dsn_present", cfg.PostgresDSN != "").
		Msg("Configuration loaded")

	return &cfg, nil
}

// GetHTTPAddr returns the HTTP server address.
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
