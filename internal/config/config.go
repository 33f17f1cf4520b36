// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the full server configuration, populated from RELAY_* environment
// variables
type Config struct {
	// Addr is the HTTP listen address
	Addr string `env:"RELAY_ADDR" envDefault:":8080"`

	// Storage selects the registry backend, "memory" or "redis"
	Storage string `env:"RELAY_STORAGE" envDefault:"memory"`

	// RedisURL is the redis connection URL, required when Storage is "redis"
	RedisURL string `env:"RELAY_REDIS_URL" envDefault:"redis://localhost:6379"`

	// GraceDelay is how long an empty session lingers after its last
	// occupant disconnects
	GraceDelay time.Duration `env:"RELAY_GRACE_DELAY" envDefault:"60s"`

	// SweepInterval is how often the max-age sweep runs
	SweepInterval time.Duration `env:"RELAY_SWEEP_INTERVAL" envDefault:"30m"`

	// MaxSessionAge is the age past which the sweep deletes a session
	// regardless of occupancy
	MaxSessionAge time.Duration `env:"RELAY_MAX_SESSION_AGE" envDefault:"4h"`

	// LogLevel is the minimum slog level, one of debug, info, warn, error
	LogLevel string `env:"RELAY_LOG_LEVEL" envDefault:"info"`
}

// Load parses configuration from the environment
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config from environment: %w", err)
	}
	return cfg, nil
}
