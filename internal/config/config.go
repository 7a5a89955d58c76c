// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath     string `env:"RELAY_DB_PATH" envDefault:"./data/relay.db"`
	ServerHost string `env:"RELAY_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"RELAY_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"RELAY_ENV" envDefault:"development"`
	LogLevel   string `env:"RELAY_LOG_LEVEL" envDefault:"info"`

	// RequestTimeout bounds every request; individual operations never span
	// multiple client round-trips.
	RequestTimeout time.Duration `env:"RELAY_REQUEST_TIMEOUT" envDefault:"30s"`

	// Rate limiting for write endpoints (requests per second per client).
	RateLimit      float64 `env:"RELAY_RATE_LIMIT" envDefault:"10"`
	RateLimitBurst int     `env:"RELAY_RATE_LIMIT_BURST" envDefault:"20"`

	// Notification dispatcher (delivery itself is stubbed).
	NotifyWorkers int `env:"RELAY_NOTIFY_WORKERS" envDefault:"3"`

	// Seeding configuration
	DoSeed bool `env:"RELAY_DO_SEED" envDefault:"false"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.RateLimit <= 0 {
		return nil, fmt.Errorf("RELAY_RATE_LIMIT must be positive, got %v", cfg.RateLimit)
	}
	if cfg.RateLimitBurst < 1 {
		return nil, fmt.Errorf("RELAY_RATE_LIMIT_BURST must be at least 1, got %d", cfg.RateLimitBurst)
	}

	return cfg, nil
}
