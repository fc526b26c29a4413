// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads application settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/chezflo/chezflo-api/internal/clock"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath     string `env:"CHEZFLO_DB_PATH" envDefault:"./data/chezflo.db"`
	JWTSecret  string `env:"CHEZFLO_JWT_SECRET,required"`
	ServerHost string `env:"CHEZFLO_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"CHEZFLO_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"CHEZFLO_ENV" envDefault:"development"`
	LogLevel   string `env:"CHEZFLO_LOG_LEVEL" envDefault:"info"`

	// Auth
	TokenTTL       time.Duration `env:"CHEZFLO_TOKEN_TTL" envDefault:"24h"`
	AuthRatePerMin int           `env:"CHEZFLO_AUTH_RATE_PER_MIN" envDefault:"5"`
	AllowedOrigins []string      `env:"CHEZFLO_ALLOWED_ORIGINS" envSeparator:","`
	APIRatePerSec  float64       `env:"CHEZFLO_API_RATE_PER_SEC" envDefault:"20"`
	APIRateBurst   int           `env:"CHEZFLO_API_RATE_BURST" envDefault:"40"`

	// Menu scheduling
	BusinessUTCOffset  string        `env:"CHEZFLO_BUSINESS_UTC_OFFSET" envDefault:"+01:00"`
	ApplierInterval    time.Duration `env:"CHEZFLO_APPLIER_INTERVAL" envDefault:"60s"`
	EventRetentionDays int           `env:"CHEZFLO_EVENT_RETENTION_DAYS" envDefault:"90"`

	// Cache configuration. Redis is optional; the in-memory cache is used
	// when RedisURL is empty or unreachable.
	RedisURL     string `env:"CHEZFLO_REDIS_URL"`
	CachePrefix  string `env:"CHEZFLO_CACHE_PREFIX" envDefault:"chezflo:"`
	CacheTTL     int    `env:"CHEZFLO_CACHE_TTL" envDefault:"300"`
	CacheMaxSize int    `env:"CHEZFLO_CACHE_MAX_SIZE" envDefault:"1000"`

	// GeoLite2-Country database for login audit events (optional)
	GeoIPDBPath string `env:"CHEZFLO_GEOIP_DB_PATH"`

	zone clock.Zone
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// BusinessZone returns the parsed business time zone. UTC when the config
// was not produced by Load.
func (c Config) BusinessZone() clock.Zone {
	return c.zone
}

// MinJWTSecretLength is the minimum required length for the token signing secret.
const MinJWTSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.JWTSecret) < MinJWTSecretLength {
		return nil, fmt.Errorf("CHEZFLO_JWT_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinJWTSecretLength, len(cfg.JWTSecret))
	}

	for _, weak := range knownWeakSecrets {
		if cfg.JWTSecret == weak {
			return nil, fmt.Errorf("CHEZFLO_JWT_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if !hasMinimumEntropy(cfg.JWTSecret) {
		slog.Warn("CHEZFLO_JWT_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	zone, err := clock.ParseZone(cfg.BusinessUTCOffset)
	if err != nil {
		return nil, fmt.Errorf("CHEZFLO_BUSINESS_UTC_OFFSET: %w", err)
	}
	cfg.zone = zone

	if cfg.ApplierInterval < time.Second {
		return nil, fmt.Errorf("CHEZFLO_APPLIER_INTERVAL must be at least 1s, got %s", cfg.ApplierInterval)
	}
	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("CHEZFLO_TOKEN_TTL must be positive, got %s", cfg.TokenTTL)
	}

	return cfg, nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	classes := []string{
		"abcdefghijklmnopqrstuvwxyz",
		"ABCDEFGHIJKLMNOPQRSTUVWXYZ",
		"0123456789",
		"!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\",
	}
	n := 0
	for _, class := range classes {
		if strings.ContainsAny(s, class) {
			n++
		}
	}
	return n >= 3
}
