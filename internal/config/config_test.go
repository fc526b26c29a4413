// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"os"
	"testing"
	"time"
)

const testSecret = "test-secret-key-32-bytes-long!!!"

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("failed to set %s: %v", key, err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()
	setEnv(t, "CHEZFLO_JWT_SECRET", testSecret)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.DBPath != "./data/chezflo.db" {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, "./data/chezflo.db")
	}
	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d, want %d", cfg.ServerPort, 8080)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Errorf("TokenTTL = %s, want 24h", cfg.TokenTTL)
	}
	if cfg.ApplierInterval != time.Minute {
		t.Errorf("ApplierInterval = %s, want 1m", cfg.ApplierInterval)
	}
	if got := cfg.BusinessZone().String(); got != "UTC+01:00" {
		t.Errorf("BusinessZone() = %q, want %q", got, "UTC+01:00")
	}
	if cfg.UseRedisCache() {
		t.Error("UseRedisCache() = true without CHEZFLO_REDIS_URL")
	}
}

func TestLoad_CustomValues(t *testing.T) {
	os.Clearenv()
	setEnv(t, "CHEZFLO_JWT_SECRET", testSecret)
	setEnv(t, "CHEZFLO_DB_PATH", "/custom/path.db")
	setEnv(t, "CHEZFLO_SERVER_HOST", "0.0.0.0")
	setEnv(t, "CHEZFLO_SERVER_PORT", "3000")
	setEnv(t, "CHEZFLO_ENV", "production")
	setEnv(t, "CHEZFLO_BUSINESS_UTC_OFFSET", "-05:00")
	setEnv(t, "CHEZFLO_APPLIER_INTERVAL", "30s")
	setEnv(t, "CHEZFLO_ALLOWED_ORIGINS", "https://chezflo.example,https://admin.chezflo.example")
	setEnv(t, "CHEZFLO_REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.ServerAddr() != "0.0.0.0:3000" {
		t.Errorf("ServerAddr() = %q", cfg.ServerAddr())
	}
	if cfg.IsDevelopment() {
		t.Error("IsDevelopment() = true in production")
	}
	if got := cfg.BusinessZone().String(); got != "UTC-05:00" {
		t.Errorf("BusinessZone() = %q, want %q", got, "UTC-05:00")
	}
	if cfg.ApplierInterval != 30*time.Second {
		t.Errorf("ApplierInterval = %s, want 30s", cfg.ApplierInterval)
	}
	if len(cfg.AllowedOrigins) != 2 {
		t.Errorf("AllowedOrigins = %v, want 2 entries", cfg.AllowedOrigins)
	}
	if !cfg.UseRedisCache() {
		t.Error("UseRedisCache() = false with CHEZFLO_REDIS_URL set")
	}
}

func TestLoad_RequiredJWTSecret(t *testing.T) {
	os.Clearenv()

	if _, err := Load(); err == nil {
		t.Fatal("Load() should fail when CHEZFLO_JWT_SECRET is not set")
	}
}

func TestLoad_RejectsWeakSecrets(t *testing.T) {
	tests := []struct {
		name   string
		secret string
	}{
		{"empty", ""},
		{"short", "short"},
		{"31_bytes", "1234567890123456789012345678901"},
		{"known_default", "change-me-to-32-byte-secret-key!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			setEnv(t, "CHEZFLO_JWT_SECRET", tt.secret)

			if _, err := Load(); err == nil {
				t.Fatalf("Load() should fail with secret %q", tt.secret)
			}
		})
	}
}

func TestLoad_InvalidSchedulingSettings(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"named zone", "CHEZFLO_BUSINESS_UTC_OFFSET", "Europe/London"},
		{"sub-second interval", "CHEZFLO_APPLIER_INTERVAL", "500ms"},
		{"zero token ttl", "CHEZFLO_TOKEN_TTL", "0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			setEnv(t, "CHEZFLO_JWT_SECRET", testSecret)
			setEnv(t, tt.key, tt.value)

			if _, err := Load(); err == nil {
				t.Fatalf("Load() should fail with %s=%s", tt.key, tt.value)
			}
		})
	}
}

func TestConfig_ZeroValueZoneIsUTC(t *testing.T) {
	var cfg Config
	if got := cfg.BusinessZone().Location(); got != time.UTC {
		t.Errorf("BusinessZone().Location() = %v, want UTC", got)
	}
}

func TestHasMinimumEntropy(t *testing.T) {
	tests := []struct {
		secret string
		want   bool
	}{
		{"aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", false},
		{"abcdefghABCDEFGH1234567890abcdef", true},
		{testSecret, true},
	}

	for _, tt := range tests {
		if got := hasMinimumEntropy(tt.secret); got != tt.want {
			t.Errorf("hasMinimumEntropy(%q) = %v, want %v", tt.secret, got, tt.want)
		}
	}
}
