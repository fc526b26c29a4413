// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"testing"
)

func TestSecurityHeaders(t *testing.T) {
	tests := []struct {
		name     string
		isDev    bool
		wantHSTS string
	}{
		{"production", false, "max-age=31536000; includeSubDomains"},
		{"development", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := SecurityHeaders(DefaultSecurityHeadersConfig(tt.isDev))(simpleOKHandler)
			rr := executeRequest(handler, http.MethodGet, "/api/content")

			h := rr.Header()
			if got := h.Get("Strict-Transport-Security"); got != tt.wantHSTS {
				t.Errorf("HSTS = %q, want %q", got, tt.wantHSTS)
			}
			if got := h.Get("Content-Security-Policy"); got != "default-src 'none'; frame-ancestors 'none'" {
				t.Errorf("CSP = %q", got)
			}
			if got := h.Get("X-Content-Type-Options"); got != "nosniff" {
				t.Errorf("X-Content-Type-Options = %q", got)
			}
			if got := h.Get("X-Frame-Options"); got != "DENY" {
				t.Errorf("X-Frame-Options = %q", got)
			}
			if got := h.Get("Cache-Control"); got != "no-store" {
				t.Errorf("Cache-Control = %q", got)
			}
		})
	}
}

func TestSecurityHeadersExcludePaths(t *testing.T) {
	cfg := DefaultSecurityHeadersConfig(false)
	cfg.ExcludePaths = []string{"/health"}
	handler := SecurityHeaders(cfg)(simpleOKHandler)

	rr := executeRequest(handler, http.MethodGet, "/health")
	if rr.Header().Get("Content-Security-Policy") != "" {
		t.Error("excluded path should not get security headers")
	}

	rr = executeRequest(handler, http.MethodGet, "/api/menus")
	if rr.Header().Get("Content-Security-Policy") == "" {
		t.Error("non-excluded path should get security headers")
	}
}

func TestBuildCSP(t *testing.T) {
	got := buildCSP(map[string]string{
		"frame-ancestors": "'none'",
		"default-src":     "'self'",
	})
	if want := "default-src 'self'; frame-ancestors 'none'"; got != want {
		t.Errorf("buildCSP() = %q, want %q", got, want)
	}
}
