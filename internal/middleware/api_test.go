// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chezflo/chezflo-api/internal/store"
)

// simpleOKHandler returns an http.Handler that writes 200 OK.
var simpleOKHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

// executeRequest creates a test request and executes it against the handler.
func executeRequest(handler http.Handler, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestWriteAPIError(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteAPIError(rr, http.StatusBadRequest, "bad_request", "Invalid date format", map[string]string{
		"received": "tomorrow",
	})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var resp APIError
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Error.Code != "bad_request" {
		t.Errorf("code = %q, want bad_request", resp.Error.Code)
	}
	if resp.Error.Details["received"] != "tomorrow" {
		t.Errorf("details = %v", resp.Error.Details)
	}
}

func TestRateLimiterByIP(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	defer rl.Stop()
	handler := rl.Middleware()(simpleOKHandler)

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/content", nil)
		req.RemoteAddr = ip + ":1234"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr.Code
	}

	for i := range 2 {
		if code := send("10.0.0.1"); code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, code)
		}
	}
	if code := send("10.0.0.1"); code != http.StatusTooManyRequests {
		t.Errorf("third request: status = %d, want 429", code)
	}
	if code := send("10.0.0.2"); code != http.StatusOK {
		t.Errorf("other IP: status = %d, want 200", code)
	}
}

func TestRateLimiterByUser(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	defer rl.Stop()
	handler := rl.Middleware()(simpleOKHandler)

	send := func(userID int64) int {
		req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		req = req.WithContext(WithUser(req.Context(), &store.User{ID: userID}))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr.Code
	}

	if code := send(1); code != http.StatusOK {
		t.Fatalf("user 1: status = %d, want 200", code)
	}
	if code := send(1); code != http.StatusTooManyRequests {
		t.Errorf("user 1 again: status = %d, want 429", code)
	}
	if code := send(2); code != http.StatusOK {
		t.Errorf("user 2 behind the same IP: status = %d, want 200", code)
	}
}

func TestLimiterCacheClearIfExceeds(t *testing.T) {
	lc := newLimiterCache[string](1, 1)
	lc.get("a")
	lc.get("b")

	if lc.clearIfExceeds(2) {
		t.Error("clearIfExceeds(2) cleared a cache of size 2")
	}
	if !lc.clearIfExceeds(1) {
		t.Error("clearIfExceeds(1) did not clear a cache of size 2")
	}
	if len(lc.limiters) != 0 {
		t.Errorf("limiters = %d, want 0", len(lc.limiters))
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		realIP     string
		forwarded  string
		remoteAddr string
		want       string
	}{
		{"remote addr", "", "", "192.168.1.1:4321", "192.168.1.1"},
		{"remote addr without port", "", "", "192.168.1.1", "192.168.1.1"},
		{"x-real-ip wins", "10.0.0.1", "10.0.0.2", "192.168.1.1:4321", "10.0.0.1"},
		{"first forwarded", "", "203.0.113.5, 10.0.0.2", "192.168.1.1:4321", "203.0.113.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if got := ClientIP(req); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
