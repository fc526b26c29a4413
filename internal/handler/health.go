// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler provides the HTTP handlers that sit outside the JSON API.
package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/chezflo/chezflo-api/internal/cache"
	"github.com/chezflo/chezflo-api/internal/clock"
	"github.com/chezflo/chezflo-api/internal/version"
)

// pingTimeout bounds the database and cache checks.
const pingTimeout = 2 * time.Second

// HealthHandler handles health check requests.
type HealthHandler struct {
	db        *sql.DB
	cache     cache.Cacher
	clock     clock.Clock
	zone      clock.Zone
	build     version.Info
	startTime time.Time
}

// NewHealthHandler creates a new health handler. c may be nil.
func NewHealthHandler(db *sql.DB, c cache.Cacher, clk clock.Clock, zone clock.Zone, build version.Info) *HealthHandler {
	if clk == nil {
		clk = clock.Real{}
	}
	return &HealthHandler{
		db:        db,
		cache:     c,
		clock:     clk,
		zone:      zone,
		build:     build,
		startTime: clk.Now(),
	}
}

// HealthStatus represents the overall health status.
type HealthStatus struct {
	Status    string           `json:"status"`
	Timestamp string           `json:"timestamp"`
	LocalTime string           `json:"local_time"`
	Timezone  string           `json:"timezone"`
	Uptime    string           `json:"uptime"`
	Version   string           `json:"version"`
	GitCommit string           `json:"git_commit,omitempty"`
	GoVersion string           `json:"go_version"`
	Checks    map[string]Check `json:"checks"`
}

// Check represents a single health check result.
type Check struct {
	Status  string       `json:"status"`
	Message string       `json:"message,omitempty"`
	Latency string       `json:"latency,omitempty"`
	Stats   *cache.Stats `json:"stats,omitempty"`
}

// Health handles GET /health. An unreachable cache degrades the status
// but keeps 200, since requests fall through to the database.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	checks := map[string]Check{"database": h.checkDatabase(r.Context())}
	if h.cache != nil {
		checks["cache"] = h.checkCache(r.Context())
	}

	status := "healthy"
	code := http.StatusOK
	for name, c := range checks {
		if c.Status == "healthy" {
			continue
		}
		status = "degraded"
		if name == "database" {
			code = http.StatusServiceUnavailable
		}
	}

	now := h.clock.Now()
	writeJSON(w, code, HealthStatus{
		Status:    status,
		Timestamp: now.UTC().Format(time.RFC3339),
		LocalTime: h.zone.FormatLocal(now),
		Timezone:  h.zone.String(),
		Uptime:    now.Sub(h.startTime).Round(time.Second).String(),
		Version:   h.build.Version,
		GitCommit: h.build.GitCommit,
		GoVersion: runtime.Version(),
		Checks:    checks,
	})
}

// Liveness handles GET /health/live - simple liveness check.
func (h *HealthHandler) Liveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// Readiness handles GET /health/ready - checks if the service is ready to accept traffic.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if h.checkDatabase(r.Context()).Status != "healthy" {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not_ready"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// checkDatabase verifies database connectivity.
func (h *HealthHandler) checkDatabase(ctx context.Context) Check {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	start := time.Now()
	err := h.db.PingContext(ctx)
	latency := time.Since(start)

	if err != nil {
		return Check{
			Status:  "unhealthy",
			Message: "database connection failed",
			Latency: latency.String(),
		}
	}
	return Check{Status: "healthy", Latency: latency.String()}
}

// checkCache pings a remote cache, or queries a local one, and attaches its
// counters.
func (h *HealthHandler) checkCache(ctx context.Context) Check {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	start := time.Now()
	var err error
	if p, ok := h.cache.(cache.Pinger); ok {
		err = p.Ping(ctx)
	} else {
		_, err = h.cache.Has(ctx, "health")
	}
	latency := time.Since(start)

	check := Check{Status: "healthy", Latency: latency.String()}
	if err != nil {
		check.Status = "unhealthy"
		check.Message = "cache unavailable"
	}
	if sp, ok := h.cache.(cache.StatsProvider); ok {
		stats := sp.Stats()
		check.Stats = &stats
	}
	return check
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
