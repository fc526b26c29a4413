// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/chezflo/chezflo-api/internal/scheduler"
)

// JobResponse represents a background job.
type JobResponse struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Schedule    string `json:"schedule"`
	LastRun     string `json:"last_run,omitempty"`
	NextRun     string `json:"next_run,omitempty"`
	CanTrigger  bool   `json:"can_trigger"`
}

func (h *Handler) formatJobTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(h.zone.Location()).Format(time.RFC3339)
}

// ListJobs handles GET /api/jobs.
func (h *Handler) ListJobs(w http.ResponseWriter, _ *http.Request) {
	if h.jobs == nil {
		WriteSuccess(w, []JobResponse{}, &Meta{})
		return
	}

	jobs := h.jobs.List()
	resp := make([]JobResponse, 0, len(jobs))
	for _, j := range jobs {
		resp = append(resp, JobResponse{
			Name:        j.Name,
			Description: j.Description,
			Schedule:    j.Schedule,
			LastRun:     h.formatJobTime(j.LastRun),
			NextRun:     h.formatJobTime(j.NextRun),
			CanTrigger:  j.CanTrigger,
		})
	}
	WriteSuccess(w, resp, &Meta{Total: len(resp)})
}

// TriggerJob handles POST /api/jobs/{name}/trigger.
func (h *Handler) TriggerJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if h.jobs == nil {
		WriteNotFound(w, "Job not found")
		return
	}

	err := h.jobs.TriggerNow(name)
	switch {
	case errors.Is(err, scheduler.ErrJobNotFound):
		WriteNotFound(w, "Job not found")
	case errors.Is(err, scheduler.ErrTriggerDisabled):
		WriteError(w, http.StatusConflict, "trigger_disabled", "Job cannot be triggered manually", nil)
	case err != nil:
		h.writeServiceError(w, r, err)
	default:
		WriteSuccess(w, MessageResponse{Message: "Job " + name + " triggered"}, nil)
	}
}
