// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/chezflo/chezflo-api/internal/service"
)

// EventResponse represents an event log entry.
type EventResponse struct {
	ID        int64          `json:"id"`
	Level     string         `json:"level"`
	Category  string         `json:"category"`
	Message   string         `json:"message"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt string         `json:"created_at"`
}

// ListEvents handles GET /api/events. Query parameters: level, category,
// limit, offset.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	in := service.ListEventsInput{
		Level:    q.Get("level"),
		Category: q.Get("category"),
	}
	for name, dst := range map[string]*int{"limit": &in.Limit, "offset": &in.Offset} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			WriteBadRequest(w, "Invalid "+name, map[string]string{name: "must be a non-negative integer"})
			return
		}
		*dst = n
	}

	events, err := h.events.List(r.Context(), in)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	resp := make([]EventResponse, 0, len(events))
	for _, e := range events {
		item := EventResponse{
			ID:        e.ID,
			Level:     e.Level,
			Category:  e.Category,
			Message:   e.Message,
			CreatedAt: e.CreatedAt.In(h.zone.Location()).Format(time.RFC3339),
		}
		if e.Metadata != "" && e.Metadata != "{}" {
			_ = json.Unmarshal([]byte(e.Metadata), &item.Metadata)
		}
		resp = append(resp, item)
	}
	WriteSuccess(w, resp, &Meta{Total: len(resp), Limit: in.Limit, Offset: in.Offset})
}
