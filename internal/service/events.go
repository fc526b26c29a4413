// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service implements the menu scheduling core and the content,
// user and event operations behind the HTTP API.
package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/chezflo/chezflo-api/internal/clock"
	"github.com/chezflo/chezflo-api/internal/model"
	"github.com/chezflo/chezflo-api/internal/store"
)

// Event listing limits.
const (
	DefaultEventLimit = 50
	MaxEventLimit     = 500
)

// EventService writes and reads the event log.
type EventService struct {
	queries *store.Queries
	clock   clock.Clock
}

// NewEventService creates a new EventService.
func NewEventService(db *sql.DB, clk clock.Clock) *EventService {
	return &EventService{
		queries: store.New(db),
		clock:   clk,
	}
}

// LogEvent creates a new event log entry.
func (s *EventService) LogEvent(ctx context.Context, level, category, message string, metadata map[string]any) error {
	metadataJSON := "{}"
	if len(metadata) > 0 {
		if b, err := json.Marshal(metadata); err == nil {
			metadataJSON = string(b)
		}
	}

	_, err := s.queries.CreateEvent(ctx, store.CreateEventParams{
		Level:     level,
		Category:  category,
		Message:   message,
		Metadata:  metadataJSON,
		CreatedAt: s.clock.Now(),
	})
	if err != nil {
		return storageError("creating event", err)
	}
	return nil
}

// LogInfo logs an info-level event.
func (s *EventService) LogInfo(ctx context.Context, category, message string, metadata map[string]any) error {
	return s.LogEvent(ctx, model.EventLevelInfo, category, message, metadata)
}

// LogWarning logs a warning-level event.
func (s *EventService) LogWarning(ctx context.Context, category, message string, metadata map[string]any) error {
	return s.LogEvent(ctx, model.EventLevelWarning, category, message, metadata)
}

// ListEventsInput filters the event log. Empty strings match everything.
type ListEventsInput struct {
	Level    string
	Category string
	Limit    int
	Offset   int
}

// List returns events newest first.
func (s *EventService) List(ctx context.Context, in ListEventsInput) ([]store.Event, error) {
	limit := in.Limit
	switch {
	case limit <= 0:
		limit = DefaultEventLimit
	case limit > MaxEventLimit:
		limit = MaxEventLimit
	}
	offset := max(in.Offset, 0)

	events, err := s.queries.ListEvents(ctx, store.ListEventsParams{
		Level:    in.Level,
		Category: in.Category,
		Limit:    int64(limit),
		Offset:   int64(offset),
	})
	if err != nil {
		return nil, storageError("listing events", err)
	}
	return events, nil
}

// Prune deletes events older than retention and returns how many were removed.
func (s *EventService) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	n, err := s.queries.DeleteEventsBefore(ctx, s.clock.Now().Add(-retention))
	if err != nil {
		return 0, storageError("pruning events", err)
	}
	return n, nil
}
