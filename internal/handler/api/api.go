// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the JSON REST handlers of the restaurant backend.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/chezflo/chezflo-api/internal/clock"
	"github.com/chezflo/chezflo-api/internal/middleware"
	"github.com/chezflo/chezflo-api/internal/scheduler"
	"github.com/chezflo/chezflo-api/internal/service"
)

// maxBodyBytes bounds request bodies read by decodeJSON.
const maxBodyBytes = 1 << 20

// JobRegistry lists and triggers background jobs.
type JobRegistry interface {
	List() []scheduler.JobInfo
	TriggerNow(name string) error
}

// CountryResolver maps an IP address to an ISO country code.
type CountryResolver interface {
	Country(ip string) string
}

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	menus   *service.MenuService
	content *service.ContentService
	users   *service.UserService
	events  *service.EventService
	jobs    JobRegistry
	login   *middleware.LoginProtection
	geo     CountryResolver
	zone    clock.Zone
	logger  *slog.Logger
}

// Config holds the collaborators of a Handler. Jobs, Login and GeoIP are
// optional.
type Config struct {
	Menus   *service.MenuService
	Content *service.ContentService
	Users   *service.UserService
	Events  *service.EventService
	Jobs    JobRegistry
	Login   *middleware.LoginProtection
	GeoIP   CountryResolver
	Zone    clock.Zone
	Logger  *slog.Logger
}

// NewHandler creates a new API handler.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		menus:   cfg.Menus,
		content: cfg.Content,
		users:   cfg.Users,
		events:  cfg.Events,
		jobs:    cfg.Jobs,
		login:   cfg.Login,
		geo:     cfg.GeoIP,
		zone:    cfg.Zone,
		logger:  logger,
	}
}

// Response is the standard API response wrapper.
type Response struct {
	Data any   `json:"data,omitempty"`
	Meta *Meta `json:"meta,omitempty"`
}

// Meta contains pagination and other metadata.
type Meta struct {
	Total  int `json:"total"`
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// ErrorResponse is the standard API error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a successful JSON response.
func WriteSuccess(w http.ResponseWriter, data any, meta *Meta) {
	WriteJSON(w, http.StatusOK, Response{Data: data, Meta: meta})
}

// WriteCreated writes a 201 Created JSON response.
func WriteCreated(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, Response{Data: data})
}

// WriteError writes an error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	WriteJSON(w, statusCode, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// WriteBadRequest writes a 400 Bad Request response.
func WriteBadRequest(w http.ResponseWriter, message string, details map[string]string) {
	WriteError(w, http.StatusBadRequest, "bad_request", message, details)
}

// WriteNotFound writes a 404 Not Found response.
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, "not_found", message, nil)
}

// WriteUnauthorized writes a 401 Unauthorized response.
func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, "unauthorized", message, nil)
}

// WriteForbidden writes a 403 Forbidden response.
func WriteForbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, "forbidden", message, nil)
}

// WriteConflict writes a 409 Conflict response.
func WriteConflict(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusConflict, "conflict", message, nil)
}

// WriteInternalError writes a 500 Internal Server Error response.
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, "internal_error", message, nil)
}

// WriteValidationError writes a 422 Unprocessable Entity response with field errors.
func WriteValidationError(w http.ResponseWriter, message string, fieldErrors map[string]string) {
	if message == "" {
		message = "Validation failed"
	}
	WriteError(w, http.StatusUnprocessableEntity, "validation_error", message, fieldErrors)
}

// writeServiceError maps a service error to its HTTP response.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		formatErr *service.InvalidScheduleFormatError
		soonErr   *service.ScheduleTooSoonError
		validErr  *service.ValidationError
	)
	switch {
	case errors.As(err, &formatErr):
		WriteError(w, http.StatusBadRequest, "invalid_schedule_format", "Invalid scheduled_at format", map[string]string{
			"received":        formatErr.Received,
			"expected_format": formatErr.Expected,
		})
	case errors.As(err, &soonErr):
		WriteError(w, http.StatusBadRequest, "schedule_too_soon",
			fmt.Sprintf("Scheduled time must be at least %d seconds in the future", int(service.ScheduleBuffer.Seconds())),
			map[string]string{
				"scheduled_for":         h.zone.FormatLocal(soonErr.ScheduledFor),
				"current_time":          h.zone.FormatLocal(soonErr.Now),
				"minimum_schedule_time": h.zone.FormatLocal(soonErr.Minimum),
				"timezone":              h.zone.String(),
			})
	case errors.As(err, &validErr):
		WriteValidationError(w, capitalizeFirst(validErr.Message), validErr.Fields)
	case errors.Is(err, service.ErrEmptyUpdate):
		WriteBadRequest(w, "Invalid data", map[string]string{
			"fields": "text, url, scheduled_at",
		})
	case errors.Is(err, service.ErrMenuNotFound):
		WriteNotFound(w, "Menu not found")
	case errors.Is(err, service.ErrContentNotFound):
		WriteNotFound(w, "Content not found")
	case errors.Is(err, service.ErrSectionNotFound):
		WriteError(w, http.StatusNotFound, "not_found", "Section not found", map[string]string{
			"available": strings.Join(service.Sections(), ", "),
		})
	case errors.Is(err, service.ErrImageNotFound):
		WriteNotFound(w, "Image not found")
	case errors.Is(err, service.ErrUserNotFound):
		WriteNotFound(w, "User not found")
	case errors.Is(err, service.ErrMenuExists):
		WriteConflict(w, "A menu of this type already exists")
	case errors.Is(err, service.ErrUserExists):
		WriteConflict(w, "Username or email already taken")
	case errors.Is(err, service.ErrInvalidCredentials):
		WriteUnauthorized(w, "Login failed. Try again")
	case errors.Is(err, service.ErrForbidden):
		WriteForbidden(w, "Insufficient permissions")
	default:
		h.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		WriteInternalError(w, "Internal server error")
	}
}

// decodeJSON reads the request body into dst. It writes a 400 response
// and returns false when the body is not valid JSON.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			WriteBadRequest(w, "Request body is empty", nil)
			return false
		}
		WriteBadRequest(w, "Invalid JSON body", nil)
		return false
	}
	return true
}

// idParam parses the named URL parameter as a positive integer. It writes
// a 400 response and returns false on failure.
func idParam(w http.ResponseWriter, r *http.Request, name, entityName string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		WriteBadRequest(w, "Invalid "+entityName+" ID", nil)
		return 0, false
	}
	return id, true
}

// actor returns the authenticated caller of r.
func actor(r *http.Request) (service.Actor, bool) {
	u := middleware.GetUser(r)
	if u == nil {
		return service.Actor{}, false
	}
	return service.Actor{ID: u.ID, Role: u.Role}, true
}

// capitalizeFirst returns s with the first letter capitalized.
func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
