// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/chezflo/chezflo-api/internal/model"
	"github.com/chezflo/chezflo-api/internal/service"
	"github.com/chezflo/chezflo-api/internal/store"
	"github.com/chezflo/chezflo-api/internal/util"
)

// MenuResponse represents a menu in API responses. Scheduled times are
// business local.
type MenuResponse struct {
	ID          int64   `json:"id"`
	ContentID   int64   `json:"content_id"`
	Type        string  `json:"type"`
	Text        string  `json:"text"`
	URL         string  `json:"url"`
	State       string  `json:"state"`
	PendingText *string `json:"pending_text,omitempty"`
	PendingURL  *string `json:"pending_url,omitempty"`
	ScheduledAt *string `json:"scheduled_at,omitempty"`
	UpdatedAt   string  `json:"updated_at"`
}

// CreateMenuRequest is the body of POST /menus.
type CreateMenuRequest struct {
	Type string `json:"type"`
	Text string `json:"text"`
	URL  string `json:"url"`
}

// UpdateMenuRequest is the body of PUT /menus/{menuType}. The menus_text
// and menus_url keys are accepted as aliases of text and url.
type UpdateMenuRequest struct {
	Text        *string `json:"text"`
	URL         *string `json:"url"`
	MenusText   *string `json:"menus_text"`
	MenusURL    *string `json:"menus_url"`
	ScheduledAt *string `json:"scheduled_at"`
}

// ScheduleResponse echoes an accepted scheduled update.
type ScheduleResponse struct {
	Message             string       `json:"message"`
	ScheduledFor        string       `json:"scheduled_for"`
	CurrentTime         string       `json:"current_time"`
	MinimumScheduleTime string       `json:"minimum_schedule_time"`
	Timezone            string       `json:"timezone"`
	Menu                MenuResponse `json:"menu"`
}

// ScheduledItemResponse is one entry of the scheduled debug view.
type ScheduledItemResponse struct {
	ID              int64   `json:"id"`
	Type            string  `json:"type"`
	CurrentText     string  `json:"current_text"`
	CurrentURL      string  `json:"current_url"`
	ScheduledText   *string `json:"scheduled_text"`
	ScheduledURL    *string `json:"scheduled_url"`
	ScheduledAt     string  `json:"scheduled_at"`
	IsDue           bool    `json:"is_due"`
	MinutesUntilDue int     `json:"minutes_until_due"`
}

// ScheduledListResponse is the body of GET /menus/scheduled.
type ScheduledListResponse struct {
	CurrentTime      string                  `json:"current_time"`
	CurrentTimeUTC   string                  `json:"current_time_utc"`
	Timezone         string                  `json:"timezone"`
	ScheduledUpdates []ScheduledItemResponse `json:"scheduled_updates"`
}

// AppliedUpdateResponse is one applied change.
type AppliedUpdateResponse struct {
	ID      int64  `json:"id"`
	Type    string `json:"type"`
	NewText string `json:"new_text"`
	NewURL  string `json:"new_url"`
}

// ApplyResponse is the body of POST /menus/apply-scheduled.
type ApplyResponse struct {
	Message        string                  `json:"message"`
	AppliedUpdates []AppliedUpdateResponse `json:"applied_updates"`
	CurrentTime    string                  `json:"current_time"`
	CurrentTimeUTC string                  `json:"current_time_utc"`
}

// MessageResponse carries a human readable outcome.
type MessageResponse struct {
	Message string `json:"message"`
}

func (h *Handler) menuToResponse(m store.Menu) MenuResponse {
	resp := MenuResponse{
		ID:          m.ID,
		ContentID:   m.ContentID,
		Type:        m.Type,
		Text:        m.Text,
		URL:         m.URL,
		State:       string(model.MenuStateOf(m.Applied)),
		PendingText: util.StringPtr(m.PendingText),
		PendingURL:  util.StringPtr(m.PendingURL),
		UpdatedAt:   m.UpdatedAt.In(h.zone.Location()).Format(time.RFC3339),
	}
	if m.ScheduledAt.Valid {
		at := h.zone.FormatLocal(m.ScheduledAt.Time)
		resp.ScheduledAt = &at
	}
	return resp
}

// ListMenus handles GET /api/content/{contentID}/menus.
func (h *Handler) ListMenus(w http.ResponseWriter, r *http.Request) {
	contentID, ok := idParam(w, r, "contentID", "content")
	if !ok {
		return
	}

	menus, err := h.menus.List(r.Context(), contentID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	resp := make([]MenuResponse, 0, len(menus))
	for _, m := range menus {
		resp = append(resp, h.menuToResponse(m))
	}
	WriteSuccess(w, resp, &Meta{Total: len(resp)})
}

// CreateMenu handles POST /api/content/{contentID}/menus.
func (h *Handler) CreateMenu(w http.ResponseWriter, r *http.Request) {
	contentID, ok := idParam(w, r, "contentID", "content")
	if !ok {
		return
	}

	var req CreateMenuRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	m, err := h.menus.Create(r.Context(), service.CreateMenuInput{
		ContentID: contentID,
		Type:      req.Type,
		Text:      req.Text,
		URL:       req.URL,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteCreated(w, h.menuToResponse(m))
}

// UpdateMenu handles PUT /api/content/{contentID}/menus/{menuType}. With
// scheduled_at the change is deferred, otherwise it is published now.
func (h *Handler) UpdateMenu(w http.ResponseWriter, r *http.Request) {
	contentID, ok := idParam(w, r, "contentID", "content")
	if !ok {
		return
	}
	menuType := chi.URLParam(r, "menuType")

	var req UpdateMenuRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Text == nil {
		req.Text = req.MenusText
	}
	if req.URL == nil {
		req.URL = req.MenusURL
	}

	result, err := h.menus.Update(r.Context(), service.UpdateMenuInput{
		ContentID:   contentID,
		Type:        menuType,
		Text:        req.Text,
		URL:         req.URL,
		ScheduledAt: req.ScheduledAt,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	if !result.Scheduled {
		WriteSuccess(w, struct {
			Message string       `json:"message"`
			Menu    MenuResponse `json:"menu"`
		}{"Menu updated immediately", h.menuToResponse(result.Menu)}, nil)
		return
	}

	WriteSuccess(w, ScheduleResponse{
		Message:             "Menu update scheduled",
		ScheduledFor:        h.zone.FormatLocal(result.ScheduledFor),
		CurrentTime:         h.zone.FormatLocal(result.Now),
		MinimumScheduleTime: h.zone.FormatLocal(result.Minimum),
		Timezone:            h.zone.String(),
		Menu:                h.menuToResponse(result.Menu),
	}, nil)
}

// DeleteMenu handles DELETE /api/content/{contentID}/menus/{menuType}.
func (h *Handler) DeleteMenu(w http.ResponseWriter, r *http.Request) {
	contentID, ok := idParam(w, r, "contentID", "content")
	if !ok {
		return
	}

	m, err := h.menus.Delete(r.Context(), contentID, chi.URLParam(r, "menuType"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, MessageResponse{Message: m.Text + " menu deleted successfully"}, nil)
}

// ListScheduledMenus handles GET /api/content/{contentID}/menus/scheduled.
func (h *Handler) ListScheduledMenus(w http.ResponseWriter, r *http.Request) {
	contentID, ok := idParam(w, r, "contentID", "content")
	if !ok {
		return
	}

	view, err := h.menus.ListScheduled(r.Context(), contentID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	items := make([]ScheduledItemResponse, 0, len(view.Items))
	for _, it := range view.Items {
		item := ScheduledItemResponse{
			ID:              it.Menu.ID,
			Type:            it.Menu.Type,
			CurrentText:     it.Menu.Text,
			CurrentURL:      it.Menu.URL,
			ScheduledText:   util.StringPtr(it.Menu.PendingText),
			ScheduledURL:    util.StringPtr(it.Menu.PendingURL),
			IsDue:           it.IsDue,
			MinutesUntilDue: it.MinutesUntilDue,
		}
		if it.Menu.ScheduledAt.Valid {
			item.ScheduledAt = h.zone.FormatLocal(it.Menu.ScheduledAt.Time)
		}
		items = append(items, item)
	}

	WriteSuccess(w, ScheduledListResponse{
		CurrentTime:      h.zone.FormatLocal(view.Now),
		CurrentTimeUTC:   view.Now.UTC().Format(time.RFC3339),
		Timezone:         h.zone.String(),
		ScheduledUpdates: items,
	}, &Meta{Total: len(items)})
}

// ApplyScheduledMenus handles POST /api/content/{contentID}/menus/apply-scheduled.
// It runs one due-application pass restricted to the content unit.
func (h *Handler) ApplyScheduledMenus(w http.ResponseWriter, r *http.Request) {
	contentID, ok := idParam(w, r, "contentID", "content")
	if !ok {
		return
	}

	applied, err := h.menus.ApplyDue(r.Context(), &contentID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	now := h.menus.Now()
	resp := ApplyResponse{
		Message:        "No scheduled updates due",
		AppliedUpdates: make([]AppliedUpdateResponse, 0, len(applied)),
		CurrentTime:    h.zone.FormatLocal(now),
		CurrentTimeUTC: now.Format(time.RFC3339),
	}
	for _, a := range applied {
		resp.AppliedUpdates = append(resp.AppliedUpdates, AppliedUpdateResponse{
			ID:      a.ID,
			Type:    a.Type,
			NewText: a.Text,
			NewURL:  a.URL,
		})
	}
	if len(applied) > 0 {
		resp.Message = fmt.Sprintf("Successfully applied %d scheduled updates", len(applied))
	}
	WriteSuccess(w, resp, nil)
}
