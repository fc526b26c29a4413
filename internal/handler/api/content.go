// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/chezflo/chezflo-api/internal/service"
	"github.com/chezflo/chezflo-api/internal/store"
)

// ContentResponse represents a content unit in API responses.
type ContentResponse struct {
	ID        int64             `json:"id"`
	Fields    map[string]string `json:"fields"`
	CreatedAt string            `json:"created_at"`
	UpdatedAt string            `json:"updated_at"`
}

// SectionResponse represents one content section.
type SectionResponse struct {
	ContentID int64             `json:"content_id"`
	Section   string            `json:"section"`
	Fields    map[string]string `json:"fields"`
	AboutHTML string            `json:"about_html,omitempty"`
}

func (h *Handler) contentToResponse(c store.Content) ContentResponse {
	fields := c.Fields
	if fields == nil {
		fields = map[string]string{}
	}
	return ContentResponse{
		ID:        c.ID,
		Fields:    fields,
		CreatedAt: c.CreatedAt.In(h.zone.Location()).Format(time.RFC3339),
		UpdatedAt: c.UpdatedAt.In(h.zone.Location()).Format(time.RFC3339),
	}
}

func sectionToResponse(s *service.Section) SectionResponse {
	return SectionResponse{
		ContentID: s.ContentID,
		Section:   s.Name,
		Fields:    s.Fields,
		AboutHTML: s.HTML,
	}
}

// ListContent handles GET /api/content.
func (h *Handler) ListContent(w http.ResponseWriter, r *http.Request) {
	contents, err := h.content.List(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	resp := make([]ContentResponse, 0, len(contents))
	for _, c := range contents {
		resp = append(resp, h.contentToResponse(c))
	}
	WriteSuccess(w, resp, &Meta{Total: len(resp)})
}

// GetContent handles GET /api/content/{contentID}.
func (h *Handler) GetContent(w http.ResponseWriter, r *http.Request) {
	contentID, ok := idParam(w, r, "contentID", "content")
	if !ok {
		return
	}

	c, err := h.content.Get(r.Context(), contentID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, h.contentToResponse(c), nil)
}

// CreateContent handles POST /api/content. The body maps column names to
// their text.
func (h *Handler) CreateContent(w http.ResponseWriter, r *http.Request) {
	var fields map[string]string
	if !decodeJSON(w, r, &fields) {
		return
	}

	c, err := h.content.Create(r.Context(), fields)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteCreated(w, h.contentToResponse(c))
}

// GetSection handles GET /api/content/{contentID}/{section}.
func (h *Handler) GetSection(w http.ResponseWriter, r *http.Request) {
	contentID, ok := idParam(w, r, "contentID", "content")
	if !ok {
		return
	}

	s, err := h.content.GetSection(r.Context(), contentID, chi.URLParam(r, "section"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, sectionToResponse(s), nil)
}

// UpdateSection handles PUT /api/content/{contentID}/{section}.
func (h *Handler) UpdateSection(w http.ResponseWriter, r *http.Request) {
	contentID, ok := idParam(w, r, "contentID", "content")
	if !ok {
		return
	}

	var fields map[string]string
	if !decodeJSON(w, r, &fields) {
		return
	}

	s, err := h.content.UpdateSection(r.Context(), contentID, chi.URLParam(r, "section"), fields)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, sectionToResponse(s), nil)
}
