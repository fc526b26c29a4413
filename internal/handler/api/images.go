// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/chezflo/chezflo-api/internal/service"
	"github.com/chezflo/chezflo-api/internal/store"
)

// CarouselImageResponse represents a carousel image in API responses.
type CarouselImageResponse struct {
	ID        int64  `json:"id"`
	ContentID int64  `json:"content_id"`
	URL       string `json:"url"`
	Position  int64  `json:"position"`
}

// GridImageResponse represents a grid image in API responses.
type GridImageResponse struct {
	ID        int64  `json:"id"`
	ContentID int64  `json:"content_id"`
	URL       string `json:"url"`
	Position  int64  `json:"position"`
	Height    int64  `json:"height"`
	Width     int64  `json:"width"`
}

// ImageRequest is the body of image create and update requests. Omitted
// fields keep their value on update.
type ImageRequest struct {
	URL      *string `json:"url"`
	Position *int64  `json:"position"`
	Height   *int64  `json:"height"`
	Width    *int64  `json:"width"`
}

func (req ImageRequest) input() service.ImageInput {
	return service.ImageInput{
		URL:      req.URL,
		Position: req.Position,
		Height:   req.Height,
		Width:    req.Width,
	}
}

func carouselToResponse(img store.CarouselImage) CarouselImageResponse {
	return CarouselImageResponse{
		ID:        img.ID,
		ContentID: img.ContentID,
		URL:       img.URL,
		Position:  img.Position,
	}
}

func gridToResponse(img store.GridImage) GridImageResponse {
	return GridImageResponse{
		ID:        img.ID,
		ContentID: img.ContentID,
		URL:       img.URL,
		Position:  img.Position,
		Height:    img.Height,
		Width:     img.Width,
	}
}

// imageIDs parses the content and item ids of an image route.
func imageIDs(w http.ResponseWriter, r *http.Request) (contentID, itemID int64, ok bool) {
	if contentID, ok = idParam(w, r, "contentID", "content"); !ok {
		return 0, 0, false
	}
	if itemID, ok = idParam(w, r, "itemID", "image"); !ok {
		return 0, 0, false
	}
	return contentID, itemID, true
}

// ListCarousel handles GET /api/content/{contentID}/carousel.
func (h *Handler) ListCarousel(w http.ResponseWriter, r *http.Request) {
	contentID, ok := idParam(w, r, "contentID", "content")
	if !ok {
		return
	}

	items, err := h.content.ListCarousel(r.Context(), contentID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	resp := make([]CarouselImageResponse, 0, len(items))
	for _, img := range items {
		resp = append(resp, carouselToResponse(img))
	}
	WriteSuccess(w, resp, &Meta{Total: len(resp)})
}

// CreateCarousel handles POST /api/content/{contentID}/carousel.
func (h *Handler) CreateCarousel(w http.ResponseWriter, r *http.Request) {
	contentID, ok := idParam(w, r, "contentID", "content")
	if !ok {
		return
	}

	var req ImageRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	img, err := h.content.AddCarousel(r.Context(), contentID, req.input())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteCreated(w, carouselToResponse(img))
}

// UpdateCarousel handles PUT /api/content/{contentID}/carousel/{itemID}.
func (h *Handler) UpdateCarousel(w http.ResponseWriter, r *http.Request) {
	contentID, itemID, ok := imageIDs(w, r)
	if !ok {
		return
	}

	var req ImageRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	img, err := h.content.UpdateCarousel(r.Context(), contentID, itemID, req.input())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, carouselToResponse(img), nil)
}

// DeleteCarousel handles DELETE /api/content/{contentID}/carousel/{itemID}.
func (h *Handler) DeleteCarousel(w http.ResponseWriter, r *http.Request) {
	contentID, itemID, ok := imageIDs(w, r)
	if !ok {
		return
	}

	if err := h.content.DeleteCarousel(r.Context(), contentID, itemID); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListGrid handles GET /api/content/{contentID}/grid.
func (h *Handler) ListGrid(w http.ResponseWriter, r *http.Request) {
	contentID, ok := idParam(w, r, "contentID", "content")
	if !ok {
		return
	}

	items, err := h.content.ListGrid(r.Context(), contentID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	resp := make([]GridImageResponse, 0, len(items))
	for _, img := range items {
		resp = append(resp, gridToResponse(img))
	}
	WriteSuccess(w, resp, &Meta{Total: len(resp)})
}

// CreateGrid handles POST /api/content/{contentID}/grid.
func (h *Handler) CreateGrid(w http.ResponseWriter, r *http.Request) {
	contentID, ok := idParam(w, r, "contentID", "content")
	if !ok {
		return
	}

	var req ImageRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	img, err := h.content.AddGrid(r.Context(), contentID, req.input())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteCreated(w, gridToResponse(img))
}

// UpdateGrid handles PUT /api/content/{contentID}/grid/{itemID}.
func (h *Handler) UpdateGrid(w http.ResponseWriter, r *http.Request) {
	contentID, itemID, ok := imageIDs(w, r)
	if !ok {
		return
	}

	var req ImageRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	img, err := h.content.UpdateGrid(r.Context(), contentID, itemID, req.input())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, gridToResponse(img), nil)
}

// DeleteGrid handles DELETE /api/content/{contentID}/grid/{itemID}.
func (h *Handler) DeleteGrid(w http.ResponseWriter, r *http.Request) {
	contentID, itemID, ok := imageIDs(w, r)
	if !ok {
		return
	}

	if err := h.content.DeleteGrid(r.Context(), contentID, itemID); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
