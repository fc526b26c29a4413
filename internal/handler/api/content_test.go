// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	contentPattern  = "/api/content/{contentID}"
	sectionPattern  = "/api/content/{contentID}/{section}"
	carouselPattern = "/api/content/{contentID}/carousel"
	carouselItem    = "/api/content/{contentID}/carousel/{itemID}"
	gridPattern     = "/api/content/{contentID}/grid"
	gridItem        = "/api/content/{contentID}/grid/{itemID}"
)

func (f *apiFixture) contentPath(suffix string) string {
	return "/api/content/" + strconv.FormatInt(f.contentID, 10) + suffix
}

func TestListAndGetContent(t *testing.T) {
	f := newAPIFixture(t)

	w := serve(t, http.MethodGet, "/api/content", "/api/content", f.h.ListContent, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []ContentResponse
	decodeData(t, w, &list)
	require.Len(t, list, 1)
	assert.Equal(t, "Chez Flo", list[0].Fields["about_title"])

	w = serve(t, http.MethodGet, contentPattern, f.contentPath(""), f.h.GetContent, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var c ContentResponse
	decodeData(t, w, &c)
	assert.Equal(t, f.contentID, c.ID)
	assert.True(t, strings.HasSuffix(c.CreatedAt, "+01:00"), c.CreatedAt)

	w = serve(t, http.MethodGet, contentPattern, "/api/content/999", f.h.GetContent, nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateContent(t *testing.T) {
	f := newAPIFixture(t)

	body := map[string]string{"about_title": "Second site", "phone": "+33 1 23 45 67 89"}
	w := serve(t, http.MethodPost, "/api/content", "/api/content", f.h.CreateContent, body, f.admin)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var c ContentResponse
	decodeData(t, w, &c)
	assert.NotEqual(t, f.contentID, c.ID)
	assert.Equal(t, "Second site", c.Fields["about_title"])

	w = serve(t, http.MethodPost, "/api/content", "/api/content", f.h.CreateContent, map[string]string{"owner": "x"}, f.admin)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "unknown field", decodeError(t, w).Details["owner"])
}

func TestGetSection_About(t *testing.T) {
	f := newAPIFixture(t)

	w := serve(t, http.MethodGet, sectionPattern, f.contentPath("/about"), f.h.GetSection, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var s SectionResponse
	decodeData(t, w, &s)
	assert.Equal(t, "about", s.Section)
	assert.Equal(t, "Chez Flo", s.Fields["about_title"])
	assert.Contains(t, s.AboutHTML, "<strong>bistro</strong>")

	w = serve(t, http.MethodGet, sectionPattern, f.contentPath("/kitchen"), f.h.GetSection, nil, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "about, contact, opening_hours, reservation", decodeError(t, w).Details["available"])
}

func TestUpdateSection(t *testing.T) {
	f := newAPIFixture(t)

	body := map[string]string{"lunch_timing_day_one": "Mon-Fri", "lunch_timing_hours_one": "12:00-14:30"}
	w := serve(t, http.MethodPut, sectionPattern, f.contentPath("/opening_hours"), f.h.UpdateSection, body, f.admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var s SectionResponse
	decodeData(t, w, &s)
	assert.Equal(t, "12:00-14:30", s.Fields["lunch_timing_hours_one"])
	assert.Empty(t, s.AboutHTML)

	w = serve(t, http.MethodPut, sectionPattern, f.contentPath("/opening_hours"), f.h.UpdateSection,
		map[string]string{"about_title": "Hijack"}, f.admin)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestCarouselCRUD(t *testing.T) {
	f := newAPIFixture(t)

	w := serve(t, http.MethodPost, carouselPattern, f.contentPath("/carousel"), f.h.CreateCarousel,
		map[string]string{"url": "/img/terrace.jpg"}, f.admin)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var img CarouselImageResponse
	decodeData(t, w, &img)
	assert.Equal(t, int64(1), img.Position)

	itemPath := f.contentPath("/carousel/" + strconv.FormatInt(img.ID, 10))
	w = serve(t, http.MethodPut, carouselItem, itemPath, f.h.UpdateCarousel, map[string]int64{"position": 3}, f.admin)
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &img)
	assert.Equal(t, int64(3), img.Position)
	assert.Equal(t, "/img/terrace.jpg", img.URL)

	w = serve(t, http.MethodGet, carouselPattern, f.contentPath("/carousel"), f.h.ListCarousel, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []CarouselImageResponse
	decodeData(t, w, &list)
	assert.Len(t, list, 1)

	w = serve(t, http.MethodDelete, carouselItem, itemPath, f.h.DeleteCarousel, nil, f.admin)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = serve(t, http.MethodDelete, carouselItem, itemPath, f.h.DeleteCarousel, nil, f.admin)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGridCRUD(t *testing.T) {
	f := newAPIFixture(t)

	w := serve(t, http.MethodPost, gridPattern, f.contentPath("/grid"), f.h.CreateGrid,
		map[string]any{"url": "/img/dish.jpg", "height": 2, "width": 1}, f.admin)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var img GridImageResponse
	decodeData(t, w, &img)
	assert.Equal(t, int64(2), img.Height)
	assert.Equal(t, int64(1), img.Width)

	itemPath := f.contentPath("/grid/" + strconv.FormatInt(img.ID, 10))
	w = serve(t, http.MethodPut, gridItem, itemPath, f.h.UpdateGrid, map[string]int64{"width": 2}, f.admin)
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &img)
	assert.Equal(t, int64(2), img.Height)
	assert.Equal(t, int64(2), img.Width)

	w = serve(t, http.MethodPost, gridPattern, f.contentPath("/grid"), f.h.CreateGrid, map[string]any{"height": 1}, f.admin)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = serve(t, http.MethodGet, gridPattern, "/api/content/999/grid", f.h.ListGrid, nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = serve(t, http.MethodDelete, gridItem, itemPath, f.h.DeleteGrid, nil, f.admin)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
