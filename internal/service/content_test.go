// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chezflo/chezflo-api/internal/clock"
	"github.com/chezflo/chezflo-api/internal/testutil"
)

func newContentService(t *testing.T) (*ContentService, int64) {
	t.Helper()
	db := testutil.TestDB(t)
	contentID := testutil.CreateContent(t, db)
	return NewContentService(db, clock.NewManual(testStart), testutil.TestLoggerSilent()), contentID
}

func TestRenderMarkdown(t *testing.T) {
	html, err := RenderMarkdown("A small **bistro**.\n\n<script>alert(1)</script>")
	require.NoError(t, err)
	assert.Contains(t, html, "<strong>bistro</strong>")
	assert.NotContains(t, html, "<script>")
}

func TestGetSection(t *testing.T) {
	svc, contentID := newContentService(t)
	ctx := context.Background()

	about, err := svc.GetSection(ctx, contentID, SectionAbout)
	require.NoError(t, err)
	assert.Equal(t, "Chez Flo", about.Fields["about_title"])
	assert.Len(t, about.Fields, 2)
	assert.Contains(t, about.HTML, "<strong>bistro</strong>")

	hours, err := svc.GetSection(ctx, contentID, SectionOpeningHours)
	require.NoError(t, err)
	assert.Len(t, hours.Fields, 12)
	assert.Empty(t, hours.HTML)

	_, err = svc.GetSection(ctx, contentID, "menu")
	assert.ErrorIs(t, err, ErrSectionNotFound)

	_, err = svc.GetSection(ctx, contentID+100, SectionAbout)
	assert.ErrorIs(t, err, ErrContentNotFound)
}

func TestUpdateSection(t *testing.T) {
	svc, contentID := newContentService(t)
	ctx := context.Background()

	sec, err := svc.UpdateSection(ctx, contentID, SectionContact, map[string]string{
		"phone":               "+33 1 23 45 67 89",
		"contact_address_one": "1 rue de la Paix",
	})
	require.NoError(t, err)
	assert.Equal(t, "+33 1 23 45 67 89", sec.Fields["phone"])

	// phone is shared with the reservation section
	res, err := svc.GetSection(ctx, contentID, SectionReservation)
	require.NoError(t, err)
	assert.Equal(t, "+33 1 23 45 67 89", res.Fields["phone"])

	_, err = svc.UpdateSection(ctx, contentID, SectionAbout, map[string]string{"phone": "x"})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "unknown field", vErr.Fields["phone"])

	_, err = svc.UpdateSection(ctx, contentID, SectionAbout, nil)
	require.ErrorAs(t, err, &vErr)

	_, err = svc.UpdateSection(ctx, contentID+100, SectionAbout, map[string]string{"about_title": "x"})
	assert.ErrorIs(t, err, ErrContentNotFound)

	_, err = svc.UpdateSection(ctx, contentID, "kitchen", map[string]string{"about_title": "x"})
	assert.ErrorIs(t, err, ErrSectionNotFound)
}

func TestCreateContent(t *testing.T) {
	svc, _ := newContentService(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, map[string]string{"about_title": "Second site"})
	require.NoError(t, err)
	assert.Equal(t, "Second site", c.Fields["about_title"])

	_, err = svc.Create(ctx, map[string]string{"id": "5"})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func i64(v int64) *int64 { return &v }

func TestCarousel(t *testing.T) {
	svc, contentID := newContentService(t)
	ctx := context.Background()

	first, err := svc.AddCarousel(ctx, contentID, ImageInput{URL: ptr("/img/a.jpg")})
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Position)

	second, err := svc.AddCarousel(ctx, contentID, ImageInput{URL: ptr("/img/b.jpg")})
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.Position)

	_, err = svc.UpdateCarousel(ctx, contentID, second.ID, ImageInput{Position: i64(0)})
	require.NoError(t, err)

	items, err := svc.ListCarousel(ctx, contentID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "/img/b.jpg", items[0].URL)

	require.NoError(t, svc.DeleteCarousel(ctx, contentID, first.ID))
	assert.ErrorIs(t, svc.DeleteCarousel(ctx, contentID, first.ID), ErrImageNotFound)

	_, err = svc.UpdateCarousel(ctx, contentID, first.ID, ImageInput{URL: ptr("/x")})
	assert.ErrorIs(t, err, ErrImageNotFound)

	_, err = svc.AddCarousel(ctx, contentID, ImageInput{})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)

	_, err = svc.ListCarousel(ctx, contentID+100)
	assert.ErrorIs(t, err, ErrContentNotFound)
}

func TestGrid(t *testing.T) {
	svc, contentID := newContentService(t)
	ctx := context.Background()

	img, err := svc.AddGrid(ctx, contentID, ImageInput{URL: ptr("/img/g.jpg"), Height: i64(2), Width: i64(1)})
	require.NoError(t, err)
	assert.Equal(t, int64(2), img.Height)

	img, err = svc.UpdateGrid(ctx, contentID, img.ID, ImageInput{Width: i64(3)})
	require.NoError(t, err)
	assert.Equal(t, int64(2), img.Height)
	assert.Equal(t, int64(3), img.Width)
	assert.Equal(t, "/img/g.jpg", img.URL)

	_, err = svc.AddGrid(ctx, contentID, ImageInput{URL: ptr("/x"), Height: i64(-1)})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "height")

	items, err := svc.ListGrid(ctx, contentID)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	require.NoError(t, svc.DeleteGrid(ctx, contentID, img.ID))
	assert.ErrorIs(t, svc.DeleteGrid(ctx, contentID, img.ID), ErrImageNotFound)
}
