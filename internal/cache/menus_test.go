// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chezflo/chezflo-api/internal/store"
)

func TestMenuCache_LoadsOnceAndInvalidates(t *testing.T) {
	mc := NewMenuCache(newTestMemory(t), time.Minute)
	ctx := context.Background()

	at := time.Date(2025, 7, 24, 15, 30, 0, 0, time.UTC)
	menus := []store.Menu{{
		ID:          1,
		ContentID:   7,
		Type:        "lunch",
		Text:        "Lunch",
		URL:         "/lunch.pdf",
		PendingURL:  sql.NullString{String: "/lunch-v2.pdf", Valid: true},
		ScheduledAt: sql.NullTime{Time: at, Valid: true},
	}}

	loads := 0
	load := func() ([]store.Menu, error) {
		loads++
		return menus, nil
	}

	got, err := mc.Get(ctx, 7, load)
	require.NoError(t, err)
	require.Len(t, got, 1)

	got, err = mc.Get(ctx, 7, load)
	require.NoError(t, err)
	assert.Equal(t, 1, loads)
	assert.Equal(t, "/lunch-v2.pdf", got[0].PendingURL.String)
	assert.True(t, got[0].ScheduledAt.Time.Equal(at))

	require.NoError(t, mc.Invalidate(ctx, 7))
	_, err = mc.Get(ctx, 7, load)
	require.NoError(t, err)
	assert.Equal(t, 2, loads)

	require.NoError(t, mc.InvalidateAll(ctx))
	_, err = mc.Get(ctx, 7, load)
	require.NoError(t, err)
	assert.Equal(t, 3, loads)
}

func TestMenuCache_SkipsStoreWhenInvalidatedDuringLoad(t *testing.T) {
	mc := NewMenuCache(newTestMemory(t), time.Minute)
	ctx := context.Background()

	current := "Lunch"
	loads := 0
	load := func() ([]store.Menu, error) {
		loads++
		rows := []store.Menu{{ID: 1, ContentID: 7, Type: "lunch", Text: current}}
		if loads == 1 {
			// A write lands after the rows were read.
			current = "New lunch"
			require.NoError(t, mc.Invalidate(ctx, 7))
		}
		return rows, nil
	}

	got, err := mc.Get(ctx, 7, load)
	require.NoError(t, err)
	assert.Equal(t, "Lunch", got[0].Text)

	got, err = mc.Get(ctx, 7, load)
	require.NoError(t, err)
	assert.Equal(t, "New lunch", got[0].Text)
	assert.Equal(t, 2, loads)

	got, err = mc.Get(ctx, 7, load)
	require.NoError(t, err)
	assert.Equal(t, "New lunch", got[0].Text)
	assert.Equal(t, 2, loads)
}

func TestMenuCache_FailedLoadNotCached(t *testing.T) {
	mc := NewMenuCache(newTestMemory(t), time.Minute)
	ctx := context.Background()

	boom := errors.New("boom")
	_, err := mc.Get(ctx, 7, func() ([]store.Menu, error) { return nil, boom })
	require.ErrorIs(t, err, boom)

	_, found := mc.typed.Get(ctx, MenusKey(7))
	assert.False(t, found)
}

func TestMenusKey(t *testing.T) {
	assert.Equal(t, "menus:42", MenusKey(42))
}
