// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReal_ReturnsUTC(t *testing.T) {
	now := Real{}.Now()
	assert.Equal(t, time.UTC, now.Location())
	assert.WithinDuration(t, time.Now(), now, time.Second)
}

func TestManual(t *testing.T) {
	start := time.Date(2025, 7, 24, 15, 0, 0, 0, time.FixedZone("BST", 3600))
	c := NewManual(start)

	assert.True(t, c.Now().Equal(start))
	assert.Equal(t, time.UTC, c.Now().Location())

	got := c.Advance(90 * time.Second)
	assert.True(t, got.Equal(start.Add(90*time.Second)))
	assert.True(t, c.Now().Equal(got))

	c.Set(start.Add(-time.Hour))
	assert.True(t, c.Now().Equal(start.Add(-time.Hour)))
}

func TestParseZone(t *testing.T) {
	tests := []struct {
		in      string
		minutes int
		wantErr bool
	}{
		{in: "+01:00", minutes: 60},
		{in: "-0530", minutes: -330},
		{in: "+02", minutes: 120},
		{in: "Z", minutes: 0},
		{in: "", minutes: 0},
		{in: "Europe/London", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			z, err := ParseZone(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			_, offset := time.Date(2025, 1, 1, 0, 0, 0, 0, z.Location()).Zone()
			assert.Equal(t, tt.minutes*60, offset)
		})
	}
}

func TestZone_ParseLocal(t *testing.T) {
	z := NewZone(60)
	want := time.Date(2025, 7, 24, 16, 30, 0, 0, time.UTC)

	for _, in := range []string{"2025-07-24T17:30", "2025-07-24T17:30:00", "2025-07-24 17:30", " 2025-07-24T17:30:00 "} {
		got, err := z.ParseLocal(in)
		require.NoError(t, err, in)
		assert.True(t, got.Equal(want), "%q parsed to %v", in, got)
		assert.Equal(t, time.UTC, got.Location())
	}

	for _, in := range []string{"", "tomorrow", "2025-07-24", "2025-07-24T17:30:00Z", "2025-13-01T10:00", "24/07/2025 17:30"} {
		_, err := z.ParseLocal(in)
		assert.Error(t, err, in)
	}
}

func TestZone_FormatLocal(t *testing.T) {
	z := NewZone(60)
	assert.Equal(t, "2025-07-24T17:30:00", z.FormatLocal(time.Date(2025, 7, 24, 16, 30, 0, 0, time.UTC)))
	assert.Equal(t, "UTC+01:00", z.String())
	assert.Equal(t, "UTC-05:30", NewZone(-330).String())
}
