// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package geoip

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolverWithoutDatabase(t *testing.T) {
	r, err := Open("")
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	assert.False(t, r.Enabled())
	assert.ErrorIs(t, r.Reload(), ErrDisabled)

	tests := []struct {
		ip   string
		want string
	}{
		{"127.0.0.1", Local},
		{"10.1.2.3", Local},
		{"192.168.0.10", Local},
		{"::1", Local},
		{"fe80::1", Local},
		{"8.8.8.8", ""},
		{"not-an-ip", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, r.Country(tt.ip), tt.ip)
	}
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.mmdb"))
	assert.Error(t, err)
}

func TestOpenInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.mmdb")
	require.NoError(t, os.WriteFile(path, []byte("not a maxmind database"), 0o600))

	_, err := Open(path)
	assert.Error(t, err)
}
