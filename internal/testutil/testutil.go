// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package testutil provides shared test helpers.
package testutil

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/chezflo/chezflo-api/internal/store"

	_ "github.com/mattn/go-sqlite3"
)

// TestLogger creates a test logger that only outputs warnings and errors.
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// TestLoggerSilent creates a test logger that only outputs errors.
func TestLoggerSilent() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// TestDB creates a temporary file database with all migrations applied.
// The database is closed when the test finishes.
func TestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := store.NewDB(filepath.Join(t.TempDir(), "chezflo-test.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := store.Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

// TestMemoryDB creates an in-memory SQLite database for testing using the
// cgo driver. The pool is limited to one connection because every
// connection to ":memory:" opens a separate database.
func TestMemoryDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// CreateContent inserts a content unit and returns its id.
func CreateContent(t *testing.T, db *sql.DB) int64 {
	t.Helper()

	c, err := store.New(db).CreateContent(context.Background(), map[string]string{
		"about_title": "Chez Flo",
		"about_text":  "A small **bistro**.",
	}, time.Now())
	if err != nil {
		t.Fatalf("CreateContent: %v", err)
	}
	return c.ID
}

// CreateMenu inserts a published menu under contentID.
func CreateMenu(t *testing.T, db *sql.DB, contentID int64, menuType, text, url string) store.Menu {
	t.Helper()

	now := time.Now()
	m, err := store.New(db).CreateMenu(context.Background(), store.CreateMenuParams{
		ContentID: contentID,
		Type:      menuType,
		Text:      text,
		URL:       url,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateMenu: %v", err)
	}
	return m
}

// CreateUser inserts a user with the given role. The password hash is a
// placeholder; use the auth package when a login is needed.
func CreateUser(t *testing.T, db *sql.DB, username, role string) store.User {
	t.Helper()

	now := time.Now()
	u, err := store.New(db).CreateUser(context.Background(), store.CreateUserParams{
		Firstname:    "Test",
		Lastname:     "User",
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "placeholder",
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return u
}
