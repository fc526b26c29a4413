// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"database/sql"
	"time"
)

// Menu is a row of the menus table.
type Menu struct {
	ID          int64
	ContentID   int64
	Type        string
	Text        string
	URL         string
	PendingText sql.NullString
	PendingURL  sql.NullString
	ScheduledAt sql.NullTime
	Applied     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Content is a row of the content table. Section columns are held by name
// in Fields; see ContentColumns.
type Content struct {
	ID        int64
	Fields    map[string]string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CarouselImage is a row of the carousel table.
type CarouselImage struct {
	ID        int64
	ContentID int64
	URL       string
	Position  int64
}

// GridImage is a row of the grid table.
type GridImage struct {
	ID        int64
	ContentID int64
	URL       string
	Position  int64
	Height    int64
	Width     int64
}

// User is a row of the users table.
type User struct {
	ID           int64
	Firstname    string
	Lastname     string
	Username     string
	Email        string
	PasswordHash string
	Image        string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Event is a row of the events table.
type Event struct {
	ID        int64
	Level     string
	Category  string
	Message   string
	Metadata  string
	CreatedAt time.Time
}
