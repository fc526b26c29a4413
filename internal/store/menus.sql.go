// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const menuColumns = `id, content_id, type, text, url, pending_text, pending_url, scheduled_at, applied, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMenu(row rowScanner) (Menu, error) {
	var m Menu
	err := row.Scan(
		&m.ID,
		&m.ContentID,
		&m.Type,
		&m.Text,
		&m.URL,
		&m.PendingText,
		&m.PendingURL,
		nullTimeColumn{dst: &m.ScheduledAt},
		&m.Applied,
		timeColumn{dst: &m.CreatedAt},
		timeColumn{dst: &m.UpdatedAt},
	)
	return m, err
}

func (q *Queries) queryMenus(ctx context.Context, query string, args ...any) ([]Menu, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var items []Menu
	for rows.Next() {
		m, err := scanMenu(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createMenu = `-- name: CreateMenu :one
INSERT INTO menus (content_id, type, text, url, applied, created_at, updated_at)
VALUES (?, ?, ?, ?, 1, ?, ?)
RETURNING ` + menuColumns

type CreateMenuParams struct {
	ContentID int64
	Type      string
	Text      string
	URL       string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (q *Queries) CreateMenu(ctx context.Context, arg CreateMenuParams) (Menu, error) {
	row := q.db.QueryRowContext(ctx, createMenu,
		arg.ContentID,
		arg.Type,
		arg.Text,
		arg.URL,
		FormatTime(arg.CreatedAt),
		FormatTime(arg.UpdatedAt),
	)
	return scanMenu(row)
}

const getMenuByType = `-- name: GetMenuByType :one
SELECT ` + menuColumns + ` FROM menus WHERE content_id = ? AND type = ?`

func (q *Queries) GetMenuByType(ctx context.Context, contentID int64, menuType string) (Menu, error) {
	return scanMenu(q.db.QueryRowContext(ctx, getMenuByType, contentID, menuType))
}

const getMenuByID = `-- name: GetMenuByID :one
SELECT ` + menuColumns + ` FROM menus WHERE id = ?`

func (q *Queries) GetMenuByID(ctx context.Context, id int64) (Menu, error) {
	return scanMenu(q.db.QueryRowContext(ctx, getMenuByID, id))
}

const listMenusByContent = `-- name: ListMenusByContent :many
SELECT ` + menuColumns + ` FROM menus WHERE content_id = ? ORDER BY id`

func (q *Queries) ListMenusByContent(ctx context.Context, contentID int64) ([]Menu, error) {
	return q.queryMenus(ctx, listMenusByContent, contentID)
}

const scheduleMenuUpdate = `-- name: ScheduleMenuUpdate :one
UPDATE menus
SET pending_text = ?, pending_url = ?, scheduled_at = ?, applied = 0, updated_at = ?
WHERE id = ?
RETURNING ` + menuColumns

type ScheduleMenuUpdateParams struct {
	ID          int64
	PendingText sql.NullString
	PendingURL  sql.NullString
	ScheduledAt time.Time
	UpdatedAt   time.Time
}

// ScheduleMenuUpdate stores a pending change. All four pending fields are
// replaced together, so rescheduling overwrites any earlier pending change.
func (q *Queries) ScheduleMenuUpdate(ctx context.Context, arg ScheduleMenuUpdateParams) (Menu, error) {
	row := q.db.QueryRowContext(ctx, scheduleMenuUpdate,
		arg.PendingText,
		arg.PendingURL,
		FormatTime(arg.ScheduledAt),
		FormatTime(arg.UpdatedAt),
		arg.ID,
	)
	return scanMenu(row)
}

const publishMenu = `-- name: PublishMenu :one
UPDATE menus
SET text = ?, url = ?, pending_text = NULL, pending_url = NULL, scheduled_at = NULL, applied = 1, updated_at = ?
WHERE id = ?
RETURNING ` + menuColumns

type PublishMenuParams struct {
	ID        int64
	Text      string
	URL       string
	UpdatedAt time.Time
}

// PublishMenu sets the published fields and discards any pending change.
func (q *Queries) PublishMenu(ctx context.Context, arg PublishMenuParams) (Menu, error) {
	row := q.db.QueryRowContext(ctx, publishMenu,
		arg.Text,
		arg.URL,
		FormatTime(arg.UpdatedAt),
		arg.ID,
	)
	return scanMenu(row)
}

const listDueMenus = `-- name: ListDueMenus :many
SELECT ` + menuColumns + ` FROM menus
WHERE scheduled_at IS NOT NULL AND applied = 0 AND scheduled_at <= ?
ORDER BY id`

// ListDueMenus returns pending menus whose scheduled time is at or before now.
func (q *Queries) ListDueMenus(ctx context.Context, now time.Time) ([]Menu, error) {
	return q.queryMenus(ctx, listDueMenus, FormatTime(now))
}

const listDueMenusByContent = `-- name: ListDueMenusByContent :many
SELECT ` + menuColumns + ` FROM menus
WHERE content_id = ? AND scheduled_at IS NOT NULL AND applied = 0 AND scheduled_at <= ?
ORDER BY id`

func (q *Queries) ListDueMenusByContent(ctx context.Context, contentID int64, now time.Time) ([]Menu, error) {
	return q.queryMenus(ctx, listDueMenusByContent, contentID, FormatTime(now))
}

const applyPendingMenu = `-- name: ApplyPendingMenu :execrows
UPDATE menus
SET text = COALESCE(pending_text, text),
    url = COALESCE(pending_url, url),
    pending_text = NULL,
    pending_url = NULL,
    scheduled_at = NULL,
    applied = 1,
    updated_at = ?
WHERE id = ? AND applied = 0`

// ApplyPendingMenu copies non-null pending fields into the published fields
// and marks the row applied. It affects no rows when the row is already
// applied.
func (q *Queries) ApplyPendingMenu(ctx context.Context, id int64, updatedAt time.Time) (int64, error) {
	result, err := q.db.ExecContext(ctx, applyPendingMenu, FormatTime(updatedAt), id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listScheduledMenus = `-- name: ListScheduledMenus :many
SELECT ` + menuColumns + ` FROM menus
WHERE content_id = ? AND scheduled_at IS NOT NULL AND applied = 0
ORDER BY scheduled_at, id`

func (q *Queries) ListScheduledMenus(ctx context.Context, contentID int64) ([]Menu, error) {
	return q.queryMenus(ctx, listScheduledMenus, contentID)
}

const deleteMenu = `-- name: DeleteMenu :execrows
DELETE FROM menus WHERE content_id = ? AND type = ?`

func (q *Queries) DeleteMenu(ctx context.Context, contentID int64, menuType string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteMenu, contentID, menuType)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
