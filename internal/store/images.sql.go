// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import "context"

const listCarouselImages = `-- name: ListCarouselImages :many
SELECT id, content_id, url, position FROM carousel WHERE content_id = ? ORDER BY position, id`

func (q *Queries) ListCarouselImages(ctx context.Context, contentID int64) ([]CarouselImage, error) {
	rows, err := q.db.QueryContext(ctx, listCarouselImages, contentID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var items []CarouselImage
	for rows.Next() {
		var i CarouselImage
		if err := rows.Scan(&i.ID, &i.ContentID, &i.URL, &i.Position); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createCarouselImage = `-- name: CreateCarouselImage :one
INSERT INTO carousel (content_id, url, position) VALUES (?, ?, ?)
RETURNING id, content_id, url, position`

type CreateCarouselImageParams struct {
	ContentID int64
	URL       string
	Position  int64
}

func (q *Queries) CreateCarouselImage(ctx context.Context, arg CreateCarouselImageParams) (CarouselImage, error) {
	var i CarouselImage
	err := q.db.QueryRowContext(ctx, createCarouselImage, arg.ContentID, arg.URL, arg.Position).
		Scan(&i.ID, &i.ContentID, &i.URL, &i.Position)
	return i, err
}

const updateCarouselImage = `-- name: UpdateCarouselImage :one
UPDATE carousel SET url = ?, position = ? WHERE id = ? AND content_id = ?
RETURNING id, content_id, url, position`

type UpdateCarouselImageParams struct {
	ID        int64
	ContentID int64
	URL       string
	Position  int64
}

func (q *Queries) UpdateCarouselImage(ctx context.Context, arg UpdateCarouselImageParams) (CarouselImage, error) {
	var i CarouselImage
	err := q.db.QueryRowContext(ctx, updateCarouselImage, arg.URL, arg.Position, arg.ID, arg.ContentID).
		Scan(&i.ID, &i.ContentID, &i.URL, &i.Position)
	return i, err
}

const getCarouselImage = `-- name: GetCarouselImage :one
SELECT id, content_id, url, position FROM carousel WHERE id = ? AND content_id = ?`

func (q *Queries) GetCarouselImage(ctx context.Context, contentID, id int64) (CarouselImage, error) {
	var i CarouselImage
	err := q.db.QueryRowContext(ctx, getCarouselImage, id, contentID).
		Scan(&i.ID, &i.ContentID, &i.URL, &i.Position)
	return i, err
}

const deleteCarouselImage = `-- name: DeleteCarouselImage :execrows
DELETE FROM carousel WHERE id = ? AND content_id = ?`

func (q *Queries) DeleteCarouselImage(ctx context.Context, contentID, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteCarouselImage, id, contentID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const gridColumns = `id, content_id, url, position, height, width`

const listGridImages = `-- name: ListGridImages :many
SELECT ` + gridColumns + ` FROM grid WHERE content_id = ? ORDER BY position, id`

func scanGridImage(row rowScanner) (GridImage, error) {
	var i GridImage
	err := row.Scan(&i.ID, &i.ContentID, &i.URL, &i.Position, &i.Height, &i.Width)
	return i, err
}

func (q *Queries) ListGridImages(ctx context.Context, contentID int64) ([]GridImage, error) {
	rows, err := q.db.QueryContext(ctx, listGridImages, contentID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var items []GridImage
	for rows.Next() {
		i, err := scanGridImage(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createGridImage = `-- name: CreateGridImage :one
INSERT INTO grid (content_id, url, position, height, width) VALUES (?, ?, ?, ?, ?)
RETURNING ` + gridColumns

type CreateGridImageParams struct {
	ContentID int64
	URL       string
	Position  int64
	Height    int64
	Width     int64
}

func (q *Queries) CreateGridImage(ctx context.Context, arg CreateGridImageParams) (GridImage, error) {
	return scanGridImage(q.db.QueryRowContext(ctx, createGridImage,
		arg.ContentID, arg.URL, arg.Position, arg.Height, arg.Width))
}

const getGridImage = `-- name: GetGridImage :one
SELECT ` + gridColumns + ` FROM grid WHERE id = ? AND content_id = ?`

func (q *Queries) GetGridImage(ctx context.Context, contentID, id int64) (GridImage, error) {
	return scanGridImage(q.db.QueryRowContext(ctx, getGridImage, id, contentID))
}

const updateGridImage = `-- name: UpdateGridImage :one
UPDATE grid SET url = ?, position = ?, height = ?, width = ? WHERE id = ? AND content_id = ?
RETURNING ` + gridColumns

type UpdateGridImageParams struct {
	ID        int64
	ContentID int64
	URL       string
	Position  int64
	Height    int64
	Width     int64
}

func (q *Queries) UpdateGridImage(ctx context.Context, arg UpdateGridImageParams) (GridImage, error) {
	return scanGridImage(q.db.QueryRowContext(ctx, updateGridImage,
		arg.URL, arg.Position, arg.Height, arg.Width, arg.ID, arg.ContentID))
}

const deleteGridImage = `-- name: DeleteGridImage :execrows
DELETE FROM grid WHERE id = ? AND content_id = ?`

func (q *Queries) DeleteGridImage(ctx context.Context, contentID, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteGridImage, id, contentID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
