// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"
	"time"
)

// ContentColumns lists the editable text columns of the content table.
var ContentColumns = []string{
	"about_title",
	"about_text",
	"reservation_title",
	"reservation_text",
	"reservation_line_one",
	"reservation_line_two",
	"breakfast_timing_day_one",
	"breakfast_timing_hours_one",
	"breakfast_timing_day_two",
	"breakfast_timing_hours_two",
	"lunch_timing_day_one",
	"lunch_timing_hours_one",
	"lunch_timing_day_two",
	"lunch_timing_hours_two",
	"dinner_timing_day_one",
	"dinner_timing_hours_one",
	"dinner_timing_day_two",
	"dinner_timing_hours_two",
	"phone",
	"email",
	"contact_title",
	"contact_address_one",
	"contact_address_two",
	"contact_opening_day_one",
	"contact_opening_hours_one",
	"contact_opening_day_two",
	"contact_opening_hours_two",
	"contact_opening_day_three",
	"contact_opening_hours_three",
	"map",
}

// IsContentColumn reports whether name is an editable content column.
func IsContentColumn(name string) bool {
	return slices.Contains(ContentColumns, name)
}

var selectContent = "SELECT id, " + strings.Join(ContentColumns, ", ") + ", created_at, updated_at FROM content"

func scanContent(row rowScanner) (Content, error) {
	values := make([]string, len(ContentColumns))
	c := Content{Fields: make(map[string]string, len(ContentColumns))}
	dest := make([]any, 0, len(ContentColumns)+3)
	dest = append(dest, &c.ID)
	for i := range values {
		dest = append(dest, &values[i])
	}
	dest = append(dest, timeColumn{dst: &c.CreatedAt}, timeColumn{dst: &c.UpdatedAt})
	if err := row.Scan(dest...); err != nil {
		return Content{}, err
	}
	for i, col := range ContentColumns {
		c.Fields[col] = values[i]
	}
	return c, nil
}

// sortedContentFields validates the keys of fields and returns them in
// column order.
func sortedContentFields(fields map[string]string) ([]string, error) {
	cols := make([]string, 0, len(fields))
	for name := range fields {
		if !IsContentColumn(name) {
			return nil, fmt.Errorf("unknown content column %q", name)
		}
		cols = append(cols, name)
	}
	slices.SortFunc(cols, func(a, b string) int {
		return slices.Index(ContentColumns, a) - slices.Index(ContentColumns, b)
	})
	return cols, nil
}

// CreateContent inserts a content row. Columns absent from fields take their
// empty default.
func (q *Queries) CreateContent(ctx context.Context, fields map[string]string, now time.Time) (Content, error) {
	cols, err := sortedContentFields(fields)
	if err != nil {
		return Content{}, err
	}
	names := append(slices.Clone(cols), "created_at", "updated_at")
	args := make([]any, 0, len(names))
	for _, col := range cols {
		args = append(args, fields[col])
	}
	ts := FormatTime(now)
	args = append(args, ts, ts)

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(names)), ", ")
	query := "INSERT INTO content (" + strings.Join(names, ", ") + ") VALUES (" + placeholders + ") RETURNING id"

	var id int64
	if err := q.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return Content{}, err
	}
	return q.GetContent(ctx, id)
}

func (q *Queries) GetContent(ctx context.Context, id int64) (Content, error) {
	return scanContent(q.db.QueryRowContext(ctx, selectContent+" WHERE id = ?", id))
}

func (q *Queries) ListContents(ctx context.Context) ([]Content, error) {
	rows, err := q.db.QueryContext(ctx, selectContent+" ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var items []Content
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateContentFields sets the given columns of one content row.
// Returns sql.ErrNoRows when the row does not exist.
func (q *Queries) UpdateContentFields(ctx context.Context, id int64, fields map[string]string, now time.Time) (Content, error) {
	cols, err := sortedContentFields(fields)
	if err != nil {
		return Content{}, err
	}
	sets := make([]string, 0, len(cols)+1)
	args := make([]any, 0, len(cols)+2)
	for _, col := range cols {
		sets = append(sets, col+" = ?")
		args = append(args, fields[col])
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, FormatTime(now), id)

	result, err := q.db.ExecContext(ctx, "UPDATE content SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return Content{}, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return Content{}, err
	}
	if n == 0 {
		return Content{}, sql.ErrNoRows
	}
	return q.GetContent(ctx, id)
}

const contentExists = `-- name: ContentExists :one
SELECT EXISTS(SELECT 1 FROM content WHERE id = ?)`

func (q *Queries) ContentExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := q.db.QueryRowContext(ctx, contentExists, id).Scan(&exists)
	return exists, err
}
