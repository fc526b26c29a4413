// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"database/sql"
	"fmt"
	"time"
)

// TimeLayout is the persisted timestamp format. It is fixed-width UTC so
// lexical comparison in SQL is chronological.
const TimeLayout = "2006-01-02T15:04:05.000000000Z"

// FormatTime renders t in the persisted format.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime parses a persisted timestamp.
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		// Rows written by hand may carry any RFC 3339 form.
		t, err = time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
		}
	}
	return t.UTC(), nil
}

// timeColumn scans a TEXT timestamp column into a time.Time.
type timeColumn struct {
	dst *time.Time
}

func (c timeColumn) Scan(src any) error {
	var nt sql.NullTime
	if err := (nullTimeColumn{dst: &nt}).Scan(src); err != nil {
		return err
	}
	if !nt.Valid {
		return fmt.Errorf("scanning timestamp: unexpected NULL")
	}
	*c.dst = nt.Time
	return nil
}

// nullTimeColumn scans a nullable TEXT timestamp column.
type nullTimeColumn struct {
	dst *sql.NullTime
}

func (c nullTimeColumn) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*c.dst = sql.NullTime{}
		return nil
	case time.Time:
		*c.dst = sql.NullTime{Time: v.UTC(), Valid: true}
		return nil
	case string:
		t, err := ParseTime(v)
		if err != nil {
			return err
		}
		*c.dst = sql.NullTime{Time: t, Valid: true}
		return nil
	case []byte:
		t, err := ParseTime(string(v))
		if err != nil {
			return err
		}
		*c.dst = sql.NullTime{Time: t, Valid: true}
		return nil
	default:
		return fmt.Errorf("scanning timestamp: unsupported type %T", src)
	}
}
