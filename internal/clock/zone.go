// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package clock

import (
	"fmt"
	"strings"
	"time"
)

// ExpectedFormat describes the accepted schedule timestamp forms.
const ExpectedFormat = "2025-07-24T17:30:00 or 2025-07-24T17:30"

// BusinessLayout is how business-local timestamps are rendered in responses.
const BusinessLayout = "2006-01-02T15:04:05"

var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// Zone is the restaurant's business time zone, a fixed UTC offset.
type Zone struct {
	loc *time.Location
}

// NewZone returns a Zone for the given offset in minutes east of UTC.
func NewZone(offsetMinutes int) Zone {
	return Zone{loc: time.FixedZone(offsetName(offsetMinutes), offsetMinutes*60)}
}

// ParseZone parses an offset such as "+01:00", "-0530" or "Z".
func ParseZone(s string) (Zone, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "Z" || s == "UTC" {
		return NewZone(0), nil
	}
	for _, layout := range []string{"-07:00", "-0700", "-07"} {
		t, err := time.Parse(layout, s)
		if err == nil {
			_, offset := t.Zone()
			return NewZone(offset / 60), nil
		}
	}
	return Zone{}, fmt.Errorf("invalid UTC offset %q: want a form like +01:00", s)
}

func offsetName(minutes int) string {
	sign := '+'
	if minutes < 0 {
		sign = '-'
		minutes = -minutes
	}
	return fmt.Sprintf("UTC%c%02d:%02d", sign, minutes/60, minutes%60)
}

// Location returns the zone as a *time.Location.
func (z Zone) Location() *time.Location {
	if z.loc == nil {
		return time.UTC
	}
	return z.loc
}

// String returns the zone name, for example "UTC+01:00".
func (z Zone) String() string {
	return z.Location().String()
}

// ParseLocal parses a naive "YYYY-MM-DDTHH:MM[:SS]" wall time in the zone
// and returns the instant in UTC. A missing seconds part means :00.
func (z Zone) ParseLocal(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range naiveLayouts {
		if len(s) != len(layout) {
			continue
		}
		t, err := time.ParseInLocation(layout, s, z.Location())
		if err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("parsing %q: expected %s", s, ExpectedFormat)
}

// FormatLocal renders t as a naive wall time in the zone.
func (z Zone) FormatLocal(t time.Time) string {
	return t.In(z.Location()).Format(BusinessLayout)
}

// In converts t to the zone.
func (z Zone) In(t time.Time) time.Time {
	return t.In(z.Location())
}
