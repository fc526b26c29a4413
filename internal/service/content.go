// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"maps"
	"slices"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"

	"github.com/chezflo/chezflo-api/internal/clock"
	"github.com/chezflo/chezflo-api/internal/store"
)

// Content section names.
const (
	SectionAbout        = "about"
	SectionReservation  = "reservation"
	SectionContact      = "contact"
	SectionOpeningHours = "opening_hours"
)

var timingFields = []string{
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
}

// sectionFields maps each section to the content columns it exposes.
var sectionFields = map[string][]string{
	SectionAbout: {"about_title", "about_text"},
	SectionReservation: append([]string{
		"reservation_title",
		"reservation_text",
		"reservation_line_one",
		"reservation_line_two",
		"phone",
		"email",
	}, timingFields...),
	SectionContact: {
		"contact_title",
		"contact_address_one",
		"contact_address_two",
		"contact_opening_day_one",
		"contact_opening_hours_one",
		"contact_opening_day_two",
		"contact_opening_hours_two",
		"contact_opening_day_three",
		"contact_opening_hours_three",
		"phone",
		"email",
		"map",
	},
	SectionOpeningHours: timingFields,
}

// Sections returns the known section names, sorted.
func Sections() []string {
	return slices.Sorted(maps.Keys(sectionFields))
}

// IsSection reports whether name is a known content section.
func IsSection(name string) bool {
	_, ok := sectionFields[name]
	return ok
}

// htmlSanitizer allows the tags goldmark emits for user text.
var htmlSanitizer = bluemonday.UGCPolicy()

// RenderMarkdown converts Markdown to sanitized HTML.
func RenderMarkdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return htmlSanitizer.Sanitize(buf.String()), nil
}

// ContentService manages content units, their text sections and images.
type ContentService struct {
	db      *sql.DB
	queries *store.Queries
	clock   clock.Clock
	logger  *slog.Logger
}

// NewContentService creates a new ContentService.
func NewContentService(db *sql.DB, clk clock.Clock, logger *slog.Logger) *ContentService {
	if clk == nil {
		clk = clock.Real{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ContentService{
		db:      db,
		queries: store.New(db),
		clock:   clk,
		logger:  logger,
	}
}

// List returns every content unit.
func (s *ContentService) List(ctx context.Context) ([]store.Content, error) {
	contents, err := s.queries.ListContents(ctx)
	if err != nil {
		return nil, storageError("listing content", err)
	}
	return contents, nil
}

// Get returns one content unit.
func (s *ContentService) Get(ctx context.Context, id int64) (store.Content, error) {
	c, err := s.queries.GetContent(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Content{}, ErrContentNotFound
	}
	if err != nil {
		return store.Content{}, storageError("loading content", err)
	}
	return c, nil
}

// Create adds a content unit. Unknown field names are rejected.
func (s *ContentService) Create(ctx context.Context, fields map[string]string) (store.Content, error) {
	if err := checkFields(fields, store.IsContentColumn); err != nil {
		return store.Content{}, err
	}
	c, err := s.queries.CreateContent(ctx, fields, s.clock.Now())
	if err != nil {
		return store.Content{}, storageError("creating content", err)
	}
	s.logger.Info("content created", "content_id", c.ID)
	return c, nil
}

// Section is the text of one content section. HTML holds the rendered
// about text and is empty for other sections.
type Section struct {
	ContentID int64
	Name      string
	Fields    map[string]string
	HTML      string
}

// GetSection returns the fields of one section.
func (s *ContentService) GetSection(ctx context.Context, contentID int64, section string) (*Section, error) {
	if !IsSection(section) {
		return nil, ErrSectionNotFound
	}
	c, err := s.Get(ctx, contentID)
	if err != nil {
		return nil, err
	}
	return s.section(c, section)
}

// UpdateSection sets some fields of one section. Fields that belong to
// another section are rejected.
func (s *ContentService) UpdateSection(ctx context.Context, contentID int64, section string, fields map[string]string) (*Section, error) {
	allowed, ok := sectionFields[section]
	if !ok {
		return nil, ErrSectionNotFound
	}
	if len(fields) == 0 {
		return nil, newValidationError("no fields to update", nil)
	}
	if err := checkFields(fields, func(name string) bool { return slices.Contains(allowed, name) }); err != nil {
		return nil, err
	}

	c, err := s.queries.UpdateContentFields(ctx, contentID, fields, s.clock.Now())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrContentNotFound
	}
	if err != nil {
		return nil, storageError("updating content", err)
	}

	s.logger.Info("content section updated", "content_id", contentID, "section", section)
	return s.section(c, section)
}

func (s *ContentService) section(c store.Content, name string) (*Section, error) {
	out := &Section{
		ContentID: c.ID,
		Name:      name,
		Fields:    make(map[string]string, len(sectionFields[name])),
	}
	for _, f := range sectionFields[name] {
		out.Fields[f] = c.Fields[f]
	}
	if name == SectionAbout {
		html, err := RenderMarkdown(c.Fields["about_text"])
		if err != nil {
			return nil, err
		}
		out.HTML = html
	}
	return out, nil
}

func checkFields(fields map[string]string, allowed func(string) bool) error {
	bad := map[string]string{}
	for name := range fields {
		if !allowed(name) {
			bad[name] = "unknown field"
		}
	}
	if len(bad) > 0 {
		return newValidationError("invalid content fields", bad)
	}
	return nil
}
