// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/chezflo/chezflo-api/internal/cache"
	"github.com/chezflo/chezflo-api/internal/clock"
	"github.com/chezflo/chezflo-api/internal/model"
	"github.com/chezflo/chezflo-api/internal/store"
	"github.com/chezflo/chezflo-api/internal/util"
)

// ScheduleBuffer is the minimum distance between now and an accepted
// scheduled time.
const ScheduleBuffer = 30 * time.Second

// MenuService owns every write to menu records: immediate updates,
// scheduling and the application of due updates.
type MenuService struct {
	db        *sql.DB
	queries   *store.Queries
	clock     clock.Clock
	zone      clock.Zone
	menuCache *cache.MenuCache
	events    *EventService
	logger    *slog.Logger
}

// MenuServiceConfig holds the collaborators of a MenuService. MenuCache and
// Events are optional.
type MenuServiceConfig struct {
	Clock     clock.Clock
	Zone      clock.Zone
	MenuCache *cache.MenuCache
	Events    *EventService
	Logger    *slog.Logger
}

// NewMenuService creates a new MenuService.
func NewMenuService(db *sql.DB, cfg MenuServiceConfig) *MenuService {
	clk := cfg.Clock
	if clk == nil {
		clk = clock.Real{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &MenuService{
		db:        db,
		queries:   store.New(db),
		clock:     clk,
		zone:      cfg.Zone,
		menuCache: cfg.MenuCache,
		events:    cfg.Events,
		logger:    logger,
	}
}

// Zone returns the business zone used to interpret schedule requests.
func (s *MenuService) Zone() clock.Zone {
	return s.zone
}

// Now returns the current instant in UTC.
func (s *MenuService) Now() time.Time {
	return s.clock.Now().UTC()
}

// UpdateMenuInput is a request to change one menu. A nil Text or URL leaves
// that field untouched. A non-empty ScheduledAt defers the change.
type UpdateMenuInput struct {
	ContentID   int64
	Type        string
	Text        *string
	URL         *string
	ScheduledAt *string
}

// UpdateResult describes an accepted update. For scheduled updates the
// three timestamps are set, in UTC.
type UpdateResult struct {
	Menu         store.Menu
	Scheduled    bool
	ScheduledFor time.Time
	Now          time.Time
	Minimum      time.Time
}

// Update applies a change immediately or records it as pending.
//
// The menu is resolved before the schedule is checked, so an unknown menu
// is reported as such whatever its timestamp. Scheduling replaces any
// earlier pending change. An immediate update cancels it.
func (s *MenuService) Update(ctx context.Context, in UpdateMenuInput) (*UpdateResult, error) {
	scheduled := in.ScheduledAt != nil && strings.TrimSpace(*in.ScheduledAt) != ""
	if in.Text == nil && in.URL == nil && !scheduled {
		return nil, ErrEmptyUpdate
	}
	if err := validateMenuFields(in.Text, in.URL); err != nil {
		return nil, err
	}

	now := s.Now()

	result := &UpdateResult{Now: now}
	err := store.InTx(ctx, s.db, func(q *store.Queries, _ *sql.Tx) error {
		menu, err := s.loadMenu(ctx, q, in.ContentID, in.Type)
		if err != nil {
			return err
		}
		if scheduled {
			return s.schedule(ctx, q, menu, in, result)
		}

		text, url := menu.Text, menu.URL
		if in.Text != nil {
			text = *in.Text
		}
		if in.URL != nil {
			url = *in.URL
		}
		result.Menu, err = q.PublishMenu(ctx, store.PublishMenuParams{
			ID:        menu.ID,
			Text:      text,
			URL:       url,
			UpdatedAt: now,
		})
		if err != nil {
			return storageError("publishing menu", err)
		}
		return nil
	})
	if err != nil {
		return nil, txError("updating menu", err)
	}

	s.invalidate(ctx, in.ContentID)
	if result.Scheduled {
		s.logger.Info("menu update scheduled",
			"content_id", in.ContentID,
			"type", in.Type,
			"scheduled_for", result.ScheduledFor.Format(time.RFC3339),
		)
	} else {
		s.logger.Info("menu updated", "content_id", in.ContentID, "type", in.Type)
	}
	return result, nil
}

// schedule checks the requested time against result.Now and records the
// pending change on menu.
func (s *MenuService) schedule(ctx context.Context, q *store.Queries, menu store.Menu, in UpdateMenuInput, result *UpdateResult) error {
	raw := strings.TrimSpace(*in.ScheduledAt)
	scheduledFor, err := s.zone.ParseLocal(raw)
	if err != nil {
		return &InvalidScheduleFormatError{
			Received: *in.ScheduledAt,
			Expected: clock.ExpectedFormat,
			Err:      err,
		}
	}

	minimum := result.Now.Add(ScheduleBuffer)
	if !scheduledFor.After(minimum) {
		return &ScheduleTooSoonError{
			ScheduledFor: scheduledFor,
			Now:          result.Now,
			Minimum:      minimum,
		}
	}

	result.Menu, err = q.ScheduleMenuUpdate(ctx, store.ScheduleMenuUpdateParams{
		ID:          menu.ID,
		PendingText: util.NullStringFromPtr(in.Text),
		PendingURL:  util.NullStringFromPtr(in.URL),
		ScheduledAt: scheduledFor,
		UpdatedAt:   result.Now,
	})
	if err != nil {
		return storageError("scheduling menu update", err)
	}
	result.Scheduled = true
	result.ScheduledFor = scheduledFor
	result.Minimum = minimum
	return nil
}

// loadMenu distinguishes a missing content unit from a missing menu. Types
// that are not slugs cannot exist and skip the menu lookup.
func (s *MenuService) loadMenu(ctx context.Context, q *store.Queries, contentID int64, menuType string) (store.Menu, error) {
	if util.IsValidSlug(menuType) {
		menu, err := q.GetMenuByType(ctx, contentID, menuType)
		if err == nil {
			return menu, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return store.Menu{}, storageError("loading menu", err)
		}
	}
	exists, err := q.ContentExists(ctx, contentID)
	if err != nil {
		return store.Menu{}, storageError("loading content", err)
	}
	if !exists {
		return store.Menu{}, ErrContentNotFound
	}
	return store.Menu{}, ErrMenuNotFound
}

func validateMenuFields(text, url *string) error {
	fields := map[string]string{}
	if text != nil && strings.TrimSpace(*text) == "" {
		fields["text"] = "must not be empty"
	}
	if url != nil && strings.TrimSpace(*url) == "" {
		fields["url"] = "must not be empty"
	}
	if len(fields) > 0 {
		return newValidationError("invalid menu fields", fields)
	}
	return nil
}

// CreateMenuInput is a request to add a menu to a content unit. Type is
// derived from Text when empty.
type CreateMenuInput struct {
	ContentID int64
	Type      string
	Text      string
	URL       string
}

// Create adds a published menu.
func (s *MenuService) Create(ctx context.Context, in CreateMenuInput) (store.Menu, error) {
	fields := map[string]string{}
	if strings.TrimSpace(in.Text) == "" {
		fields["text"] = "is required"
	}
	if strings.TrimSpace(in.URL) == "" {
		fields["url"] = "is required"
	}
	menuType := in.Type
	if menuType == "" {
		menuType = in.Text
	}
	menuType = util.Slugify(menuType)
	if menuType == "" && fields["text"] == "" {
		fields["type"] = "cannot be derived from text"
	}
	if len(fields) > 0 {
		return store.Menu{}, newValidationError("invalid menu", fields)
	}

	now := s.Now()
	var created store.Menu
	err := store.InTx(ctx, s.db, func(q *store.Queries, _ *sql.Tx) error {
		exists, err := q.ContentExists(ctx, in.ContentID)
		if err != nil {
			return storageError("loading content", err)
		}
		if !exists {
			return ErrContentNotFound
		}
		if _, err := q.GetMenuByType(ctx, in.ContentID, menuType); err == nil {
			return ErrMenuExists
		} else if !errors.Is(err, sql.ErrNoRows) {
			return storageError("loading menu", err)
		}
		created, err = q.CreateMenu(ctx, store.CreateMenuParams{
			ContentID: in.ContentID,
			Type:      menuType,
			Text:      strings.TrimSpace(in.Text),
			URL:       strings.TrimSpace(in.URL),
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return storageError("creating menu", err)
		}
		return nil
	})
	if err != nil {
		return store.Menu{}, txError("creating menu", err)
	}

	s.invalidate(ctx, in.ContentID)
	s.logger.Info("menu created", "content_id", in.ContentID, "type", menuType)
	return created, nil
}

// List returns the menus of a content unit in creation order.
func (s *MenuService) List(ctx context.Context, contentID int64) ([]store.Menu, error) {
	load := func() ([]store.Menu, error) {
		exists, err := s.queries.ContentExists(ctx, contentID)
		if err != nil {
			return nil, storageError("loading content", err)
		}
		if !exists {
			return nil, ErrContentNotFound
		}
		menus, err := s.queries.ListMenusByContent(ctx, contentID)
		if err != nil {
			return nil, storageError("listing menus", err)
		}
		return menus, nil
	}
	if s.menuCache == nil {
		return load()
	}
	return s.menuCache.Get(ctx, contentID, load)
}

// Get returns one menu.
func (s *MenuService) Get(ctx context.Context, contentID int64, menuType string) (store.Menu, error) {
	return s.loadMenu(ctx, s.queries, contentID, menuType)
}

// Delete removes a menu together with any pending change.
func (s *MenuService) Delete(ctx context.Context, contentID int64, menuType string) (store.Menu, error) {
	var deleted store.Menu
	err := store.InTx(ctx, s.db, func(q *store.Queries, _ *sql.Tx) error {
		menu, err := s.loadMenu(ctx, q, contentID, menuType)
		if err != nil {
			return err
		}
		if _, err := q.DeleteMenu(ctx, contentID, menuType); err != nil {
			return storageError("deleting menu", err)
		}
		deleted = menu
		return nil
	})
	if err != nil {
		return store.Menu{}, txError("deleting menu", err)
	}

	s.invalidate(ctx, contentID)
	s.logger.Info("menu deleted", "content_id", contentID, "type", menuType)
	return deleted, nil
}

// ScheduledMenu is a pending menu with its due status relative to Now.
type ScheduledMenu struct {
	Menu            store.Menu
	IsDue           bool
	MinutesUntilDue int
}

// ScheduledView is the debug listing of pending changes.
type ScheduledView struct {
	Now   time.Time
	Items []ScheduledMenu
}

// ListScheduled returns pending changes of a content unit, soonest first.
func (s *MenuService) ListScheduled(ctx context.Context, contentID int64) (*ScheduledView, error) {
	exists, err := s.queries.ContentExists(ctx, contentID)
	if err != nil {
		return nil, storageError("loading content", err)
	}
	if !exists {
		return nil, ErrContentNotFound
	}

	menus, err := s.queries.ListScheduledMenus(ctx, contentID)
	if err != nil {
		return nil, storageError("listing scheduled menus", err)
	}

	now := s.Now()
	view := &ScheduledView{Now: now, Items: make([]ScheduledMenu, 0, len(menus))}
	for _, m := range menus {
		item := ScheduledMenu{Menu: m}
		if m.ScheduledAt.Valid {
			at := m.ScheduledAt.Time
			item.IsDue = !at.After(now)
			if !item.IsDue {
				item.MinutesUntilDue = int(at.Sub(now) / time.Minute)
			}
		}
		view.Items = append(view.Items, item)
	}
	return view, nil
}

// AppliedUpdate records one pending change that became published.
type AppliedUpdate struct {
	ID        int64
	ContentID int64
	Type      string
	Text      string
	URL       string
}

// ApplyDue publishes every pending change whose scheduled time has passed.
// A nil contentID covers all content units.
//
// The pass runs in one transaction with a savepoint per item, so a failing
// item is skipped without undoing the others. Events and cache
// invalidation happen only after commit.
func (s *MenuService) ApplyDue(ctx context.Context, contentID *int64) ([]AppliedUpdate, error) {
	now := s.Now()

	var (
		applied []AppliedUpdate
		failed  []failedUpdate
	)
	err := store.InTx(ctx, s.db, func(q *store.Queries, tx *sql.Tx) error {
		var (
			due    []store.Menu
			exists bool
			err    error
		)
		if contentID != nil {
			exists, err = q.ContentExists(ctx, *contentID)
			if err != nil {
				return storageError("loading content", err)
			}
			if !exists {
				return ErrContentNotFound
			}
			due, err = q.ListDueMenusByContent(ctx, *contentID, now)
		} else {
			due, err = q.ListDueMenus(ctx, now)
		}
		if err != nil {
			return storageError("listing due menus", err)
		}

		for _, m := range due {
			var rows int64
			err := store.Savepoint(ctx, tx, fmt.Sprintf("menu_%d", m.ID), func() error {
				var err error
				rows, err = q.ApplyPendingMenu(ctx, m.ID, now)
				return err
			})
			if err != nil {
				failed = append(failed, failedUpdate{menu: m, err: err})
				continue
			}
			if rows == 0 {
				continue
			}
			applied = append(applied, appliedFrom(m))
		}
		return nil
	})
	if errors.Is(err, ErrContentNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, storageError("applying scheduled menus", err)
	}

	// Logged after commit: warnings are persisted as events, which needs
	// the write lock held by the pass.
	for _, f := range failed {
		s.logger.Warn("scheduled menu update failed",
			"menu_id", f.menu.ID,
			"content_id", f.menu.ContentID,
			"type", f.menu.Type,
			"error", f.err,
		)
	}

	if len(applied) == 0 {
		return nil, nil
	}

	touched := make(map[int64]struct{})
	for _, a := range applied {
		touched[a.ContentID] = struct{}{}
		s.logApplied(ctx, a)
	}
	for id := range touched {
		s.invalidate(ctx, id)
	}

	s.logger.Info("applied scheduled menu updates", "count", len(applied))
	return applied, nil
}

type failedUpdate struct {
	menu store.Menu
	err  error
}

func appliedFrom(m store.Menu) AppliedUpdate {
	a := AppliedUpdate{
		ID:        m.ID,
		ContentID: m.ContentID,
		Type:      m.Type,
		Text:      m.Text,
		URL:       m.URL,
	}
	if m.PendingText.Valid {
		a.Text = m.PendingText.String
	}
	if m.PendingURL.Valid {
		a.URL = m.PendingURL.String
	}
	return a
}

func (s *MenuService) logApplied(ctx context.Context, a AppliedUpdate) {
	if s.events == nil {
		return
	}
	err := s.events.LogInfo(ctx, model.EventCategoryMenu, "Scheduled menu update applied", map[string]any{
		"menu_id":    a.ID,
		"content_id": a.ContentID,
		"type":       a.Type,
		"text":       a.Text,
		"url":        a.URL,
	})
	if err != nil {
		s.logger.Error("failed to record menu event", "menu_id", a.ID, "error", err)
	}
}

func (s *MenuService) invalidate(ctx context.Context, contentID int64) {
	if s.menuCache == nil {
		return
	}
	if err := s.menuCache.Invalidate(ctx, contentID); err != nil {
		s.logger.Warn("failed to invalidate menu cache", "content_id", contentID, "error", err)
	}
}
