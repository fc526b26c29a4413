// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the periodic background jobs. The menu applier is
// always registered; event pruning and GeoIP reloads are optional.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/chezflo/chezflo-api/internal/service"
)

// Job names.
const (
	JobApplyMenus  = "apply-menus"
	JobPruneEvents = "prune-events"
	JobReloadGeoIP = "reload-geoip"
)

const (
	pruneSchedule  = "@daily"
	reloadSchedule = "@weekly"
)

// MenuApplier publishes due menu updates.
type MenuApplier interface {
	ApplyDue(ctx context.Context, contentID *int64) ([]service.AppliedUpdate, error)
}

// EventPruner deletes old events.
type EventPruner interface {
	Prune(ctx context.Context, retention time.Duration) (int64, error)
}

// Reloader refreshes a file-backed database.
type Reloader interface {
	Reload() error
}

// Config configures a Scheduler. Events, Retention and GeoIP are optional.
type Config struct {
	Menus     MenuApplier
	Events    EventPruner
	GeoIP     Reloader
	Interval  time.Duration
	Retention time.Duration
	Logger    *slog.Logger
}

// Scheduler drives the due-update applier on a fixed interval.
type Scheduler struct {
	cron     *cron.Cron
	registry *Registry
	menus    MenuApplier
	events   EventPruner
	geoip    Reloader
	interval time.Duration
	keep     time.Duration
	logger   *slog.Logger

	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once
}

// New creates a new scheduler instance. Passes never overlap: a tick that
// fires while the previous pass is still running is skipped.
func New(cfg Config) (*Scheduler, error) {
	if cfg.Menus == nil {
		return nil, errors.New("scheduler: menu applier is required")
	}
	if cfg.Interval < time.Second {
		return nil, fmt.Errorf("scheduler: interval %s is below one second", cfg.Interval)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cl := cronLogger{logger: logger}
	c := cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:     c,
		registry: NewRegistry(c, logger),
		menus:    cfg.Menus,
		events:   cfg.Events,
		geoip:    cfg.GeoIP,
		interval: cfg.Interval,
		keep:     cfg.Retention,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Registry returns the job registry.
func (s *Scheduler) Registry() *Registry {
	return s.registry
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	err := s.registry.Add(JobApplyMenus,
		"Publish scheduled menu updates that are due",
		"@every "+s.interval.String(),
		func() { s.applyMenus() },
		func() error {
			_, err := s.RunOnce(s.ctx)
			return err
		},
	)
	if err != nil {
		return err
	}

	if s.events != nil && s.keep > 0 {
		err = s.registry.Add(JobPruneEvents,
			"Delete events older than the retention period",
			pruneSchedule,
			func() { s.pruneEvents() },
			func() error { return s.prune(s.ctx) },
		)
		if err != nil {
			return err
		}
	}

	if s.geoip != nil {
		err = s.registry.Add(JobReloadGeoIP,
			"Reload the GeoIP database if the file changed",
			reloadSchedule,
			func() {
				if err := s.geoip.Reload(); err != nil {
					s.logger.Warn("failed to reload GeoIP database", "error", err)
				}
			},
			s.geoip.Reload,
		)
		if err != nil {
			return err
		}
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()), "interval", s.interval)
	return nil
}

// Stop prevents new passes and waits for a running one to finish, or for
// ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	var err error
	s.stopOnce.Do(func() {
		done := s.cron.Stop()
		select {
		case <-done.Done():
		case <-ctx.Done():
			err = ctx.Err()
		}
		s.cancel()
		s.logger.Info("scheduler stopped")
	})
	return err
}

// RunOnce performs a single applier pass over all content units.
func (s *Scheduler) RunOnce(ctx context.Context) (int, error) {
	applied, err := s.menus.ApplyDue(ctx, nil)
	if err != nil {
		return 0, err
	}
	return len(applied), nil
}

// applyMenus is the cron entry point. Errors are logged, the next tick
// retries.
func (s *Scheduler) applyMenus() {
	n, err := s.RunOnce(s.ctx)
	if err != nil {
		s.logger.Error("failed to apply scheduled menu updates", "error", err)
		return
	}
	if n > 0 {
		s.logger.Debug("applier pass finished", "applied", n)
	}
}

func (s *Scheduler) pruneEvents() {
	if err := s.prune(s.ctx); err != nil {
		s.logger.Error("failed to prune events", "error", err)
	}
}

func (s *Scheduler) prune(ctx context.Context) error {
	if s.events == nil {
		return ErrTriggerDisabled
	}
	n, err := s.events.Prune(ctx, s.keep)
	if err != nil {
		return err
	}
	if n > 0 {
		s.logger.Info("pruned old events", "count", n, "retention", s.keep)
	}
	return nil
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
