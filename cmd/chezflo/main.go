// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/chezflo/chezflo-api/internal/auth"
	"github.com/chezflo/chezflo-api/internal/cache"
	"github.com/chezflo/chezflo-api/internal/clock"
	"github.com/chezflo/chezflo-api/internal/config"
	"github.com/chezflo/chezflo-api/internal/geoip"
	"github.com/chezflo/chezflo-api/internal/handler"
	"github.com/chezflo/chezflo-api/internal/handler/api"
	"github.com/chezflo/chezflo-api/internal/logging"
	"github.com/chezflo/chezflo-api/internal/middleware"
	"github.com/chezflo/chezflo-api/internal/model"
	"github.com/chezflo/chezflo-api/internal/scheduler"
	"github.com/chezflo/chezflo-api/internal/service"
	"github.com/chezflo/chezflo-api/internal/store"
	"github.com/chezflo/chezflo-api/internal/version"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

// options are the command-line switches that change what run does.
type options struct {
	promote string
	role    string
}

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	var opts options
	flag.StringVar(&opts.promote, "promote", "", "Grant a role to an existing `username` and exit")
	flag.StringVar(&opts.role, "role", model.RoleSuperadmin, "Role granted by -promote (user|admin|superadmin)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "chezflo - restaurant content API\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CHEZFLO_JWT_SECRET            Token signing key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CHEZFLO_DB_PATH               SQLite database path (default: ./data/chezflo.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CHEZFLO_SERVER_PORT           Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CHEZFLO_ENV                   Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CHEZFLO_BUSINESS_UTC_OFFSET   Business time zone offset (default: +01:00)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CHEZFLO_APPLIER_INTERVAL      Scheduled menu applier interval (default: 60s)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CHEZFLO_REDIS_URL             Redis URL for the menu cache (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CHEZFLO_GEOIP_DB_PATH         GeoLite2-Country database for login events (optional)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Printf("chezflo %s (commit: %s, built: %s)\n", appVersion, appGitCommit, appBuildTime)
		os.Exit(0)
	}

	if err := run(opts); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	// Load .env files if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	versionInfo := version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}

	logger := logging.NewLogger(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)

	dbDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Upgrade logger to also write WARN and ERROR logs to the events table
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logging.ParseLevel(cfg.LogLevel)})
	logger = slog.New(logging.NewEventLogHandler(textHandler, db))
	slog.SetDefault(logger)

	ctx := context.Background()
	clk := clock.Real{}
	zone := cfg.BusinessZone()

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL, clk.Now)
	events := service.NewEventService(db, clk)
	users := service.NewUserService(db, clk, tokens, events, logger)

	if opts.promote != "" {
		if err := users.Promote(ctx, opts.promote, opts.role); err != nil {
			return fmt.Errorf("promoting %s: %w", opts.promote, err)
		}
		slog.Info("user promoted", "username", opts.promote, "role", opts.role)
		return nil
	}

	cacheTTL := time.Duration(cfg.CacheTTL) * time.Second
	cacheCfg := cache.Config{
		Prefix:     cfg.CachePrefix,
		DefaultTTL: cacheTTL,
		MaxSize:    cfg.CacheMaxSize,
	}
	if cfg.UseRedisCache() {
		cacheCfg.RedisURL = cfg.RedisURL
	}
	cacher := cache.New(ctx, cacheCfg, logger)
	defer func() {
		if err := cacher.Close(); err != nil {
			slog.Error("error closing cache", "error", err)
		}
	}()

	// Redis outlives restarts; menus may have changed while we were down
	menuCache := cache.NewMenuCache(cacher, cacheTTL)
	if err := menuCache.InvalidateAll(ctx); err != nil {
		slog.Warn("failed to clear menu cache", "error", err)
	}

	menus := service.NewMenuService(db, service.MenuServiceConfig{
		Clock:     clk,
		Zone:      zone,
		MenuCache: menuCache,
		Events:    events,
		Logger:    logger,
	})
	content := service.NewContentService(db, clk, logger)

	// A missing GeoIP database only disables country lookups
	geo, err := geoip.Open(cfg.GeoIPDBPath)
	if err != nil {
		slog.Warn("GeoIP disabled", "error", err)
		geo, _ = geoip.Open("")
	}
	defer func() { _ = geo.Close() }()

	schedCfg := scheduler.Config{
		Menus:     menus,
		Events:    events,
		Interval:  cfg.ApplierInterval,
		Retention: time.Duration(cfg.EventRetentionDays) * 24 * time.Hour,
		Logger:    logger,
	}
	if geo.Enabled() {
		schedCfg.GeoIP = geo
	}
	sched, err := scheduler.New(schedCfg)
	if err != nil {
		return fmt.Errorf("creating scheduler: %w", err)
	}
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}

	apiLimiter := middleware.NewRateLimiter(cfg.APIRatePerSec, cfg.APIRateBurst)
	defer apiLimiter.Stop()

	loginCfg := middleware.DefaultLoginProtectionConfig()
	loginCfg.IPRatePerMinute = cfg.AuthRatePerMin
	loginCfg.IPBurst = cfg.AuthRatePerMin
	loginProtection := middleware.NewLoginProtection(loginCfg)
	defer loginProtection.Stop()

	router := newRouter(routerDeps{
		API: api.NewHandler(api.Config{
			Menus:   menus,
			Content: content,
			Users:   users,
			Events:  events,
			Jobs:    sched.Registry(),
			Login:   loginProtection,
			GeoIP:   geo,
			Zone:    zone,
			Logger:  logger,
		}),
		Health:         handler.NewHealthHandler(db, cacher, clk, zone, versionInfo),
		Tokens:         tokens,
		Users:          store.New(db),
		RateLimiter:    apiLimiter,
		Login:          loginProtection,
		AllowedOrigins: cfg.AllowedOrigins,
		IsDev:          cfg.IsDevelopment(),
		RequestLog:     true,
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env,
			"version", versionInfo.String(), "timezone", zone.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	if err := sched.Stop(shutdownCtx); err != nil {
		slog.Warn("scheduler did not stop cleanly", "error", err)
	}

	slog.Info("server stopped")
	return nil
}
