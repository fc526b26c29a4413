// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chezflo/chezflo-api/internal/auth"
	"github.com/chezflo/chezflo-api/internal/cache"
	"github.com/chezflo/chezflo-api/internal/clock"
	"github.com/chezflo/chezflo-api/internal/handler"
	"github.com/chezflo/chezflo-api/internal/handler/api"
	"github.com/chezflo/chezflo-api/internal/middleware"
	"github.com/chezflo/chezflo-api/internal/service"
	"github.com/chezflo/chezflo-api/internal/store"
	"github.com/chezflo/chezflo-api/internal/testutil"
	"github.com/chezflo/chezflo-api/internal/version"
)

type testApp struct {
	router    http.Handler
	clock     *clock.Manual
	tokens    *auth.TokenManager
	contentID int64
	admin     string
	user      string
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db := testutil.TestDB(t)
	clk := clock.NewManual(time.Date(2025, 7, 24, 10, 0, 0, 0, time.UTC))
	zone := clock.NewZone(60)
	logger := testutil.TestLoggerSilent()
	tokens := auth.NewTokenManager("router-test-secret-that-is-32-bytes-or-more", time.Hour, clk.Now)

	mem := cache.NewMemoryCache(cache.MemoryCacheOptions{MaxSize: 100})
	t.Cleanup(func() { _ = mem.Close() })

	events := service.NewEventService(db, clk)
	menus := service.NewMenuService(db, service.MenuServiceConfig{
		Clock:     clk,
		Zone:      zone,
		MenuCache: cache.NewMenuCache(mem, time.Minute),
		Events:    events,
		Logger:    logger,
	})

	limiter := middleware.NewRateLimiter(100, 100)
	t.Cleanup(limiter.Stop)
	login := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	t.Cleanup(login.Stop)

	contentID := testutil.CreateContent(t, db)
	testutil.CreateMenu(t, db, contentID, "lunch", "Lunch", "/menus/lunch-v1.pdf")
	admin := testutil.CreateUser(t, db, "admin", "admin")
	user := testutil.CreateUser(t, db, "guest", "user")

	issue := func(u store.User) string {
		tok, _, err := tokens.Issue(u.ID, u.Role)
		require.NoError(t, err)
		return tok
	}

	router := newRouter(routerDeps{
		API: api.NewHandler(api.Config{
			Menus:   menus,
			Content: service.NewContentService(db, clk, logger),
			Users:   service.NewUserService(db, clk, tokens, events, logger),
			Events:  events,
			Login:   login,
			Zone:    zone,
			Logger:  logger,
		}),
		Health:         handler.NewHealthHandler(db, mem, clk, zone, version.Info{Version: "test"}),
		Tokens:         tokens,
		Users:          store.New(db),
		RateLimiter:    limiter,
		Login:          login,
		AllowedOrigins: []string{"https://chezflo.fr"},
		IsDev:          true,
	})

	return &testApp{
		router:    router,
		clock:     clk,
		tokens:    tokens,
		contentID: contentID,
		admin:     issue(admin),
		user:      issue(user),
	}
}

func (a *testApp) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) menuPath(suffix string) string {
	return "/api/content/" + strconv.FormatInt(a.contentID, 10) + "/menus" + suffix
}

func TestRouter_Health(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/health", "/health/live", "/health/ready"} {
		w := app.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestRouter_PublicReads(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodGet, "/api/content", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	w = app.do(t, http.MethodGet, app.menuPath(""), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/menus/lunch-v1.pdf")

	w = app.do(t, http.MethodGet, "/api/content/"+strconv.FormatInt(app.contentID, 10)+"/about", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_MenuWritesNeedAdmin(t *testing.T) {
	app := newTestApp(t)
	body := map[string]string{"text": "Lunch", "url": "/menus/lunch-v2.pdf"}

	w := app.do(t, http.MethodPut, app.menuPath("/lunch"), "", body)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = app.do(t, http.MethodPut, app.menuPath("/lunch"), "not-a-token", body)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = app.do(t, http.MethodPut, app.menuPath("/lunch"), app.user, body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = app.do(t, http.MethodPut, app.menuPath("/lunch"), app.admin, body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = app.do(t, http.MethodGet, app.menuPath(""), "", nil)
	assert.Contains(t, w.Body.String(), "/menus/lunch-v2.pdf")
}

func TestRouter_ScheduleAndApply(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodPut, app.menuPath("/lunch"), app.admin, map[string]string{
		"url":          "/menus/lunch-v3.pdf",
		"scheduled_at": "2025-07-24T11:05:00",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Menu update scheduled")

	w = app.do(t, http.MethodGet, app.menuPath("/scheduled"), app.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/menus/lunch-v3.pdf")

	app.clock.Advance(6 * time.Minute)
	w = app.do(t, http.MethodPost, app.menuPath("/apply-scheduled"), app.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Successfully applied 1 scheduled updates")

	w = app.do(t, http.MethodGet, app.menuPath(""), "", nil)
	assert.Contains(t, w.Body.String(), "/menus/lunch-v3.pdf")
}

func TestRouter_SignupLoginFlow(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodPost, "/api/signup", "", map[string]string{
		"firstname":             "Flo",
		"lastname":              "Martin",
		"username":              "flo",
		"email":                 "flo@example.com",
		"password":              "Secret1!",
		"password_confirmation": "Secret1!",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = app.do(t, http.MethodPost, "/api/login", "", map[string]string{"username": "flo", "password": "Secret1!"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data api.LoginResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.NotEmpty(t, resp.Data.Token)

	w = app.do(t, http.MethodGet, "/api/user", resp.Data.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"flo"`)

	w = app.do(t, http.MethodGet, "/api/users", resp.Data.Token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRouter_RoleChangeNeedsSuperadmin(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodPut, "/api/user/1/role", app.admin, map[string]string{"role": "admin"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRouter_NotFoundAndMethod(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodGet, "/api/nope/at/all/here", "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"not_found"`)

	w = app.do(t, http.MethodPatch, "/api/content", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/content", nil)
	req.Header.Set("Origin", "https://chezflo.fr")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://chezflo.fr", w.Header().Get("Access-Control-Allow-Origin"))
}
