// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chezflo/chezflo-api/internal/auth"
	"github.com/chezflo/chezflo-api/internal/model"
	"github.com/chezflo/chezflo-api/internal/store"
)

const testSecret = "test-secret-key-that-is-at-least-32-bytes-long"

type fakeUsers map[int64]store.User

func (f fakeUsers) GetUserByID(_ context.Context, id int64) (store.User, error) {
	u, ok := f[id]
	if !ok {
		return store.User{}, sql.ErrNoRows
	}
	return u, nil
}

type failingUsers struct{}

func (failingUsers) GetUserByID(context.Context, int64) (store.User, error) {
	return store.User{}, errors.New("database is closed")
}

func newTestTokens() *auth.TokenManager {
	return auth.NewTokenManager(testSecret, time.Hour, time.Now)
}

func issue(t *testing.T, tokens *auth.TokenManager, id int64, role string) string {
	t.Helper()
	token, _, err := tokens.Issue(id, role)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return token
}

func authRequest(handler http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestBearerAuth(t *testing.T) {
	tokens := newTestTokens()
	users := fakeUsers{1: {ID: 1, Username: "flo", Role: model.RoleAdmin}}

	var seen *store.User
	handler := BearerAuth(tokens, users)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetUser(r)
		w.WriteHeader(http.StatusOK)
	}))

	other := auth.NewTokenManager("another-secret-key-that-is-32-bytes-long!", time.Hour, time.Now)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + issue(t, other, 1, model.RoleAdmin), http.StatusUnauthorized},
		{"deleted user", "Bearer " + issue(t, tokens, 99, model.RoleAdmin), http.StatusUnauthorized},
		{"valid", "Bearer " + issue(t, tokens, 1, model.RoleAdmin), http.StatusOK},
		{"lowercase scheme", "bearer " + issue(t, tokens, 1, model.RoleAdmin), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			rr := authRequest(handler, tt.header)
			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d", rr.Code, tt.want)
			}
			if tt.want == http.StatusOK && (seen == nil || seen.Username != "flo") {
				t.Errorf("user in context = %+v", seen)
			}
		})
	}
}

func TestBearerAuthStorageFailure(t *testing.T) {
	tokens := newTestTokens()
	handler := BearerAuth(tokens, failingUsers{})(simpleOKHandler)

	rr := authRequest(handler, "Bearer "+issue(t, tokens, 1, model.RoleUser))
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rr.Code)
	}
}

func TestBearerAuthUsesCurrentRole(t *testing.T) {
	tokens := newTestTokens()
	users := fakeUsers{1: {ID: 1, Role: model.RoleUser}}
	handler := BearerAuth(tokens, users)(RequireAdmin()(simpleOKHandler))

	// Token still claims admin, the account has been demoted since.
	rr := authRequest(handler, "Bearer "+issue(t, tokens, 1, model.RoleAdmin))
	if rr.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rr.Code)
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name string
		user *store.User
		want int
	}{
		{"no user", nil, http.StatusUnauthorized},
		{"user", &store.User{ID: 1, Role: model.RoleUser}, http.StatusForbidden},
		{"admin", &store.User{ID: 1, Role: model.RoleAdmin}, http.StatusOK},
		{"superadmin", &store.User{ID: 1, Role: model.RoleSuperadmin}, http.StatusOK},
	}

	handler := RequireAdmin()(simpleOKHandler)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.user != nil {
				req = req.WithContext(WithUser(req.Context(), tt.user))
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d", rr.Code, tt.want)
			}
		})
	}
}

func TestGetUserEmptyContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if GetUser(req) != nil {
		t.Error("GetUser() should be nil without a user")
	}
	if GetUserID(req) != 0 {
		t.Error("GetUserID() should be 0 without a user")
	}
}
