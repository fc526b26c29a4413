// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/chezflo/chezflo-api/internal/auth"
	"github.com/chezflo/chezflo-api/internal/model"
	"github.com/chezflo/chezflo-api/internal/store"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// ContextKeyUser holds the authenticated *store.User.
const ContextKeyUser ContextKey = "user"

// TokenParser validates bearer tokens.
type TokenParser interface {
	Parse(raw string) (*auth.Claims, error)
}

// UserLoader loads the account a token refers to.
type UserLoader interface {
	GetUserByID(ctx context.Context, id int64) (store.User, error)
}

// bearerToken returns the token of an "Authorization: Bearer" header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// authenticate resolves the bearer token into the current user. The role
// is read from the database so demotions take effect before tokens expire.
func authenticate(r *http.Request, tokens TokenParser, users UserLoader) (*store.User, int, string) {
	raw, ok := bearerToken(r)
	if !ok {
		return nil, http.StatusUnauthorized, "Missing or malformed Authorization header. Use: Bearer <token>"
	}
	claims, err := tokens.Parse(raw)
	if err != nil {
		return nil, http.StatusUnauthorized, "Invalid or expired token"
	}
	id, err := claims.UserID()
	if err != nil {
		return nil, http.StatusUnauthorized, "Invalid or expired token"
	}
	u, err := users.GetUserByID(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, http.StatusUnauthorized, "User no longer exists"
	}
	if err != nil {
		slog.Error("failed to load user for token", "user_id", id, "error", err)
		return nil, http.StatusInternalServerError, "Failed to authenticate"
	}
	return &u, 0, ""
}

// BearerAuth creates middleware that requires a valid bearer token.
func BearerAuth(tokens TokenParser, users UserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, status, msg := authenticate(r, tokens, users)
			if u == nil {
				code := "unauthorized"
				if status == http.StatusInternalServerError {
					code = "internal_error"
				}
				WriteAPIError(w, status, code, msg, nil)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}

// RequireRole creates middleware that allows only users with one of roles.
// This should be used after BearerAuth.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u := GetUser(r)
			if u == nil {
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Authentication required", nil)
				return
			}
			if !slices.Contains(roles, u.Role) {
				WriteAPIError(w, http.StatusForbidden, "forbidden", "Insufficient permissions", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin allows admins and superadmins.
func RequireAdmin() func(http.Handler) http.Handler {
	return RequireRole(model.RoleAdmin, model.RoleSuperadmin)
}

// WithUser returns ctx carrying u.
func WithUser(ctx context.Context, u *store.User) context.Context {
	return context.WithValue(ctx, ContextKeyUser, u)
}

// GetUser retrieves the user from the request context.
// Returns nil if no user is in context.
func GetUser(r *http.Request) *store.User {
	u, _ := r.Context().Value(ContextKeyUser).(*store.User)
	return u
}

// GetUserID returns the authenticated user's id, or 0.
func GetUserID(r *http.Request) int64 {
	if u := GetUser(r); u != nil {
		return u.ID
	}
	return 0
}
