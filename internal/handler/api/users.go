// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/chezflo/chezflo-api/internal/middleware"
	"github.com/chezflo/chezflo-api/internal/model"
	"github.com/chezflo/chezflo-api/internal/service"
	"github.com/chezflo/chezflo-api/internal/store"
)

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID        int64  `json:"id"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Image     string `json:"image,omitempty"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
}

// SignupRequest is the body of POST /api/signup.
type SignupRequest struct {
	Firstname            string `json:"firstname"`
	Lastname             string `json:"lastname"`
	Username             string `json:"username"`
	Email                string `json:"email"`
	Image                string `json:"image"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// LoginRequest is the body of POST /api/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries an issued bearer token.
type LoginResponse struct {
	Message   string       `json:"message"`
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	ExpiresAt string       `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// UpdateUserRequest is the body of PUT /api/user/{userID}.
type UpdateUserRequest struct {
	Firstname *string `json:"firstname"`
	Lastname  *string `json:"lastname"`
	Username  *string `json:"username"`
	Email     *string `json:"email"`
	Image     *string `json:"image"`
}

// ChangePasswordRequest is the body of PUT /api/change-password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// UpdateRoleRequest is the body of PUT /api/user/{userID}/role.
type UpdateRoleRequest struct {
	Role string `json:"role"`
}

func (h *Handler) userToResponse(u store.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Firstname: u.Firstname,
		Lastname:  u.Lastname,
		Username:  u.Username,
		Email:     u.Email,
		Image:     u.Image,
		Role:      u.Role,
		CreatedAt: u.CreatedAt.In(h.zone.Location()).Format(time.RFC3339),
	}
}

// Signup handles POST /api/signup.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	u, err := h.users.Signup(r.Context(), service.SignupInput{
		Firstname:            req.Firstname,
		Lastname:             req.Lastname,
		Username:             req.Username,
		Email:                req.Email,
		Image:                req.Image,
		Password:             req.Password,
		PasswordConfirmation: req.PasswordConfirmation,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteCreated(w, struct {
		Message string       `json:"message"`
		User    UserResponse `json:"user"`
	}{"User created successfully", h.userToResponse(u)})
}

// client describes the caller for the login audit event.
func (h *Handler) client(r *http.Request) service.Client {
	c := service.ParseClient(middleware.ClientIP(r), r.UserAgent())
	if h.geo != nil {
		c.Country = h.geo.Country(c.IP)
	}
	return c
}

// recordLockout writes an auth warning to the event log.
func (h *Handler) recordLockout(r *http.Request, username string, lockFor time.Duration) {
	if h.events == nil {
		return
	}
	err := h.events.LogWarning(r.Context(), model.EventCategoryAuth, "Account locked", map[string]any{
		"username":     username,
		"ip":           middleware.ClientIP(r),
		"lock_seconds": int(lockFor.Seconds()),
	})
	if err != nil {
		h.logger.Error("failed to record lockout event", "error", err)
	}
}

// Login handles POST /api/login. Repeated failures lock the account for a
// growing period when login protection is configured.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if h.login != nil {
		if locked, remaining := h.login.IsAccountLocked(req.Username); locked {
			middleware.WriteLocked(w, remaining)
			return
		}
	}

	result, err := h.users.Login(r.Context(), req.Username, req.Password, h.client(r))
	if errors.Is(err, service.ErrInvalidCredentials) {
		if h.login != nil {
			if locked, lockFor := h.login.RecordFailedAttempt(req.Username); locked {
				h.recordLockout(r, req.Username, lockFor)
				middleware.WriteLocked(w, lockFor)
				return
			}
			WriteError(w, http.StatusUnauthorized, "unauthorized", "Login failed. Try again", map[string]string{
				"remaining_attempts": strconv.Itoa(h.login.GetRemainingAttempts(req.Username)),
			})
			return
		}
		WriteUnauthorized(w, "Login failed. Try again")
		return
	}
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	if h.login != nil {
		h.login.RecordSuccessfulLogin(req.Username)
	}
	WriteSuccess(w, LoginResponse{
		Message:   "Login successful.",
		Token:     result.Token,
		TokenType: "Bearer",
		ExpiresAt: result.ExpiresAt.UTC().Format(time.RFC3339),
		User:      h.userToResponse(result.User),
	}, nil)
}

// CurrentUser handles GET /api/user.
func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	u := middleware.GetUser(r)
	if u == nil {
		WriteUnauthorized(w, "Authentication required")
		return
	}
	WriteSuccess(w, h.userToResponse(*u), nil)
}

// ChangePassword handles PUT /api/change-password.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if userID == 0 {
		WriteUnauthorized(w, "Authentication required")
		return
	}

	var req ChangePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	err := h.users.ChangePassword(r.Context(), userID, service.ChangePasswordInput{
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
		ConfirmPassword: req.ConfirmPassword,
	})
	if errors.Is(err, service.ErrInvalidCredentials) {
		WriteValidationError(w, "Current password is incorrect", map[string]string{
			"current_password": "is incorrect",
		})
		return
	}
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, MessageResponse{Message: "Password changed successfully"}, nil)
}

// ListUsers handles GET /api/users.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	resp := make([]UserResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, h.userToResponse(u))
	}
	WriteSuccess(w, resp, &Meta{Total: len(resp)})
}

// GetUser handles GET /api/user/{userID}.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "userID", "user")
	if !ok {
		return
	}

	u, err := h.users.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, h.userToResponse(u), nil)
}

// UpdateUser handles PUT /api/user/{userID}.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "userID", "user")
	if !ok {
		return
	}
	caller, ok := actor(r)
	if !ok {
		WriteUnauthorized(w, "Authentication required")
		return
	}

	var req UpdateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	u, err := h.users.Update(r.Context(), caller, id, service.UpdateUserInput{
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		Username:  req.Username,
		Email:     req.Email,
		Image:     req.Image,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, h.userToResponse(u), nil)
}

// DeleteUser handles DELETE /api/user/{userID}.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "userID", "user")
	if !ok {
		return
	}
	caller, ok := actor(r)
	if !ok {
		WriteUnauthorized(w, "Authentication required")
		return
	}

	if err := h.users.Delete(r.Context(), caller, id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, MessageResponse{Message: "User deleted successfully"}, nil)
}

// UpdateUserRole handles PUT /api/user/{userID}/role.
func (h *Handler) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "userID", "user")
	if !ok {
		return
	}
	caller, ok := actor(r)
	if !ok {
		WriteUnauthorized(w, "Authentication required")
		return
	}

	var req UpdateRoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	u, err := h.users.UpdateRole(r.Context(), caller, id, req.Role)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, h.userToResponse(u), nil)
}
