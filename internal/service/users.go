// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/chezflo/chezflo-api/internal/auth"
	"github.com/chezflo/chezflo-api/internal/clock"
	"github.com/chezflo/chezflo-api/internal/model"
	"github.com/chezflo/chezflo-api/internal/store"
)

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

// Actor is the authenticated caller of a user operation.
type Actor struct {
	ID   int64
	Role string
}

func (a Actor) canManage(userID int64) bool {
	return a.ID == userID || model.IsAdminRole(a.Role)
}

// UserService manages accounts and issues bearer tokens.
type UserService struct {
	db      *sql.DB
	queries *store.Queries
	clock   clock.Clock
	tokens  *auth.TokenManager
	events  *EventService
	logger  *slog.Logger
}

// NewUserService creates a new UserService. events may be nil.
func NewUserService(db *sql.DB, clk clock.Clock, tokens *auth.TokenManager, events *EventService, logger *slog.Logger) *UserService {
	if clk == nil {
		clk = clock.Real{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{
		db:      db,
		queries: store.New(db),
		clock:   clk,
		tokens:  tokens,
		events:  events,
		logger:  logger,
	}
}

// SignupInput is a new account request.
type SignupInput struct {
	Firstname            string
	Lastname             string
	Username             string
	Email                string
	Image                string
	Password             string
	PasswordConfirmation string
}

// Signup creates an account with the user role.
func (s *UserService) Signup(ctx context.Context, in SignupInput) (store.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	fields := map[string]string{}
	for name, v := range map[string]string{
		"firstname": in.Firstname,
		"lastname":  in.Lastname,
		"username":  in.Username,
		"email":     in.Email,
		"password":  in.Password,
	} {
		if strings.TrimSpace(v) == "" {
			fields[name] = "is required"
		}
	}
	if fields["email"] == "" && !validEmail(in.Email) {
		fields["email"] = "is not a valid email address"
	}
	if fields["password"] == "" {
		if err := auth.ValidatePassword(in.Password); err != nil {
			fields["password"] = err.Error()
		} else if in.Password != in.PasswordConfirmation {
			fields["password_confirmation"] = "does not match password"
		}
	}
	if len(fields) > 0 {
		return store.User{}, newValidationError("invalid signup", fields)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return store.User{}, err
	}

	now := s.clock.Now()
	var created store.User
	err = store.InTx(ctx, s.db, func(q *store.Queries, _ *sql.Tx) error {
		if err := s.checkUnique(ctx, q, 0, in.Username, in.Email); err != nil {
			return err
		}
		var err error
		created, err = q.CreateUser(ctx, store.CreateUserParams{
			Firstname:    strings.TrimSpace(in.Firstname),
			Lastname:     strings.TrimSpace(in.Lastname),
			Username:     in.Username,
			Email:        in.Email,
			PasswordHash: hash,
			Image:        strings.TrimSpace(in.Image),
			Role:         model.RoleUser,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil {
			return storageError("creating user", err)
		}
		return nil
	})
	if err != nil {
		return store.User{}, err
	}

	s.logEvent(ctx, model.EventCategoryUser, "User signed up", map[string]any{"user_id": created.ID})
	return created, nil
}

// checkUnique fails with ErrUserExists when another user than selfID holds
// username or email.
func (s *UserService) checkUnique(ctx context.Context, q *store.Queries, selfID int64, username, email string) error {
	lookups := []func() (store.User, error){
		func() (store.User, error) { return q.GetUserByUsername(ctx, username) },
		func() (store.User, error) { return q.GetUserByEmail(ctx, email) },
	}
	for _, lookup := range lookups {
		u, err := lookup()
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return storageError("loading user", err)
		}
		if u.ID != selfID {
			return ErrUserExists
		}
	}
	return nil
}

// LoginResult is an issued bearer token.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      store.User
}

// Login checks credentials and issues a token. client is recorded on the
// login event.
func (s *UserService) Login(ctx context.Context, username, password string, client Client) (*LoginResult, error) {
	u, err := s.queries.GetUserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, storageError("loading user", err)
	}

	ok, err := auth.CheckPassword(password, u.PasswordHash)
	if err != nil || !ok {
		s.logger.Warn("failed login", "username", u.Username, "ip", client.IP)
		return nil, ErrInvalidCredentials
	}

	if auth.NeedsRehash(u.PasswordHash) {
		if hash, err := auth.HashPassword(password); err == nil {
			if err := s.queries.UpdateUserPassword(ctx, u.ID, hash, s.clock.Now()); err != nil {
				s.logger.Warn("failed to rehash password", "user_id", u.ID, "error", err)
			}
		}
	}

	token, expires, err := s.tokens.Issue(u.ID, u.Role)
	if err != nil {
		return nil, err
	}
	s.logEvent(ctx, model.EventCategoryAuth, "User logged in", client.metadata(map[string]any{"user_id": u.ID}))
	return &LoginResult{Token: token, ExpiresAt: expires, User: u}, nil
}

// Get returns one user.
func (s *UserService) Get(ctx context.Context, id int64) (store.User, error) {
	u, err := s.queries.GetUserByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return store.User{}, ErrUserNotFound
	}
	if err != nil {
		return store.User{}, storageError("loading user", err)
	}
	return u, nil
}

// List returns every user.
func (s *UserService) List(ctx context.Context) ([]store.User, error) {
	users, err := s.queries.ListUsers(ctx)
	if err != nil {
		return nil, storageError("listing users", err)
	}
	return users, nil
}

// UpdateUserInput holds profile changes. Nil fields are left untouched.
type UpdateUserInput struct {
	Firstname *string
	Lastname  *string
	Username  *string
	Email     *string
	Image     *string
}

// Update changes a profile. Users may edit themselves; admins anyone.
func (s *UserService) Update(ctx context.Context, actor Actor, id int64, in UpdateUserInput) (store.User, error) {
	if !actor.canManage(id) {
		return store.User{}, ErrForbidden
	}

	fields := map[string]string{}
	for name, v := range map[string]*string{
		"firstname": in.Firstname,
		"lastname":  in.Lastname,
		"username":  in.Username,
		"email":     in.Email,
	} {
		if v != nil && strings.TrimSpace(*v) == "" {
			fields[name] = "must not be empty"
		}
	}
	if in.Email != nil && fields["email"] == "" && !validEmail(strings.TrimSpace(*in.Email)) {
		fields["email"] = "is not a valid email address"
	}
	if len(fields) > 0 {
		return store.User{}, newValidationError("invalid user", fields)
	}

	var updated store.User
	err := store.InTx(ctx, s.db, func(q *store.Queries, _ *sql.Tx) error {
		u, err := q.GetUserByID(ctx, id)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		if err != nil {
			return storageError("loading user", err)
		}
		p := store.UpdateUserParams{
			ID:        u.ID,
			Firstname: u.Firstname,
			Lastname:  u.Lastname,
			Username:  u.Username,
			Email:     u.Email,
			Image:     u.Image,
			UpdatedAt: s.clock.Now(),
		}
		apply := func(dst *string, v *string) {
			if v != nil {
				*dst = strings.TrimSpace(*v)
			}
		}
		apply(&p.Firstname, in.Firstname)
		apply(&p.Lastname, in.Lastname)
		apply(&p.Username, in.Username)
		apply(&p.Email, in.Email)
		apply(&p.Image, in.Image)
		p.Email = strings.ToLower(p.Email)

		if err := s.checkUnique(ctx, q, u.ID, p.Username, p.Email); err != nil {
			return err
		}
		updated, err = q.UpdateUser(ctx, p)
		if err != nil {
			return storageError("updating user", err)
		}
		return nil
	})
	if err != nil {
		return store.User{}, err
	}
	return updated, nil
}

// Delete removes a user. Admins only, and never themselves.
func (s *UserService) Delete(ctx context.Context, actor Actor, id int64) error {
	if !model.IsAdminRole(actor.Role) || actor.ID == id {
		return ErrForbidden
	}
	n, err := s.queries.DeleteUser(ctx, id)
	if err != nil {
		return storageError("deleting user", err)
	}
	if n == 0 {
		return ErrUserNotFound
	}
	s.logEvent(ctx, model.EventCategoryUser, "User deleted", map[string]any{"user_id": id, "by": actor.ID})
	return nil
}

// ChangePasswordInput is a password change by the account owner.
type ChangePasswordInput struct {
	CurrentPassword string
	NewPassword     string
	ConfirmPassword string
}

// ChangePassword replaces the password of userID after checking the
// current one.
func (s *UserService) ChangePassword(ctx context.Context, userID int64, in ChangePasswordInput) error {
	u, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	ok, err := auth.CheckPassword(in.CurrentPassword, u.PasswordHash)
	if err != nil || !ok {
		return ErrInvalidCredentials
	}
	if err := auth.ValidatePassword(in.NewPassword); err != nil {
		return newValidationError("invalid password", map[string]string{"new_password": err.Error()})
	}
	if in.NewPassword != in.ConfirmPassword {
		return newValidationError("invalid password", map[string]string{"confirm_password": "does not match new password"})
	}

	hash, err := auth.HashPassword(in.NewPassword)
	if err != nil {
		return err
	}
	if err := s.queries.UpdateUserPassword(ctx, userID, hash, s.clock.Now()); err != nil {
		return storageError("updating password", err)
	}
	s.logEvent(ctx, model.EventCategoryAuth, "Password changed", map[string]any{"user_id": userID})
	return nil
}

// UpdateRole sets the role of another user. Superadmins only.
func (s *UserService) UpdateRole(ctx context.Context, actor Actor, id int64, role string) (store.User, error) {
	if actor.Role != model.RoleSuperadmin || actor.ID == id {
		return store.User{}, ErrForbidden
	}
	if !model.IsValidRole(role) {
		return store.User{}, newValidationError("invalid role", map[string]string{"role": "must be one of " + strings.Join(model.ValidRoles, ", ")})
	}
	u, err := s.queries.UpdateUserRole(ctx, id, role, s.clock.Now())
	if errors.Is(err, sql.ErrNoRows) {
		return store.User{}, ErrUserNotFound
	}
	if err != nil {
		return store.User{}, storageError("updating role", err)
	}
	s.logEvent(ctx, model.EventCategoryUser, "User role changed", map[string]any{"user_id": id, "role": role, "by": actor.ID})
	return u, nil
}

// Promote grants role to username without an authenticated actor. It backs
// the command-line bootstrap of the first superadmin.
func (s *UserService) Promote(ctx context.Context, username, role string) error {
	if !model.IsValidRole(role) {
		return newValidationError("invalid role", map[string]string{"role": "unknown role " + role})
	}
	n, err := s.queries.UpdateUserRoleByUsername(ctx, username, role, s.clock.Now())
	if err != nil {
		return storageError("updating role", err)
	}
	if n == 0 {
		return ErrUserNotFound
	}
	s.logEvent(ctx, model.EventCategoryUser, "User role changed", map[string]any{"username": username, "role": role})
	return nil
}

func (s *UserService) logEvent(ctx context.Context, category, message string, meta map[string]any) {
	if s.events == nil {
		return
	}
	if err := s.events.LogInfo(ctx, category, message, meta); err != nil {
		s.logger.Error("failed to record user event", "error", err)
	}
}
