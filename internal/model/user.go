// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain constants and small value types shared by
// the service, scheduler and API layers.
package model

import "slices"

// User roles.
const (
	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleSuperadmin = "superadmin"
)

// ValidRoles contains all roles accepted by the users table.
var ValidRoles = []string{RoleUser, RoleAdmin, RoleSuperadmin}

// IsValidRole reports whether role is one of ValidRoles.
func IsValidRole(role string) bool {
	return slices.Contains(ValidRoles, role)
}

// IsAdminRole reports whether role may manage site content.
func IsAdminRole(role string) bool {
	return role == RoleAdmin || role == RoleSuperadmin
}
