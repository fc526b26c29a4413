// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"errors"
	"strings"
	"unicode"
)

// Password length limits.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 20
)

// PasswordSpecialChars lists the characters that satisfy the special
// character rule.
const PasswordSpecialChars = "!@#$%&*"

// Password policy violations, checked in this order.
var (
	ErrPasswordTooShort  = errors.New("password must be at least 8 characters long")
	ErrPasswordTooLong   = errors.New("password must be at most 20 characters long")
	ErrPasswordNoLower   = errors.New("password must contain a lowercase letter")
	ErrPasswordNoUpper   = errors.New("password must contain an uppercase letter")
	ErrPasswordNoDigit   = errors.New("password must contain a digit")
	ErrPasswordNoSpecial = errors.New("password must contain a special character (" + PasswordSpecialChars + ")")
)

// ValidatePassword returns the first policy rule that password breaks, or
// nil. Length is counted in characters, not bytes.
func ValidatePassword(password string) error {
	n := len([]rune(password))
	switch {
	case n < MinPasswordLength:
		return ErrPasswordTooShort
	case n > MaxPasswordLength:
		return ErrPasswordTooLong
	}

	var lower, upper, digit bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}

	switch {
	case !lower:
		return ErrPasswordNoLower
	case !upper:
		return ErrPasswordNoUpper
	case !digit:
		return ErrPasswordNoDigit
	case !strings.ContainsAny(password, PasswordSpecialChars):
		return ErrPasswordNoSpecial
	}
	return nil
}
