// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"
)

// Not-found and conflict errors.
var (
	ErrMenuNotFound       = errors.New("menu not found")
	ErrMenuExists         = errors.New("menu already exists for this content")
	ErrContentNotFound    = errors.New("content not found")
	ErrSectionNotFound    = errors.New("section not found")
	ErrImageNotFound      = errors.New("image not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("username or email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
	ErrEmptyUpdate        = errors.New("no menu changes given")
)

// ValidationError reports invalid input. Fields maps input names to
// problems and may be empty.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Fields))
	for _, k := range slices.Sorted(maps.Keys(e.Fields)) {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

func newValidationError(message string, fields map[string]string) *ValidationError {
	return &ValidationError{Message: message, Fields: fields}
}

// InvalidScheduleFormatError is returned when a schedule timestamp does not
// parse.
type InvalidScheduleFormatError struct {
	Received string
	Expected string
	Err      error
}

func (e *InvalidScheduleFormatError) Error() string {
	return fmt.Sprintf("invalid date format %q: expected %s", e.Received, e.Expected)
}

func (e *InvalidScheduleFormatError) Unwrap() error {
	return e.Err
}

// ScheduleTooSoonError is returned when the requested time is not after
// Minimum. All times are UTC.
type ScheduleTooSoonError struct {
	ScheduledFor time.Time
	Now          time.Time
	Minimum      time.Time
}

func (e *ScheduleTooSoonError) Error() string {
	return fmt.Sprintf("scheduled time %s must be after %s",
		e.ScheduledFor.Format(time.RFC3339), e.Minimum.Format(time.RFC3339))
}

// StorageError wraps a persistence failure. The transaction it happened in
// has been rolled back.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageError(op string, err error) error {
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// txError passes domain errors returned from a transaction through and
// wraps anything else, such as a failed begin or commit, as a StorageError.
func txError(op string, err error) error {
	var (
		se *StorageError
		ve *ValidationError
		fe *InvalidScheduleFormatError
		te *ScheduleTooSoonError
	)
	switch {
	case errors.As(err, &se), errors.As(err, &ve), errors.As(err, &fe), errors.As(err, &te),
		errors.Is(err, ErrMenuNotFound), errors.Is(err, ErrMenuExists),
		errors.Is(err, ErrContentNotFound):
		return err
	}
	return &StorageError{Op: op, Err: err}
}
