// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// MenuState is the publication state of a menu record.
type MenuState string

const (
	// MenuStatePublished has no pending change.
	MenuStatePublished MenuState = "published"
	// MenuStatePending carries a change waiting for its scheduled time.
	MenuStatePending MenuState = "pending"
)

// MenuStateOf derives the state from the applied flag.
func MenuStateOf(applied bool) MenuState {
	if applied {
		return MenuStatePublished
	}
	return MenuStatePending
}
