// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package registry tracks the remote session list and the active session.
package registry

import (
	"github.com/jeranaias/buddy-tui/internal/model"
)

// =============================================================================
// MESSAGE TYPES
// =============================================================================

// SessionsLoadedMsg carries a fresh session list from the server.
type SessionsLoadedMsg struct {
	Sessions []model.SessionSummary
	Err      error
}

// SessionCreatedMsg reports a session creation. Sessions carries the
// refreshed list when the creation succeeded.
type SessionCreatedMsg struct {
	SessionID string
	Topic     string
	Sessions  []model.SessionSummary
	Err       error
}

// SessionSelectedMsg carries the full history of a selected session. On
// error, the caller must leave the current transcript and active pointer
// untouched.
type SessionSelectedMsg struct {
	SessionID string
	Messages  []model.Message
	Err       error
}

// SessionRenamedMsg reports a rename. Sessions carries the refreshed list
// when the rename succeeded.
type SessionRenamedMsg struct {
	SessionID string
	NewTitle  string
	Sessions  []model.SessionSummary
	Err       error
}

// SessionDeletedMsg reports a deletion. WasActive tells the UI it must also
// reset the transcript. Sessions carries the refreshed list when the
// deletion succeeded.
type SessionDeletedMsg struct {
	SessionID string
	WasActive bool
	Sessions  []model.SessionSummary
	Err       error
}
