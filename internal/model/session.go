// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the transcript and sessions.
package model

// =============================================================================
// SESSION SUMMARY
// =============================================================================

// SessionSummary is one row of the sidebar session list as reported by the
// backend. The list is always replaced wholesale after a mutation; rows are
// never patched in place.
type SessionSummary struct {
	SessionID       string `json:"session_id"`
	Title           string `json:"title"`
	LastMessageTime string `json:"last_message_time"`
	Preview         string `json:"preview"`
}

// DisplayTitle returns the title, falling back to the session ID for
// untitled sessions.
func (s SessionSummary) DisplayTitle() string {
	if s.Title != "" {
		return s.Title
	}
	return s.SessionID
}
