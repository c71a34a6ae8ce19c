// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package registry tracks the remote session list and the active session.
package registry

import (
	"github.com/jeranaias/buddy-tui/internal/model"
)

// =============================================================================
// SESSION REGISTRY
// =============================================================================

// Registry is the client-side mirror of the server's session list. The
// server owns the list; the registry only ever replaces its copy wholesale
// with what the server returned. It is mutated exclusively from the Bubble
// Tea update loop, so it carries no lock.
type Registry struct {
	sessions []model.SessionSummary
	activeID string
}

// New returns an empty registry with no active session.
func New() *Registry {
	return &Registry{}
}

// Sessions returns the cached session list in server order.
func (r *Registry) Sessions() []model.SessionSummary {
	return r.sessions
}

// Len returns the number of cached sessions.
func (r *Registry) Len() int {
	return len(r.sessions)
}

// ActiveID returns the active session ID, or "" when no session is active.
func (r *Registry) ActiveID() string {
	return r.activeID
}

// HasActive reports whether a session is currently active.
func (r *Registry) HasActive() bool {
	return r.activeID != ""
}

// Replace swaps the cached list for the server's latest. The active pointer
// is kept even if the active session no longer appears in the list; the
// server is the authority on whether it still exists.
func (r *Registry) Replace(sessions []model.SessionSummary) {
	r.sessions = sessions
}

// SetActive points the registry at a session. Called only after the server
// confirmed the session exists (a successful select or a chat turn that
// minted it).
func (r *Registry) SetActive(sessionID string) {
	r.activeID = sessionID
}

// ClearActive drops the active pointer. Used when the active session is
// deleted or when the user starts a fresh chat.
func (r *Registry) ClearActive() {
	r.activeID = ""
}

// Find returns the cached summary for a session ID.
func (r *Registry) Find(sessionID string) (model.SessionSummary, bool) {
	for _, s := range r.sessions {
		if s.SessionID == sessionID {
			return s, true
		}
	}
	return model.SessionSummary{}, false
}

// Active returns the cached summary of the active session.
func (r *Registry) Active() (model.SessionSummary, bool) {
	if r.activeID == "" {
		return model.SessionSummary{}, false
	}
	return r.Find(r.activeID)
}
