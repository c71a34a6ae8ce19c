// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the transcript and sessions.
package model

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the author of a transcript message. The backend stores
// operator turns under the role "teacher", so that spelling is kept on the
// wire and in persistence.
type Role string

const (
	RoleTeacher   Role = "teacher"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleTeacher:
		return "You"
	case RoleAssistant:
		return "Student"
	case RoleSystem:
		return "System"
	default:
		return string(r)
	}
}

// NormalizeRole maps a backend role string onto a local Role. Assistant rows
// stay assistant; every other author is treated as the operator.
func NormalizeRole(raw string) Role {
	if raw == string(RoleAssistant) {
		return RoleAssistant
	}
	return RoleTeacher
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is a single immutable transcript entry. Messages are created by the
// orchestrator on every echo, remote reply, or notice, and are never edited
// afterwards; the transcript only appends them or replaces itself wholesale.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// NewMessage creates a new message with a generated ID.
func NewMessage(role Role, content string) Message {
	return Message{
		ID:        generateID(),
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}
}

// NewTeacherMessage creates a new operator message.
func NewTeacherMessage(content string) Message {
	return NewMessage(RoleTeacher, content)
}

// NewAssistantMessage creates a new assistant message.
func NewAssistantMessage(content string) Message {
	return NewMessage(RoleAssistant, content)
}

// NewSystemMessage creates a new system notice.
func NewSystemMessage(content string) Message {
	return NewMessage(RoleSystem, content)
}

// Preview returns a truncated single-line preview of the message content.
// Uses rune-based truncation to handle Unicode correctly.
func (m Message) Preview(maxLen int) string {
	runes := []rune(m.Content)
	if len(runes) <= maxLen {
		return m.Content
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// generateID creates a unique message ID.
func generateID() string {
	return "msg_" + uuid.NewString()
}
