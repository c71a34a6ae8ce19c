// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the transcript and sessions.
package model

// =============================================================================
// TRANSCRIPT
// =============================================================================

// Transcript is the in-memory message log. It is strictly insertion-ordered:
// entries are appended one at a time or the whole log is replaced at once
// (session switch, new chat). It is mutated only from the Bubble Tea update
// loop, so it carries no lock of its own.
type Transcript struct {
	messages []Message
}

// NewTranscript creates a transcript seeded with the given messages.
func NewTranscript(messages ...Message) *Transcript {
	t := &Transcript{}
	t.messages = append(t.messages, messages...)
	return t
}

// Append adds a message to the end of the log.
func (t *Transcript) Append(msg Message) {
	t.messages = append(t.messages, msg)
}

// Replace swaps the entire log for the given messages.
func (t *Transcript) Replace(messages []Message) {
	t.messages = append(t.messages[:0:0], messages...)
}

// Reset replaces the log with a single message.
func (t *Transcript) Reset(msg Message) {
	t.messages = append(t.messages[:0:0], msg)
}

// Messages returns the log in insertion order. The returned slice must not
// be mutated by callers.
func (t *Transcript) Messages() []Message {
	return t.messages
}

// Len returns the number of messages.
func (t *Transcript) Len() int {
	return len(t.messages)
}

// LastAssistant returns the most recent assistant message, or false when the
// log holds none.
func (t *Transcript) LastAssistant() (Message, bool) {
	for i := len(t.messages) - 1; i >= 0; i-- {
		if t.messages[i].Role == RoleAssistant {
			return t.messages[i], true
		}
	}
	return Message{}, false
}
