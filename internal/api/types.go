// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the memory server.
package api

import "github.com/jeranaias/buddy-tui/internal/model"

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// ChatResult is the payload of a completed chat turn.
type ChatResult struct {
	// Response is the assistant reply text. Empty when Silent is set.
	Response string `json:"response"`

	// SessionID is the session the turn was recorded under. The server
	// creates a session when the request carried none, so the client must
	// always adopt this value.
	SessionID string `json:"session_id"`

	// ContextCount is how many prior messages the server loaded as context.
	ContextCount int `json:"context_count"`

	// Silent marks a reply the server withheld on purpose (teach mode).
	// The turn still happened and still touches the session list.
	Silent bool `json:"silent"`
}

// sessionListResponse wraps the sidebar session listing.
type sessionListResponse struct {
	Sessions []model.SessionSummary `json:"sessions"`
}

// SessionMessage is one stored message row from session history.
type SessionMessage struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// sessionMessagesResponse wraps a session history fetch.
type sessionMessagesResponse struct {
	Messages []SessionMessage `json:"messages"`
}

// CreateSessionResult is the payload of a session creation.
type CreateSessionResult struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// messageResponse is the generic `{"message": ...}` acknowledgement the
// server returns for mutations.
type messageResponse struct {
	Message string `json:"message"`
}

// teachModeResponse wraps the teach-mode flag.
type teachModeResponse struct {
	TeachMode bool `json:"teach_mode"`
}

// transcriptionResponse wraps a speech-to-text result.
type transcriptionResponse struct {
	Text string `json:"text"`
}

// DocumentFile is one file staged for upload.
type DocumentFile struct {
	Name    string
	Payload []byte
}

// UploadedDocument is one successfully ingested file.
type UploadedDocument struct {
	Filename string `json:"filename"`
	DocID    string `json:"doc_id"`
	Chunks   int    `json:"chunks"`
}

// UploadError is one file the server could not ingest, with the reason.
type UploadError struct {
	Filename string `json:"filename"`
	Reason   string `json:"error"`
}

// UploadResult is the payload of a document upload. A request can partially
// succeed; both lists may be populated at once.
type UploadResult struct {
	Uploaded []UploadedDocument `json:"uploaded"`
	Errors   []UploadError      `json:"errors"`
}

// TopicResult is the payload of a topic change.
type TopicResult struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

// SummaryResult is the payload of a session summary request.
type SummaryResult struct {
	SessionID string `json:"session_id"`
	Summary   string `json:"summary"`
}

// MemoryHit is one scored match from the vector store.
type MemoryHit struct {
	ID     string  `json:"id"`
	Score  float64 `json:"score"`
	Memory string  `json:"memory"`
}

// searchTopicResponse wraps a topic search.
type searchTopicResponse struct {
	Query   string      `json:"query"`
	Results []MemoryHit `json:"results"`
}

// memoriesResponse wraps a full memory listing.
type memoriesResponse struct {
	Memories []MemoryHit `json:"memories"`
}

// loginRequest is the credential payload for /login.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginResponse is the issued bearer credential.
type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
