// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the memory server.
package api

import (
	"context"
	"errors"
	"net/http"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// RemoteError is a non-success response from the server. The status and body
// detail are preserved verbatim so the UI can surface exactly what the server
// said.
type RemoteError struct {
	StatusCode int
	Status     string
	Detail     string
}

func (e *RemoteError) Error() string {
	if e.Detail != "" {
		return "server returned " + e.Status + ": " + e.Detail
	}
	return "server returned " + e.Status
}

// TransportError is a network-level failure: the request never produced a
// response. Timeouts are transport errors like any other.
type TransportError struct {
	Op    string
	Cause error
}

func (e *TransportError) Error() string {
	return e.Op + ": connection to server failed: " + e.Cause.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// =============================================================================
// CLASSIFICATION HELPERS
// =============================================================================

// IsRemote reports whether err is a non-success server response. When it is,
// a response was obtained, which matters for refresh-after-turn semantics.
func IsRemote(err error) bool {
	var re *RemoteError
	return errors.As(err, &re)
}

// IsTransport reports whether err is a network-level failure.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsUnauthorized reports whether the server rejected the bearer credential.
func IsUnauthorized(err error) bool {
	var re *RemoteError
	return errors.As(err, &re) && re.StatusCode == http.StatusUnauthorized
}

// transportErr wraps a request failure, normalizing context timeouts.
func transportErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &TransportError{Op: op, Cause: errors.New("request timed out")}
	}
	return &TransportError{Op: op, Cause: err}
}
