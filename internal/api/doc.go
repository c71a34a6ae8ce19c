// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the memory server.
//
// Every remote operation the TUI depends on lives here: chat turns, session
// listing and mutation, teach-mode reads and writes, speech transcription and
// synthesis, document uploads, topic switches, summaries, and memory search.
// The client carries the bearer credential when one is held and tolerates its
// absence; a deployment that requires auth answers 401 and that surfaces like
// any other remote error.
//
// Errors split into exactly two kinds: RemoteError (the server answered with
// a non-success status; status and body detail are preserved verbatim) and
// TransportError (the request never produced a response; timeouts included).
// Callers use IsRemote/IsTransport to distinguish them where it matters.
package api
