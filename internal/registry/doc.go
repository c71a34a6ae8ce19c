// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package registry tracks the remote session list and the active session.
//
// The server owns the session list; the registry never edits its local copy
// in place. Every mutation (create, rename, delete) round-trips to the
// server and then refetches the whole list, so the sidebar always shows what
// the server would show. Selecting a session fetches its full history before
// anything local changes; if the fetch fails, the current transcript and
// active pointer stay exactly as they were.
package registry
