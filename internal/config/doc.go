// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for buddy.
//
// Configuration lives at ~/.buddy/config.toml. Loading layers three sources:
// built-in defaults, then the file, then environment overrides
// (BUDDY_SERVER_URL, BUDDY_TOKEN). The file holds the bearer token, so it is
// kept at 0600 and rewritten atomically on save.
//
// Watch provides hot reload: `buddy login` in another terminal updates the
// token and the running TUI picks it up without a restart.
package config
