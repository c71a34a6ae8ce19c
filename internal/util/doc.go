// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides utility functions for the buddy TUI.
//
// The string helpers are width-aware so sidebar previews and truncated
// titles stay aligned with CJK and other double-width text. AtomicWriteFile
// backs the config save path.
package util
