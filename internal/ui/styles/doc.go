// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the buddy TUI.
//
// Colors are defined once as adaptive light/dark pairs and assembled into a
// Theme of Lip Gloss styles at startup. Status states additionally carry
// ASCII shape indicators so the recording and teach-mode markers read
// without color.
package styles
