// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the main conversational view for the buddy TUI.
//
// This file defines the Bubble Tea message types owned by the chat view.
// Messages produced by other subsystems (session registry, teach mode,
// audio, slash commands) are defined in their own packages and handled here.
package chat

import (
	"github.com/jeranaias/buddy-tui/internal/api"
	"github.com/jeranaias/buddy-tui/internal/config"
)

// =============================================================================
// CHAT TURN MESSAGES
// =============================================================================

// ChatResultMsg is the outcome of one chat turn. Exactly one arrives for
// every prompt submitted, success or failure, so the Sending state always
// resolves.
type ChatResultMsg struct {
	// Prompt is the text that was sent, kept for history bookkeeping.
	Prompt string

	// Result is the server payload. Nil when Err is set.
	Result *api.ChatResult

	// Err is the transport or remote failure, nil on success.
	Err error
}

// =============================================================================
// SUPPORT MESSAGES
// =============================================================================

// HistoryLoadedMsg delivers recent prompts from the local history store for
// up/down recall.
type HistoryLoadedMsg struct {
	Prompts []string
}

// ConfigReloadedMsg announces that the config file changed on disk. Sent by
// the watcher goroutine in main via Program.Send.
type ConfigReloadedMsg struct {
	Config *config.Config
}
