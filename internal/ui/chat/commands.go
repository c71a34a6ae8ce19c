// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the main conversational view for the buddy TUI.
package chat

import (
	"context"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/buddy-tui/internal/api"
	"github.com/jeranaias/buddy-tui/internal/history"
)

// chatTimeout bounds one chat round trip. The server may run retrieval and
// generation, so this is deliberately generous.
const chatTimeout = 120 * time.Second

// recallLimit is how many stored prompts are loaded for up/down recall.
const recallLimit = 100

// =============================================================================
// COMMAND CREATORS
// =============================================================================

// SendChatCmd creates a command that sends one prompt to the server. An
// empty sessionID lets the server mint a session; the result always carries
// the id the turn was recorded under.
func SendChatCmd(client *api.Client, prompt, sessionID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), chatTimeout)
		defer cancel()

		result, err := client.Chat(ctx, prompt, sessionID)
		if err != nil {
			return ChatResultMsg{Prompt: prompt, Err: err}
		}
		return ChatResultMsg{Prompt: prompt, Result: result}
	}
}

// LoadHistoryCmd creates a command that loads recent prompts from the local
// history store. History is a convenience; failures are logged and the
// session simply starts with empty recall.
func LoadHistoryCmd(store *history.Store) tea.Cmd {
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		prompts, err := store.Recent(recallLimit)
		if err != nil {
			slog.Warn("prompt history load failed", "error", err)
			return HistoryLoadedMsg{}
		}
		return HistoryLoadedMsg{Prompts: prompts}
	}
}
