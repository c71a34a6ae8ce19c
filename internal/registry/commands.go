// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package registry tracks the remote session list and the active session.
package registry

import (
	"context"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/buddy-tui/internal/api"
	"github.com/jeranaias/buddy-tui/internal/model"
)

// opTimeout bounds every registry operation. Session calls are small; a
// server that takes longer than this is effectively down.
const opTimeout = 30 * time.Second

// =============================================================================
// COMMANDS
// =============================================================================

// ListCmd fetches the session list from the server.
func ListCmd(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		sessions, err := client.ListSessions(ctx)
		if err != nil {
			slog.Warn("session list fetch failed", "error", err)
			return SessionsLoadedMsg{Err: err}
		}
		return SessionsLoadedMsg{Sessions: sessions}
	}
}

// CreateCmd creates a session seeded with a topic, then refreshes the list.
func CreateCmd(client *api.Client, topic string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		result, err := client.CreateSession(ctx, topic)
		if err != nil {
			return SessionCreatedMsg{Topic: topic, Err: err}
		}

		sessions, listErr := client.ListSessions(ctx)
		if listErr != nil {
			// The mutation landed; a failed refresh just leaves the
			// sidebar one update behind.
			slog.Warn("session list refresh failed after create", "error", listErr)
		}
		return SessionCreatedMsg{
			SessionID: result.SessionID,
			Topic:     topic,
			Sessions:  sessions,
		}
	}
}

// SelectCmd loads the full history of a session. Nothing local changes until
// the server answers; on failure the caller keeps the current transcript.
func SelectCmd(client *api.Client, sessionID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		rows, err := client.SessionMessages(ctx, sessionID)
		if err != nil {
			return SessionSelectedMsg{SessionID: sessionID, Err: err}
		}

		messages := make([]model.Message, 0, len(rows))
		for _, row := range rows {
			messages = append(messages, model.NewMessage(model.NormalizeRole(row.Role), row.Content))
		}
		return SessionSelectedMsg{SessionID: sessionID, Messages: messages}
	}
}

// RenameCmd renames a session, then refreshes the list.
func RenameCmd(client *api.Client, sessionID, newTitle string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		if err := client.RenameSession(ctx, sessionID, newTitle); err != nil {
			return SessionRenamedMsg{SessionID: sessionID, NewTitle: newTitle, Err: err}
		}

		sessions, listErr := client.ListSessions(ctx)
		if listErr != nil {
			slog.Warn("session list refresh failed after rename", "error", listErr)
		}
		return SessionRenamedMsg{
			SessionID: sessionID,
			NewTitle:  newTitle,
			Sessions:  sessions,
		}
	}
}

// DeleteCmd deletes a session, then refreshes the list. wasActive is decided
// by the caller at dispatch time so the UI knows to reset the transcript.
func DeleteCmd(client *api.Client, sessionID string, wasActive bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		if err := client.DeleteSession(ctx, sessionID); err != nil {
			return SessionDeletedMsg{SessionID: sessionID, WasActive: wasActive, Err: err}
		}

		sessions, listErr := client.ListSessions(ctx)
		if listErr != nil {
			slog.Warn("session list refresh failed after delete", "error", listErr)
		}
		return SessionDeletedMsg{
			SessionID: sessionID,
			WasActive: wasActive,
			Sessions:  sessions,
		}
	}
}
