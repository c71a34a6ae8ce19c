// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package audio coordinates voice capture, transcription, and reply playback.
package audio

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/buddy-tui/internal/api"
)

// transcribeTimeout bounds the speech-to-text upload. Recognition of a long
// capture takes a while server-side, so this is generous.
const transcribeTimeout = 2 * time.Minute

// synthesizeTimeout bounds fetching the synthesized stream. Playback itself
// is not under this timeout; only the HTTP exchange is.
const synthesizeTimeout = 2 * time.Minute

// =============================================================================
// MESSAGE TYPES
// =============================================================================

// TranscriptionMsg carries recognized text for the input line.
type TranscriptionMsg struct {
	Text string
	Err  error
}

// PlaybackDoneMsg reports that a reply finished playing, or why it did not.
type PlaybackDoneMsg struct {
	Err error
}

// =============================================================================
// COMMANDS
// =============================================================================

// TranscribeCmd uploads a captured payload for recognition.
func TranscribeCmd(client *api.Client, payload []byte, contentType string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), transcribeTimeout)
		defer cancel()

		text, err := client.Transcribe(ctx, payload, contentType)
		if err != nil {
			return TranscriptionMsg{Err: err}
		}
		return TranscriptionMsg{Text: text}
	}
}

// PlayCmd fetches synthesized speech for text and renders it through the
// player. The command blocks its goroutine for the duration of playback;
// the update loop stays responsive and the controller state keeps any
// conflicting activity out.
func PlayCmd(client *api.Client, player Player, text, voiceID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), synthesizeTimeout)
		defer cancel()

		stream, err := client.Synthesize(ctx, text, voiceID)
		if err != nil {
			return PlaybackDoneMsg{Err: err}
		}
		if err := player.Play(stream); err != nil {
			return PlaybackDoneMsg{Err: err}
		}
		return PlaybackDoneMsg{}
	}
}
