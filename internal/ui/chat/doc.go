// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the main conversational view for the buddy TUI.

The chat package implements the terminal chat interface using the Bubble Tea
framework. The operator teaches; the remote student answers. Everything the
user sees flows through one transcript rendered in a viewport.

# Key Components

## Model (model.go)

The Model struct is the central Bubble Tea model:
  - Transcript ownership and message appends
  - Session registry and the active-session pointer
  - Teach-mode indicator driven by turn outcomes
  - Audio record/transcribe/play state integration
  - Prompt history recall (up/down across runs)

## Update Loop (update.go)

Handles all Bubble Tea messages:
  - Keyboard input, prompt submission, slash-command routing
  - Chat turn results, including server-suppressed (silent) replies
  - Session list/create/select/rename/delete outcomes
  - Teach-mode confirmations and learned-window expiry
  - Transcription and playback completion

## View Rendering (view.go)

Rendering for the complete interface:
  - Header with the active session title
  - Role-styled transcript bubbles, assistant markdown via glamour
  - Session sidebar with previews
  - Slash-command suggestion palette
  - Status bar with teach, audio, and sending indicators

# State machine

The model is a two-state machine over {Idle, Sending}. Submitting a prompt
moves to Sending; the turn result always returns it to Idle, success or not.
Sending is the only state that refuses new prompt submissions; slash commands
that do not start a turn still work.

# Usage

	m := chat.New(chat.Options{
		Client: client,
		Config: cfg,
		Theme:  styles.NewTheme(),
	})
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatal(err)
	}
*/
package chat
