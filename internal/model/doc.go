// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures shared across the TUI: transcript
// messages and their roles, the append-only Transcript log, and the session
// summaries that populate the sidebar.
//
// The package has no behavior of its own beyond small accessors; ownership
// rules live with the components that mutate these values (the orchestrator
// for the transcript, the session registry client for summaries).
package model
