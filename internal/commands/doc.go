// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command system for the TUI.
//
// Input beginning with / is parsed against the registry; everything else is
// a chat prompt. Unknown commands and argument mistakes resolve locally into
// a system notice with the usage line - no request leaves the client until
// a command's arguments are valid.
//
// Handlers receive a Context carrying the application's services and return
// a tea.Cmd. Quick local state changes (starting a capture, rejecting a
// conflicting one) happen synchronously inside the handler, which runs on
// the update loop; everything that blocks goes into the returned command.
package commands
