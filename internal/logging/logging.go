// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging configures the process-wide structured logger.
//
// The TUI owns stdout and stderr, so logs go to a file under ~/.buddy/logs.
// The default slog logger is replaced so every package logs through the same
// handler.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// =============================================================================
// SETUP
// =============================================================================

// Setup opens the log file and installs a JSON handler as the default slog
// logger. The returned closer flushes and closes the file; call it on exit.
func Setup(dir string, debug bool) (io.Closer, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	path := filepath.Join(dir, "buddy.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	return f, nil
}

// DefaultDir returns the buddy log directory path.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".buddy", "logs"), nil
}

// Discard installs a no-op logger. Used by tests and the login subcommand,
// which runs without the log file.
func Discard() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(io.Discard, nil)))
}
