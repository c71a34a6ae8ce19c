// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging configures the process-wide structured logger.
package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetupWritesJSON(t *testing.T) {
	dir := t.TempDir()
	closer, err := Setup(dir, false)
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	defer Discard()

	slog.Info("hello", "key", "value")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "buddy.log"))
	if err != nil {
		t.Fatal(err)
	}
	line := string(data)
	if !strings.Contains(line, `"msg":"hello"`) {
		t.Errorf("log line missing message: %s", line)
	}
	if !strings.Contains(line, `"key":"value"`) {
		t.Errorf("log line missing attribute: %s", line)
	}
}

func TestSetupDebugLevel(t *testing.T) {
	dir := t.TempDir()
	closer, err := Setup(dir, true)
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	defer Discard()

	slog.Debug("verbose detail")
	closer.Close()

	data, err := os.ReadFile(filepath.Join(dir, "buddy.log"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "verbose detail") {
		t.Error("debug message should be written when debug is enabled")
	}
}

func TestSetupInfoSuppressesDebug(t *testing.T) {
	dir := t.TempDir()
	closer, err := Setup(dir, false)
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	defer Discard()

	slog.Debug("hidden")
	closer.Close()

	data, err := os.ReadFile(filepath.Join(dir, "buddy.log"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "hidden") {
		t.Error("debug message should be suppressed at info level")
	}
}
