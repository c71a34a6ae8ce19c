// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides utility functions for the buddy TUI.
package util

import (
	"os"
	"path/filepath"
	"testing"
)

// =============================================================================
// STRING HELPERS
// =============================================================================

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxRunes int
		want     string
	}{
		{"short string unchanged", "hello", 10, "hello"},
		{"exact length unchanged", "hello", 5, "hello"},
		{"truncated with ellipsis", "hello world", 8, "hello..."},
		{"tiny max no ellipsis", "hello", 2, "he"},
		{"zero max", "hello", 0, ""},
		{"unicode safe", "héllo wörld", 8, "héllo..."},
		{"cjk safe", "日本語のテキスト", 5, "日本..."},
		{"empty string", "", 5, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateRunes(tt.input, tt.maxRunes); got != tt.want {
				t.Errorf("TruncateRunes(%q, %d) = %q, want %q", tt.input, tt.maxRunes, got, tt.want)
			}
		})
	}
}

func TestTruncateWidth(t *testing.T) {
	// Each CJK rune is 2 columns wide.
	got := TruncateWidth("日本語テキスト", 9)
	if StringWidth(got) > 9 {
		t.Errorf("TruncateWidth produced width %d > 9: %q", StringWidth(got), got)
	}

	if got := TruncateWidth("short", 20); got != "short" {
		t.Errorf("TruncateWidth should not touch short strings, got %q", got)
	}
	if got := TruncateWidth("anything", 0); got != "" {
		t.Errorf("TruncateWidth with zero width = %q", got)
	}
}

func TestStringWidth(t *testing.T) {
	if got := StringWidth("abc"); got != 3 {
		t.Errorf("StringWidth(abc) = %d", got)
	}
	if got := StringWidth("日本"); got != 4 {
		t.Errorf("StringWidth(日本) = %d, want 4", got)
	}
}

func TestSafeSubstring(t *testing.T) {
	tests := []struct {
		input      string
		start, end int
		want       string
	}{
		{"hello", 1, 3, "el"},
		{"hello", -1, 3, "hel"},
		{"hello", 3, 99, "lo"},
		{"hello", 4, 2, ""},
		{"héllo", 1, 2, "é"},
	}
	for _, tt := range tests {
		if got := SafeSubstring(tt.input, tt.start, tt.end); got != tt.want {
			t.Errorf("SafeSubstring(%q, %d, %d) = %q, want %q", tt.input, tt.start, tt.end, got, tt.want)
		}
	}
}

func TestRuneLen(t *testing.T) {
	if got := RuneLen("héllo"); got != 5 {
		t.Errorf("RuneLen(héllo) = %d, want 5", got)
	}
}

// =============================================================================
// ATOMIC WRITE
// =============================================================================

func TestAtomicWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "file.txt")

	if err := AtomicWriteFile(path, []byte("content"), 0600); err != nil {
		t.Fatalf("AtomicWriteFile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "content" {
		t.Errorf("content = %q", data)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("permissions = %o, want 0600", perm)
	}

	// Overwrite must replace, not append.
	if err := AtomicWriteFile(path, []byte("new"), 0600); err != nil {
		t.Fatal(err)
	}
	data, _ = os.ReadFile(path)
	if string(data) != "new" {
		t.Errorf("after overwrite content = %q", data)
	}

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want 1", len(entries))
	}
}
