// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history persists submitted prompts locally for input recall.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Schema creates the prompt history table.
const Schema = `
CREATE TABLE IF NOT EXISTS prompts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	content TEXT NOT NULL,
	submitted_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_prompts_submitted_at ON prompts(submitted_at);
`

// =============================================================================
// PROMPT STORE
// =============================================================================

// Store keeps submitted prompts in a local SQLite database so the input
// line can recall them across runs. This is a convenience cache only; the
// server remains the authority on conversation history.
type Store struct {
	db         *sql.DB
	maxEntries int
}

// Open opens (or creates) the history database at path.
func Open(path string, maxEntries int) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure history database: %w", err)
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}

	return &Store{db: db, maxEntries: maxEntries}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Append records one submitted prompt. Blank prompts and consecutive
// duplicates are skipped, matching shell history behavior.
func (s *Store) Append(content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}

	var last string
	err := s.db.QueryRow("SELECT content FROM prompts ORDER BY id DESC LIMIT 1").Scan(&last)
	if err == nil && last == content {
		return nil
	}
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("failed to read history: %w", err)
	}

	_, err = s.db.Exec(
		"INSERT INTO prompts (content, submitted_at) VALUES (?, ?)",
		content, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to record prompt: %w", err)
	}
	return s.trim()
}

// Recent returns up to limit prompts, newest first.
func (s *Store) Recent(limit int) ([]string, error) {
	rows, err := s.db.Query("SELECT content FROM prompts ORDER BY id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	defer rows.Close()

	var prompts []string
	for rows.Next() {
		var content string
		if err := rows.Scan(&content); err != nil {
			return nil, err
		}
		prompts = append(prompts, content)
	}
	return prompts, rows.Err()
}

// trim drops the oldest entries past the retention cap.
func (s *Store) trim() error {
	if s.maxEntries <= 0 {
		return nil
	}
	_, err := s.db.Exec(`
		DELETE FROM prompts WHERE id NOT IN (
			SELECT id FROM prompts ORDER BY id DESC LIMIT ?
		)`, s.maxEntries)
	return err
}
