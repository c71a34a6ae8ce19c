// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for buddy.
//
// Configuration comes from ~/.buddy/config.toml with built-in defaults and
// environment variable overrides (BUDDY_SERVER_URL, BUDDY_TOKEN) applied last.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/buddy-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete buddy configuration.
type Config struct {
	// Server settings
	Server ServerConfig `toml:"server"`

	// Audio settings
	Audio AudioConfig `toml:"audio"`

	// UI settings
	UI UIConfig `toml:"ui"`

	// History settings
	History HistoryConfig `toml:"history"`
}

// ServerConfig contains the remote server connection settings.
type ServerConfig struct {
	// URL is the base URL of the memory server
	URL string `toml:"url"`
	// Token is the bearer credential issued by `buddy login`.
	// Empty when the deployment runs without auth.
	Token string `toml:"token"`
	// Email is the account the stored token was issued for
	Email string `toml:"email"`
	// TimeoutSecs is the per-request timeout in seconds
	TimeoutSecs int `toml:"timeout_secs"`
}

// AudioConfig contains voice capture and playback settings.
type AudioConfig struct {
	// VoiceID selects the synthesis voice; empty uses the server default
	VoiceID string `toml:"voice_id"`
	// SampleRate is the capture sample rate in Hz
	SampleRate int `toml:"sample_rate"`
	// MaxRecordSecs caps a single recording; the recorder stops itself
	// when the cap is hit
	MaxRecordSecs int `toml:"max_record_secs"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark" or "light"
	Theme string `toml:"theme"`
	// ShowSidebar controls whether the session sidebar starts visible
	ShowSidebar bool `toml:"show_sidebar"`
	// CompactMode uses a more compact layout
	CompactMode bool `toml:"compact_mode"`
}

// HistoryConfig contains local prompt history settings.
type HistoryConfig struct {
	// Enabled controls whether submitted prompts are recorded locally
	Enabled bool `toml:"enabled"`
	// Path is the history database file (empty = ~/.buddy/history.db)
	Path string `toml:"path"`
	// MaxEntries caps the number of retained prompts
	MaxEntries int `toml:"max_entries"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			URL:         "http://127.0.0.1:8000",
			TimeoutSecs: 60,
		},
		Audio: AudioConfig{
			SampleRate:    16000,
			MaxRecordSecs: 120,
		},
		UI: UIConfig{
			Theme:       "dark",
			ShowSidebar: true,
		},
		History: HistoryConfig{
			Enabled:    true,
			MaxEntries: 1000,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// Dir returns the buddy configuration directory path.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".buddy"), nil
}

// Path returns the path to the TOML config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureDir ensures the config directory exists.
func EnsureDir() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// ensureSecurePermissions checks and fixes permissions on the config file.
// SECURITY: The file holds the bearer token, so it must be 0600.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from ~/.buddy/config.toml, falling back to
// defaults when the file is absent. Environment overrides are applied last.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		cfg := Default()
		cfg.ApplyEnvOverrides()
		return cfg, nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific file path with validation.
// A missing file is not an error; defaults are used.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if _, statErr := os.Stat(path); statErr == nil {
		if err := ensureSecurePermissions(path); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
		}
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ApplyEnvOverrides applies environment variable overrides to the config.
// Environment always wins over the file.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("BUDDY_SERVER_URL"); v != "" {
		c.Server.URL = v
	}
	if v := os.Getenv("BUDDY_TOKEN"); v != "" {
		c.Server.Token = v
	}
}

// SetDefaults fills in any zero values with defaults.
func (c *Config) SetDefaults() {
	d := Default()
	if c.Server.URL == "" {
		c.Server.URL = d.Server.URL
	}
	if c.Server.TimeoutSecs <= 0 {
		c.Server.TimeoutSecs = d.Server.TimeoutSecs
	}
	if c.Audio.SampleRate <= 0 {
		c.Audio.SampleRate = d.Audio.SampleRate
	}
	if c.Audio.MaxRecordSecs <= 0 {
		c.Audio.MaxRecordSecs = d.Audio.MaxRecordSecs
	}
	if c.UI.Theme == "" {
		c.UI.Theme = d.UI.Theme
	}
	if c.History.MaxEntries <= 0 {
		c.History.MaxEntries = d.History.MaxEntries
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Server.URL)
	if err != nil {
		return fmt.Errorf("server.url is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("server.url must use http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("server.url is missing a host")
	}
	switch c.UI.Theme {
	case "dark", "light":
	default:
		return fmt.Errorf("ui.theme must be \"dark\" or \"light\", got %q", c.UI.Theme)
	}
	return nil
}

// =============================================================================
// SAVE
// =============================================================================

// Save writes the configuration to ~/.buddy/config.toml with 0600
// permissions. Used by `buddy login` to persist the issued token.
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}
	return c.SaveToPath(path)
}

// SaveToPath writes the configuration to a specific file path. The write is
// atomic so a crash mid-save never leaves a truncated config behind.
func (c *Config) SaveToPath(path string) error {
	var sb strings.Builder
	if err := toml.NewEncoder(&sb).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return util.AtomicWriteFile(path, []byte(sb.String()), 0600)
}

// HistoryPath resolves the prompt history database path.
func (c *Config) HistoryPath() (string, error) {
	if c.History.Path != "" {
		return c.History.Path, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}
