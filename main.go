// buddy - a terminal client for the teach/chat memory service.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/jeranaias/buddy-tui/internal/api"
	"github.com/jeranaias/buddy-tui/internal/audio"
	"github.com/jeranaias/buddy-tui/internal/audio/device"
	"github.com/jeranaias/buddy-tui/internal/config"
	"github.com/jeranaias/buddy-tui/internal/history"
	"github.com/jeranaias/buddy-tui/internal/logging"
	"github.com/jeranaias/buddy-tui/internal/ui/chat"
	"github.com/jeranaias/buddy-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// loginTimeout bounds the credential exchange.
const loginTimeout = 30 * time.Second

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "login":
			if err := runLogin(); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		case "version", "--version", "-v":
			fmt.Printf("buddy %s (%s, built %s)\n", Version, GitCommit, BuildDate)
			return
		case "help", "--help", "-h":
			printUsage()
			return
		default:
			fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
			printUsage()
			os.Exit(1)
		}
	}

	if err := runTUI(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`buddy - teach a remote student from your terminal

Usage:
  buddy           Start the chat interface
  buddy login     Sign in and store the access token
  buddy version   Print version information

Configuration lives in ~/.buddy/config.toml. BUDDY_SERVER_URL and
BUDDY_TOKEN override the file.`)
}

// =============================================================================
// TUI
// =============================================================================

func runTUI() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// The TUI owns stdout, so logs go to a file. Losing logging is not worth
	// refusing to start over.
	if dir, dirErr := logging.DefaultDir(); dirErr == nil {
		closer, logErr := logging.Setup(dir, os.Getenv("BUDDY_DEBUG") != "")
		if logErr == nil {
			defer closer.Close()
		} else {
			logging.Discard()
		}
	} else {
		logging.Discard()
	}

	client := api.NewClient(&api.ClientConfig{
		BaseURL: cfg.Server.URL,
		Token:   cfg.Server.Token,
		Timeout: time.Duration(cfg.Server.TimeoutSecs) * time.Second,
	})

	var store *history.Store
	if cfg.History.Enabled {
		if path, pathErr := cfg.HistoryPath(); pathErr == nil {
			store, err = history.Open(path, cfg.History.MaxEntries)
			if err != nil {
				slog.Warn("prompt history unavailable", "error", err)
				store = nil
			}
		}
	}
	if store != nil {
		defer store.Close()
	}

	audioCtl := audio.NewController(device.NewRecorder(), device.NewPlayer())
	defer audioCtl.Close()

	m := chat.New(chat.Options{
		Client:  client,
		Config:  cfg,
		Theme:   styles.NewTheme(),
		Audio:   audioCtl,
		History: store,
	})

	p := tea.NewProgram(m, tea.WithAltScreen())

	// Watch the config file so a token refreshed by `buddy login` in another
	// terminal is adopted without a restart.
	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	if path, pathErr := config.Path(); pathErr == nil {
		go func() {
			if watchErr := config.Watch(watchCtx, path, func(updated *config.Config) {
				p.Send(chat.ConfigReloadedMsg{Config: updated})
			}); watchErr != nil && watchCtx.Err() == nil {
				slog.Warn("config watch stopped", "error", watchErr)
			}
		}()
	}

	_, err = p.Run()
	return err
}

// =============================================================================
// LOGIN
// =============================================================================

// runLogin exchanges email + password for a bearer token and stores it in
// the config file. The password never touches the config or the logs.
func runLogin() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	reader := bufio.NewReader(os.Stdin)
	prompt := "Email: "
	if cfg.Server.Email != "" {
		prompt = fmt.Sprintf("Email [%s]: ", cfg.Server.Email)
	}
	fmt.Print(prompt)
	email, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("could not read email: %w", err)
	}
	email = strings.TrimSpace(email)
	if email == "" {
		email = cfg.Server.Email
	}
	if email == "" {
		return fmt.Errorf("an email is required")
	}

	fmt.Print("Password: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("could not read password: %w", err)
	}

	client := api.NewClient(&api.ClientConfig{
		BaseURL: cfg.Server.URL,
		Timeout: loginTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), loginTimeout)
	defer cancel()

	token, err := client.Login(ctx, email, string(password))
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	cfg.Server.Token = token
	cfg.Server.Email = email
	if err := config.EnsureDir(); err != nil {
		return err
	}
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("could not store the token: %w", err)
	}

	fmt.Printf("Signed in as %s against %s.\n", email, cfg.Server.URL)
	return nil
}
