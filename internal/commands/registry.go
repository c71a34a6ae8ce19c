// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command system for the TUI.
package commands

import (
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/buddy-tui/internal/api"
	"github.com/jeranaias/buddy-tui/internal/audio"
	"github.com/jeranaias/buddy-tui/internal/config"
	"github.com/jeranaias/buddy-tui/internal/model"
	"github.com/jeranaias/buddy-tui/internal/registry"
	"github.com/jeranaias/buddy-tui/internal/teach"
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// Command represents a slash command that can be executed.
type Command struct {
	// Name is the primary command name (e.g., "/help")
	Name string

	// Aliases are alternative names (e.g., "/h", "/?")
	Aliases []string

	// Description is shown in help and completion
	Description string

	// Usage shows argument syntax (e.g., "/load <session_id>")
	Usage string

	// Args defines the expected arguments
	Args []ArgDef

	// Handler is the function that executes the command
	Handler func(ctx *Context, args []string) tea.Cmd

	// Hidden commands don't appear in help
	Hidden bool

	// Category for grouping in help display
	Category string
}

// ArgDef defines an argument for a command.
type ArgDef struct {
	// Name of the argument
	Name string

	// Required indicates if the argument must be provided
	Required bool

	// Type determines completion behavior
	Type ArgType

	// Description explains the argument
	Description string

	// Values for enum types
	Values []string
}

// ArgType indicates what kind of completion to provide.
type ArgType int

const (
	ArgTypeString  ArgType = iota // Free-form string
	ArgTypeSession                // Session ID from the registry
	ArgTypeEnum                   // One of predefined values
)

// =============================================================================
// COMMAND REGISTRY
// =============================================================================

// Registry holds all registered commands.
type Registry struct {
	commands map[string]*Command
	aliases  map[string]*Command
}

// NewRegistry creates a new command registry with all built-in commands.
func NewRegistry() *Registry {
	r := &Registry{
		commands: make(map[string]*Command),
		aliases:  make(map[string]*Command),
	}
	r.registerBuiltins()
	return r
}

// Register adds a command to the registry.
func (r *Registry) Register(cmd *Command) {
	r.commands[cmd.Name] = cmd
	for _, alias := range cmd.Aliases {
		r.aliases[alias] = cmd
	}
}

// Get retrieves a command by name or alias.
func (r *Registry) Get(name string) *Command {
	if cmd, ok := r.commands[name]; ok {
		return cmd
	}
	if cmd, ok := r.aliases[name]; ok {
		return cmd
	}
	return nil
}

// All returns all registered commands sorted by name.
func (r *Registry) All() []*Command {
	cmds := make([]*Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		cmds = append(cmds, cmd)
	}
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name < cmds[j].Name })
	return cmds
}

// ByCategory returns visible commands grouped by category.
func (r *Registry) ByCategory() map[string][]*Command {
	result := make(map[string][]*Command)
	for _, cmd := range r.All() {
		if cmd.Hidden {
			continue
		}
		category := cmd.Category
		if category == "" {
			category = "General"
		}
		result[category] = append(result[category], cmd)
	}
	return result
}

// Suggest returns visible commands whose name or alias starts with prefix,
// sorted by name. Used by the command palette.
func (r *Registry) Suggest(prefix string) []*Command {
	var matches []*Command
	for _, cmd := range r.All() {
		if cmd.Hidden {
			continue
		}
		if strings.HasPrefix(cmd.Name, prefix) {
			matches = append(matches, cmd)
			continue
		}
		for _, alias := range cmd.Aliases {
			if strings.HasPrefix(alias, prefix) {
				matches = append(matches, cmd)
				break
			}
		}
	}
	return matches
}

// =============================================================================
// BUILT-IN COMMANDS
// =============================================================================

func (r *Registry) registerBuiltins() {
	// Navigation commands
	r.Register(&Command{
		Name:        "/help",
		Aliases:     []string{"/h", "/?"},
		Description: "Show help and available commands",
		Usage:       "/help [command]",
		Args: []ArgDef{
			{Name: "command", Required: false, Type: ArgTypeString, Description: "Command to describe"},
		},
		Category: "Navigation",
		Handler:  HandleHelp,
	})

	r.Register(&Command{
		Name:        "/quit",
		Aliases:     []string{"/q", "/exit"},
		Description: "Exit buddy",
		Category:    "Navigation",
		Handler:     HandleQuit,
	})

	// Session commands
	r.Register(&Command{
		Name:        "/new",
		Aliases:     []string{"/n"},
		Description: "Start a fresh chat, optionally seeded with a topic",
		Usage:       "/new [topic]",
		Args: []ArgDef{
			{Name: "topic", Required: false, Type: ArgTypeString, Description: "Topic for the new session"},
		},
		Category: "Sessions",
		Handler:  HandleNew,
	})

	r.Register(&Command{
		Name:        "/sessions",
		Aliases:     []string{"/list"},
		Description: "Refresh and show the session list",
		Category:    "Sessions",
		Handler:     HandleSessions,
	})

	r.Register(&Command{
		Name:        "/load",
		Aliases:     []string{"/l", "/resume"},
		Description: "Load a session and its history",
		Usage:       "/load <session_id>",
		Args: []ArgDef{
			{Name: "session_id", Required: true, Type: ArgTypeSession, Description: "ID of the session to load"},
		},
		Category: "Sessions",
		Handler:  HandleLoad,
	})

	r.Register(&Command{
		Name:        "/rename",
		Description: "Rename the active session",
		Usage:       "/rename <new_name>",
		Args: []ArgDef{
			{Name: "new_name", Required: true, Type: ArgTypeString, Description: "New session title"},
		},
		Category: "Sessions",
		Handler:  HandleRename,
	})

	r.Register(&Command{
		Name:        "/delete",
		Description: "Delete a session (the active one by default)",
		Usage:       "/delete [session_id]",
		Args: []ArgDef{
			{Name: "session_id", Required: false, Type: ArgTypeSession, Description: "ID of the session to delete"},
		},
		Category: "Sessions",
		Handler:  HandleDelete,
	})

	// Memory commands
	r.Register(&Command{
		Name:        "/topic",
		Description: "Switch the study topic",
		Usage:       "/topic <topic>",
		Args: []ArgDef{
			{Name: "topic", Required: true, Type: ArgTypeString, Description: "Topic to switch to"},
		},
		Category: "Memory",
		Handler:  HandleTopic,
	})

	r.Register(&Command{
		Name:        "/summary",
		Description: "Summarize the active session",
		Category:    "Memory",
		Handler:     HandleSummary,
	})

	r.Register(&Command{
		Name:        "/search",
		Description: "Search stored memories",
		Usage:       "/search <query>",
		Args: []ArgDef{
			{Name: "query", Required: true, Type: ArgTypeString, Description: "Search query"},
		},
		Category: "Memory",
		Handler:  HandleSearch,
	})

	r.Register(&Command{
		Name:        "/memories",
		Description: "List everything the student has learned",
		Category:    "Memory",
		Handler:     HandleMemories,
	})

	r.Register(&Command{
		Name:        "/upload",
		Aliases:     []string{"/u"},
		Description: "Upload documents into the student's memory",
		Usage:       "/upload <file> [file...]",
		Args: []ArgDef{
			{Name: "file", Required: true, Type: ArgTypeString, Description: "Path of a file to upload (up to five)"},
		},
		Category: "Memory",
		Handler:  HandleUpload,
	})

	r.Register(&Command{
		Name:        "/reset",
		Description: "Erase all learned memories",
		Usage:       "/reset confirm",
		Args: []ArgDef{
			{Name: "confirm", Required: true, Type: ArgTypeEnum, Values: []string{"confirm"}, Description: "Type 'confirm' to proceed"},
		},
		Category: "Memory",
		Handler:  HandleReset,
	})

	// Teach mode
	r.Register(&Command{
		Name:        "/teach",
		Aliases:     []string{"/t"},
		Description: "Toggle teach mode, or set it explicitly",
		Usage:       "/teach [on|off]",
		Args: []ArgDef{
			{Name: "state", Required: false, Type: ArgTypeEnum, Values: []string{"on", "off"}, Description: "Desired state"},
		},
		Category: "Teaching",
		Handler:  HandleTeach,
	})

	// Voice commands
	r.Register(&Command{
		Name:        "/record",
		Aliases:     []string{"/rec"},
		Description: "Start recording from the microphone",
		Category:    "Voice",
		Handler:     HandleRecord,
	})

	r.Register(&Command{
		Name:        "/stop",
		Description: "Stop recording and transcribe into the input line",
		Category:    "Voice",
		Handler:     HandleStop,
	})

	r.Register(&Command{
		Name:        "/play",
		Description: "Read the last reply aloud",
		Category:    "Voice",
		Handler:     HandlePlay,
	})
}

// =============================================================================
// CONTEXT TYPE
// =============================================================================

// Context provides access to application state for command handlers.
// It follows the dependency injection pattern, allowing handlers to access
// services without direct coupling to the application structure.
//
// All fields are optional and may be nil - handlers should check before use.
type Context struct {
	// API is the client for the memory server
	API *api.Client

	// Config provides access to application configuration
	Config *config.Config

	// Sessions mirrors the remote session list
	Sessions *registry.Registry

	// Teach tracks teach-mode state
	Teach *teach.Controller

	// Audio owns the voice state machine
	Audio *audio.Controller

	// Transcript is the visible conversation log
	Transcript *model.Transcript

	// Commands is the registry itself, for help rendering
	Commands *Registry
}

// NewContext creates a new command context with the given dependencies.
// All parameters are optional and can be nil.
func NewContext(client *api.Client, cfg *config.Config, sessions *registry.Registry, teachCtl *teach.Controller, audioCtl *audio.Controller, transcript *model.Transcript) *Context {
	return &Context{
		API:        client,
		Config:     cfg,
		Sessions:   sessions,
		Teach:      teachCtl,
		Audio:      audioCtl,
		Transcript: transcript,
	}
}
