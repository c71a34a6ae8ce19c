// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the buddy TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// ==========================================================================
	// HEADER STYLES
	// ==========================================================================

	Header         lipgloss.Style
	HeaderTitle    lipgloss.Style
	HeaderSubtitle lipgloss.Style

	// ==========================================================================
	// MESSAGE STYLES
	// ==========================================================================

	TeacherLabel  lipgloss.Style
	StudentLabel  lipgloss.Style
	SystemLabel   lipgloss.Style
	TeacherBubble lipgloss.Style
	StudentBubble lipgloss.Style
	SystemBubble  lipgloss.Style
	Timestamp     lipgloss.Style

	// ==========================================================================
	// INPUT AREA STYLES
	// ==========================================================================

	InputContainer   lipgloss.Style
	InputPrompt      lipgloss.Style
	InputPlaceholder lipgloss.Style

	// ==========================================================================
	// STATUS BAR STYLES
	// ==========================================================================

	StatusBar     lipgloss.Style
	TeachOn       lipgloss.Style
	TeachLearning lipgloss.Style
	TeachLearned  lipgloss.Style
	AudioActive   lipgloss.Style
	Sending       lipgloss.Style
	ShortcutKey   lipgloss.Style
	ShortcutDesc  lipgloss.Style

	// ==========================================================================
	// SIDEBAR / SESSION LIST STYLES
	// ==========================================================================

	Sidebar             lipgloss.Style
	SidebarTitle        lipgloss.Style
	SessionItem         lipgloss.Style
	SessionItemSelected lipgloss.Style
	SessionTitle        lipgloss.Style
	SessionMeta         lipgloss.Style

	// ==========================================================================
	// COMMAND PALETTE STYLES
	// ==========================================================================

	PaletteBox          lipgloss.Style
	PaletteItem         lipgloss.Style
	PaletteItemSelected lipgloss.Style
	PaletteCommand      lipgloss.Style
	PaletteDesc         lipgloss.Style

	// ==========================================================================
	// SPINNER AND ERROR STYLES
	// ==========================================================================

	Spinner      lipgloss.Style
	ThinkingText lipgloss.Style
	ErrorText    lipgloss.Style
}

// NewTheme creates a new theme with all styles configured.
func NewTheme() *Theme {
	colorProfile := termenv.ColorProfile()

	t := &Theme{
		IsDark:       termenv.HasDarkBackground(),
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}

	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	// Header
	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan).
		Background(SurfaceDim).
		Padding(0, 2)

	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple)

	t.HeaderSubtitle = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	// Message labels and bubbles
	t.TeacherLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(TeacherBubbleBorder)

	t.StudentLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple)

	t.SystemLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(Amber)

	t.TeacherBubble = lipgloss.NewStyle().
		Foreground(TeacherBubbleFg).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(TeacherBubbleBorder).
		PaddingLeft(1)

	t.StudentBubble = lipgloss.NewStyle().
		Foreground(StudentBubbleFg).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(StudentBubbleBorder).
		PaddingLeft(1)

	t.SystemBubble = lipgloss.NewStyle().
		Foreground(SystemBubbleFg).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(SystemBubbleBorder).
		PaddingLeft(1).
		Italic(true)

	t.Timestamp = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Input area
	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.InputPrompt = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.InputPlaceholder = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	// Status bar
	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)

	t.TeachOn = lipgloss.NewStyle().
		Foreground(Amber).
		Bold(true)

	t.TeachLearning = lipgloss.NewStyle().
		Foreground(Amber).
		Bold(true).
		Blink(true)

	t.TeachLearned = lipgloss.NewStyle().
		Foreground(Emerald).
		Bold(true)

	t.AudioActive = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)

	t.Sending = lipgloss.NewStyle().
		Foreground(Cyan)

	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Sidebar
	t.Sidebar = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.SidebarTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan)

	t.SessionItem = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Padding(0, 1)

	t.SessionItemSelected = lipgloss.NewStyle().
		Background(Purple).
		Foreground(TextInverse).
		Bold(true).
		Padding(0, 1)

	t.SessionTitle = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.SessionMeta = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Command palette
	t.PaletteBox = lipgloss.NewStyle().
		Background(Surface).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Purple).
		Padding(0, 1)

	t.PaletteItem = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Padding(0, 1)

	t.PaletteItemSelected = lipgloss.NewStyle().
		Background(Purple).
		Foreground(TextInverse).
		Bold(true).
		Padding(0, 1)

	t.PaletteCommand = lipgloss.NewStyle().
		Foreground(Cyan).
		Width(12)

	t.PaletteDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Spinner and errors
	t.Spinner = lipgloss.NewStyle().
		Foreground(Purple)

	t.ThinkingText = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	t.ErrorText = lipgloss.NewStyle().
		Foreground(Rose)
}
