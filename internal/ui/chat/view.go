// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the main conversational view for the buddy TUI.
package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/buddy-tui/internal/audio"
	"github.com/jeranaias/buddy-tui/internal/model"
	"github.com/jeranaias/buddy-tui/internal/teach"
	"github.com/jeranaias/buddy-tui/internal/ui/styles"
	"github.com/jeranaias/buddy-tui/internal/util"
)

// View renders the complete chat interface.
func (m Model) View() string {
	if !m.ready {
		return "Starting buddy..."
	}

	var sections []string
	sections = append(sections, m.renderHeader())

	body := m.viewport.View()
	if m.sidebarVisible() {
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), body)
	}
	sections = append(sections, body)

	if m.paletteVisible {
		sections = append(sections, m.renderPalette())
	}

	sections = append(sections, m.renderInput())
	sections = append(sections, m.renderStatusBar())

	return strings.Join(sections, "\n")
}

// =============================================================================
// HEADER
// =============================================================================

func (m Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render("buddy")

	subtitle := "no session"
	if active, ok := m.sessions.Active(); ok {
		subtitle = active.DisplayTitle()
	} else if m.sessions.HasActive() {
		subtitle = m.sessions.ActiveID()
	}
	subtitle = util.TruncateWidth(subtitle, m.width-20)

	line := title + "  " + m.theme.HeaderSubtitle.Render(subtitle)
	return m.theme.Header.Width(m.width).Render(line)
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// renderMessages renders the whole transcript for the viewport.
func (m *Model) renderMessages() string {
	msgs := m.transcript.Messages()
	parts := make([]string, 0, len(msgs)+1)
	for _, msg := range msgs {
		parts = append(parts, m.renderMessage(msg))
	}

	if m.state == StateSending {
		parts = append(parts, m.renderThinking())
	}

	return strings.Join(parts, "\n\n")
}

// renderMessage renders a single message based on its role.
func (m *Model) renderMessage(msg model.Message) string {
	switch msg.Role {
	case model.RoleAssistant:
		return m.renderAssistantMessage(msg)
	case model.RoleSystem:
		return m.renderSystemMessage(msg)
	default:
		return m.renderTeacherMessage(msg)
	}
}

// bubbleWidth is the content width available to a message bubble.
func (m *Model) bubbleWidth() int {
	w := m.transcriptWidth() - 4
	if w < 16 {
		w = 16
	}
	return w
}

func (m *Model) renderTeacherMessage(msg model.Message) string {
	label := m.theme.TeacherLabel.Render(msg.Role.DisplayName()) +
		" " + m.theme.Timestamp.Render(msg.CreatedAt.Format("15:04"))
	body := m.theme.TeacherBubble.Width(m.bubbleWidth()).Render(msg.Content)
	return label + "\n" + body
}

func (m *Model) renderAssistantMessage(msg model.Message) string {
	label := m.theme.StudentLabel.Render(msg.Role.DisplayName()) +
		" " + m.theme.Timestamp.Render(msg.CreatedAt.Format("15:04"))
	body := m.theme.StudentBubble.Width(m.bubbleWidth()).Render(m.renderMarkdown(msg.Content))
	return label + "\n" + body
}

func (m *Model) renderSystemMessage(msg model.Message) string {
	return m.theme.SystemBubble.Width(m.bubbleWidth()).Render(msg.Content)
}

// renderMarkdown formats an assistant reply. Render failures fall back to
// the raw text so a reply is never lost to a formatting problem.
func (m *Model) renderMarkdown(content string) string {
	if m.mdRenderer == nil {
		return content
	}
	rendered, err := m.mdRenderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(rendered, "\n")
}

func (m *Model) renderThinking() string {
	return m.theme.Spinner.Render(m.spinner.View()) + " " +
		m.theme.ThinkingText.Render("thinking...")
}

// =============================================================================
// SIDEBAR
// =============================================================================

func (m Model) renderSidebar() string {
	inner := sidebarWidth - 4 // border + padding

	var b strings.Builder
	b.WriteString(m.theme.SidebarTitle.Render(fmt.Sprintf("Sessions (%d)", m.sessions.Len())))
	b.WriteString("\n")

	for _, s := range m.sessions.Sessions() {
		title := util.TruncateWidth(s.DisplayTitle(), inner-2)
		preview := util.TruncateWidth(s.Preview, inner-2)

		item := m.theme.SessionItem
		if s.SessionID == m.sessions.ActiveID() {
			item = m.theme.SessionItemSelected
		}

		b.WriteString("\n")
		b.WriteString(item.Render(m.theme.SessionTitle.Render(title)))
		if preview != "" {
			b.WriteString("\n " + m.theme.SessionMeta.Render(preview))
		}
	}

	if m.sessions.Len() == 0 {
		b.WriteString("\n" + m.theme.SessionMeta.Render("Nothing yet."))
	}

	return m.theme.Sidebar.
		Width(sidebarWidth - 2).
		Height(m.viewport.Height).
		Render(b.String())
}

// =============================================================================
// COMMAND PALETTE
// =============================================================================

func (m Model) renderPalette() string {
	var lines []string
	for i, cmd := range m.paletteItems {
		line := m.theme.PaletteCommand.Render(cmd.Name) +
			m.theme.PaletteDesc.Render(cmd.Description)
		if i == m.paletteIdx {
			line = m.theme.PaletteItemSelected.Render(line)
		} else {
			line = m.theme.PaletteItem.Render(line)
		}
		lines = append(lines, line)
	}
	return m.theme.PaletteBox.Render(strings.Join(lines, "\n"))
}

// =============================================================================
// INPUT AND STATUS BAR
// =============================================================================

func (m Model) renderInput() string {
	return m.theme.InputContainer.Width(m.width - 2).Render(m.input.View())
}

func (m Model) renderStatusBar() string {
	var left []string

	if m.state == StateSending {
		left = append(left, m.theme.Sending.Render(m.spinner.View()+" sending"))
	}

	if indicator := m.teachIndicator(); indicator != "" {
		left = append(left, indicator)
	}

	if indicator := m.audioIndicator(); indicator != "" {
		left = append(left, indicator)
	}

	if m.statusMsg != "" {
		left = append(left, m.theme.ShortcutDesc.Render(m.statusMsg))
	}

	right := m.theme.ShortcutKey.Render("ctrl+s") + m.theme.ShortcutDesc.Render(" sidebar  ") +
		m.theme.ShortcutKey.Render("/help") + m.theme.ShortcutDesc.Render(" commands  ") +
		m.theme.ShortcutKey.Render("ctrl+q") + m.theme.ShortcutDesc.Render(" quit")

	leftStr := strings.Join(left, "  ")
	gap := m.width - lipgloss.Width(leftStr) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}

	return m.theme.StatusBar.Width(m.width).Render(leftStr + strings.Repeat(" ", gap) + right)
}

// teachIndicator maps the teach controller onto the status bar.
func (m Model) teachIndicator() string {
	if !m.teach.Enabled() {
		return ""
	}
	switch m.teach.Status() {
	case teach.StatusLearning:
		return m.theme.TeachLearning.Render("TEACH learning...")
	case teach.StatusLearned:
		return m.theme.TeachLearned.Render(styles.StatusIndicators.Success + " learned")
	default:
		return m.theme.TeachOn.Render("TEACH on")
	}
}

// audioIndicator maps the audio controller onto the status bar.
func (m Model) audioIndicator() string {
	if m.audio == nil {
		return ""
	}
	switch m.audio.State() {
	case audio.StateRecording:
		return m.theme.AudioActive.Render(styles.StatusIndicators.Recording + " recording")
	case audio.StateTranscribing:
		return m.theme.AudioActive.Render("transcribing...")
	case audio.StatePlaying:
		return m.theme.AudioActive.Render(styles.StatusIndicators.Playing + " playing")
	default:
		return ""
	}
}
