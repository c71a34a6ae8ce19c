// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the buddy TUI.
package styles

import (
	"strings"
	"testing"
)

func TestNewThemeInitializesStyles(t *testing.T) {
	theme := NewTheme()

	// A zero style means initStyles missed a field.
	if !theme.TeacherLabel.GetBold() {
		t.Error("TeacherLabel should be bold")
	}
	if !theme.StudentLabel.GetBold() {
		t.Error("StudentLabel should be bold")
	}
	if !theme.TeachLearned.GetBold() {
		t.Error("TeachLearned should be bold")
	}
	if theme.SystemBubble.GetItalic() != true {
		t.Error("SystemBubble should be italic")
	}
	if theme.Sidebar.GetBorderRight() != true {
		t.Error("Sidebar should have a right border")
	}
}

func TestRenderErrorIncludesIndicator(t *testing.T) {
	out := RenderError("boom")
	if !strings.Contains(out, StatusIndicators.Error) {
		t.Errorf("RenderError output missing shape indicator: %q", out)
	}
	if !strings.Contains(out, "boom") {
		t.Errorf("RenderError output missing message: %q", out)
	}
}

func TestRenderInfoIncludesIndicator(t *testing.T) {
	out := RenderInfo("note")
	if !strings.Contains(out, StatusIndicators.Info) {
		t.Errorf("RenderInfo output missing shape indicator: %q", out)
	}
}
