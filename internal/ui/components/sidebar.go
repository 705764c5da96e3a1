// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the reusable view pieces of the docchat TUI:
// the chat sidebar, status bar, staged-file list, graph overlay, and the
// login form.
package components

import (
	"fmt"
	"strings"

	"docchat/internal/model"
	"docchat/internal/ui/styles"
	"docchat/internal/util"
)

// =============================================================================
// CHAT SIDEBAR
// =============================================================================

// Sidebar renders the chat list with the selection highlighted and a
// cursor for keyboard navigation.
type Sidebar struct {
	theme  *styles.Theme
	cursor int
}

// NewSidebar creates a sidebar.
func NewSidebar(theme *styles.Theme) *Sidebar {
	return &Sidebar{theme: theme}
}

// Cursor returns the cursor position.
func (s *Sidebar) Cursor() int { return s.cursor }

// Move shifts the cursor by delta, clamped to the list.
func (s *Sidebar) Move(delta, listLen int) {
	s.cursor += delta
	if s.cursor < 0 {
		s.cursor = 0
	}
	if s.cursor >= listLen {
		s.cursor = listLen - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
}

// View renders the sidebar for the given chats and selection.
func (s *Sidebar) View(chats []model.ChatSummary, selectedID string, width, height int) string {
	var b strings.Builder
	b.WriteString(s.theme.SidebarTitle.Render("Chats"))
	b.WriteString("\n")

	if len(chats) == 0 {
		b.WriteString(s.theme.SidebarMeta.Render("No chats yet."))
		b.WriteString("\n")
		b.WriteString(s.theme.SidebarMeta.Render("Ctrl+N to start one."))
		return s.theme.Sidebar.Height(height).Width(width).Render(b.String())
	}

	for i, chat := range chats {
		title := chat.DisplayTitle(width - 6)

		cursor := "  "
		if i == s.cursor {
			cursor = "> "
		}

		line := cursor + title
		if chat.ID == selectedID {
			line = s.theme.SidebarItemSelected.Render(line)
		} else {
			line = s.theme.SidebarItem.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")

		meta := fmt.Sprintf("   %d messages", chat.MessageCount)
		b.WriteString(s.theme.SidebarMeta.Render(util.TruncateWidth(meta, width-2)))
		b.WriteString("\n")
	}

	return s.theme.Sidebar.Height(height).Width(width).Render(b.String())
}
