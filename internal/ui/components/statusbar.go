// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"docchat/internal/auth"
	"docchat/internal/ui/styles"
)

// =============================================================================
// STATUS BAR
// =============================================================================

// shortcut is one key hint in the status bar.
type shortcut struct {
	key  string
	desc string
}

var shortcuts = []shortcut{
	{"tab", "focus"},
	{"ctrl+n", "new chat"},
	{"ctrl+g", "graph"},
	{"ctrl+u", "upload"},
	{"ctrl+l", "logout"},
	{"ctrl+c", "quit"},
}

// StatusBar renders the bottom bar: identity on the left, key hints on the
// right.
func StatusBar(theme *styles.Theme, identity auth.Identity, width int) string {
	var who string
	if identity.Anonymous() {
		who = theme.StatusAnon.Render("● anonymous")
	} else {
		who = theme.StatusUser.Render("● " + identity.DisplayName())
	}

	hints := make([]string, 0, len(shortcuts))
	for _, sc := range shortcuts {
		hints = append(hints,
			theme.ShortcutKey.Render(sc.key)+theme.ShortcutDesc.Render(" "+sc.desc))
	}
	right := strings.Join(hints, theme.ShortcutDesc.Render("  "))

	gap := width - lipgloss.Width(who) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}

	return theme.StatusBar.Width(width).Render(
		who + strings.Repeat(" ", gap) + right)
}
