// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/glamour"

	"docchat/internal/model"
	"docchat/internal/ui/styles"
)

// =============================================================================
// MESSAGE RENDERING
// =============================================================================

// newMarkdownRenderer builds the glamour renderer used for assistant
// messages. User messages are plain text; the assistant replies in
// markdown.
func newMarkdownRenderer(width int, dark bool) *glamour.TermRenderer {
	style := "light"
	if dark {
		style = "dark"
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	return r
}

// renderMessage renders one message bubble with its timestamp line.
func renderMessage(theme *styles.Theme, renderer *glamour.TermRenderer, msg model.Message, width int) string {
	header := theme.Timestamp.Render(
		msg.Sender.DisplayName() + " · " + msg.Timestamp.Format("15:04"))

	content := msg.Content
	if msg.Sender == model.SenderAssistant && renderer != nil {
		if rendered, err := renderer.Render(msg.Content); err == nil {
			content = strings.TrimRight(rendered, "\n")
		}
	}

	bubble := theme.UserBubble
	if msg.Sender == model.SenderAssistant {
		bubble = theme.AssistantBubble
	}

	return header + "\n" + bubble.MaxWidth(width).Render(content)
}
