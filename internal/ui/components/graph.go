// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"encoding/json"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"

	"docchat/internal/model"
	"docchat/internal/ui/styles"
)

// =============================================================================
// KNOWLEDGE GRAPH OVERLAY
// =============================================================================

// GraphOverlay renders the knowledge-graph payload as highlighted JSON. The
// payload is opaque; pretty-printing is the whole presentation. A failed
// fetch renders its error marker in the same box.
func GraphOverlay(theme *styles.Theme, view *model.GraphView, width int) string {
	var b strings.Builder
	b.WriteString(theme.OverlayTitle.Render("Knowledge Graph"))
	b.WriteString("\n\n")

	switch {
	case view == nil:
		b.WriteString(theme.FormLabel.Render("Nothing fetched yet."))
	case view.Failed():
		b.WriteString(theme.ErrorText.Render(view.Err))
	default:
		b.WriteString(renderGraphJSON(view.Data, theme.IsDark))
	}

	b.WriteString("\n\n")
	b.WriteString(theme.ShortcutKey.Render("esc") + theme.ShortcutDesc.Render(" close"))

	return theme.OverlayBox.Width(width).Render(b.String())
}

// renderGraphJSON pretty-prints the payload with syntax highlighting,
// falling back to plain JSON when highlighting fails.
func renderGraphJSON(data map[string]any, dark bool) string {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "(unrenderable payload)"
	}

	style := "catppuccin-latte"
	if dark {
		style = "catppuccin-mocha"
	}

	var hl strings.Builder
	if err := quick.Highlight(&hl, string(raw), "json", "terminal256", style); err != nil {
		return string(raw)
	}
	return hl.String()
}
