// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"docchat/internal/util"
)

// =============================================================================
// CHAT SUMMARY TYPE
// =============================================================================

// ChatSummary is one entry in the sidebar's chat list. The ID is opaque and
// comes from the backend; list order is server-reported order with new chats
// appended.
type ChatSummary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	MessageCount int       `json:"message_count"`
	LastUpdated  time.Time `json:"last_updated"`
}

// DisplayTitle returns the title truncated to the given width, with a
// fallback for unnamed chats.
func (c ChatSummary) DisplayTitle(maxWidth int) string {
	title := c.Title
	if title == "" {
		title = "Untitled chat"
	}
	return util.TruncateWidth(title, maxWidth)
}

// =============================================================================
// GRAPH VIEW TYPE
// =============================================================================

// GraphView is the knowledge-graph payload for a chat. The payload is an
// opaque passthrough from the backend; the client never interprets it beyond
// pretty-printing. Err carries a displayable marker when the fetch failed,
// and the overlay opens either way.
type GraphView struct {
	ChatID string
	Data   map[string]any
	Err    string
}

// Failed reports whether this view holds an error marker instead of data.
func (g GraphView) Failed() bool {
	return g.Err != ""
}
