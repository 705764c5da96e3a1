// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import "docchat/internal/model"

// =============================================================================
// COMMANDS AND EVENTS
// =============================================================================

// Event is the result of a command. Events are delivered back to the event
// loop and folded into controller state with Apply; they carry everything
// Apply needs to decide whether the result is still current.
type Event interface {
	apply(c *Controller)
}

// ChatsLoaded carries the result of a chat-list fetch.
type ChatsLoaded struct {
	Chats []model.ChatSummary
	Err   error
}

// ChatCreated carries the result of a create-chat request.
type ChatCreated struct {
	Chat model.ChatSummary
	Err  error
}

// MessagesFetched carries the message log fetched for one chat. Seq is the
// fetch generation at issue time; Apply discards the event when the
// selection has moved on since.
type MessagesFetched struct {
	ChatID   string
	Seq      uint64
	Messages []model.Message
	Err      error
}

// AnswerReceived carries the assistant's reply to a query. Message is
// always populated: on failure it holds the fixed error notice, so the
// conversation grows by one assistant entry either way. Err is kept for
// logging and UI styling.
type AnswerReceived struct {
	ChatID  string
	Message model.Message
	Err     error
}

// UploadFinished carries the outcome of a document ingestion attempt.
type UploadFinished struct {
	ChatID   string
	Filename string
	Err      error
}

// GraphFetched carries the knowledge-graph payload for one chat, or the
// fetch error. The overlay opens on either outcome.
type GraphFetched struct {
	ChatID string
	Data   map[string]any
	Err    error
}
