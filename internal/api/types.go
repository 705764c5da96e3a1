// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the document-chat backend.
//
// This file defines the wire types. The backend reports chat ids as JSON
// numbers; the client keeps them opaque strings everywhere above the decode
// boundary.
package api

import (
	"encoding/json"
	"time"

	"docchat/internal/model"
)

// =============================================================================
// CHAT PAYLOADS
// =============================================================================

// chatPayload mirrors the backend chat serializer:
// {id, name, created_at, messages?}.
type chatPayload struct {
	ID        json.Number      `json:"id"`
	Name      string           `json:"name"`
	CreatedAt string           `json:"created_at"`
	Messages  []messagePayload `json:"messages"`
}

// toSummary converts a wire chat into the client's summary form. The
// message count is only as fresh as this payload; the session controller
// keeps it in sync for the selected chat.
func (p chatPayload) toSummary() model.ChatSummary {
	return model.ChatSummary{
		ID:           p.ID.String(),
		Title:        p.Name,
		MessageCount: len(p.Messages),
		LastUpdated:  parseTimestamp(p.CreatedAt),
	}
}

// createChatRequest is the POST /rag/chats/ body.
type createChatRequest struct {
	Name string `json:"name"`
}

// =============================================================================
// MESSAGE PAYLOADS
// =============================================================================

// messagePayload mirrors one entry of the messages endpoint.
type messagePayload struct {
	Content   string `json:"content"`
	Sender    string `json:"sender"`
	Timestamp string `json:"timestamp"`
}

// messagesResponse is the GET /rag/chats/{id}/messages/ body.
type messagesResponse struct {
	Messages []messagePayload `json:"messages"`
}

// storeMessageRequest is the POST /rag/chats/{id}/messages/ body.
type storeMessageRequest struct {
	Content string `json:"content"`
	Sender  string `json:"sender"`
}

// toMessage converts a wire message into the local form. The backend stores
// no message identifiers, so each decode mints a fresh local ID.
func (p messagePayload) toMessage() model.Message {
	sender := model.Sender(p.Sender)
	if sender != model.SenderUser && sender != model.SenderAssistant {
		sender = model.SenderAssistant
	}
	msg := model.NewMessage(sender, p.Content)
	if ts := parseTimestamp(p.Timestamp); !ts.IsZero() {
		msg.Timestamp = ts
	}
	return msg
}

// =============================================================================
// QUERY / GRAPH PAYLOADS
// =============================================================================

// queryRequest is the POST /rag/chats/{id}/query/ body.
type queryRequest struct {
	Question string `json:"question"`
}

// queryResponse is the answer envelope.
type queryResponse struct {
	Answer string `json:"answer"`
}

// graphResponse is the knowledge-graph envelope. The payload stays opaque.
type graphResponse struct {
	GraphData map[string]any `json:"graph_data"`
}

// =============================================================================
// AUTH PAYLOADS
// =============================================================================

// RegisterParams holds the fields of the register form.
type RegisterParams struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
}

// loginRequest is the POST /api/auth/login/ body.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Tokens is the access/refresh pair issued by the auth service. Both are
// opaque to the client; only the access token's payload is ever decoded,
// and that happens in the auth package without verification.
type Tokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// authResponse is the nested token envelope:
// {data: {tokens: {access, refresh}}}.
type authResponse struct {
	Data struct {
		Tokens Tokens `json:"tokens"`
	} `json:"data"`
}

// backendError is the {"error": ...} body most failure responses carry.
type backendError struct {
	Error string `json:"error"`
}

// =============================================================================
// HELPERS
// =============================================================================

// parseTimestamp decodes the backend's ISO-8601 timestamps, returning the
// zero time on failure. Callers treat zero as "unknown" and substitute the
// receive time.
func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
