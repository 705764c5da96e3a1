// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"testing"
	"time"
)

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestNewUserMessage(t *testing.T) {
	msg := NewUserMessage("Hello")

	if msg.Sender != SenderUser {
		t.Errorf("Sender = %q, want %q", msg.Sender, SenderUser)
	}
	if msg.Content != "Hello" {
		t.Errorf("Content = %q, want 'Hello'", msg.Content)
	}
	if msg.ID == "" {
		t.Error("ID should be generated")
	}
	if msg.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}
}

func TestNewAssistantMessage(t *testing.T) {
	msg := NewAssistantMessage("Answer")

	if msg.Sender != SenderAssistant {
		t.Errorf("Sender = %q, want %q", msg.Sender, SenderAssistant)
	}
	if msg.Content != "Answer" {
		t.Errorf("Content = %q, want 'Answer'", msg.Content)
	}
}

func TestMessage_UniqueIDs(t *testing.T) {
	a := NewUserMessage("a")
	b := NewUserMessage("a")
	if a.ID == b.ID {
		t.Error("two messages share an ID")
	}
}

func TestMessage_Preview(t *testing.T) {
	msg := NewUserMessage("first line of a fairly long question\nsecond line")
	got := msg.Preview(10)
	if got != "first l..." {
		t.Errorf("Preview(10) = %q, want 'first l...'", got)
	}
}

func TestSender_DisplayName(t *testing.T) {
	if SenderUser.DisplayName() != "You" {
		t.Errorf("user display = %q", SenderUser.DisplayName())
	}
	if SenderAssistant.DisplayName() != "Assistant" {
		t.Errorf("assistant display = %q", SenderAssistant.DisplayName())
	}
}

// =============================================================================
// CHAT SUMMARY TESTS
// =============================================================================

func TestChatSummary_DisplayTitle(t *testing.T) {
	c := ChatSummary{ID: "1", Title: "Research", LastUpdated: time.Now()}
	if got := c.DisplayTitle(20); got != "Research" {
		t.Errorf("DisplayTitle = %q, want 'Research'", got)
	}

	empty := ChatSummary{ID: "2"}
	if got := empty.DisplayTitle(20); got != "Untitled chat" {
		t.Errorf("DisplayTitle = %q, want 'Untitled chat'", got)
	}
}

// =============================================================================
// GRAPH VIEW TESTS
// =============================================================================

func TestGraphView_Failed(t *testing.T) {
	ok := GraphView{ChatID: "1", Data: map[string]any{"nodes": []any{}}}
	if ok.Failed() {
		t.Error("view with data should not report failure")
	}

	bad := GraphView{ChatID: "1", Err: "Could not fetch knowledge graph."}
	if !bad.Failed() {
		t.Error("view with error marker should report failure")
	}
}
