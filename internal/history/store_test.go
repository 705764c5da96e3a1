// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"path/filepath"
	"testing"
	"time"

	"docchat/internal/model"
)

// openTestStore opens an archive in a temp dir and closes it with the test.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_AppendAndRecent(t *testing.T) {
	s := openTestStore(t)

	msgs := []model.Message{
		model.NewUserMessage("what is a knowledge graph?"),
		model.NewAssistantMessage("a structured representation of entities"),
		model.NewUserMessage("show me one"),
	}
	for i, m := range msgs {
		m.Timestamp = time.Date(2025, 1, 1, 12, i, 0, 0, time.UTC)
		if err := s.Append("chat-1", m); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	got, err := s.Recent("chat-1", 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Recent() returned %d entries, want 3", len(got))
	}
	// Oldest first, like the chat pane.
	if got[0].Content != msgs[0].Content || got[2].Content != msgs[2].Content {
		t.Errorf("Recent() order wrong: %q ... %q", got[0].Content, got[2].Content)
	}
	if got[0].Sender != model.SenderUser || got[1].Sender != model.SenderAssistant {
		t.Errorf("senders not preserved: %v, %v", got[0].Sender, got[1].Sender)
	}
}

func TestStore_RecentLimitsPerChat(t *testing.T) {
	s := openTestStore(t)

	for i := 0; i < 5; i++ {
		m := model.NewUserMessage("msg")
		m.Timestamp = time.Date(2025, 1, 1, 12, i, 0, 0, time.UTC)
		if err := s.Append("chat-1", m); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.Append("chat-2", model.NewUserMessage("other chat")); err != nil {
		t.Fatal(err)
	}

	got, err := s.Recent("chat-1", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("Recent(2) returned %d entries", len(got))
	}
	for _, e := range got {
		if e.ChatID != "chat-1" {
			t.Errorf("entry from wrong chat: %q", e.ChatID)
		}
	}
}

func TestStore_AppendDuplicateIgnored(t *testing.T) {
	s := openTestStore(t)

	m := model.NewUserMessage("once")
	if err := s.Append("chat-1", m); err != nil {
		t.Fatal(err)
	}
	if err := s.Append("chat-1", m); err != nil {
		t.Fatal(err)
	}

	n, err := s.Count()
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("duplicate append counted: %d entries, want 1", n)
	}
}

func TestStore_Search(t *testing.T) {
	s := openTestStore(t)

	if err := s.Append("chat-1", model.NewUserMessage("tell me about graphs")); err != nil {
		t.Fatal(err)
	}
	if err := s.Append("chat-2", model.NewAssistantMessage("graphs have nodes and edges")); err != nil {
		t.Fatal(err)
	}
	if err := s.Append("chat-1", model.NewUserMessage("unrelated question")); err != nil {
		t.Fatal(err)
	}

	got, err := s.Search("graph", 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("Search() returned %d entries, want 2", len(got))
	}
}

func TestStore_Closed(t *testing.T) {
	s := openTestStore(t)
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	if err := s.Append("chat-1", model.NewUserMessage("x")); err != ErrClosed {
		t.Errorf("Append after Close = %v, want ErrClosed", err)
	}
	if _, err := s.Search("x", 1); err != ErrClosed {
		t.Errorf("Search after Close = %v, want ErrClosed", err)
	}
	// Double close is fine.
	if err := s.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}
