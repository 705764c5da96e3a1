// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"docchat/internal/api"
	"docchat/internal/auth"
	"docchat/internal/model"
	"docchat/internal/session"
)

// stubBackend satisfies the session backend without touching the network.
type stubBackend struct{}

func (stubBackend) ListChats(context.Context) ([]model.ChatSummary, error) { return nil, nil }
func (stubBackend) CreateChat(_ context.Context, name string) (model.ChatSummary, error) {
	return model.ChatSummary{ID: "1", Title: name}, nil
}
func (stubBackend) ListMessages(context.Context, string) ([]model.Message, error) { return nil, nil }
func (stubBackend) StoreMessage(context.Context, string, model.Message) error    { return nil }
func (stubBackend) Query(context.Context, string, string) (string, error)        { return "", nil }
func (stubBackend) UploadDocument(context.Context, string, string, io.Reader) error {
	return nil
}
func (stubBackend) KnowledgeGraph(context.Context, string) (map[string]any, error) {
	return nil, nil
}
func (stubBackend) SetToken(string) {}

func newTestApp(t *testing.T) *App {
	t.Helper()
	ctrl := session.New(stubBackend{}, auth.NewStore(t.TempDir()), nil)
	return NewApp("dark", ctrl, api.NewClient(), nil)
}

// stageDocs drops n pdf files into a temp dir and stages them all.
func stageDocs(t *testing.T, a *App, n int) {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, n)
	for i := range paths {
		path := filepath.Join(dir, string(rune('a'+i))+".pdf")
		if err := os.WriteFile(path, []byte("%PDF-1.4"), 0600); err != nil {
			t.Fatal(err)
		}
		paths[i] = path
	}
	a.ctrl.StageFiles(paths)
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// =============================================================================
// STAGED FILE REMOVAL KEYS
// =============================================================================

func TestSidebarDigitRemovesStagedFile(t *testing.T) {
	a := newTestApp(t)
	stageDocs(t, a, 2)
	a.focus = focusSidebar

	a.Update(keyRunes("2"))

	staged := a.ctrl.Staged()
	if len(staged) != 1 {
		t.Fatalf("staged %d files after removal, want 1", len(staged))
	}
	if staged[0].Name != "a.pdf" {
		t.Errorf("remaining file = %q, want a.pdf", staged[0].Name)
	}

	a.Update(keyRunes("1"))
	if got := len(a.ctrl.Staged()); got != 0 {
		t.Errorf("staged %d files after second removal, want 0", got)
	}
}

func TestSidebarDigitOutOfRangeIsIgnored(t *testing.T) {
	a := newTestApp(t)
	stageDocs(t, a, 1)
	a.focus = focusSidebar

	updated, _ := a.Update(keyRunes("9"))
	if updated == nil {
		t.Fatal("Update returned a nil model")
	}
	if got := len(a.ctrl.Staged()); got != 1 {
		t.Errorf("staged %d files, want 1", got)
	}
}

func TestInputDigitRemovesWhenLineEmpty(t *testing.T) {
	a := newTestApp(t)
	stageDocs(t, a, 1)
	a.focus = focusInput
	a.pane.Focus()

	a.Update(keyRunes("1"))

	if got := len(a.ctrl.Staged()); got != 0 {
		t.Errorf("staged %d files, want 0", got)
	}
	if got := a.pane.InputValue(); got != "" {
		t.Errorf("digit leaked into the input line: %q", got)
	}
}

func TestInputDigitTypesWhileComposing(t *testing.T) {
	a := newTestApp(t)
	stageDocs(t, a, 1)
	a.focus = focusInput
	a.pane.Focus()

	// "4" names no staged slot, so it starts the message; from then on
	// digits are text.
	a.Update(keyRunes("4"))
	a.Update(keyRunes("1"))

	if got := len(a.ctrl.Staged()); got != 1 {
		t.Errorf("staged %d files, want 1", got)
	}
	if got := a.pane.InputValue(); got != "41" {
		t.Errorf("input line = %q, want %q", got, "41")
	}
}
