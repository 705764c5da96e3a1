// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package files

import (
	"fmt"
	"testing"
	"time"
)

// =============================================================================
// INBOX WATCHER TESTS
// =============================================================================

func TestWatcher_DeliversAcceptedDrops(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir, 20*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Watch(); err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	pdf := writeFile(t, dir, "report.pdf", "%PDF-1.4")
	writeFile(t, dir, "notes.txt", "plain text")

	select {
	case got := <-w.Events():
		if got != pdf {
			t.Errorf("delivered %q, want %q", got, pdf)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("accepted drop was never delivered")
	}

	// The rejected drop must not follow.
	select {
	case got := <-w.Events():
		t.Errorf("unexpected delivery %q", got)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatcher_CloseUnblocksUndrainedDelivery(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir, 10*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Watch(); err != nil {
		t.Fatal(err)
	}

	// Drop more files than the events channel buffers and never drain it,
	// so delivery ends up blocked mid-send.
	for i := 0; i < 12; i++ {
		writeFile(t, dir, fmt.Sprintf("doc%02d.pdf", i), "%PDF-1.4")
	}
	time.Sleep(200 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		w.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Close hung behind a blocked delivery")
	}
}
