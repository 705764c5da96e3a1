// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history keeps a local, append-only archive of every message the
// session applies. The backend remains the source of truth for chat
// history; the archive is a client-side copy that stays readable offline
// and searchable from the command line.
package history

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"docchat/internal/model"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("history store is closed")

// =============================================================================
// ENTRY TYPE
// =============================================================================

// Entry is one archived message with the chat it belonged to.
type Entry struct {
	ChatID    string
	MessageID string
	Sender    model.Sender
	Content   string
	Timestamp time.Time
}

// =============================================================================
// STORE
// =============================================================================

// Store is the sqlite-backed archive. Safe for concurrent use.
type Store struct {
	mu     sync.Mutex
	db     *sql.DB
	closed bool
}

// Open opens (and if needed creates) the archive at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// initSchema creates the messages table if it doesn't exist.
func (s *Store) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS messages (
			message_id TEXT PRIMARY KEY,
			chat_id    TEXT NOT NULL,
			sender     TEXT NOT NULL,
			content    TEXT NOT NULL,
			ts         INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_messages_chat ON messages(chat_id, ts);
	`)
	if err != nil {
		return fmt.Errorf("failed to initialize history schema: %w", err)
	}
	return nil
}

// Close closes the archive.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// =============================================================================
// WRITE PATH
// =============================================================================

// Append archives one message. Duplicate message IDs are ignored, so a
// replayed append is harmless.
func (s *Store) Append(chatID string, msg model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	_, err := s.db.Exec(`
		INSERT OR IGNORE INTO messages (message_id, chat_id, sender, content, ts)
		VALUES (?, ?, ?, ?, ?)`,
		msg.ID, chatID, msg.Sender.String(), msg.Content, msg.Timestamp.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to archive message: %w", err)
	}
	return nil
}

// =============================================================================
// READ PATHS
// =============================================================================

// Search returns entries whose content contains term, newest first.
func (s *Store) Search(term string, limit int) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(`
		SELECT message_id, chat_id, sender, content, ts
		FROM messages
		WHERE content LIKE '%' || ? || '%'
		ORDER BY ts DESC
		LIMIT ?`, term, limit)
	if err != nil {
		return nil, fmt.Errorf("history search failed: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// Recent returns the latest n entries for one chat, oldest first so they
// read top to bottom like the chat pane.
func (s *Store) Recent(chatID string, n int) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	if n <= 0 {
		n = 20
	}

	rows, err := s.db.Query(`
		SELECT message_id, chat_id, sender, content, ts
		FROM (
			SELECT message_id, chat_id, sender, content, ts
			FROM messages WHERE chat_id = ?
			ORDER BY ts DESC LIMIT ?
		) ORDER BY ts ASC`, chatID, n)
	if err != nil {
		return nil, fmt.Errorf("history read failed: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// Count returns the number of archived messages.
func (s *Store) Count() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}

	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM messages`).Scan(&n); err != nil {
		return 0, fmt.Errorf("history count failed: %w", err)
	}
	return n, nil
}

// scanEntries reads all rows into entries.
func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var e Entry
		var sender string
		var ts int64
		if err := rows.Scan(&e.MessageID, &e.ChatID, &sender, &e.Content, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		e.Sender = model.Sender(sender)
		e.Timestamp = time.UnixMilli(ts)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
