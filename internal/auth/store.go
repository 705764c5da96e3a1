// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth persists the bearer token pair and derives the local identity
// from it. Tokens are opaque strings issued by the remote auth service; the
// client never validates them, it only decodes the access token's claims for
// display.
package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"docchat/internal/util"
)

// tokensFile is the fixed name of the token file inside the config dir.
const tokensFile = "tokens.json"

// =============================================================================
// TOKEN PAIR
// =============================================================================

// TokenPair is the persisted access/refresh pair, stored under fixed keys.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Empty reports whether no access token is present.
func (t TokenPair) Empty() bool {
	return t.Access == ""
}

// =============================================================================
// STORE
// =============================================================================

// Store reads and writes the token pair in durable local storage.
//
// The pair lives in a single file replaced atomically, so there is no state
// where one token is cleared and the other is not. The file is 0600: it is
// a credential.
type Store struct {
	dir string
}

// NewStore creates a store rooted at the given config directory.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// path returns the token file path.
func (s *Store) path() string {
	return filepath.Join(s.dir, tokensFile)
}

// Load reads the persisted pair. A missing file is not an error; it means
// an anonymous session.
func (s *Store) Load() (TokenPair, error) {
	data, err := os.ReadFile(s.path())
	if err != nil {
		if os.IsNotExist(err) {
			return TokenPair{}, nil
		}
		return TokenPair{}, fmt.Errorf("failed to read token file: %w", err)
	}

	var pair TokenPair
	if err := json.Unmarshal(data, &pair); err != nil {
		return TokenPair{}, fmt.Errorf("failed to parse token file: %w", err)
	}
	return pair, nil
}

// Save persists the pair atomically with 0600 perms.
func (s *Store) Save(pair TokenPair) error {
	data, err := json.MarshalIndent(pair, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode tokens: %w", err)
	}
	return util.AtomicWriteFile(s.path(), data, 0600)
}

// Clear removes both tokens. Removal of the single file is the atomicity
// guarantee: there is no intermediate state with one token left behind.
func (s *Store) Clear() error {
	if err := os.Remove(s.path()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}
