// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package files manages the client-local document staging list: which
// PDF/DOCX files the user has queued for upload, independent of any chat
// until one is selected.
package files

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// =============================================================================
// STAGED FILE
// =============================================================================

// StagedFile is one entry in the staging list. Path may be empty for files
// whose bytes arrived some other way; Name is always set.
type StagedFile struct {
	Name    string
	Path    string
	Size    int64
	AddedAt time.Time
}

// Open returns a reader over the staged file's bytes.
func (f StagedFile) Open() (*os.File, error) {
	return os.Open(f.Path)
}

// =============================================================================
// TYPE FILTER
// =============================================================================

// pdfMagic is the signature every PDF starts with. Content sniffing stands
// in for MIME-type detection: a browser reports application/pdf, a terminal
// client looks at the bytes.
var pdfMagic = []byte("%PDF-")

// Accepted reports whether a file qualifies for staging: .docx by
// extension, or PDF by extension or content signature. Everything else is
// silently dropped by callers, with no server call.
func Accepted(name string, sniff []byte) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".docx", ".pdf":
		return true
	}
	return len(sniff) >= len(pdfMagic) && string(sniff[:len(pdfMagic)]) == string(pdfMagic)
}

// AcceptedPath checks a file on disk, sniffing its first bytes when the
// extension alone doesn't decide.
func AcceptedPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".docx", ".pdf":
		return true
	}

	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	head := make([]byte, len(pdfMagic))
	n, _ := f.Read(head)
	return Accepted(path, head[:n])
}

// =============================================================================
// STAGING LIST
// =============================================================================

// Staging is the ordered staging list. It is owned by the session
// controller and mutated only on the event loop, so it carries no lock.
type Staging struct {
	files []StagedFile
}

// Add filters the given paths to accepted document types and appends them.
// It returns the accepted entries; rejected paths are simply absent from
// the result.
func (s *Staging) Add(paths []string) []StagedFile {
	var accepted []StagedFile
	for _, path := range paths {
		if !AcceptedPath(path) {
			continue
		}

		entry := StagedFile{
			Name:    filepath.Base(path),
			Path:    path,
			AddedAt: time.Now(),
		}
		if info, err := os.Stat(path); err == nil {
			entry.Size = info.Size()
		}
		accepted = append(accepted, entry)
	}

	s.files = append(s.files, accepted...)
	return accepted
}

// Remove deletes the entry at the given position. Out-of-range indices are
// a no-op; nothing already ingested server-side is affected.
func (s *Staging) Remove(index int) {
	if index < 0 || index >= len(s.files) {
		return
	}
	s.files = append(s.files[:index], s.files[index+1:]...)
}

// List returns the current staging list in order.
func (s *Staging) List() []StagedFile {
	return s.files
}

// Len returns the number of staged files.
func (s *Staging) Len() int {
	return len(s.files)
}

// Names returns the staged file names, for the upload summary message.
func (s *Staging) Names() []string {
	names := make([]string, len(s.files))
	for i, f := range s.files {
		names[i] = f.Name
	}
	return names
}
