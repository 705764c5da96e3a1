// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package files

import (
	"os"
	"path/filepath"
	"testing"
)

// writeFile drops a file with content into dir and returns its path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

// =============================================================================
// TYPE FILTER TESTS
// =============================================================================

func TestAccepted(t *testing.T) {
	tests := []struct {
		name  string
		file  string
		sniff string
		want  bool
	}{
		{name: "pdf extension", file: "report.pdf", want: true},
		{name: "docx extension", file: "notes.docx", want: true},
		{name: "uppercase extension", file: "REPORT.PDF", want: true},
		{name: "exe rejected", file: "report.exe", want: false},
		{name: "doc rejected", file: "old.doc", want: false},
		{name: "no extension rejected", file: "README", want: false},
		{name: "pdf content without extension", file: "mystery", sniff: "%PDF-1.7 ...", want: true},
		{name: "text content without extension", file: "mystery", sniff: "hello", want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Accepted(tc.file, []byte(tc.sniff)); got != tc.want {
				t.Errorf("Accepted(%q, %q) = %v, want %v", tc.file, tc.sniff, got, tc.want)
			}
		})
	}
}

// =============================================================================
// STAGING LIST TESTS
// =============================================================================

func TestStaging_AddFiltersTypes(t *testing.T) {
	dir := t.TempDir()
	pdf := writeFile(t, dir, "report.pdf", "%PDF-1.4")
	exe := writeFile(t, dir, "report.exe", "MZ")
	docx := writeFile(t, dir, "notes.docx", "PK")

	var s Staging
	accepted := s.Add([]string{pdf, exe, docx})

	if len(accepted) != 2 {
		t.Fatalf("accepted %d files, want 2", len(accepted))
	}
	if s.Len() != 2 {
		t.Fatalf("staging has %d files, want 2", s.Len())
	}
	if accepted[0].Name != "report.pdf" || accepted[1].Name != "notes.docx" {
		t.Errorf("accepted = %v", s.Names())
	}
	if accepted[0].Size == 0 {
		t.Error("accepted entry should carry file size")
	}
}

func TestStaging_AddRejectedOnly(t *testing.T) {
	dir := t.TempDir()
	exe := writeFile(t, dir, "virus.exe", "MZ")

	var s Staging
	accepted := s.Add([]string{exe})

	if len(accepted) != 0 {
		t.Errorf("accepted = %v, want none", accepted)
	}
	if s.Len() != 0 {
		t.Errorf("staging list changed for rejected file")
	}
}

func TestStaging_Remove(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.pdf", "%PDF-")
	b := writeFile(t, dir, "b.pdf", "%PDF-")
	c := writeFile(t, dir, "c.pdf", "%PDF-")

	var s Staging
	s.Add([]string{a, b, c})

	s.Remove(1)
	names := s.Names()
	if len(names) != 2 || names[0] != "a.pdf" || names[1] != "c.pdf" {
		t.Errorf("after Remove(1): %v", names)
	}

	// Out-of-range removals are no-ops.
	s.Remove(-1)
	s.Remove(10)
	if s.Len() != 2 {
		t.Errorf("out-of-range Remove changed the list: %v", s.Names())
	}
}
