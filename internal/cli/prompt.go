// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the non-TUI commands: login, register, ask, and
// history. They share the backend client and token store with the TUI and
// print with the same palette.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"
	"golang.org/x/term"

	"docchat/internal/config"
	"docchat/internal/ui/styles"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(styles.Cyan).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary)

	errorStyle = lipgloss.NewStyle().
			Foreground(styles.Rose).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(styles.Emerald).
			Bold(true)
)

// =============================================================================
// LINE INPUT
// =============================================================================

// Prompt wraps liner with persistent input history.
type Prompt struct {
	line        *liner.State
	historyFile string
}

// NewPrompt creates a prompt with history loaded from the config dir.
func NewPrompt() *Prompt {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	dir, err := config.ConfigDir()
	if err != nil {
		dir = os.TempDir()
	}

	p := &Prompt{
		line:        line,
		historyFile: filepath.Join(dir, "cli_history"),
	}
	if f, err := os.Open(p.historyFile); err == nil {
		p.line.ReadHistory(f)
		f.Close()
	}
	return p
}

// Close persists history and restores the terminal.
func (p *Prompt) Close() {
	if f, err := os.Create(p.historyFile); err == nil {
		p.line.WriteHistory(f)
		f.Close()
	}
	p.line.Close()
}

// Ask reads one line, recording it in history.
func (p *Prompt) Ask(label string) (string, error) {
	text, err := p.line.Prompt(promptStyle.Render(label))
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text != "" {
		p.line.AppendHistory(text)
	}
	return text, nil
}

// askPassword reads a password without echo.
func askPassword(label string) (string, error) {
	fmt.Print(promptStyle.Render(label))
	pw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(pw), nil
}
