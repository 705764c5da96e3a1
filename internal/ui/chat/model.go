// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the message pane of the docchat TUI: the scrolling
// conversation viewport and the input line. It renders whatever message
// log it is handed; session state lives in the controller, not here.
package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"docchat/internal/model"
	"docchat/internal/ui/styles"
)

// =============================================================================
// CHAT PANE MODEL
// =============================================================================

// Model is the Bubble Tea model for the message pane.
type Model struct {
	theme *styles.Theme

	width  int
	height int

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer

	querying bool
}

// New creates the message pane.
func New(theme *styles.Theme) *Model {
	in := textinput.New()
	in.Placeholder = "Ask about your documents..."
	in.Prompt = theme.InputPrompt.Render("> ")
	in.CharLimit = 4000
	in.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Spinner

	return &Model{
		theme:    theme,
		viewport: viewport.New(0, 0),
		input:    in,
		spinner:  sp,
	}
}

// Init starts the spinner tick.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// SetSize resizes the pane and rebuilds the markdown renderer for the new
// wrap width.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 3
	m.input.Width = width - 4
	m.renderer = newMarkdownRenderer(width-8, m.theme.IsDark)
}

// SetMessages replaces the viewport content with the given log and scrolls
// to the bottom.
func (m *Model) SetMessages(msgs []model.Message, querying bool) {
	m.querying = querying

	var b strings.Builder
	if len(msgs) == 0 {
		b.WriteString(m.theme.ThinkingText.Render("No messages yet. Say hello, or upload a document."))
	}
	for i, msg := range msgs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(renderMessage(m.theme, m.renderer, msg, m.width-4))
		b.WriteString("\n")
	}
	if querying {
		b.WriteString("\n")
		b.WriteString(m.spinner.View())
		b.WriteString(m.theme.ThinkingText.Render(" thinking..."))
	}

	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

// Update routes messages to the pane's sub-components.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	if sp, ok := msg.(spinner.TickMsg); ok {
		m.spinner, cmd = m.spinner.Update(sp)
		cmds = append(cmds, cmd)
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	if m.input.Focused() {
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return tea.Batch(cmds...)
}

// InputValue returns the current input text.
func (m *Model) InputValue() string {
	return m.input.Value()
}

// ResetInput clears the input line.
func (m *Model) ResetInput() {
	m.input.Reset()
}

// Focus gives keyboard focus to the input line.
func (m *Model) Focus() {
	m.input.Focus()
}

// Blur removes keyboard focus from the input line.
func (m *Model) Blur() {
	m.input.Blur()
}

// Focused reports whether the input line has focus.
func (m *Model) Focused() bool {
	return m.input.Focused()
}

// View renders the pane: viewport over the input line.
func (m *Model) View(extra string) string {
	var b strings.Builder
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	if extra != "" {
		b.WriteString(extra)
	}
	b.WriteString(m.theme.InputContainer.Width(m.width).Render(m.input.View()))
	return b.String()
}
