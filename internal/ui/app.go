// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui assembles the docchat TUI: sidebar, message pane, overlays,
// and the event loop that feeds session commands and folds their events
// back into controller state.
package ui

import (
	"context"
	"os"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"docchat/internal/api"
	"docchat/internal/auth"
	"docchat/internal/logging"
	"docchat/internal/session"
	"docchat/internal/ui/chat"
	"docchat/internal/ui/components"
	"docchat/internal/ui/styles"
)

// =============================================================================
// MESSAGES
// =============================================================================

// authResultMsg carries the outcome of a login or register call.
type authResultMsg struct {
	tokens api.Tokens
	err    error
}

// inboxFileMsg reports a file dropped into the watched inbox directory.
type inboxFileMsg struct {
	path string
}

// =============================================================================
// FOCUS
// =============================================================================

type focusArea int

const (
	focusInput focusArea = iota
	focusSidebar
	focusLogin
	focusGraph
	focusPicker
	focusNewChat
)

// =============================================================================
// APP MODEL
// =============================================================================

// App is the root Bubble Tea model.
type App struct {
	theme *styles.Theme
	ctrl  *session.Controller
	auth  *api.Client

	sidebar *components.Sidebar
	pane    *chat.Model
	login   *components.LoginForm

	picker       filepicker.Model
	newChatInput textinput.Model

	focus  focusArea
	width  int
	height int
	errMsg string

	// inbox receives paths from the directory watcher; nil disables it.
	inbox <-chan string
}

// NewApp creates the root model. client performs the login/register calls;
// everything else goes through the controller. inbox receives dropped file
// paths from the inbox watcher, or is nil when watching is disabled.
func NewApp(themeMode string, ctrl *session.Controller, client *api.Client, inbox <-chan string) *App {
	theme := styles.NewTheme(themeMode)

	picker := filepicker.New()
	picker.AllowedTypes = []string{".pdf", ".docx"}
	if home, err := os.UserHomeDir(); err == nil {
		picker.CurrentDirectory = home
	}

	nameInput := textinput.New()
	nameInput.Placeholder = "Chat name"
	nameInput.CharLimit = 120

	app := &App{
		theme:        theme,
		ctrl:         ctrl,
		auth:         client,
		sidebar:      components.NewSidebar(theme),
		pane:         chat.New(theme),
		login:        components.NewLoginForm(theme),
		picker:       picker,
		newChatInput: nameInput,
		inbox:        inbox,
	}

	if ctrl.Identity().Anonymous() {
		app.focus = focusLogin
	}
	return app
}

// Init boots the session and starts listening for inbox drops.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.pane.Init(), runSession(a.ctrl.Bootstrap())}
	if a.inbox != nil {
		cmds = append(cmds, a.waitForInbox())
	}
	return tea.Batch(cmds...)
}

// runSession wraps a session command into a Bubble Tea command.
func runSession(cmd session.Command) tea.Cmd {
	if cmd == nil {
		return nil
	}
	return func() tea.Msg {
		return cmd(context.Background())
	}
}

// waitForInbox blocks on the watcher channel and surfaces the next drop.
func (a *App) waitForInbox() tea.Cmd {
	return func() tea.Msg {
		path, ok := <-a.inbox
		if !ok {
			return nil
		}
		return inboxFileMsg{path: path}
	}
}

// =============================================================================
// UPDATE
// =============================================================================

// Update is the root message handler.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.theme.SetSize(msg.Width, msg.Height)
		a.pane.SetSize(msg.Width-a.theme.SidebarWidth()-1, msg.Height-2)
		a.picker.Height = msg.Height - 10
		a.refreshPane()
		return a, nil

	case session.Event:
		return a.handleSessionEvent(msg)

	case authResultMsg:
		if msg.err != nil {
			a.login.SetError(msg.err.Error())
			return a, nil
		}
		a.focus = focusInput
		a.pane.Focus()
		return a, runSession(a.ctrl.AuthComplete(auth.TokenPair{
			Access:  msg.tokens.Access,
			Refresh: msg.tokens.Refresh,
		}))

	case inboxFileMsg:
		logging.L().Info("staging file from inbox", zap.String("path", msg.path))
		cmd := a.ctrl.StageFiles([]string{msg.path})
		a.refreshPane()
		return a, tea.Batch(runSession(cmd), a.waitForInbox())

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	cmd := a.pane.Update(msg)
	if a.ctrl.Querying() {
		a.refreshPane()
	}

	if a.focus == focusPicker {
		var pickerCmd tea.Cmd
		a.picker, pickerCmd = a.picker.Update(msg)
		cmd = tea.Batch(cmd, pickerCmd)
	}
	return a, cmd
}

// handleSessionEvent folds a command result into controller state and
// refreshes whatever it touched.
func (a *App) handleSessionEvent(ev session.Event) (tea.Model, tea.Cmd) {
	a.ctrl.Apply(ev)

	if created, ok := ev.(session.ChatCreated); ok && created.Err != nil {
		// Write-path failure: surface it where the action started so the
		// user can retry.
		a.errMsg = "Could not create chat. Press Ctrl+N to try again."
	}

	a.refreshPane()
	return a, nil
}

// handleKey dispatches keys by focus area.
func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	switch a.focus {
	case focusLogin:
		return a.handleLoginKey(msg)
	case focusGraph:
		if s := msg.String(); s == "esc" || s == "q" {
			a.ctrl.HideGraph()
			a.focus = focusInput
			a.pane.Focus()
		}
		return a, nil
	case focusPicker:
		return a.handlePickerKey(msg)
	case focusNewChat:
		return a.handleNewChatKey(msg)
	case focusSidebar:
		return a.handleSidebarKey(msg)
	default:
		return a.handleInputKey(msg)
	}
}

func (a *App) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		// Anonymous browsing is allowed; auth-requiring actions will fail
		// with their own messages.
		a.focus = focusInput
		a.pane.Focus()
		return a, nil
	}

	cmd, submit := a.login.Update(msg)
	if submit == nil {
		return a, cmd
	}
	return a, a.authenticate(*submit)
}

// authenticate runs the login or register network call.
func (a *App) authenticate(submit components.LoginSubmit) tea.Cmd {
	return func() tea.Msg {
		var tokens api.Tokens
		var err error
		if submit.Mode == components.ModeRegister {
			tokens, err = a.auth.Register(context.Background(), submit.Register)
		} else {
			tokens, err = a.auth.Login(context.Background(), submit.Username, submit.Password)
		}
		return authResultMsg{tokens: tokens, err: err}
	}
}

func (a *App) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		a.focus = focusInput
		a.pane.Focus()
		return a, nil
	}

	var cmd tea.Cmd
	a.picker, cmd = a.picker.Update(msg)

	if ok, path := a.picker.DidSelectFile(msg); ok {
		a.focus = focusInput
		a.pane.Focus()
		stage := a.ctrl.StageFiles([]string{path})
		a.refreshPane()
		return a, tea.Batch(cmd, runSession(stage))
	}
	return a, cmd
}

func (a *App) handleNewChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.focus = focusInput
		a.newChatInput.Reset()
		a.pane.Focus()
		return a, nil
	case "enter":
		cmd, err := a.ctrl.CreateChat(a.newChatInput.Value())
		if err != nil {
			a.errMsg = "Chat name must not be empty."
			return a, nil
		}
		a.errMsg = ""
		a.newChatInput.Reset()
		a.focus = focusInput
		a.pane.Focus()
		return a, runSession(cmd)
	}

	var cmd tea.Cmd
	a.newChatInput, cmd = a.newChatInput.Update(msg)
	return a, cmd
}

func (a *App) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	chats := a.ctrl.Chats()
	switch msg.String() {
	case "up", "k":
		a.sidebar.Move(-1, len(chats))
	case "down", "j":
		a.sidebar.Move(1, len(chats))
	case "enter":
		if cursor := a.sidebar.Cursor(); cursor < len(chats) {
			cmd := a.ctrl.SelectChat(chats[cursor].ID)
			a.refreshPane()
			return a, runSession(cmd)
		}
	case "tab":
		a.focus = focusInput
		a.pane.Focus()
	default:
		if idx := a.stagedIndex(msg.String()); idx >= 0 {
			a.ctrl.RemoveFile(idx)
			a.refreshPane()
			return a, nil
		}
		if model, cmd := a.handleGlobalKey(msg); model != nil {
			return model, cmd
		}
	}
	return a, nil
}

func (a *App) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab":
		a.focus = focusSidebar
		a.pane.Blur()
		return a, nil
	case "enter":
		cmd, err := a.ctrl.SendMessage(a.pane.InputValue())
		if err != nil {
			a.errMsg = "Select a chat first (Tab, then Enter)."
			return a, nil
		}
		a.errMsg = ""
		a.pane.ResetInput()
		a.refreshPane()
		return a, runSession(cmd)
	}

	// Digits remove staged files per the file list's hints, but only while
	// the input line is empty; mid-message they are just text.
	if a.pane.InputValue() == "" {
		if idx := a.stagedIndex(msg.String()); idx >= 0 {
			a.ctrl.RemoveFile(idx)
			a.refreshPane()
			return a, nil
		}
	}

	if model, cmd := a.handleGlobalKey(msg); model != nil {
		return model, cmd
	}
	return a, a.pane.Update(msg)
}

// stagedIndex maps a digit key to the staged-file slot the file list labels
// with that digit. Returns -1 when the key is not a digit or no file holds
// that slot.
func (a *App) stagedIndex(key string) int {
	if len(key) != 1 || key[0] < '1' || key[0] > '9' {
		return -1
	}
	idx := int(key[0] - '1')
	if idx >= len(a.ctrl.Staged()) {
		return -1
	}
	return idx
}

// handleGlobalKey handles shortcuts shared by the main focus areas. It
// returns (nil, nil) when the key was not consumed.
func (a *App) handleGlobalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+n":
		a.focus = focusNewChat
		a.pane.Blur()
		a.newChatInput.Focus()
		return a, textinput.Blink
	case "ctrl+g":
		cmd, err := a.ctrl.ShowGraph()
		if err != nil {
			a.errMsg = "Select a chat to view its knowledge graph."
			return a, nil
		}
		a.errMsg = ""
		a.focus = focusGraph
		a.pane.Blur()
		return a, runSession(cmd)
	case "ctrl+u":
		a.focus = focusPicker
		a.pane.Blur()
		return a, a.picker.Init()
	case "ctrl+l":
		if err := a.ctrl.Logout(); err != nil {
			logging.L().Error("logout failed", zap.Error(err))
		}
		a.errMsg = ""
		a.focus = focusLogin
		a.pane.Blur()
		a.refreshPane()
		return a, nil
	}
	return nil, nil
}

// refreshPane pushes the controller's message log into the viewport.
func (a *App) refreshPane() {
	a.pane.SetMessages(a.ctrl.Messages(), a.ctrl.Querying())
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the whole screen.
func (a *App) View() string {
	if a.width == 0 {
		return "loading..."
	}

	header := a.theme.Header.Width(a.width).Render(
		a.theme.HeaderBrand.Render("docchat") + "  document chat with knowledge graphs")
	status := components.StatusBar(a.theme, a.ctrl.Identity(), a.width)

	bodyHeight := a.height - 2

	var overlay string
	switch a.focus {
	case focusLogin:
		overlay = a.login.View(min(a.width-4, 48))
	case focusGraph:
		overlay = components.GraphOverlay(a.theme, a.ctrl.Graph(), min(a.width-4, 100))
	case focusPicker:
		overlay = a.theme.OverlayBox.Render(
			a.theme.OverlayTitle.Render("Stage a document") + "\n\n" + a.picker.View())
	case focusNewChat:
		overlay = a.theme.OverlayBox.Render(
			a.theme.OverlayTitle.Render("New chat") + "\n\n" + a.newChatInput.View())
	}
	if overlay != "" {
		body := lipgloss.Place(a.width, bodyHeight, lipgloss.Center, lipgloss.Center, overlay)
		return header + "\n" + body + "\n" + status
	}

	sidebar := a.sidebar.View(a.ctrl.Chats(), a.ctrl.SelectedID(),
		a.theme.SidebarWidth(), bodyHeight)

	extra := components.FileList(a.theme, a.ctrl.Staged(), a.ctrl.UploadError(),
		a.width-a.theme.SidebarWidth()-1)
	if a.errMsg != "" {
		extra += a.theme.ErrorText.Render(a.errMsg) + "\n"
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, a.pane.View(extra))
	return header + "\n" + body + "\n" + status
}
