// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"docchat/internal/api"
	"docchat/internal/ui/styles"
)

// =============================================================================
// LOGIN / REGISTER FORM
// =============================================================================

// LoginMode selects which form the overlay shows.
type LoginMode int

const (
	ModeLogin LoginMode = iota
	ModeRegister
)

// LoginSubmit is emitted when the user submits a valid form. The caller
// performs the network call.
type LoginSubmit struct {
	Mode     LoginMode
	Username string
	Password string
	Register api.RegisterParams
}

// field indices for the register form; login uses the first and last two.
const (
	fieldUsername = iota
	fieldEmail
	fieldFirstName
	fieldLastName
	fieldPassword
	fieldPassword2
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Username", "Email", "First name", "Last name", "Password", "Confirm password",
}

// LoginForm is the credentials overlay. Validation failures (empty
// required fields, password mismatch) are caught here, before any network
// call.
type LoginForm struct {
	theme  *styles.Theme
	mode   LoginMode
	inputs [fieldCount]textinput.Model
	focus  int
	errMsg string
}

// NewLoginForm creates the form in login mode.
func NewLoginForm(theme *styles.Theme) *LoginForm {
	f := &LoginForm{theme: theme}
	for i := range f.inputs {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 128
		if i == fieldPassword || i == fieldPassword2 {
			in.EchoMode = textinput.EchoPassword
			in.EchoCharacter = '•'
		}
		f.inputs[i] = in
	}
	f.inputs[fieldUsername].Focus()
	return f
}

// Mode returns the current form mode.
func (f *LoginForm) Mode() LoginMode { return f.mode }

// SetError displays a server-side failure inline.
func (f *LoginForm) SetError(msg string) { f.errMsg = msg }

// fields returns the active field indices for the current mode.
func (f *LoginForm) fields() []int {
	if f.mode == ModeLogin {
		return []int{fieldUsername, fieldPassword}
	}
	return []int{fieldUsername, fieldEmail, fieldFirstName, fieldLastName, fieldPassword, fieldPassword2}
}

// Update handles a key message. It returns a submit value when the form
// was completed and validated.
func (f *LoginForm) Update(msg tea.KeyMsg) (tea.Cmd, *LoginSubmit) {
	switch msg.String() {
	case "tab", "down":
		f.cycle(1)
		return nil, nil
	case "shift+tab", "up":
		f.cycle(-1)
		return nil, nil
	case "ctrl+r":
		f.toggleMode()
		return nil, nil
	case "enter":
		active := f.fields()
		if active[len(active)-1] != f.activeField() {
			f.cycle(1)
			return nil, nil
		}
		return nil, f.submit()
	}

	var cmd tea.Cmd
	f.inputs[f.activeField()], cmd = f.inputs[f.activeField()].Update(msg)
	return cmd, nil
}

// activeField maps the focus position to a field index.
func (f *LoginForm) activeField() int {
	return f.fields()[f.focus]
}

// cycle moves focus through the active fields.
func (f *LoginForm) cycle(delta int) {
	active := f.fields()
	f.inputs[f.activeField()].Blur()
	f.focus = (f.focus + delta + len(active)) % len(active)
	f.inputs[f.activeField()].Focus()
}

// toggleMode flips between login and register, resetting focus.
func (f *LoginForm) toggleMode() {
	if f.mode == ModeLogin {
		f.mode = ModeRegister
	} else {
		f.mode = ModeLogin
	}
	f.inputs[f.activeField()].Blur()
	f.focus = 0
	f.inputs[f.activeField()].Focus()
	f.errMsg = ""
}

// submit validates the form locally and builds the submit value.
func (f *LoginForm) submit() *LoginSubmit {
	username := strings.TrimSpace(f.inputs[fieldUsername].Value())
	password := f.inputs[fieldPassword].Value()

	if username == "" || password == "" {
		f.errMsg = "Username and password are required."
		return nil
	}

	if f.mode == ModeLogin {
		f.errMsg = ""
		return &LoginSubmit{Mode: ModeLogin, Username: username, Password: password}
	}

	if f.inputs[fieldPassword2].Value() != password {
		f.errMsg = "Passwords do not match."
		return nil
	}

	f.errMsg = ""
	return &LoginSubmit{
		Mode: ModeRegister,
		Register: api.RegisterParams{
			Username:  username,
			Email:     strings.TrimSpace(f.inputs[fieldEmail].Value()),
			FirstName: strings.TrimSpace(f.inputs[fieldFirstName].Value()),
			LastName:  strings.TrimSpace(f.inputs[fieldLastName].Value()),
			Password:  password,
			Password2: f.inputs[fieldPassword2].Value(),
		},
	}
}

// View renders the form overlay.
func (f *LoginForm) View(width int) string {
	title := "Sign in"
	toggleHint := "create an account"
	if f.mode == ModeRegister {
		title = "Create account"
		toggleHint = "sign in instead"
	}

	var b strings.Builder
	b.WriteString(f.theme.OverlayTitle.Render(title))
	b.WriteString("\n\n")

	for _, idx := range f.fields() {
		b.WriteString(f.theme.FormLabel.Render(fieldLabels[idx]))
		b.WriteString("\n")
		b.WriteString(f.inputs[idx].View())
		b.WriteString("\n")
	}

	if f.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(f.theme.FormError.Render(f.errMsg))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(f.theme.ShortcutKey.Render("enter") + f.theme.ShortcutDesc.Render(" submit  "))
	b.WriteString(f.theme.ShortcutKey.Render("ctrl+r") + f.theme.ShortcutDesc.Render(" "+toggleHint+"  "))
	b.WriteString(f.theme.ShortcutKey.Render("esc") + f.theme.ShortcutDesc.Render(" continue anonymously"))

	return f.theme.OverlayBox.Width(width).Render(b.String())
}
