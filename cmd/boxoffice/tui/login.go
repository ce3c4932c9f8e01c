package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// loginForm collects credentials. In register mode it also asks for an
// email address.
type loginForm struct {
	inputs   []textinput.Model
	focus    int
	register bool
}

const (
	fieldUsername = iota
	fieldPassword
	fieldEmail
)

func newLoginForm(register bool) loginForm {
	inputs := make([]textinput.Model, 3)
	for i := range inputs {
		ti := textinput.New()
		ti.CharLimit = 255
		ti.Width = 32
		inputs[i] = ti
	}
	inputs[fieldUsername].Placeholder = "username"
	inputs[fieldPassword].Placeholder = "password"
	inputs[fieldPassword].EchoMode = textinput.EchoPassword
	inputs[fieldPassword].EchoCharacter = '•'
	inputs[fieldEmail].Placeholder = "email"
	inputs[fieldUsername].Focus()
	return loginForm{inputs: inputs, register: register}
}

func (f loginForm) fields() int {
	if f.register {
		return 3
	}
	return 2
}

func (f *loginForm) next() {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + 1) % f.fields()
	f.inputs[f.focus].Focus()
}

func (f loginForm) value(i int) string { return strings.TrimSpace(f.inputs[i].Value()) }

// password is not trimmed.
func (f loginForm) password() string { return f.inputs[fieldPassword].Value() }

func (f *loginForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f loginForm) view() string {
	title := "Log in"
	if f.register {
		title = "Create an account"
	}
	rows := []string{titleStyle.Render(title), ""}
	for i := 0; i < f.fields(); i++ {
		rows = append(rows, f.inputs[i].View())
	}
	rows = append(rows, helpLine("tab", "next field", "enter", "submit", "ctrl+r", "switch login/register", "esc", "cancel"))
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
