package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"chatwave/auth"
)

type loginStep int

const (
	loginChoose loginStep = iota
	loginDevice
	loginPaste
	loginWorking
)

type loginState struct {
	step           loginStep
	selectedButton int
	code           *auth.DeviceCode
	tokenInput     textinput.Model
	err            string
}

var (
	buttonStyle = lipgloss.NewStyle().
			Width(28).
			Align(lipgloss.Center).
			Padding(0, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8"))

	selectedButtonStyle = buttonStyle.
				BorderForeground(successColor).
				Foreground(successColor).
				Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(dangerColor).
			Bold(true)
)

func newLoginState() loginState {
	input := textinput.New()
	input.Placeholder = "eyJhbGciOi..."
	input.Width = 50
	input.CharLimit = 4096
	input.EchoMode = textinput.EchoPassword
	input.EchoCharacter = '•'

	return loginState{tokenInput: input}
}

func (a AppView) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" || msg.String() == a.kb.GetActionKey("quit") {
		return a, tea.Quit
	}

	switch a.login.step {
	case loginChoose:
		switch msg.String() {
		case "up", "k", "down", "j", "tab":
			a.login.selectedButton = 1 - a.login.selectedButton
		case "q":
			return a, tea.Quit
		case "enter":
			a.login.err = ""
			if a.login.selectedButton == 0 {
				a.login.step = loginWorking
				return a, tea.Batch(a.typingSpinner.Tick, a.dataModel.StartDeviceLogin())
			}
			a.login.step = loginPaste
			a.login.tokenInput.SetValue("")
			focus := a.login.tokenInput.Focus()
			return a, focus
		}
		return a, nil

	case loginPaste:
		switch msg.String() {
		case "esc":
			a.login.tokenInput.Blur()
			a.login.step = loginChoose
			return a, nil
		case "enter":
			raw := strings.TrimSpace(a.login.tokenInput.Value())
			if raw == "" {
				a.login.err = "Paste a Google ID token first"
				return a, nil
			}
			a.login.err = ""
			a.login.tokenInput.Blur()
			a.login.step = loginWorking
			return a, tea.Batch(a.typingSpinner.Tick, a.dataModel.LoginWithIDToken(raw))
		}
		var cmd tea.Cmd
		a.login.tokenInput, cmd = a.login.tokenInput.Update(msg)
		return a, cmd

	case loginDevice:
		// The poll is already running; Esc only hides the code
		if msg.String() == "esc" {
			a.login.step = loginChoose
			a.login.code = nil
		}
		return a, nil
	}

	return a, nil
}

func (a AppView) renderLogin() string {
	var sb strings.Builder

	sb.WriteString(lipgloss.NewStyle().Foreground(successColor).Bold(true).Render(ASCIIArt))
	sb.WriteString("\n\n")

	switch a.login.step {
	case loginChoose:
		sb.WriteString(DimStyle.Render("Sign in to sync your chats with the chatwave backend."))
		sb.WriteString("\n\n")

		labels := []string{"Sign in with Google", "Paste an ID token"}
		var buttons []string
		for i, label := range labels {
			style := buttonStyle
			if i == a.login.selectedButton {
				style = selectedButtonStyle
			}
			buttons = append(buttons, style.Render(label))
		}
		sb.WriteString(lipgloss.JoinVertical(lipgloss.Left, buttons...))
		sb.WriteString("\n\n")
		sb.WriteString(FormatFooter("↑/↓", "Switch", "Enter", "Select", "q", "Quit"))

	case loginDevice:
		code := a.login.code
		sb.WriteString("Open this page in a browser:\n\n")
		sb.WriteString(HighlightStyle.Render(code.VerificationURL))
		sb.WriteString("\n\nand enter the code\n\n")
		sb.WriteString(SelectedStyle.Render(code.UserCode))
		sb.WriteString("\n\n")
		sb.WriteString(a.typingSpinner.View() + DimStyle.Render(" Waiting for approval"))
		if !code.Expiry.IsZero() {
			sb.WriteString(DimStyle.Render(fmt.Sprintf(" (expires %s)", code.Expiry.Local().Format("15:04"))))
		}
		sb.WriteString("\n\n")
		sb.WriteString(FormatFooter("Esc", "Back"))

	case loginPaste:
		sb.WriteString("Paste a Google ID token:\n\n")
		sb.WriteString(a.login.tokenInput.View())
		sb.WriteString("\n\n")
		sb.WriteString(FormatFooter("Enter", "Sign in", "Esc", "Back"))

	case loginWorking:
		sb.WriteString(a.typingSpinner.View() + " Signing in...")
	}

	if a.login.err != "" {
		sb.WriteString("\n\n")
		sb.WriteString(errorStyle.Render(wordWrap(a.login.err, 60)))
	}

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, sb.String())
}
