package ui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"chatwave/config"
)

// Startup programs run before the chat UI exists: a fatal error screen and
// the SSH passphrase prompt.

type screen struct {
	width  int
	height int
}

func (s *screen) resize(msg tea.WindowSizeMsg) {
	s.width, s.height = msg.Width, msg.Height
}

func (s screen) tooSmall() bool {
	return s.width < 20 || s.height < 10
}

// ErrorModal shows a fatal error and quits on Enter
type ErrorModal struct {
	screen
	title   string
	message string
}

func NewErrorModal(title, message string) ErrorModal {
	return ErrorModal{title: title, message: message}
}

func (m ErrorModal) Init() tea.Cmd { return nil }

func (m ErrorModal) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg)
	case tea.KeyMsg:
		switch msg.String() {
		case "enter", "esc", "ctrl+c":
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m ErrorModal) View() string {
	if m.tooSmall() {
		return "Terminal too small"
	}
	modalWidth := clampModalWidth(60, m.width)
	lines := centeredLines(wordWrap(m.message, modalWidth-4), modalWidth)
	return RenderThreeSectionModal(m.title, lines, "Press Enter to quit", ModalTypeError, modalWidth, m.width, m.height)
}

const (
	emptyPassphraseMsg     = "Passphrase cannot be empty"
	incorrectPassphraseMsg = "Incorrect passphrase. Please try again."
)

var errEmptyPassphrase = errors.New("passphrase cannot be empty")

// PassphraseModal asks for the SSH key passphrase and retries until the key
// unlocks or the user gives up
type PassphraseModal struct {
	screen
	keyPath   string
	enc       *config.EncryptionManager
	input     textinput.Model
	err       string
	cancelled bool
	unlocked  bool
}

func NewPassphraseModal(keyPath string, enc *config.EncryptionManager) PassphraseModal {
	input := textinput.New()
	input.Placeholder = "Enter passphrase"
	input.Width = 50
	input.CharLimit = 200
	input.EchoMode = textinput.EchoPassword
	input.EchoCharacter = '•'
	input.Focus()

	return PassphraseModal{keyPath: keyPath, enc: enc, input: input}
}

func (m PassphraseModal) Init() tea.Cmd {
	return textinput.Blink
}

func (m PassphraseModal) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "ctrl+c":
			m.cancelled = true
			return m, tea.Quit

		case "enter":
			err := UnlockEncryption(m.enc, m.input.Value())
			switch {
			case errors.Is(err, errEmptyPassphrase):
				m.err = emptyPassphraseMsg
			case err != nil:
				m.err = incorrectPassphraseMsg
				m.input.SetValue("")
			default:
				m.unlocked = true
				return m, tea.Quit
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m PassphraseModal) View() string {
	if m.tooSmall() {
		return "Terminal too small"
	}

	modalWidth := clampModalWidth(70, m.width)
	center := lipgloss.NewStyle().Width(modalWidth).Align(lipgloss.Center)
	lines := []string{
		center.Render("The SSH key protecting your login is encrypted."),
		center.Render(fmt.Sprintf("Key: %s", m.keyPath)),
		center.Render("Please enter the passphrase:"),
		"",
		center.Render(m.input.View()),
	}
	if m.err != "" {
		lines = append(lines, "", center.Render(errorStyle.Render("⚠ "+m.err)))
	}

	return RenderThreeSectionModal(
		"SSH Key Passphrase Required",
		lines,
		FormatFooter("Enter", "Continue", "Esc", "Cancel"),
		ModalTypeInfo,
		modalWidth,
		m.width,
		m.height,
	)
}

func (m PassphraseModal) Unlocked() bool {
	return m.unlocked && !m.cancelled
}

func (m PassphraseModal) IsCancelled() bool {
	return m.cancelled
}

// UnlockEncryption sets the passphrase on enc and derives its key. A wrong
// passphrase leaves enc unusable until the next attempt.
func UnlockEncryption(enc *config.EncryptionManager, passphrase string) error {
	if enc == nil {
		return errors.New("no encryption manager")
	}
	if passphrase == "" {
		return errEmptyPassphrase
	}

	enc.SetPassphrase(passphrase)
	if err := enc.Initialize(); err != nil {
		config.Logf("[Passphrase] unlock failed: %v", err)
		return err
	}
	config.Logf("[Passphrase] SSH key unlocked")
	return nil
}
