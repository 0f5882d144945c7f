package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ANSI palette indices so the user's terminal theme decides the actual
// colours. No style sets a background.
var (
	dimColor     = lipgloss.Color("7")
	accentColor  = lipgloss.Color("12")
	successColor = lipgloss.Color("10")
	warningColor = lipgloss.Color("11")
	dangerColor  = lipgloss.Color("9")
	matchColor   = lipgloss.Color("13")
)

var (
	UserStyle      = lipgloss.NewStyle().Foreground(successColor).Bold(true)
	AssistantStyle = lipgloss.NewStyle().Foreground(accentColor)
	DimStyle       = lipgloss.NewStyle().Foreground(dimColor)
	StatusStyle    = DimStyle
	TitleStyle     = lipgloss.NewStyle().Bold(true)

	// sidebar
	SelectedStyle  = lipgloss.NewStyle().Foreground(warningColor).Bold(true)
	HighlightStyle = lipgloss.NewStyle().Foreground(matchColor).Bold(true)

	footerDescStyle = lipgloss.NewStyle().Foreground(accentColor).Bold(true)
)

// FormatFooter renders key/description pairs:
// FormatFooter("j/k", "Navigate", "Esc", "Close") gives "j/k Navigate  Esc Close"
// with the descriptions highlighted. An unpaired trailing key is dropped.
func FormatFooter(parts ...string) string {
	pairs := make([]string, 0, len(parts)/2)
	for i := 0; i+1 < len(parts); i += 2 {
		pairs = append(pairs, parts[i]+" "+footerDescStyle.Render(parts[i+1]))
	}
	return strings.Join(pairs, "  ")
}
