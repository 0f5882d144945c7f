package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"chatwave/config"
)

type suggestion struct {
	title  string
	prompt string
}

// suggestions are offered in an empty chat; the primary modifier plus the
// 1-based position copies one into the composer
var suggestions = []suggestion{
	{"Explain a concept", "How does photosynthesis work?"},
	{"Get creative ideas", "Fun activities for a team building event"},
	{"Write code", "Create a Python script to analyze data"},
	{"Brainstorm", "Marketing strategies for a new product"},
}

const welcomeHeading = "How can I help you today?"

func (a AppView) renderWelcome() string {
	titleStyle := lipgloss.NewStyle().Foreground(accentColor).Bold(true)

	lines := []string{TitleStyle.Render(welcomeHeading), ""}
	for i, s := range suggestions {
		key := DimStyle.Render(fmt.Sprintf("%d.", i+1))
		lines = append(lines,
			fmt.Sprintf("%s %s", key, titleStyle.Render(s.title)),
			"   "+DimStyle.Render(s.prompt),
			"",
		)
	}

	first := config.DisplayKey(a.kb.PrimaryKey("1"))
	last := config.DisplayKey(a.kb.PrimaryKey(strconv.Itoa(len(suggestions))))
	lines = append(lines, DimStyle.Render(fmt.Sprintf("%s to %s fills in a suggestion", first, last)))

	return lipgloss.Place(
		a.viewport.Width, a.viewport.Height,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Left, lines...),
	)
}

// suggestionFor maps a primary-modifier digit to its suggestion prompt
func (a AppView) suggestionFor(key string) (string, bool) {
	prefix := a.kb.PrimaryKey("")
	digit, ok := strings.CutPrefix(key, prefix)
	if !ok {
		return "", false
	}
	n, err := strconv.Atoi(digit)
	if err != nil || n < 1 || n > len(suggestions) {
		return "", false
	}
	return suggestions[n-1].prompt, true
}

// currentChatEmpty reports whether the welcome screen is showing
func (a AppView) currentChatEmpty() bool {
	c, ok := a.dataModel.Store.CurrentChat()
	return !ok || len(c.Messages) == 0
}
