package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const ProjectURL = "github.com/chatwave/chatwave"

const ASCIIArt = `
      __          __
 ____/ /_  ____ _/ /__      ______ __   _____
/ ___/ __ \/ __ ` + "`" + `/ __/ | /| / / __ ` + "`" + `/ | / / _ \
/ /__/ / / / /_/ / /_ | |/ |/ / /_/ /| |/ /  __/
\___/_/ /_/\__,_/\__/ |__/|__/\__,_/ |___/\___/
`

var Features = []string{
	"• Sign in with Google, chats follow you across devices",
	"• Sidebar grouped by Today, Yesterday, This Week and older",
	"• Answers typed out as they arrive",
	"• Works offline with a local model or simulated replies",
	"• Export any chat to markdown",
}

func renderAboutModal(a AppView, width, height int, version, license string) string {
	var sb strings.Builder

	asciiStyle := lipgloss.NewStyle().
		Foreground(successColor).
		Bold(true)

	sb.WriteString(asciiStyle.Render(ASCIIArt))
	sb.WriteString("\n\n")

	featureStyle := lipgloss.NewStyle().Foreground(dimColor)
	for _, feature := range Features {
		sb.WriteString(featureStyle.Render(feature))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	labelStyle := lipgloss.NewStyle().
		Foreground(accentColor).
		Bold(true)

	rows := [][2]string{
		{"Version: ", version},
		{"License: ", license},
		{"Project: ", ProjectURL},
	}
	if u := a.dataModel.User; u != nil {
		rows = append(rows, [2]string{"Signed in: ", fmt.Sprintf("%s <%s>", u.Name, u.Email)})
	}
	for _, r := range rows {
		sb.WriteString(labelStyle.Render(r[0]))
		sb.WriteString(featureStyle.Render(r[1]))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(featureStyle.Render(fmt.Sprintf("Press Esc or %s to close", a.kb.DisplayActionKey("about"))))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("8")).
		Padding(1, 2)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, boxStyle.Render(sb.String()))
}
