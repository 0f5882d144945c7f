package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"chatwave/chat"
)

type sidebarParams struct {
	Groups      []chat.Group
	SelectedID  string // empty unless the sidebar has focus
	CurrentID   string
	Focused     bool
	SearchMode  bool
	SearchInput textinput.Model
	Width       int
	Height      int
}

// renderSidebar draws the grouped session list. The list scrolls to keep the
// selected row visible.
func renderSidebar(p sidebarParams) string {
	inner := p.Width - 2

	var header string
	if p.SearchMode {
		header = p.SearchInput.View()
	} else {
		count := 0
		for _, g := range p.Groups {
			count += len(g.Sessions)
		}
		header = DimStyle.Render(fmt.Sprintf("%d chats", count))
	}

	var lines []string
	selectedLine := -1
	if len(p.Groups) == 0 {
		empty := "No chats yet"
		if p.SearchMode {
			empty = "No matches found"
		}
		lines = append(lines, DimStyle.Italic(true).Render(empty))
	}

	for gi, g := range p.Groups {
		if gi > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, AssistantStyle.Bold(true).Render(string(g.Bucket)))

		for _, s := range g.Sessions {
			indicator := "  "
			if s.ID == p.SelectedID {
				indicator = "▶ "
				selectedLine = len(lines)
			}

			age := formatTimeAgo(s.CreatedAt)
			titleWidth := inner - runewidth.StringWidth(indicator) - runewidth.StringWidth(age) - 1
			title := runewidth.Truncate(s.Title, max(titleWidth, 4), "…")
			pad := max(inner-runewidth.StringWidth(indicator)-runewidth.StringWidth(title)-runewidth.StringWidth(age), 1)

			styled := title
			switch {
			case s.ID == p.SelectedID:
				styled = lipgloss.NewStyle().Foreground(successColor).Bold(true).Render(title)
			case s.ID == p.CurrentID:
				styled = lipgloss.NewStyle().Foreground(accentColor).Bold(true).Render(title)
			}

			lines = append(lines, indicator+styled+strings.Repeat(" ", pad)+DimStyle.Render(age))
		}
	}

	// header, its rule, footer rule and footer
	maxLines := max(p.Height-5, 1)
	lines = scrollWindow(lines, selectedLine, maxLines)

	footer := FormatFooter("Tab", "Chat", "Enter", "Open")
	if p.SearchMode {
		footer = FormatFooter("Enter", "Open", "Esc", "Clear")
	} else if !p.Focused {
		footer = FormatFooter("Tab", "Sidebar")
	}

	ruled := lipgloss.NewStyle().
		Width(inner).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor)

	body := lipgloss.NewStyle().Width(inner).Height(maxLines).Render(strings.Join(lines, "\n"))
	content := lipgloss.JoinVertical(
		lipgloss.Left,
		ruled.BorderBottom(true).Render(header),
		body,
		ruled.BorderTop(true).Foreground(dimColor).Render(footer),
	)

	borderColor := dimColor
	if p.Focused {
		borderColor = accentColor
	}
	return lipgloss.NewStyle().
		Width(p.Width).
		Height(p.Height).
		BorderRight(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(borderColor).
		PaddingLeft(1).
		Render(content)
}

// scrollWindow keeps at most n lines, centred on selected when it would
// otherwise fall outside
func scrollWindow(lines []string, selected, n int) []string {
	if len(lines) <= n {
		return lines
	}
	start := 0
	if selected >= n {
		start = min(selected-n/2, len(lines)-n)
	}
	return lines[start : start+n]
}

// formatTimeAgo formats a time as a relative string (e.g., "2h ago", "3d ago")
func formatTimeAgo(t time.Time) string {
	duration := timeNow().Sub(t)

	switch {
	case duration < time.Minute:
		return "now"
	case duration < time.Hour:
		return fmt.Sprintf("%dm", int(duration.Minutes()))
	case duration < 24*time.Hour:
		return fmt.Sprintf("%dh", int(duration.Hours()))
	case duration < 7*24*time.Hour:
		return fmt.Sprintf("%dd", int(duration.Hours()/24))
	case duration < 30*24*time.Hour:
		return fmt.Sprintf("%dw", int(duration.Hours()/24/7))
	default:
		return fmt.Sprintf("%dmo", int(duration.Hours()/24/30))
	}
}
