package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// ModalType determines the color and styling of a modal
type ModalType int

const (
	ModalTypeInfo ModalType = iota
	ModalTypeWarning
	ModalTypeError
)

func (t ModalType) color() lipgloss.Color {
	switch t {
	case ModalTypeWarning:
		return warningColor
	case ModalTypeError:
		return dangerColor
	default:
		return accentColor
	}
}

// RenderAcknowledgeModal renders a modal dismissed with Enter.
// Message lines are centered.
func RenderAcknowledgeModal(title, message string, modalType ModalType, width, height int) string {
	modalWidth := clampModalWidth(60, width)
	return RenderThreeSectionModal(
		title,
		centeredLines(message, modalWidth),
		"Press Enter to acknowledge",
		modalType,
		modalWidth,
		width,
		height,
	)
}

// RenderThreeSectionModal renders a borderless modal: title, then message
// and footer each under a top rule.
// messageLines are pre-formatted; vertical padding is added here.
// desiredWidth of 0 means 60.
func RenderThreeSectionModal(title string, messageLines []string, footer string, modalType ModalType, desiredWidth, width, height int) string {
	if desiredWidth == 0 {
		desiredWidth = 60
	}
	modalWidth := clampModalWidth(desiredWidth, width)

	// runewidth keeps emoji titles centered
	titleVisualWidth := runewidth.StringWidth(title)
	leftPad := max((modalWidth-titleVisualWidth)/2-2, 0)
	rightPad := max(modalWidth-titleVisualWidth-leftPad, 0)
	centeredTitle := strings.Repeat(" ", leftPad) + title + strings.Repeat(" ", rightPad)

	titleSection := lipgloss.NewStyle().
		Bold(true).
		Foreground(modalType.color()).
		Render(centeredTitle)

	blank := strings.Repeat(" ", modalWidth)
	contentLines := make([]string, 0, len(messageLines)+2)
	contentLines = append(contentLines, blank)
	contentLines = append(contentLines, messageLines...)
	contentLines = append(contentLines, blank)

	ruled := lipgloss.NewStyle().
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Width(modalWidth)

	messageSection := ruled.Render(strings.Join(contentLines, "\n"))
	footerSection := ruled.
		Foreground(dimColor).
		Align(lipgloss.Center).
		Render(footer)

	content := strings.Join([]string{titleSection, messageSection, footerSection}, "\n")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func clampModalWidth(desired, width int) int {
	if width < desired+10 {
		return max(width-10, 10)
	}
	return desired
}

func centeredLines(message string, modalWidth int) []string {
	style := lipgloss.NewStyle().Width(modalWidth).Align(lipgloss.Center)
	var lines []string
	for _, line := range strings.Split(message, "\n") {
		lines = append(lines, style.Render(line))
	}
	return lines
}

// wordWrap wraps text at width, keeping existing newlines
func wordWrap(text string, width int) string {
	if width <= 0 {
		return text
	}

	paragraphs := strings.Split(text, "\n")
	out := make([]string, 0, len(paragraphs))
	for _, paragraph := range paragraphs {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}

		var b strings.Builder
		line := words[0]
		for _, word := range words[1:] {
			if runewidth.StringWidth(line)+1+runewidth.StringWidth(word) <= width {
				line += " " + word
				continue
			}
			b.WriteString(line + "\n")
			line = word
		}
		b.WriteString(line)
		out = append(out, b.String())
	}

	return strings.Join(out, "\n")
}
