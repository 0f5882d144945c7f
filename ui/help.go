package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

func (a AppView) renderHelpModal(width, height int) string {
	kb := a.kb

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(successColor).
		Render("chatwave - Keyboard Shortcuts")

	blue := lipgloss.NewStyle().Foreground(accentColor)
	row := func(action, desc string) string {
		return fmt.Sprintf("• %-13s %s", kb.DisplayActionKey(action), desc)
	}

	globalActions := lipgloss.JoinVertical(
		lipgloss.Left,
		blue.Render("## Global Actions"),
		row("new_chat", "New chat"),
		row("focus_toggle", "Sidebar / composer"),
		row("search_chats", "Search chats"),
		row("delete_chat", "Delete chat"),
		row("refresh", "Refresh sessions"),
		row("export_chat", "Export chat"),
		row("select_model", "Switch model"),
		row("logout", "Sign out"),
		row("about", "About"),
		row("help", "Toggle this help"),
		row("quit", "Quit"),
	)

	sidebar := lipgloss.JoinVertical(
		lipgloss.Left,
		blue.Render("## Sidebar"),
		fmt.Sprintf("• %-13s Next chat", kb.DisplayActionKey("sidebar_down")+"/↓"),
		fmt.Sprintf("• %-13s Previous chat", kb.DisplayActionKey("sidebar_up")+"/↑"),
		"• Enter         Open chat",
		"• Esc           Back to composer",
	)

	chatNavigation := lipgloss.JoinVertical(
		lipgloss.Left,
		blue.Render("## Chat Navigation"),
		row("scroll_down", "Scroll down 1 line"),
		row("scroll_up", "Scroll up 1 line"),
		row("half_page_down", "Half page down"),
		row("half_page_up", "Half page up"),
		row("scroll_to_top", "Jump to top"),
		row("scroll_to_bottom", "Jump to bottom"),
	)

	chatActions := lipgloss.JoinVertical(
		lipgloss.Left,
		blue.Render("## Chat Actions"),
		"• Enter         Send message",
		"• Alt+Enter     New line",
		row("clear_input", "Clear input"),
		row("yank_last_response", "Copy last response"),
		row("yank_conversation", "Copy conversation"),
	)

	columnStyle := lipgloss.NewStyle().Width(42).PaddingLeft(8)

	twoColumns := lipgloss.JoinHorizontal(
		lipgloss.Top,
		columnStyle.Render(lipgloss.JoinVertical(lipgloss.Left, globalActions, "", sidebar)),
		"    ",
		columnStyle.Render(lipgloss.JoinVertical(lipgloss.Left, chatNavigation, "", chatActions)),
	)

	footer := lipgloss.NewStyle().
		Foreground(dimColor).
		Render(fmt.Sprintf("      Press %s or Esc to close this help", kb.DisplayActionKey("help")))

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		title,
		"",
		twoColumns,
		"",
		footer,
	)

	helpBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("8")).
		Padding(1, 2).
		Width(100)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, helpBox.Render(content))
}
