package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"chatwave/config"
)

func (a AppView) handleComposerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if prompt, ok := a.suggestionFor(msg.String()); ok && a.currentChatEmpty() {
		a.textarea.SetValue(prompt)
		a.textarea.CursorEnd()
		return a, nil
	}

	if msg.String() != "enter" {
		var cmd tea.Cmd
		a.textarea, cmd = a.textarea.Update(msg)
		return a, cmd
	}

	text := strings.TrimSpace(a.textarea.Value())
	if text == "" {
		return a, nil
	}
	a.textarea.Reset()

	config.Logf("[UI] sending %d chars", len(text))
	a.activeTurns++
	return a, tea.Batch(a.typingSpinner.Tick, a.dataModel.SendMessage(text))
}

func (a AppView) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	kb := a.kb
	key := msg.String()

	switch key {
	case "esc":
		if a.searchMode {
			a.searchMode = false
			a.searchInput.SetValue("")
			a.searchInput.Blur()
			a.clampSelection()
			return a, nil
		}
		a.setFocus(focusComposer)
		return a, nil

	case "enter":
		s, ok := a.selectedSession()
		if !ok {
			return a, nil
		}
		a.searchMode = false
		a.searchInput.SetValue("")
		a.setFocus(focusComposer)
		return a, a.dataModel.OpenSession(s.ID, s.Title)

	case kb.GetActionKey("sidebar_down_arrow"):
		a.moveSelection(1)
		return a, nil
	case kb.GetActionKey("sidebar_up_arrow"):
		a.moveSelection(-1)
		return a, nil
	}

	// j/k are typed into the search box in search mode
	if a.searchMode {
		before := a.searchInput.Value()
		var cmd tea.Cmd
		a.searchInput, cmd = a.searchInput.Update(msg)
		if a.searchInput.Value() != before {
			a.selectedIdx = 0
		}
		return a, cmd
	}

	switch key {
	case kb.GetActionKey("sidebar_down"):
		a.moveSelection(1)
	case kb.GetActionKey("sidebar_up"):
		a.moveSelection(-1)
	}
	return a, nil
}

func (a *AppView) moveSelection(delta int) {
	a.selectedIdx += delta
	a.clampSelection()
}

func (a AppView) handleConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		target := *a.confirmDelete
		a.confirmDelete = nil
		config.Logf("[UI] deleting %s", target.ID)
		return a, a.dataModel.DeleteSession(target.ID)
	case "n", "N", "esc":
		a.confirmDelete = nil
	}
	return a, nil
}
