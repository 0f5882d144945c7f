package ui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"chatwave/chat"
	"chatwave/config"
)

func (a AppView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

		// title (1), separator (1), textarea (3), status bar (1)
		a.viewport.Width = a.mainWidth()
		a.viewport.Height = max(a.height-6, 1)
		a.textarea.SetWidth(a.mainWidth())

		a.ready = true
		a.updateViewportContent(true)
		return a, a.renderPending()

	case tea.KeyMsg:
		return a.handleKey(msg)

	case spinner.TickMsg:
		if a.activeTurns == 0 && !a.loginBusy() {
			return a, nil
		}
		var cmd tea.Cmd
		a.typingSpinner, cmd = a.typingSpinner.Update(msg)
		a.updateViewportContent(false)
		return a, cmd

	case flashClearMsg:
		if msg.seq == a.flashSeq {
			a.flash = ""
		}
		return a, nil

	case markdownRenderedMsg:
		a.rendered[msg.MessageID] = renderedMessage{source: msg.Source, width: msg.Width, text: msg.Rendered}
		a.updateViewportContent(false)
		return a, nil
	}

	if updated, cmd, ok := a.handleStreamingMessage(msg); ok {
		return updated, cmd
	}
	if updated, cmd, ok := a.handleSessionMessage(msg); ok {
		return updated, cmd
	}
	if updated, cmd, ok := a.handleModelMessage(msg); ok {
		return updated, cmd
	}

	// Forward everything else (cursor blink) to the focused input
	var cmd tea.Cmd
	if a.searchMode {
		a.searchInput, cmd = a.searchInput.Update(msg)
	} else {
		a.textarea, cmd = a.textarea.Update(msg)
	}
	return a, cmd
}

func (a AppView) loginBusy() bool {
	return a.dataModel.NeedsLogin() && (a.login.step == loginWorking || a.login.step == loginDevice)
}

func (a AppView) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if a.dataModel.NeedsLogin() {
		return a.handleLoginKey(msg)
	}

	// PRIORITY 0: modals that swallow input
	if a.showAcknowledgeModal {
		if key == "enter" || key == "esc" {
			a.showAcknowledgeModal = false
		}
		return a, nil
	}
	if a.confirmDelete != nil {
		return a.handleConfirmDelete(msg)
	}

	if key == "ctrl+c" || key == a.kb.GetActionKey("quit") {
		config.Logf("[UI] quit requested")
		a.dataModel.Quitting = true
		return a, tea.Quit
	}

	if a.models.open {
		if key == a.kb.GetActionKey("select_model") {
			a.models.close()
			return a, nil
		}
		return a.handleModelSelectorKey(msg)
	}

	// PRIORITY 1: modal toggles
	switch key {
	case a.kb.GetActionKey("help"):
		showHelp := !a.showHelp
		a.closeAllModals()
		a.showHelp = showHelp
		return a, nil
	case a.kb.GetActionKey("about"):
		showAbout := !a.showAbout
		a.closeAllModals()
		a.showAbout = showAbout
		return a, nil
	}
	if a.showHelp || a.showAbout {
		if key == "esc" {
			a.closeAllModals()
		}
		return a, nil
	}

	// PRIORITY 2: global actions
	if model, cmd, ok := a.handleGlobalAction(key); ok {
		return model, cmd
	}

	// PRIORITY 3: focused pane
	if a.focus == focusSidebar {
		return a.handleSidebarKey(msg)
	}
	return a.handleComposerKey(msg)
}

func (a AppView) handleGlobalAction(key string) (tea.Model, tea.Cmd, bool) {
	kb := a.kb

	switch key {
	case kb.GetActionKey("new_chat"):
		a.dataModel.NewChat()
		a.setFocus(focusComposer)
		a.searchMode = false
		a.updateViewportContent(true)
		flash := a.setFlash("New chat")
		return a, flash, true

	case kb.GetActionKey("delete_chat"):
		target, ok := a.deleteTarget()
		if !ok {
			flash := a.setFlash("Nothing to delete")
			return a, flash, true
		}
		a.confirmDelete = &target
		return a, nil, true

	case kb.GetActionKey("search_chats"):
		a.setFocus(focusSidebar)
		a.searchMode = true
		a.selectedIdx = 0
		a.searchInput.SetValue("")
		focus := a.searchInput.Focus()
		return a, focus, true

	case kb.GetActionKey("focus_toggle"):
		if a.focus == focusSidebar {
			a.searchMode = false
			a.setFocus(focusComposer)
		} else {
			a.setFocus(focusSidebar)
			a.selectCurrent()
		}
		return a, nil, true

	case kb.GetActionKey("refresh"):
		if a.dataModel.Offline() {
			flash := a.setFlash("Offline: no sessions to refresh")
			return a, flash, true
		}
		return a, a.dataModel.FetchSessionList(), true

	case kb.GetActionKey("select_model"):
		model, cmd := a.toggleModelSelector()
		return model, cmd, true

	case kb.GetActionKey("export_chat"):
		return a, a.dataModel.ExportChat(), true

	case kb.GetActionKey("logout"):
		if a.dataModel.Offline() {
			flash := a.setFlash("Offline: not signed in")
			return a, flash, true
		}
		a.rendered = make(map[string]renderedMessage)
		return a, a.dataModel.Logout(), true

	case kb.GetActionKey("scroll_down"):
		a.viewport.ScrollDown(1)
		return a, nil, true
	case kb.GetActionKey("scroll_up"):
		a.viewport.ScrollUp(1)
		return a, nil, true
	case kb.GetActionKey("half_page_down"):
		a.viewport.HalfPageDown()
		return a, nil, true
	case kb.GetActionKey("half_page_up"):
		a.viewport.HalfPageUp()
		return a, nil, true
	case kb.GetActionKey("scroll_to_top"):
		a.viewport.GotoTop()
		return a, nil, true
	case kb.GetActionKey("scroll_to_bottom"):
		a.viewport.GotoBottom()
		return a, nil, true
	case "pgdown":
		a.viewport.PageDown()
		return a, nil, true
	case "pgup":
		a.viewport.PageUp()
		return a, nil, true

	case kb.GetActionKey("yank_last_response"):
		return a, a.dataModel.CopyLastResponse(), true
	case kb.GetActionKey("yank_conversation"):
		return a, a.dataModel.CopyConversation(), true

	case kb.GetActionKey("clear_input"):
		if a.searchMode {
			a.searchInput.SetValue("")
		} else {
			a.textarea.Reset()
		}
		return a, nil, true
	}

	return a, nil, false
}

// deleteTarget is the selected sidebar row, or the current chat when the
// composer has focus
func (a AppView) deleteTarget() (chat.SessionSummary, bool) {
	if a.focus == focusSidebar {
		return a.selectedSession()
	}
	id := a.currentSidebarID()
	for _, s := range a.dataModel.SidebarSessions() {
		if s.ID == id {
			return s, true
		}
	}
	return chat.SessionSummary{}, false
}

// selectCurrent moves the sidebar cursor onto the current chat
func (a *AppView) selectCurrent() {
	id := a.currentSidebarID()
	for i, s := range a.visibleSessions() {
		if s.ID == id {
			a.selectedIdx = i
			return
		}
	}
	a.clampSelection()
}
