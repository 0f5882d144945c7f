package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"chatwave/config"
)

// handleStreamingMessage advances turns: begin, fetch, typewriter ticks, done.
// ok is false for messages it does not own.
func (a AppView) handleStreamingMessage(msg tea.Msg) (AppView, tea.Cmd, bool) {
	switch msg := msg.(type) {
	case turnStartedMsg:
		t := msg.Turn
		config.Logf("[UI] turn started in chat %s (session %s)", t.ChatID, t.SessionID)
		a.showChatIfCurrent(t.ChatID)

		cmds := []tea.Cmd{a.dataModel.FetchAnswer(t)}
		if t.CreatedSession {
			cmds = append(cmds, a.dataModel.FetchSessionList())
		}
		return a, tea.Batch(cmds...), true

	case turnFailedMsg:
		a.activeTurns = max(a.activeTurns-1, 0)
		config.Logf("[UI] turn rejected: %v", msg.Err)
		a.updateViewportContent(true)
		flash := a.setFlash("Could not send: " + msg.Err.Error())
		return a, flash, true

	case turnFetchedMsg:
		t := msg.Turn
		if msg.Err != nil {
			// The apology is already in the transcript
			a.dataModel.Orchestrator.Finish(t)
			a.activeTurns = max(a.activeTurns-1, 0)
			a.showChatIfCurrent(t.ChatID)
			flash := a.setFlash("The assistant is unavailable")
			return a, flash, true
		}
		a.delivering[t.PlaceholderID] = true
		return a, a.dataModel.DeliverNext(t), true

	case deliveryTickMsg:
		cmd := a.dataModel.ApplyFragment(msg)
		a.showChatIfCurrent(msg.Turn.ChatID)
		return a, cmd, true

	case turnDoneMsg:
		t := msg.Turn
		a.activeTurns = max(a.activeTurns-1, 0)
		delete(a.delivering, t.PlaceholderID)
		config.Logf("[UI] turn done in chat %s: %s", t.ChatID, t.State)
		a.showChatIfCurrent(t.ChatID)
		return a, a.renderPending(), true
	}

	return a, nil, false
}

// showChatIfCurrent redraws when chatID is on screen. Other chats keep
// receiving fragments in the store.
func (a *AppView) showChatIfCurrent(chatID string) {
	if a.dataModel.Store.CurrentChatID() == chatID {
		a.updateViewportContent(true)
	}
}
