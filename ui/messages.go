package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"chatwave/model"
)

// Aliases for messages produced by model commands
type turnStartedMsg = model.TurnStartedMsg
type turnFailedMsg = model.TurnFailedMsg
type turnFetchedMsg = model.TurnFetchedMsg
type deliveryTickMsg = model.DeliveryTickMsg
type turnDoneMsg = model.TurnDoneMsg
type sessionsListMsg = model.SessionsListMsg
type sessionLoadedMsg = model.SessionLoadedMsg
type sessionDeletedMsg = model.SessionDeletedMsg
type chatExportedMsg = model.ChatExportedMsg
type clipboardMsg = model.ClipboardMsg
type deviceCodeMsg = model.DeviceCodeMsg
type loginCompleteMsg = model.LoginCompleteMsg
type loggedOutMsg = model.LoggedOutMsg
type modelsListMsg = model.ModelsListMsg
type modelSwitchedMsg = model.ModelSwitchedMsg

// markdownRenderedMsg carries a finished markdown render for
// one message; Source guards against applying a stale render.
type markdownRenderedMsg struct {
	MessageID string
	Source    string
	Width     int
	Rendered  string
}

// flashClearMsg clears the status flash if no newer flash replaced it
type flashClearMsg struct {
	seq int
}

const flashDuration = 3 * time.Second

// timeNow is swapped in tests
var timeNow = time.Now

func clearFlashAfter(seq int) tea.Cmd {
	return tea.Tick(flashDuration, func(time.Time) tea.Msg {
		return flashClearMsg{seq: seq}
	})
}

func (a *AppView) setFlash(text string) tea.Cmd {
	a.flashSeq++
	a.flash = text
	return clearFlashAfter(a.flashSeq)
}
