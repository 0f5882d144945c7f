package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"chatwave/config"
	"chatwave/provider"
)

// handleSessionMessage handles session list, login and side-effect results.
// ok is false for messages it does not own.
func (a AppView) handleSessionMessage(msg tea.Msg) (AppView, tea.Cmd, bool) {
	switch msg := msg.(type) {
	case sessionsListMsg:
		if msg.Err != nil {
			flash := a.setFlash("Could not load sessions")
			return a, flash, true
		}
		a.dataModel.Sessions = msg.Sessions
		a.clampSelection()
		return a, nil, true

	case sessionLoadedMsg:
		if msg.Err != nil {
			flash := a.setFlash("Could not open chat: " + msg.Err.Error())
			return a, flash, true
		}
		a.updateViewportContent(true)
		return a, a.renderPending(), true

	case sessionDeletedMsg:
		if msg.Err != nil {
			a.showAcknowledge("⚠ Delete Failed", msg.Err.Error(), ModalTypeError)
			return a, nil, true
		}
		a.dataModel.RemoveSession(msg.ID)
		a.clampSelection()
		a.updateViewportContent(true)
		flash := a.setFlash("Chat deleted")
		return a, tea.Batch(flash, a.dataModel.FetchSessionList()), true

	case chatExportedMsg:
		if msg.Err != nil {
			a.showAcknowledge("⚠ Export Failed", msg.Err.Error(), ModalTypeError)
			return a, nil, true
		}
		a.showAcknowledge("Chat Exported", fmt.Sprintf("Saved to:\n\n%s", msg.Path), ModalTypeInfo)
		return a, nil, true

	case clipboardMsg:
		if msg.Err != nil {
			flash := a.setFlash(msg.Err.Error())
			return a, flash, true
		}
		flash := a.setFlash(fmt.Sprintf("Copied %s to clipboard", msg.What))
		return a, flash, true

	case deviceCodeMsg:
		if msg.Err != nil {
			a.login.step = loginChoose
			a.login.err = msg.Err.Error()
			return a, nil, true
		}
		a.login.step = loginDevice
		a.login.code = msg.Code
		return a, a.dataModel.WaitDeviceLogin(msg.Code), true

	case loginCompleteMsg:
		if msg.Err != nil {
			// A stale poll from an abandoned device code
			if !a.dataModel.NeedsLogin() {
				return a, nil, true
			}
			a.login.step = loginChoose
			a.login.code = nil
			a.login.err = msg.Err.Error()
			return a, nil, true
		}
		a.dataModel.ApplyLogin(msg.Login)
		a.login = newLoginState()
		a.updateViewportContent(true)
		flash := a.setFlash("Signed in as " + msg.Login.User.Email)
		return a, tea.Batch(
			flash,
			a.dataModel.FetchSessionList(),
			a.dataModel.ResumeSession(),
		), true

	case loggedOutMsg:
		if msg.Err != nil {
			config.Logf("[UI] logout cleanup failed: %v", msg.Err)
		}
		a.login = newLoginState()
		a.focus = focusComposer
		a.searchMode = false
		a.selectedIdx = 0
		a.updateViewportContent(true)
		return a, nil, true

	case provider.PingProviderMsg:
		if !msg.Valid {
			text := fmt.Sprintf("Model %q is not reachable.", msg.Model)
			if msg.Err != nil {
				text += "\n\n" + msg.Err.Error()
			}
			a.showAcknowledge("⚠ Model Unavailable", text, ModalTypeWarning)
		}
		return a, nil, true
	}

	return a, nil, false
}
