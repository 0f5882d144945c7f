package model

import (
	"context"
	"fmt"
	"slices"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"chatwave/chat"
	"chatwave/config"
	"chatwave/gateway"
	"chatwave/storage"
)

const requestTimeout = 30 * time.Second

// FetchSessionList retrieves the signed-in user's backend sessions
func (m *Model) FetchSessionList() tea.Cmd {
	if m.Backend == nil || m.User == nil {
		return nil
	}
	backend := m.Backend
	userID := m.User.ID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		sessions, err := backend.ListSessions(ctx, userID)
		if err != nil {
			config.Logf("[Sessions] list failed: %v", err)
		}
		return SessionsListMsg{Sessions: sessions, Err: err}
	}
}

// SidebarSessions merges backend sessions with local chats the session list
// does not cover yet: chats that never reached the backend and chats whose
// session was created after the last successful refresh. Offline, every local
// chat is listed.
func (m *Model) SidebarSessions() []chat.SessionSummary {
	var out []chat.SessionSummary
	for _, c := range m.Store.Chats() {
		if m.Offline() {
			out = append(out, chat.SessionSummary{ID: c.ID, Title: c.Title, CreatedAt: c.CreatedAt})
			continue
		}
		if c.HasRemoteSession() {
			if !m.IsRemoteSession(c.RemoteSessionID) {
				out = append(out, chat.SessionSummary{ID: c.RemoteSessionID, Title: c.Title, CreatedAt: c.CreatedAt})
			}
			continue
		}
		if len(c.Messages) == 0 && c.ID != m.Store.CurrentChatID() {
			continue
		}
		out = append(out, chat.SessionSummary{ID: c.ID, Title: c.Title, CreatedAt: c.CreatedAt})
	}

	for _, s := range m.Sessions {
		out = append(out, s.Summary())
	}
	return out
}

// IsRemoteSession reports whether id is one of the listed backend sessions
func (m *Model) IsRemoteSession(id string) bool {
	return slices.ContainsFunc(m.Sessions, func(s gateway.Session) bool { return s.ID == id })
}

// SelectedChatID maps a sidebar id to the local chat it refers to
func (m *Model) SelectedChatID(id string) (string, bool) {
	if c, ok := m.Store.FindByRemoteSession(id); ok {
		return c.ID, true
	}
	if c, ok := m.Store.Chat(id); ok {
		return c.ID, true
	}
	return "", false
}

// OpenSession makes a sidebar entry current. Backend sessions are always
// re-fetched and imported with LoadChatHistory; local chats are selected.
func (m *Model) OpenSession(id, title string) tea.Cmd {
	if !m.IsRemoteSession(id) || m.Backend == nil {
		chatID, ok := m.SelectedChatID(id)
		return func() tea.Msg {
			if !ok {
				return SessionLoadedMsg{SessionID: id, Err: fmt.Errorf("chat %s: %w", id, chat.ErrChatNotFound)}
			}
			m.Store.SetCurrentChat(chatID)
			return SessionLoadedMsg{ChatID: chatID}
		}
	}
	return m.loadRemoteSession(id, title)
}

// ResumeSession re-opens the persisted backend session at startup
func (m *Model) ResumeSession() tea.Cmd {
	id := m.ResumeSessionID()
	if id == "" || m.Backend == nil {
		return nil
	}
	return m.loadRemoteSession(id, "")
}

func (m *Model) loadRemoteSession(sessionID, title string) tea.Cmd {
	backend := m.Backend
	store := m.Store
	state := m.State
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		remote, err := backend.FetchMessages(ctx, sessionID)
		if err != nil {
			config.Logf("[Sessions] fetch messages for %s failed: %v", sessionID, err)
			return SessionLoadedMsg{SessionID: sessionID, Err: err}
		}

		chatID := store.LoadChatHistory(sessionID, remote, title)
		if state != nil {
			if err := state.SetSessionID(sessionID); err != nil {
				config.Logf("[Sessions] failed to persist session id: %v", err)
			}
		}
		return SessionLoadedMsg{SessionID: sessionID, ChatID: chatID}
	}
}

// DeleteSession removes a session everywhere: on the backend (when it exists
// there) and from the local store. If it was current a fresh chat replaces it.
func (m *Model) DeleteSession(id string) tea.Cmd {
	remote := m.IsRemoteSession(id)
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return SessionDeletedMsg{ID: id, Err: m.deleteSession(ctx, id, remote)}
	}
}

func (m *Model) deleteSession(ctx context.Context, id string, remote bool) error {
	local, hasLocal := m.Store.FindByRemoteSession(id)
	if !hasLocal {
		local, hasLocal = m.Store.Chat(id)
	}

	sessionID := id
	if hasLocal && local.HasRemoteSession() {
		sessionID = local.RemoteSessionID
		remote = true
	}

	if remote && m.Backend != nil {
		if err := m.Backend.DeleteSession(ctx, sessionID); err != nil {
			config.Logf("[Sessions] delete %s failed: %v", sessionID, err)
			return err
		}
		if m.State != nil {
			if err := m.State.ClearSessionIDIf(sessionID); err != nil {
				config.Logf("[Sessions] %v", err)
			}
		}
	}

	if !hasLocal {
		return nil
	}

	wasCurrent := m.Store.CurrentChatID() == local.ID
	if err := m.Store.DeleteChat(local.ID); err != nil {
		return err
	}
	if wasCurrent {
		m.Store.CreateChat()
	}
	return nil
}

// RemoveSession drops a deleted session from the sidebar list
func (m *Model) RemoveSession(id string) {
	m.Sessions = slices.DeleteFunc(m.Sessions, func(s gateway.Session) bool { return s.ID == id })
}

// NewChat starts an empty chat and forgets the persisted backend session
func (m *Model) NewChat() string {
	id := m.Store.CreateChat()
	if m.State != nil {
		if err := m.State.Delete(storage.KeySessionID); err != nil {
			config.Logf("[Sessions] failed to clear session id: %v", err)
		}
	}
	return id
}

// ExportChat writes the current chat to the export directory
func (m *Model) ExportChat() tea.Cmd {
	c, ok := m.Store.CurrentChat()
	if !ok {
		return nil
	}
	return func() tea.Msg {
		if err := config.EnsureDir(config.GetExportDir()); err != nil {
			return ChatExportedMsg{Err: err}
		}
		path := storage.GenerateExportPath(c.Title, time.Now())
		if err := storage.ExportChat(c, path); err != nil {
			config.Logf("[Export] %v", err)
			return ChatExportedMsg{Err: err}
		}
		return ChatExportedMsg{Path: path}
	}
}
