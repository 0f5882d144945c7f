package model

import (
	"context"
	"errors"
	"testing"
	"time"

	"chatwave/auth"
	"chatwave/chat"
	"chatwave/delivery"
	"chatwave/gateway"
	"chatwave/storage"
)

func newTestModel(t *testing.T, backend Backend) *Model {
	t.Helper()
	state, err := storage.NewState(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	t.Cleanup(func() { state.Close() })

	return NewModel(Options{
		Store:   chat.NewStore(),
		Source:  delivery.CannedSource{},
		Backend: backend,
		State:   state,
	})
}

func TestNewModelOffline(t *testing.T) {
	m := newTestModel(t, nil)

	if !m.Offline() || m.NeedsLogin() {
		t.Error("offline model should not need login")
	}
	if m.User == nil || m.Orchestrator.UserID() != "local" {
		t.Errorf("user = %+v", m.User)
	}
	if m.Store.Len() != 1 {
		t.Errorf("expected one initial chat, got %d", m.Store.Len())
	}
}

func TestNewModelRestoresLogin(t *testing.T) {
	dir := t.TempDir()
	state, err := storage.NewState(dir, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer state.Close()
	if err := state.SetAccessToken("tok"); err != nil {
		t.Fatal(err)
	}
	if err := state.SetUser(gateway.User{ID: "u1", Email: "a@b.c"}); err != nil {
		t.Fatal(err)
	}

	backend := &fakeBackend{}
	m := NewModel(Options{Store: chat.NewStore(), Backend: backend, State: state})

	if m.NeedsLogin() {
		t.Error("restored user should not need login")
	}
	if backend.token != "tok" {
		t.Errorf("token = %q", backend.token)
	}
	if m.Orchestrator.UserID() != "u1" {
		t.Errorf("user id = %q", m.Orchestrator.UserID())
	}
}

func TestDeleteSessionRemovesBoth(t *testing.T) {
	backend := &fakeBackend{}
	m := newTestModel(t, backend)
	m.SetUser(&gateway.User{ID: "u1"})

	chatID := m.Store.LoadChatHistory("S1", nil, "Imported")
	m.Sessions = []gateway.Session{{ID: "S1", Title: "Imported"}}
	if err := m.State.SetSessionID("S1"); err != nil {
		t.Fatal(err)
	}

	msg := m.DeleteSession("S1")().(SessionDeletedMsg)
	if msg.Err != nil {
		t.Fatalf("delete: %v", msg.Err)
	}
	m.RemoveSession(msg.ID)

	if len(backend.deleted) != 1 || backend.deleted[0] != "S1" {
		t.Errorf("backend deleted = %v", backend.deleted)
	}
	if _, ok := m.Store.Chat(chatID); ok {
		t.Error("local chat should be gone")
	}
	if len(m.Sessions) != 0 {
		t.Errorf("sessions = %v", m.Sessions)
	}
	if id, _ := m.State.SessionID(); id != "" {
		t.Errorf("persisted session id = %q", id)
	}
	if _, ok := m.Store.CurrentChat(); !ok {
		t.Error("a fresh chat should replace the deleted current chat")
	}
}

func TestDeleteSessionBackendFailure(t *testing.T) {
	backend := &fakeBackend{deleteErr: errors.New("down")}
	m := newTestModel(t, backend)
	chatID := m.Store.LoadChatHistory("S1", nil, "")
	m.Sessions = []gateway.Session{{ID: "S1"}}

	msg := m.DeleteSession("S1")().(SessionDeletedMsg)
	if msg.Err == nil {
		t.Fatal("expected error")
	}
	if _, ok := m.Store.Chat(chatID); !ok {
		t.Error("local chat must survive a failed backend delete")
	}
}

func TestDeleteLocalOnlyChat(t *testing.T) {
	backend := &fakeBackend{}
	m := newTestModel(t, backend)
	keep := m.Store.CreateChat()
	drop := m.Store.CreateChat()
	m.Store.SetCurrentChat(keep)

	msg := m.DeleteSession(drop)().(SessionDeletedMsg)
	if msg.Err != nil {
		t.Fatal(msg.Err)
	}
	if len(backend.deleted) != 0 {
		t.Errorf("backend should not be called: %v", backend.deleted)
	}
	if _, ok := m.Store.Chat(drop); ok {
		t.Error("chat should be deleted")
	}
	if m.Store.CurrentChatID() != keep {
		t.Error("current chat should be untouched")
	}
}

func TestOpenRemoteSession(t *testing.T) {
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	backend := &fakeBackend{
		messages: map[string][]chat.RemoteMessage{
			"S1": {
				{ID: "m2", Role: chat.RoleAssistant, Content: "second", Timestamp: base.Add(time.Minute)},
				{ID: "m1", Role: chat.RoleUser, Content: "first", Timestamp: base},
			},
		},
	}
	m := newTestModel(t, backend)
	m.Sessions = []gateway.Session{{ID: "S1", Title: "Remote"}}

	msg := m.OpenSession("S1", "Remote")().(SessionLoadedMsg)
	if msg.Err != nil {
		t.Fatal(msg.Err)
	}

	c, ok := m.Store.CurrentChat()
	if !ok || c.ID != msg.ChatID {
		t.Fatalf("current chat = %+v", c)
	}
	if len(c.Messages) != 2 || c.Messages[0].ID != "m1" {
		t.Errorf("messages = %+v", c.Messages)
	}
	if c.Title != "Remote" {
		t.Errorf("title = %q", c.Title)
	}
	if id, _ := m.State.SessionID(); id != "S1" {
		t.Errorf("persisted session id = %q", id)
	}
}

func TestSidebarSessions(t *testing.T) {
	backend := &fakeBackend{}
	m := newTestModel(t, backend)
	m.Sessions = []gateway.Session{{ID: "S1", Title: "Remote"}}
	m.Store.LoadChatHistory("S1", nil, "Remote")
	local := m.Store.CreateChat()

	entries := m.SidebarSessions()
	if len(entries) != 2 {
		t.Fatalf("entries = %+v", entries)
	}
	if entries[0].ID != local || entries[1].ID != "S1" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestSidebarKeepsUnlistedSession(t *testing.T) {
	backend := &fakeBackend{nextID: "S2"}
	m := newTestModel(t, backend)
	m.SetUser(&gateway.User{ID: "u1"})
	m.Sessions = []gateway.Session{{ID: "S1", Title: "Remote"}}

	chatID := m.Store.EnsureChat()
	if _, err := m.Orchestrator.Begin(context.Background(), chatID, "hello"); err != nil {
		t.Fatal(err)
	}

	// the refresh that would list S2 has not happened (or failed)
	entries := m.SidebarSessions()
	var ids []string
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	if len(ids) != 2 || ids[0] != "S2" || ids[1] != "S1" {
		t.Fatalf("sidebar ids = %v", ids)
	}
	if got, ok := m.SelectedChatID("S2"); !ok || got != chatID {
		t.Errorf("S2 maps to %q, %v", got, ok)
	}

	// once listed, the backend entry replaces the local one
	m.Sessions = append(m.Sessions, gateway.Session{ID: "S2", Title: "hello"})
	if n := len(m.SidebarSessions()); n != 2 {
		t.Errorf("entries after refresh = %d", n)
	}
}

func TestSendMessageCommand(t *testing.T) {
	backend := &fakeBackend{nextID: "S9"}
	m := newTestModel(t, backend)
	m.SetUser(&gateway.User{ID: "u1"})

	started, ok := m.SendMessage("hello")().(TurnStartedMsg)
	if !ok {
		t.Fatal("expected TurnStartedMsg")
	}
	fetched := m.FetchAnswer(started.Turn)().(TurnFetchedMsg)
	if fetched.Err != nil {
		t.Fatal(fetched.Err)
	}
	for {
		frag, ok := started.Turn.NextFragment()
		if !ok {
			break
		}
		if err := m.Orchestrator.Apply(started.Turn, frag.Text); err != nil {
			t.Fatal(err)
		}
	}
	m.Orchestrator.Finish(started.Turn)

	c, _ := m.Store.CurrentChat()
	if c.RemoteSessionID != "S9" {
		t.Errorf("RemoteSessionID = %q", c.RemoteSessionID)
	}
	if got := c.Messages[1].Content; got != delivery.CannedReply("hello") {
		t.Errorf("reply = %q", got)
	}
}

func TestLogout(t *testing.T) {
	backend := &fakeBackend{login: gateway.Login{AccessToken: "tok", User: gateway.User{ID: "u1"}}}
	m := newTestModel(t, backend)

	login, err := m.exchange(context.Background(), fakeIdentity())
	if err != nil {
		t.Fatal(err)
	}
	m.ApplyLogin(login)
	if !m.LoggedIn() || backend.token != "tok" {
		t.Fatal("login not applied")
	}

	out := m.Logout()().(LoggedOutMsg)
	if out.Err != nil {
		t.Fatal(out.Err)
	}
	if m.LoggedIn() || backend.token != "" {
		t.Error("logout should clear user and token")
	}
	if tok, _ := m.State.AccessToken(); tok != "" {
		t.Errorf("stored token = %q", tok)
	}
	if m.Store.Len() != 1 {
		t.Errorf("store should hold one fresh chat, has %d", m.Store.Len())
	}
	if c, ok := m.Store.CurrentChat(); !ok || len(c.Messages) != 0 {
		t.Error("current chat should be empty after logout")
	}
}

func fakeIdentity() auth.Identity {
	return auth.Identity{Subject: "g1", Email: "a@b.c", Name: "A"}
}
