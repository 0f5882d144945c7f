package chat

import (
	"reflect"
	"testing"
	"time"
)

func remoteIDs(c Chat) []string {
	ids := make([]string, len(c.Messages))
	for i, m := range c.Messages {
		ids[i] = m.ID
	}
	return ids
}

func TestLoadChatHistorySortsByTimestamp(t *testing.T) {
	base := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	s := newTestStore(t)

	s.LoadChatHistory("S1", []RemoteMessage{
		{ID: "m3", Role: RoleAssistant, Content: "third", Timestamp: base.Add(3 * time.Minute)},
		{ID: "m1", Role: RoleUser, Content: "first", Timestamp: base.Add(1 * time.Minute)},
		{ID: "m2", Role: RoleAssistant, Content: "second", Timestamp: base.Add(2 * time.Minute)},
	}, "")

	c, _ := s.Chat("S1")
	want := []string{"m1", "m2", "m3"}
	if got := remoteIDs(c); !reflect.DeepEqual(got, want) {
		t.Errorf("order: got %v, want %v", got, want)
	}
	if c.Title != DefaultHistoryTitle {
		t.Errorf("default title: got %q", c.Title)
	}
	if !c.CreatedAt.Equal(base.Add(time.Minute)) {
		t.Errorf("createdAt should come from earliest message, got %v", c.CreatedAt)
	}
}

func TestLoadChatHistoryStableTies(t *testing.T) {
	ts := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	s := newTestStore(t)

	s.LoadChatHistory("S1", []RemoteMessage{
		{ID: "b", Role: RoleUser, Timestamp: ts},
		{ID: "a", Role: RoleAssistant, Timestamp: ts},
		{ID: "c", Role: RoleUser, Timestamp: ts},
	}, "Ties")

	c, _ := s.Chat("S1")
	want := []string{"b", "a", "c"}
	if got := remoteIDs(c); !reflect.DeepEqual(got, want) {
		t.Errorf("ties reordered: got %v, want %v", got, want)
	}
}

func TestLoadChatHistoryOnEmptyStore(t *testing.T) {
	t1 := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Minute)
	s := newTestStore(t)

	id := s.LoadChatHistory("S1", []RemoteMessage{
		{ID: "m2", Role: RoleAssistant, Content: "hello", Timestamp: t2},
		{ID: "m1", Role: RoleUser, Content: "hi", Timestamp: t1},
	}, "Imported")

	chats := s.Chats()
	if len(chats) != 1 {
		t.Fatalf("chat count: got %d, want 1", len(chats))
	}
	c := chats[0]
	if id != "S1" || c.ID != "S1" || c.RemoteSessionID != "S1" {
		t.Errorf("ids: returned %q, chat %q, remote %q", id, c.ID, c.RemoteSessionID)
	}
	if c.Title != "Imported" {
		t.Errorf("title: got %q", c.Title)
	}
	if got := remoteIDs(c); !reflect.DeepEqual(got, []string{"m1", "m2"}) {
		t.Errorf("order: got %v", got)
	}
	if s.CurrentChatID() != "S1" {
		t.Errorf("imported chat should be current, got %q", s.CurrentChatID())
	}
}

func TestLoadChatHistoryEmptyList(t *testing.T) {
	s := newTestStore(t)
	s.LoadChatHistory("S1", nil, "Empty")

	c, ok := s.Chat("S1")
	if !ok {
		t.Fatal("chat not created")
	}
	if len(c.Messages) != 0 {
		t.Errorf("expected no messages, got %d", len(c.Messages))
	}
	if c.CreatedAt.IsZero() {
		t.Error("createdAt should default to now")
	}
}

func TestLoadChatHistoryReplacesExisting(t *testing.T) {
	base := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	s := newTestStore(t)

	local := s.CreateChat()
	_ = s.SetRemoteSession(local, "S7")
	_, _ = s.AddMessage(local, Message{Role: RoleUser, Content: "unsent draft"})
	other := s.CreateChat()

	id := s.LoadChatHistory("S7", []RemoteMessage{
		{ID: "r1", Role: RoleUser, Content: "server copy", Timestamp: base},
	}, "ignored for existing chats")

	if id != local {
		t.Errorf("should reuse local chat %q, got %q", local, id)
	}
	if s.Len() != 2 {
		t.Errorf("no chat should be added, have %d", s.Len())
	}
	if s.CurrentChatID() != local {
		t.Errorf("current: got %q, want %q (was %q)", s.CurrentChatID(), local, other)
	}

	c, _ := s.Chat(local)
	if len(c.Messages) != 1 || c.Messages[0].Content != "server copy" {
		t.Errorf("messages not replaced: %+v", c.Messages)
	}
	if c.Title != DefaultTitle {
		t.Errorf("title of existing chat changed to %q", c.Title)
	}
}

func TestLoadChatHistoryIdempotent(t *testing.T) {
	base := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	msgs := []RemoteMessage{
		{ID: "m2", Role: RoleAssistant, Content: "b", Timestamp: base.Add(time.Minute)},
		{ID: "m1", Role: RoleUser, Content: "a", Timestamp: base},
	}

	once := newTestStore(t)
	once.LoadChatHistory("S1", msgs, "T")

	twice := newTestStore(t)
	twice.LoadChatHistory("S1", msgs, "T")
	twice.LoadChatHistory("S1", msgs, "T")

	if !reflect.DeepEqual(once.Chats()[0].Messages, twice.Chats()[0].Messages) {
		t.Errorf("second import changed content:\n%+v\n%+v", once.Chats()[0].Messages, twice.Chats()[0].Messages)
	}
	if twice.Len() != 1 {
		t.Errorf("chat count after two imports: %d", twice.Len())
	}
}

func TestLoadChatHistoryRepairsIDs(t *testing.T) {
	ts := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	s := newTestStore(t)

	s.LoadChatHistory("S1", []RemoteMessage{
		{ID: "m1", Role: RoleUser, Content: "a", Timestamp: ts},
		{ID: "", Role: RoleAssistant, Content: "b", Timestamp: ts.Add(time.Second)},
		{ID: "m1", Role: RoleUser, Content: "c", Timestamp: ts.Add(2 * time.Second)},
	}, "")

	c, _ := s.Chat("S1")
	want := []string{"m1", "id-1", "id-2"}
	if got := remoteIDs(c); !reflect.DeepEqual(got, want) {
		t.Fatalf("ids: got %v, want %v", got, want)
	}

	if err := s.UpdateMessageContent("S1", "id-2", "changed"); err != nil {
		t.Fatal(err)
	}
	c, _ = s.Chat("S1")
	if c.Messages[0].Content != "a" || c.Messages[2].Content != "changed" {
		t.Errorf("update hit the wrong message: %+v", c.Messages)
	}
}
