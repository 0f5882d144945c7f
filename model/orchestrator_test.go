package model

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"chatwave/chat"
	"chatwave/delivery"
	"chatwave/gateway"
)

var instant = delivery.Jitter{}

type fakeBackend struct {
	mu        sync.Mutex
	createErr error
	created   []string
	nextID    string
	sessions  []gateway.Session
	messages  map[string][]chat.RemoteMessage
	deleted   []string
	deleteErr error
	token     string
	login     gateway.Login
}

func (f *fakeBackend) CreateSession(ctx context.Context, userID, title string) (gateway.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return gateway.Session{}, f.createErr
	}
	f.created = append(f.created, title)
	id := f.nextID
	if id == "" {
		id = "S-new"
	}
	return gateway.Session{ID: id, Title: title, CreatedAt: time.Now()}, nil
}

func (f *fakeBackend) SendMessage(ctx context.Context, sessionID, userID, message string) (string, error) {
	return "echo: " + message, nil
}

func (f *fakeBackend) ListSessions(ctx context.Context, userID string) ([]gateway.Session, error) {
	return f.sessions, nil
}

func (f *fakeBackend) FetchMessages(ctx context.Context, sessionID string) ([]chat.RemoteMessage, error) {
	return f.messages[sessionID], nil
}

func (f *fakeBackend) DeleteSession(ctx context.Context, sessionID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, sessionID)
	return nil
}

func (f *fakeBackend) LoginWithGoogle(ctx context.Context, profile gateway.GoogleProfile) (gateway.Login, error) {
	return f.login, nil
}

func (f *fakeBackend) SetAccessToken(token string) {
	f.token = token
}

type fakeRecorder struct {
	ids []string
}

func (r *fakeRecorder) SetSessionID(id string) error {
	r.ids = append(r.ids, id)
	return nil
}

func staticSource(answer string) delivery.Source {
	return delivery.SourceFunc(func(ctx context.Context, req delivery.Request) (string, error) {
		return answer, nil
	})
}

func TestTurnStateString(t *testing.T) {
	tests := map[TurnState]string{
		NoSession:       "no_session",
		EnsuringSession: "ensuring_session",
		Sending:         "sending",
		Delivering:      "delivering",
		Done:            "done",
		Failed:          "failed",
	}
	for state, want := range tests {
		if got := state.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", state, got, want)
		}
	}
}

func TestSendOffline(t *testing.T) {
	store := chat.NewStore()
	chatID := store.CreateChat()
	o := NewOrchestrator(store, staticSource("ok"), instant)

	turn, err := o.Send(context.Background(), chatID, "hi")
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if turn.State != Done {
		t.Errorf("state = %v, want done", turn.State)
	}

	c, _ := store.Chat(chatID)
	if len(c.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(c.Messages))
	}
	if c.Messages[0].Role != chat.RoleUser || c.Messages[0].Content != "hi" {
		t.Errorf("user message = %+v", c.Messages[0])
	}
	if c.Messages[1].Role != chat.RoleAssistant || c.Messages[1].Content != "ok" {
		t.Errorf("assistant message = %+v", c.Messages[1])
	}
	if c.HasRemoteSession() {
		t.Error("offline turn should not create a backend session")
	}
	if o.Typing(chatID) {
		t.Error("typing should be cleared")
	}
}

func TestSendCreatesSession(t *testing.T) {
	store := chat.NewStore()
	chatID := store.CreateChat()
	backend := &fakeBackend{nextID: "S1"}
	rec := &fakeRecorder{}
	o := NewOrchestrator(store, staticSource("answer"), instant).WithGateway(backend, rec)
	o.SetUserID("u1")

	turn, err := o.Send(context.Background(), chatID, "first question")
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if !turn.CreatedSession || turn.SessionID != "S1" {
		t.Errorf("turn = %+v", turn)
	}

	c, _ := store.Chat(chatID)
	if c.RemoteSessionID != "S1" {
		t.Errorf("RemoteSessionID = %q", c.RemoteSessionID)
	}
	if c.Title != "first question" {
		t.Errorf("Title = %q", c.Title)
	}
	if len(rec.ids) != 1 || rec.ids[0] != "S1" {
		t.Errorf("recorded ids = %v", rec.ids)
	}

	// A second turn reuses the session.
	if _, err := o.Send(context.Background(), chatID, "again"); err != nil {
		t.Fatal(err)
	}
	if len(backend.created) != 1 {
		t.Errorf("CreateSession called %d times", len(backend.created))
	}
}

func TestSessionFailureAppendsNothing(t *testing.T) {
	store := chat.NewStore()
	chatID := store.CreateChat()
	backend := &fakeBackend{createErr: errors.New("down")}
	o := NewOrchestrator(store, staticSource("x"), instant).WithGateway(backend, nil)

	turn, err := o.Send(context.Background(), chatID, "hi")
	if err == nil {
		t.Fatal("expected error")
	}
	if turn == nil || turn.State != Failed {
		t.Errorf("turn = %+v", turn)
	}

	c, _ := store.Chat(chatID)
	if len(c.Messages) != 0 {
		t.Errorf("expected no messages, got %d", len(c.Messages))
	}
	if o.Typing(chatID) {
		t.Error("typing should not be set")
	}
}

func TestSourceFailureWritesApology(t *testing.T) {
	store := chat.NewStore()
	chatID := store.CreateChat()
	failing := delivery.SourceFunc(func(ctx context.Context, req delivery.Request) (string, error) {
		return "", errors.New("boom")
	})
	o := NewOrchestrator(store, failing, instant)

	turn, err := o.Send(context.Background(), chatID, "hi")
	if err == nil {
		t.Fatal("expected error")
	}
	if turn.State != Failed {
		t.Errorf("state = %v", turn.State)
	}

	c, _ := store.Chat(chatID)
	if got := c.Messages[1].Content; got != ApologyText {
		t.Errorf("placeholder = %q", got)
	}
	if o.Typing(chatID) {
		t.Error("typing should be cleared after failure")
	}
}

func TestInterruptedDeliveryWritesApology(t *testing.T) {
	store := chat.NewStore()
	chatID := store.CreateChat()
	slow := delivery.Jitter{Min: 10 * time.Millisecond, Max: 10 * time.Millisecond}
	o := NewOrchestrator(store, staticSource("a reply that takes far too long to type"), slow)

	ctx, cancel := context.WithTimeout(context.Background(), 35*time.Millisecond)
	defer cancel()

	turn, err := o.Send(ctx, chatID, "hi")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("got %v, want deadline exceeded", err)
	}
	if turn.State != Failed {
		t.Errorf("state = %v", turn.State)
	}

	c, _ := store.Chat(chatID)
	if got := c.Messages[1].Content; got != ApologyText {
		t.Errorf("placeholder kept partial text %q", got)
	}
	if o.Typing(chatID) {
		t.Error("typing should be cleared after failure")
	}
}

func TestBeginRejects(t *testing.T) {
	store := chat.NewStore()
	chatID := store.CreateChat()
	o := NewOrchestrator(store, staticSource("x"), instant)

	if _, err := o.Begin(context.Background(), chatID, "   "); !errors.Is(err, ErrEmptyPrompt) {
		t.Errorf("blank prompt: %v", err)
	}
	if _, err := o.Begin(context.Background(), "missing", "hi"); !errors.Is(err, chat.ErrChatNotFound) {
		t.Errorf("missing chat: %v", err)
	}
}

func TestStepwiseDelivery(t *testing.T) {
	store := chat.NewStore()
	chatID := store.CreateChat()
	o := NewOrchestrator(store, staticSource("héllo"), instant)
	ctx := context.Background()

	turn, err := o.Begin(ctx, chatID, "hi")
	if err != nil {
		t.Fatal(err)
	}
	if !o.Typing(chatID) {
		t.Error("typing should be set after Begin")
	}
	if turn.State != Sending {
		t.Errorf("state = %v", turn.State)
	}

	if err := o.Fetch(ctx, turn); err != nil {
		t.Fatal(err)
	}
	if turn.State != Delivering {
		t.Errorf("state = %v", turn.State)
	}

	// The user switches to another chat mid-delivery.
	store.CreateChat()

	var steps []string
	for {
		frag, ok := turn.NextFragment()
		if !ok {
			break
		}
		if err := o.Apply(turn, frag.Text); err != nil {
			t.Fatal(err)
		}
		if o.Typing(chatID) {
			t.Error("typing should clear on first fragment")
		}
		c, _ := store.Chat(chatID)
		steps = append(steps, c.Messages[1].Content)
	}
	o.Finish(turn)

	want := []string{"h", "hé", "hél", "héll", "héllo"}
	if len(steps) != len(want) {
		t.Fatalf("steps = %q", steps)
	}
	for i := range want {
		if steps[i] != want[i] {
			t.Errorf("step %d = %q, want %q", i, steps[i], want[i])
		}
	}
	if turn.State != Done {
		t.Errorf("state = %v", turn.State)
	}
}

func TestConcurrentChats(t *testing.T) {
	store := chat.NewStore()
	a := store.CreateChat()
	b := store.CreateChat()
	o := NewOrchestrator(store, delivery.SourceFunc(func(ctx context.Context, req delivery.Request) (string, error) {
		return "reply to " + req.Prompt, nil
	}), delivery.Jitter{Min: time.Microsecond, Max: 2 * time.Microsecond})

	var wg sync.WaitGroup
	for _, id := range []string{a, b} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := o.Send(context.Background(), id, id); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	for _, id := range []string{a, b} {
		c, _ := store.Chat(id)
		if got := c.Messages[1].Content; got != "reply to "+id {
			t.Errorf("chat %s reply = %q", id, got)
		}
	}
}
