package model

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"sync"

	"chatwave/chat"
	"chatwave/config"
	"chatwave/delivery"
	"chatwave/gateway"
)

// ApologyText replaces the assistant reply when a turn fails
const ApologyText = "Sorry, I encountered an error. Please try again."

// ErrEmptyPrompt is returned for blank input
var ErrEmptyPrompt = errors.New("empty prompt")

// TurnState is the position of one user message in its send cycle
type TurnState int

const (
	NoSession TurnState = iota
	EnsuringSession
	Sending
	Delivering
	Done
	Failed
)

func (s TurnState) String() string {
	switch s {
	case NoSession:
		return "no_session"
	case EnsuringSession:
		return "ensuring_session"
	case Sending:
		return "sending"
	case Delivering:
		return "delivering"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("turn_state(%d)", int(s))
	}
}

// SessionCreator opens backend sessions
type SessionCreator interface {
	CreateSession(ctx context.Context, userID, title string) (gateway.Session, error)
}

// SessionRecorder remembers the backend session that is currently open
type SessionRecorder interface {
	SetSessionID(id string) error
}

// Turn tracks a single prompt from submission until its reply is delivered.
// A Turn is driven by one goroutine at a time.
type Turn struct {
	ChatID         string
	SessionID      string
	UserID         string
	Prompt         string
	PlaceholderID  string
	CreatedSession bool
	State          TurnState
	Err            error

	history       []chat.Message
	script        *delivery.Script
	next          func() (delivery.Fragment, bool)
	stop          func()
	delivered     strings.Builder
	typingCleared bool
}

// Answer returns the full reply once it has been fetched
func (t *Turn) Answer() string {
	if t.script == nil {
		return ""
	}
	return t.script.Text()
}

// NextFragment pulls the next fragment of the reply. It returns false once the
// reply is exhausted or when the turn has nothing to deliver.
func (t *Turn) NextFragment() (delivery.Fragment, bool) {
	if t.script == nil {
		return delivery.Fragment{}, false
	}
	if t.next == nil {
		t.next, t.stop = iter.Pull(t.script.Fragments())
	}
	return t.next()
}

// Orchestrator runs the send cycle: make sure a backend session exists, record
// the user message and an empty assistant placeholder, get the answer, then
// fold the paced fragments into the placeholder.
type Orchestrator struct {
	store    *chat.Store
	source   delivery.Source
	jitter   delivery.Jitter
	sessions SessionCreator
	recorder SessionRecorder

	mu     sync.Mutex
	userID string
	typing map[string]bool
}

// NewOrchestrator creates an orchestrator without a backend. Use WithGateway
// to enable session creation.
func NewOrchestrator(store *chat.Store, source delivery.Source, jitter delivery.Jitter) *Orchestrator {
	return &Orchestrator{
		store:  store,
		source: source,
		jitter: jitter,
		typing: make(map[string]bool),
	}
}

// WithGateway enables the session-ensuring step. recorder may be nil.
func (o *Orchestrator) WithGateway(sessions SessionCreator, recorder SessionRecorder) *Orchestrator {
	o.sessions = sessions
	o.recorder = recorder
	return o
}

// Store returns the chat store the orchestrator writes to
func (o *Orchestrator) Store() *chat.Store {
	return o.store
}

func (o *Orchestrator) SetUserID(id string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.userID = id
}

func (o *Orchestrator) UserID() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.userID
}

// Typing reports whether the assistant is "typing" in chatID
func (o *Orchestrator) Typing(chatID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.typing[chatID]
}

func (o *Orchestrator) setTyping(chatID string, on bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if on {
		o.typing[chatID] = true
	} else {
		delete(o.typing, chatID)
	}
}

// Begin validates the prompt, ensures a backend session and appends the user
// message plus an empty assistant placeholder. On session failure nothing is
// appended and the turn is returned in the Failed state along with the error.
func (o *Orchestrator) Begin(ctx context.Context, chatID, text string) (*Turn, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyPrompt
	}

	c, ok := o.store.Chat(chatID)
	if !ok {
		return nil, fmt.Errorf("chat %s: %w", chatID, chat.ErrChatNotFound)
	}

	t := &Turn{
		ChatID:    chatID,
		SessionID: c.RemoteSessionID,
		UserID:    o.UserID(),
		Prompt:    text,
		State:     NoSession,
	}

	if !c.HasRemoteSession() && o.sessions != nil {
		t.State = EnsuringSession
		session, err := o.sessions.CreateSession(ctx, t.UserID, text)
		if err != nil {
			config.Logf("[Orchestrator] session create failed for chat %s: %v", chatID, err)
			t.State = Failed
			t.Err = err
			return t, fmt.Errorf("failed to create session: %w", err)
		}

		if err := o.store.SetRemoteSession(chatID, session.ID); err != nil {
			t.State = Failed
			t.Err = err
			return t, err
		}
		if session.Title != "" && c.Title == chat.DefaultTitle {
			_ = o.store.SetTitle(chatID, session.Title)
		}
		if o.recorder != nil {
			if err := o.recorder.SetSessionID(session.ID); err != nil {
				config.Logf("[Orchestrator] failed to persist session id %s: %v", session.ID, err)
			}
		}
		t.SessionID = session.ID
		t.CreatedSession = true
	}

	if _, err := o.store.AddMessage(chatID, chat.Message{Role: chat.RoleUser, Content: text}); err != nil {
		t.State = Failed
		t.Err = err
		return t, err
	}
	placeholder, err := o.store.AddMessage(chatID, chat.Message{Role: chat.RoleAssistant})
	if err != nil {
		t.State = Failed
		t.Err = err
		return t, err
	}
	t.PlaceholderID = placeholder.ID
	o.setTyping(chatID, true)

	if c, ok := o.store.Chat(chatID); ok {
		t.history = c.Messages
	}
	t.State = Sending
	return t, nil
}

// Fetch asks the source for the full answer. On failure the placeholder gets
// the apology text and the turn moves to Failed.
func (o *Orchestrator) Fetch(ctx context.Context, t *Turn) error {
	answer, err := o.source.Answer(ctx, delivery.Request{
		Prompt:    t.Prompt,
		UserID:    t.UserID,
		SessionID: t.SessionID,
		History:   t.history,
	})
	if err != nil {
		config.Logf("[Orchestrator] answer failed for chat %s: %v", t.ChatID, err)
		o.fail(t, err)
		return err
	}

	t.script = delivery.NewScript(answer, o.jitter)
	t.State = Delivering
	return nil
}

// fail moves the turn to Failed and replaces whatever the placeholder holds
// with the apology
func (o *Orchestrator) fail(t *Turn, err error) {
	t.State = Failed
	t.Err = err
	if uerr := o.store.UpdateMessageContent(t.ChatID, t.PlaceholderID, ApologyText); uerr != nil {
		config.Logf("[Orchestrator] could not write apology: %v", uerr)
	}
}

// Apply folds one fragment into the placeholder. The first fragment clears
// the typing indicator. The target chat need not be current.
func (o *Orchestrator) Apply(t *Turn, fragment string) error {
	if !t.typingCleared {
		o.setTyping(t.ChatID, false)
		t.typingCleared = true
	}
	t.delivered.WriteString(fragment)
	return o.store.UpdateMessageContent(t.ChatID, t.PlaceholderID, t.delivered.String())
}

// Finish ends the turn and always clears the typing indicator
func (o *Orchestrator) Finish(t *Turn) {
	o.setTyping(t.ChatID, false)
	if t.stop != nil {
		t.stop()
	}
	if t.State == Delivering {
		t.State = Done
	}
}

// Send runs a whole turn in the calling goroutine using delivery.Replay
func (o *Orchestrator) Send(ctx context.Context, chatID, text string) (*Turn, error) {
	t, err := o.Begin(ctx, chatID, text)
	if err != nil {
		return t, err
	}
	defer o.Finish(t)

	if err := o.Fetch(ctx, t); err != nil {
		return t, err
	}

	var applyErr error
	err = delivery.Replay(ctx, t.script, func(fragment string) {
		if err := o.Apply(t, fragment); err != nil && applyErr == nil {
			applyErr = err
		}
	})
	if err != nil {
		config.Logf("[Orchestrator] delivery interrupted in chat %s: %v", t.ChatID, err)
		o.fail(t, err)
		return t, err
	}
	if applyErr != nil {
		config.Logf("[Orchestrator] delivery target vanished in chat %s: %v", t.ChatID, applyErr)
	}
	return t, nil
}
