package model

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"chatwave/storage"
)

// SendMessage starts a turn in the current chat. The returned command ensures
// the backend session and records the messages; the UI then calls FetchAnswer.
func (m *Model) SendMessage(text string) tea.Cmd {
	chatID := m.Store.CurrentChatID()
	if _, ok := m.Store.Chat(chatID); !ok {
		chatID = m.Store.CreateChat()
	}
	orch := m.Orchestrator
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		turn, err := orch.Begin(ctx, chatID, text)
		if err != nil {
			return TurnFailedMsg{Turn: turn, Err: err}
		}
		return TurnStartedMsg{Turn: turn}
	}
}

// FetchAnswer obtains the full reply for a started turn
func (m *Model) FetchAnswer(t *Turn) tea.Cmd {
	orch := m.Orchestrator
	return func() tea.Msg {
		err := orch.Fetch(context.Background(), t)
		return TurnFetchedMsg{Turn: t, Err: err}
	}
}

// DeliverNext schedules the next fragment after its delay. When the reply is
// exhausted the turn is finished and TurnDoneMsg follows.
func (m *Model) DeliverNext(t *Turn) tea.Cmd {
	frag, ok := t.NextFragment()
	if !ok {
		m.Orchestrator.Finish(t)
		return func() tea.Msg { return TurnDoneMsg{Turn: t} }
	}
	return tea.Tick(frag.Delay, func(time.Time) tea.Msg {
		return DeliveryTickMsg{Turn: t, Fragment: frag.Text}
	})
}

// ApplyFragment folds a delivered fragment and schedules the next one
func (m *Model) ApplyFragment(msg DeliveryTickMsg) tea.Cmd {
	if err := m.Orchestrator.Apply(msg.Turn, msg.Fragment); err != nil {
		// The chat was deleted mid-delivery; stop quietly.
		m.Orchestrator.Finish(msg.Turn)
		return func() tea.Msg { return TurnDoneMsg{Turn: msg.Turn} }
	}
	return m.DeliverNext(msg.Turn)
}

// CopyLastResponse copies the last assistant reply of the current chat
func (m *Model) CopyLastResponse() tea.Cmd {
	c, ok := m.Store.CurrentChat()
	if !ok {
		return nil
	}
	msg, found := c.LastAssistantMessage()
	return func() tea.Msg {
		if !found || msg.Content == "" {
			return ClipboardMsg{What: "response", Err: errors.New("no assistant response yet")}
		}
		if err := clipboard.WriteAll(msg.Content); err != nil {
			return ClipboardMsg{What: "response", Err: fmt.Errorf("clipboard: %w", err)}
		}
		return ClipboardMsg{What: "response"}
	}
}

// CopyConversation copies the current chat as a plain transcript
func (m *Model) CopyConversation() tea.Cmd {
	c, ok := m.Store.CurrentChat()
	if !ok || len(c.Messages) == 0 {
		return nil
	}
	return func() tea.Msg {
		if err := clipboard.WriteAll(storage.FormatTranscript(c)); err != nil {
			return ClipboardMsg{What: "conversation", Err: fmt.Errorf("clipboard: %w", err)}
		}
		return ClipboardMsg{What: "conversation"}
	}
}
