package chat

import (
	"errors"
	"time"
)

// Role identifies who authored a message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

const (
	DefaultTitle        = "New Chat"
	DefaultHistoryTitle = "Chat History"
)

var (
	ErrChatNotFound    = errors.New("chat not found")
	ErrMessageNotFound = errors.New("message not found")
)

// Message is a single entry in a chat transcript.
// Only Content changes after creation.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Chat is a conversation. ID is always the local identifier; RemoteSessionID
// is set once the backend has issued a session for it and is the only id used
// for backend calls.
type Chat struct {
	ID              string    `json:"id"`
	RemoteSessionID string    `json:"remote_session_id,omitempty"`
	Title           string    `json:"title"`
	Messages        []Message `json:"messages"`
	CreatedAt       time.Time `json:"created_at"`
}

// HasRemoteSession reports whether the backend knows about this chat
func (c Chat) HasRemoteSession() bool {
	return c.RemoteSessionID != ""
}

// LastAssistantMessage returns the most recent assistant message, if any
func (c Chat) LastAssistantMessage() (Message, bool) {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Role == RoleAssistant {
			return c.Messages[i], true
		}
	}
	return Message{}, false
}

func (c Chat) clone() Chat {
	msgs := make([]Message, len(c.Messages))
	copy(msgs, c.Messages)
	c.Messages = msgs
	return c
}
