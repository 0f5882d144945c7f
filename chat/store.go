// Package chat holds the in-memory chat store and the pure helpers used to
// present it (time bucketing, title search).
//
// The Store owns every chat for the lifetime of the process. All mutation goes
// through its methods; each one builds a fresh chat slice under the lock and
// swaps it in, so a snapshot returned by Chats() is never modified afterwards.
package chat

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store holds chats newest-first plus the id of the active chat
type Store struct {
	mu            sync.RWMutex
	chats         []Chat
	currentChatID string

	now   func() time.Time
	newID func() string
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Chats returns a snapshot of all chats, newest first
func (s *Store) Chats() []Chat {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.chats
}

// Len returns the number of chats
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chats)
}

// CurrentChatID returns the raw current id, which may be dangling
func (s *Store) CurrentChatID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentChatID
}

// CurrentChat resolves the current id. A dangling id means no active chat.
func (s *Store) CurrentChat() (Chat, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.currentChatID == "" {
		return Chat{}, false
	}
	idx := s.indexOf(s.currentChatID)
	if idx < 0 {
		return Chat{}, false
	}
	return s.chats[idx].clone(), true
}

// Chat looks up a chat by local id
func (s *Store) Chat(id string) (Chat, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return Chat{}, false
	}
	return s.chats[idx].clone(), true
}

// FindByRemoteSession looks up a chat by backend session id, falling back to
// the local id for chats that were imported under the backend id.
func (s *Store) FindByRemoteSession(sessionID string) (Chat, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.indexOfSession(sessionID)
	if idx < 0 {
		return Chat{}, false
	}
	return s.chats[idx].clone(), true
}

// CreateChat inserts an empty chat at the head and makes it current
func (s *Store) CreateChat() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := Chat{
		ID:        s.newID(),
		Title:     DefaultTitle,
		Messages:  []Message{},
		CreatedAt: s.now(),
	}

	next := make([]Chat, 0, len(s.chats)+1)
	next = append(next, c)
	next = append(next, s.chats...)
	s.chats = next
	s.currentChatID = c.ID

	return c.ID
}

// EnsureChat creates a chat when the store is empty and returns the current id
func (s *Store) EnsureChat() string {
	s.mu.RLock()
	empty := len(s.chats) == 0
	current := s.currentChatID
	s.mu.RUnlock()

	if empty {
		return s.CreateChat()
	}
	return current
}

// SetCurrentChat sets the active chat without checking that it exists
func (s *Store) SetCurrentChat(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentChatID = id
}

// AddMessage appends msg to the chat. An empty msg.ID, or one already used in
// the chat, is replaced with a fresh one. CreatedAt is always stamped with the
// current time. The stored message is returned so callers learn the id.
func (s *Store) AddMessage(chatID string, msg Message) (Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(chatID)
	if idx < 0 {
		return Message{}, ErrChatNotFound
	}

	taken := make(map[string]bool, len(s.chats[idx].Messages))
	for _, m := range s.chats[idx].Messages {
		taken[m.ID] = true
	}
	msg.ID = s.claimID(msg.ID, taken)
	msg.CreatedAt = s.now()

	s.replaceAt(idx, func(c *Chat) {
		c.Messages = append(c.Messages, msg)
	})

	return msg, nil
}

// UpdateMessageContent replaces the content of one message, keeping its id,
// role and timestamp. Concurrent writers to the same message race; the last
// write wins.
func (s *Store) UpdateMessageContent(chatID, messageID, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(chatID)
	if idx < 0 {
		return ErrChatNotFound
	}

	msgIdx := -1
	for i, m := range s.chats[idx].Messages {
		if m.ID == messageID {
			msgIdx = i
			break
		}
	}
	if msgIdx < 0 {
		return ErrMessageNotFound
	}

	s.replaceAt(idx, func(c *Chat) {
		c.Messages[msgIdx].Content = content
	})

	return nil
}

// SetRemoteSession records the backend session id for a chat
func (s *Store) SetRemoteSession(chatID, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(chatID)
	if idx < 0 {
		return ErrChatNotFound
	}
	s.replaceAt(idx, func(c *Chat) {
		c.RemoteSessionID = sessionID
	})
	return nil
}

// SetTitle changes the display title of a chat
func (s *Store) SetTitle(chatID, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(chatID)
	if idx < 0 {
		return ErrChatNotFound
	}
	s.replaceAt(idx, func(c *Chat) {
		c.Title = title
	})
	return nil
}

// DeleteChat removes a chat. If it was current, no chat is active afterwards.
func (s *Store) DeleteChat(chatID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(chatID)
	if idx < 0 {
		return ErrChatNotFound
	}

	next := make([]Chat, 0, len(s.chats)-1)
	next = append(next, s.chats[:idx]...)
	next = append(next, s.chats[idx+1:]...)
	s.chats = next

	if s.currentChatID == chatID {
		s.currentChatID = ""
	}
	return nil
}

// replaceAt swaps in a new slice whose idx element is a modified copy.
// Caller must hold the write lock.
func (s *Store) replaceAt(idx int, mutate func(c *Chat)) {
	next := make([]Chat, len(s.chats))
	copy(next, s.chats)
	c := next[idx].clone()
	mutate(&c)
	next[idx] = c
	s.chats = next
}

// claimID returns id, or a fresh id when id is empty or already taken, and
// marks the result taken
func (s *Store) claimID(id string, taken map[string]bool) string {
	for id == "" || taken[id] {
		id = s.newID()
	}
	taken[id] = true
	return id
}

func (s *Store) indexOf(id string) int {
	for i, c := range s.chats {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) indexOfSession(sessionID string) int {
	if sessionID == "" {
		return -1
	}
	for i, c := range s.chats {
		if c.RemoteSessionID == sessionID {
			return i
		}
	}
	return s.indexOf(sessionID)
}
