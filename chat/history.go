package chat

import (
	"slices"
	"time"
)

// RemoteMessage is a message as the backend returns it
type RemoteMessage struct {
	ID        string
	SessionID string
	UserID    string
	Role      Role
	Content   string
	Timestamp time.Time
}

// LoadChatHistory imports a backend transcript. Messages are sorted by server
// timestamp (ties keep backend order). An existing chat for sessionID has its
// messages replaced wholesale; otherwise a new chat is created at the head with
// ID and RemoteSessionID both set to sessionID. Missing or repeated message ids
// are replaced with fresh ones. The chat becomes current and its local id is
// returned.
func (s *Store) LoadChatHistory(sessionID string, remote []RemoteMessage, title string) string {
	sorted := slices.Clone(remote)
	slices.SortStableFunc(sorted, func(a, b RemoteMessage) int {
		return a.Timestamp.Compare(b.Timestamp)
	})

	s.mu.Lock()
	defer s.mu.Unlock()

	// backend ids may be missing or repeated; local ids must be unique
	taken := make(map[string]bool, len(sorted))
	msgs := make([]Message, len(sorted))
	for i, rm := range sorted {
		msgs[i] = Message{
			ID:        s.claimID(rm.ID, taken),
			Role:      rm.Role,
			Content:   rm.Content,
			CreatedAt: rm.Timestamp,
		}
	}

	if idx := s.indexOfSession(sessionID); idx >= 0 {
		s.replaceAt(idx, func(c *Chat) {
			c.Messages = msgs
			if c.RemoteSessionID == "" {
				c.RemoteSessionID = sessionID
			}
		})
		s.currentChatID = s.chats[idx].ID
		return s.chats[idx].ID
	}

	if title == "" {
		title = DefaultHistoryTitle
	}

	createdAt := s.now()
	if len(msgs) > 0 {
		createdAt = msgs[0].CreatedAt
	}

	c := Chat{
		ID:              sessionID,
		RemoteSessionID: sessionID,
		Title:           title,
		Messages:        msgs,
		CreatedAt:       createdAt,
	}

	next := make([]Chat, 0, len(s.chats)+1)
	next = append(next, c)
	next = append(next, s.chats...)
	s.chats = next
	s.currentChatID = c.ID

	return c.ID
}
