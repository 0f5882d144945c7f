package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"chatwave/chat"
	"chatwave/config"
)

// Transcript is the on-disk shape of an exported chat
type Transcript struct {
	ID         string         `json:"id"`
	SessionID  string         `json:"session_id,omitempty"`
	Title      string         `json:"title"`
	CreatedAt  time.Time      `json:"created_at"`
	ExportedAt time.Time      `json:"exported_at"`
	Messages   []chat.Message `json:"messages"`
}

// SanitizeFilename removes or replaces characters that are invalid in filenames
func SanitizeFilename(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ', '\n', '\r', '\t':
			return '-'
		}
		return r
	}, name)

	name = strings.Trim(name, "-.")

	if len(name) > 50 {
		name = name[:50]
		for len(name) > 0 && !utf8.ValidString(name) {
			name = name[:len(name)-1]
		}
	}

	if name == "" {
		name = "chat"
	}

	return name
}

// GenerateExportPath returns ~/Downloads/chatwave-<title>-<timestamp>.json
func GenerateExportPath(title string, now time.Time) string {
	filename := fmt.Sprintf("chatwave-%s-%s.json", SanitizeFilename(title), now.Format("20060102-150405"))
	return filepath.Join(config.GetExportDir(), filename)
}

// ExportChat writes a chat as indented JSON (0600)
func ExportChat(c chat.Chat, exportPath string) error {
	t := Transcript{
		ID:         c.ID,
		SessionID:  c.RemoteSessionID,
		Title:      c.Title,
		CreatedAt:  c.CreatedAt,
		ExportedAt: time.Now().UTC(),
		Messages:   c.Messages,
	}
	if t.Messages == nil {
		t.Messages = []chat.Message{}
	}

	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal chat: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(exportPath), 0700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(exportPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

// FormatTranscript renders a chat as plain text for the clipboard
func FormatTranscript(c chat.Chat) string {
	var b strings.Builder
	for i, m := range c.Messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		switch m.Role {
		case chat.RoleUser:
			b.WriteString("You: ")
		default:
			b.WriteString("Assistant: ")
		}
		b.WriteString(m.Content)
	}
	return b.String()
}
