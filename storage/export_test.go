package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"chatwave/chat"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello World", "Hello-World"},
		{"a/b\\c:d", "a-b-c-d"},
		{"..hidden..", "hidden"},
		{"", "chat"},
		{"???", "chat"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := SanitizeFilename(tt.in); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}

	long := SanitizeFilename(strings.Repeat("é", 40))
	if len(long) > 50 || !utf8.ValidString(long) {
		t.Errorf("truncation broke a rune: %q", long)
	}
}

func TestGenerateExportPath(t *testing.T) {
	t.Setenv("HOME", "/home/test")
	now := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)

	got := GenerateExportPath("My chat", now)
	want := filepath.Join("/home/test", "Downloads", "chatwave-My-chat-20250304-050607.json")
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExportChat(t *testing.T) {
	c := chat.Chat{
		ID:              "local",
		RemoteSessionID: "S1",
		Title:           "Export me",
		Messages: []chat.Message{
			{ID: "m1", Role: chat.RoleUser, Content: "hi"},
			{ID: "m2", Role: chat.RoleAssistant, Content: "ok"},
		},
	}

	path := filepath.Join(t.TempDir(), "nested", "out.json")
	if err := ExportChat(c, path); err != nil {
		t.Fatalf("ExportChat: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("permissions: %v", info.Mode().Perm())
	}

	data, _ := os.ReadFile(path)
	var got Transcript
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got.SessionID != "S1" || got.Title != "Export me" || len(got.Messages) != 2 {
		t.Errorf("transcript: %+v", got)
	}
}

func TestFormatTranscript(t *testing.T) {
	c := chat.Chat{Messages: []chat.Message{
		{Role: chat.RoleUser, Content: "hi"},
		{Role: chat.RoleAssistant, Content: "ok"},
	}}
	if got := FormatTranscript(c); got != "You: hi\n\nAssistant: ok" {
		t.Errorf("got %q", got)
	}
}
