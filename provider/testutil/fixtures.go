package testutil

import (
	"time"

	"chatwave/chat"
	"chatwave/provider"
)

// TestMessages returns a sample conversation for testing
func TestMessages() []provider.Message {
	return []provider.Message{
		{Role: provider.RoleUser, Content: "Hello, how are you?"},
		{Role: provider.RoleAssistant, Content: "I'm doing well, thank you!"},
		{Role: provider.RoleUser, Content: "Can you help me with a task?"},
	}
}

// SingleUserMessage returns a single user message for simple tests
func SingleUserMessage(content string) []provider.Message {
	return []provider.Message{
		{Role: provider.RoleUser, Content: content},
	}
}

// ChatHistory returns a transcript as the orchestrator hands it to a source:
// the new user prompt followed by an empty assistant placeholder
func ChatHistory(prompt string) []chat.Message {
	now := time.Now()
	return []chat.Message{
		{ID: "u0", Role: chat.RoleUser, Content: "earlier question", CreatedAt: now},
		{ID: "a0", Role: chat.RoleAssistant, Content: "earlier answer", CreatedAt: now},
		{ID: "u1", Role: chat.RoleUser, Content: prompt, CreatedAt: now},
		{ID: "a1", Role: chat.RoleAssistant, Content: "", CreatedAt: now},
	}
}
