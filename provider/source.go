package provider

import (
	"context"
	"fmt"
	"strings"

	"chatwave/chat"
	"chatwave/delivery"
)

// Source adapts a Provider to delivery.Source by collecting the streamed
// reply into one answer.
type Source struct {
	provider     Provider
	systemPrompt string
}

// NewSource wraps p. systemPrompt may be empty.
func NewSource(p Provider, systemPrompt string) *Source {
	return &Source{provider: p, systemPrompt: systemPrompt}
}

// Provider returns the wrapped provider
func (s *Source) Provider() Provider {
	return s.provider
}

// Answer implements delivery.Source.
//
// The request history is sent as context. If it does not already end with
// the prompt as a user message, the prompt is appended.
func (s *Source) Answer(ctx context.Context, req delivery.Request) (string, error) {
	messages := FromChat(s.systemPrompt, req.History)
	if n := len(messages); n == 0 || messages[n-1].Role != RoleUser || messages[n-1].Content != req.Prompt {
		messages = append(messages, Message{Role: string(chat.RoleUser), Content: req.Prompt})
	}

	var answer strings.Builder
	err := s.provider.Chat(ctx, messages, func(chunk string) error {
		answer.WriteString(chunk)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", s.provider.GetDisplayName(), err)
	}

	if strings.TrimSpace(answer.String()) == "" {
		return "", delivery.ErrEmptyAnswer
	}
	return answer.String(), nil
}
