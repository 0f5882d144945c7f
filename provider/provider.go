// Package provider lets a language model stand in for the chat backend.
//
// chatwave normally gets answers from its backend, but it can also ask a
// local Ollama server or a hosted API (OpenAI, OpenRouter, Anthropic)
// directly. Every implementation satisfies the same Provider interface, and
// Source adapts any Provider into a delivery.Source so the rest of the
// application never knows which one answered.
//
// # Streaming vs delivery
//
// Providers stream, but the chat view always replays a finished answer at
// typing speed. Source therefore collects the whole stream before returning,
// keeping pacing in one place (the delivery package) whatever produced the
// text.
//
// # Usage
//
//	p, err := provider.NewProvider(provider.Config{
//	    Type:    provider.ProviderTypeOllama,
//	    BaseURL: "http://localhost:11434",
//	    Model:   "llama3.1",
//	})
//	if err != nil {
//	    // handle error
//	}
//	src := provider.NewSource(p, "You are a helpful assistant.")
//	answer, err := src.Answer(ctx, delivery.Request{Prompt: "hi"})
package provider

import "context"

// Roles understood by every provider
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is the provider-agnostic chat message
type Message struct {
	Role    string
	Content string
}

// StreamCallback is called for each chunk of a streamed response.
// Returning an error aborts the stream.
type StreamCallback func(chunk string) error

// Provider abstracts LLM implementations
type Provider interface {
	// Chat sends messages and streams the reply back via callback.
	Chat(ctx context.Context, messages []Message, callback StreamCallback) error

	// ListModels returns available models for this provider.
	ListModels(ctx context.Context) ([]ModelInfo, error)

	// GetModel returns the currently selected model name used for API calls.
	GetModel() string

	// GetDisplayName returns the model name formatted for the UI.
	GetDisplayName() string

	// SetModel changes the active model.
	SetModel(model string)

	// Ping checks if the provider is reachable.
	Ping(ctx context.Context) error
}

// ModelInfo describes one model offered by a provider
type ModelInfo struct {
	Name         string // Display name (vendor prefix stripped for OpenRouter)
	Size         int64
	Provider     string
	InternalName string // Full API name
}

// ProviderType identifies the provider implementation.
type ProviderType string

const (
	ProviderTypeOllama     ProviderType = "ollama"
	ProviderTypeOpenRouter ProviderType = "openrouter"
	ProviderTypeOpenAI     ProviderType = "openai"
	ProviderTypeAnthropic  ProviderType = "anthropic"
)

// Config holds provider-specific configuration.
type Config struct {
	Type    ProviderType
	BaseURL string
	Model   string
	APIKey  string // unused for Ollama
}
