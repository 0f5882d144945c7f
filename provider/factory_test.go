package provider

import (
	"strings"
	"testing"
)

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		expectError string
		expectModel string
	}{
		{
			name:        "ollama provider with defaults",
			config:      Config{Type: ProviderTypeOllama},
			expectModel: DefaultOllamaModel,
		},
		{
			name: "ollama provider with custom config",
			config: Config{
				Type:    ProviderTypeOllama,
				BaseURL: "http://localhost:11434",
				Model:   "llama3.1",
			},
			expectModel: "llama3.1",
		},
		{
			name: "openai provider",
			config: Config{
				Type:   ProviderTypeOpenAI,
				Model:  "gpt-4o-mini",
				APIKey: "test-key",
			},
			expectModel: "gpt-4o-mini",
		},
		{
			name: "anthropic provider",
			config: Config{
				Type:   ProviderTypeAnthropic,
				Model:  "claude-3-5-haiku-latest",
				APIKey: "test-key",
			},
			expectModel: "claude-3-5-haiku-latest",
		},
		{
			name: "openrouter provider",
			config: Config{
				Type:   ProviderTypeOpenRouter,
				Model:  "meta-llama/llama-3.2-90b-instruct",
				APIKey: "test-key",
			},
			expectModel: "meta-llama/llama-3.2-90b-instruct",
		},
		{
			name:        "openai without api key",
			config:      Config{Type: ProviderTypeOpenAI},
			expectError: "API key is required",
		},
		{
			name:        "anthropic without api key",
			config:      Config{Type: ProviderTypeAnthropic},
			expectError: "API key is required",
		},
		{
			name:        "openrouter without api key",
			config:      Config{Type: ProviderTypeOpenRouter},
			expectError: "API key is required",
		},
		{
			name:        "unknown provider type",
			config:      Config{Type: ProviderType("unknown")},
			expectError: "unknown provider type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(tt.config)

			if tt.expectError != "" {
				if err == nil || !strings.Contains(err.Error(), tt.expectError) {
					t.Fatalf("expected error containing %q, got %v", tt.expectError, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := p.GetModel(); got != tt.expectModel {
				t.Errorf("GetModel() = %q, want %q", got, tt.expectModel)
			}
		})
	}
}

func TestMapProviderIDToType(t *testing.T) {
	tests := []struct {
		id       string
		expected ProviderType
	}{
		{"ollama", ProviderTypeOllama},
		{"openai", ProviderTypeOpenAI},
		{"openrouter", ProviderTypeOpenRouter},
		{"anthropic", ProviderTypeAnthropic},
		{"simulated", ProviderType("simulated")},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			if got := MapProviderIDToType(tt.id); got != tt.expected {
				t.Errorf("MapProviderIDToType(%q) = %q, want %q", tt.id, got, tt.expected)
			}
		})
	}
}
