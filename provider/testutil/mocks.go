package testutil

import (
	"context"
	"sync"

	"chatwave/provider"
)

// MockProvider is a provider.Provider with overridable behaviour. Nil hooks
// fall back to a one-chunk "Mock response", two fake models and a healthy
// ping.
type MockProvider struct {
	ChatFunc       func(ctx context.Context, messages []provider.Message, callback provider.StreamCallback) error
	ListModelsFunc func(ctx context.Context) ([]provider.ModelInfo, error)
	PingFunc       func(ctx context.Context) error

	mu    sync.Mutex
	model string
	calls [][]provider.Message
}

func NewMockProvider(model string) *MockProvider {
	return &MockProvider{model: model}
}

// NewChunkedProvider streams chunks in order on every Chat call
func NewChunkedProvider(model string, chunks ...string) *MockProvider {
	m := NewMockProvider(model)
	m.ChatFunc = func(_ context.Context, _ []provider.Message, callback provider.StreamCallback) error {
		for _, c := range chunks {
			if err := callback(c); err != nil {
				return err
			}
		}
		return nil
	}
	return m
}

func (m *MockProvider) Chat(ctx context.Context, messages []provider.Message, callback provider.StreamCallback) error {
	m.mu.Lock()
	m.calls = append(m.calls, messages)
	m.mu.Unlock()

	if m.ChatFunc != nil {
		return m.ChatFunc(ctx, messages, callback)
	}
	if len(messages) == 0 {
		return nil
	}
	return callback("Mock response")
}

// Calls returns the message lists passed to Chat so far
func (m *MockProvider) Calls() [][]provider.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]provider.Message(nil), m.calls...)
}

func (m *MockProvider) ListModels(ctx context.Context) ([]provider.ModelInfo, error) {
	if m.ListModelsFunc != nil {
		return m.ListModelsFunc(ctx)
	}
	return []provider.ModelInfo{
		{Name: "mock-model-1", Size: 1000},
		{Name: "mock-model-2", Size: 2000},
	}, nil
}

func (m *MockProvider) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}

func (m *MockProvider) GetModel() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.model
}

func (m *MockProvider) GetDisplayName() string {
	return m.GetModel()
}

func (m *MockProvider) SetModel(model string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.model = model
}
