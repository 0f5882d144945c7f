package provider

import (
	"cmp"
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	DefaultAnthropicURL = "https://api.anthropic.com"

	// the Messages API requires an explicit cap
	anthropicMaxTokens = 4096
)

var anthropicModels = []anthropic.Model{
	anthropic.ModelClaudeSonnet4_5_20250929,
	anthropic.ModelClaude3_5Haiku20241022,
	anthropic.ModelClaude_3_Opus_20240229,
	anthropic.ModelClaude_3_Haiku_20240307,
}

type AnthropicProvider struct {
	client anthropic.Client
	model  anthropic.Model
}

// NewAnthropicProvider defaults to Claude Sonnet 4.5
func NewAnthropicProvider(baseURL, apiKey, model string, opts ...option.RequestOption) (*AnthropicProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required")
	}

	opts = append([]option.RequestOption{
		option.WithBaseURL(cmp.Or(baseURL, DefaultAnthropicURL)),
		option.WithAPIKey(apiKey),
	}, opts...)

	return &AnthropicProvider{
		client: anthropic.NewClient(opts...),
		model:  cmp.Or(anthropic.Model(model), anthropic.ModelClaudeSonnet4_5_20250929),
	}, nil
}

// Chat lifts system messages into the request's system blocks since the
// message list may only hold user and assistant turns
func (p *AnthropicProvider) Chat(ctx context.Context, messages []Message, callback StreamCallback) error {
	msgs, system := convertToAnthropicMessages(messages)

	stream := p.client.Messages.NewStreaming(ctx, anthropic.MessageNewParams{
		Model:     p.model,
		Messages:  msgs,
		System:    system,
		MaxTokens: anthropicMaxTokens,
	})
	defer stream.Close()

	for stream.Next() {
		text, ok := textDelta(stream.Current())
		if !ok || callback == nil {
			continue
		}
		if err := callback(text); err != nil {
			return err
		}
	}
	if err := stream.Err(); err != nil {
		return fmt.Errorf("Anthropic streaming error: %w", err)
	}
	return nil
}

func textDelta(event anthropic.MessageStreamEventUnion) (string, bool) {
	block, ok := event.AsAny().(anthropic.ContentBlockDeltaEvent)
	if !ok {
		return "", false
	}
	text, ok := block.Delta.AsAny().(anthropic.TextDelta)
	if !ok {
		return "", false
	}
	return text.Text, true
}

// ListModels returns a fixed list
func (p *AnthropicProvider) ListModels(ctx context.Context) ([]ModelInfo, error) {
	models := make([]ModelInfo, 0, len(anthropicModels))
	for _, m := range anthropicModels {
		models = append(models, ModelInfo{
			Name:         string(m),
			InternalName: string(m),
			Provider:     string(ProviderTypeAnthropic),
		})
	}
	return models, nil
}

func (p *AnthropicProvider) GetModel() string {
	return string(p.model)
}

func (p *AnthropicProvider) GetDisplayName() string {
	return string(p.model)
}

func (p *AnthropicProvider) SetModel(model string) {
	p.model = anthropic.Model(model)
}

// Ping sends a one-token request; the API has no health endpoint
func (p *AnthropicProvider) Ping(ctx context.Context) error {
	_, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     p.model,
		MaxTokens: 1,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock("ping")),
		},
	})
	if err != nil {
		return fmt.Errorf("Anthropic ping failed: %w", err)
	}
	return nil
}
