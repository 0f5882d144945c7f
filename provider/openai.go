package provider

import (
	"cmp"
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	DefaultOpenAIURL   = "https://api.openai.com/v1"
	DefaultOpenAIModel = "gpt-4o-mini"

	DefaultOpenRouterURL   = "https://openrouter.ai/api/v1"
	DefaultOpenRouterModel = "meta-llama/llama-3.2-90b-instruct"
)

// OpenAIProvider talks to any OpenAI-compatible chat completions API. OpenAI
// itself and OpenRouter differ only in defaults and model naming.
type OpenAIProvider struct {
	client openai.Client
	kind   ProviderType
	label  string
	model  string
}

// NewOpenAIProvider targets api.openai.com unless baseURL is set
func NewOpenAIProvider(baseURL, apiKey, model string, opts ...option.RequestOption) (*OpenAIProvider, error) {
	return newOpenAICompatible(ProviderTypeOpenAI, "OpenAI",
		cmp.Or(baseURL, DefaultOpenAIURL), apiKey, cmp.Or(model, DefaultOpenAIModel), opts)
}

// NewOpenRouterProvider expects vendor-prefixed model names such as
// "qwen/qwen3-coder:free"
func NewOpenRouterProvider(baseURL, apiKey, model string, opts ...option.RequestOption) (*OpenAIProvider, error) {
	return newOpenAICompatible(ProviderTypeOpenRouter, "OpenRouter",
		cmp.Or(baseURL, DefaultOpenRouterURL), apiKey, cmp.Or(model, DefaultOpenRouterModel), opts)
}

func newOpenAICompatible(kind ProviderType, label, baseURL, apiKey, model string, opts []option.RequestOption) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%s API key is required", label)
	}

	opts = append([]option.RequestOption{
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
	}, opts...)

	return &OpenAIProvider{
		client: openai.NewClient(opts...),
		kind:   kind,
		label:  label,
		model:  model,
	}, nil
}

func (p *OpenAIProvider) Chat(ctx context.Context, messages []Message, callback StreamCallback) error {
	stream := p.client.Chat.Completions.NewStreaming(ctx, openai.ChatCompletionNewParams{
		Messages: ConvertToOpenAIMessages(messages),
		Model:    openai.ChatModel(p.model),
	})
	defer stream.Close()

	for stream.Next() {
		chunk := stream.Current()
		if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" || callback == nil {
			continue
		}
		if err := callback(chunk.Choices[0].Delta.Content); err != nil {
			return err
		}
	}
	if err := stream.Err(); err != nil {
		return fmt.Errorf("%s streaming error: %w", p.label, err)
	}
	return nil
}

func (p *OpenAIProvider) ListModels(ctx context.Context) ([]ModelInfo, error) {
	page, err := p.client.Models.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s models: %w", p.label, err)
	}

	models := make([]ModelInfo, 0, len(page.Data))
	for _, m := range page.Data {
		models = append(models, ModelInfo{
			Name:         p.displayName(m.ID),
			InternalName: m.ID,
			Provider:     string(p.kind),
		})
	}
	return models, nil
}

func (p *OpenAIProvider) GetModel() string {
	return p.model
}

func (p *OpenAIProvider) GetDisplayName() string {
	return p.displayName(p.model)
}

func (p *OpenAIProvider) SetModel(model string) {
	p.model = model
}

// Ping lists models; it is the cheapest authenticated call
func (p *OpenAIProvider) Ping(ctx context.Context) error {
	if _, err := p.client.Models.List(ctx); err != nil {
		return fmt.Errorf("%s ping failed: %w", p.label, err)
	}
	return nil
}

func (p *OpenAIProvider) displayName(model string) string {
	if p.kind == ProviderTypeOpenRouter {
		return stripProviderPrefix(model)
	}
	return model
}

// stripProviderPrefix turns "meta-llama/llama-3.2-90b-instruct" into
// "llama-3.2-90b-instruct"
func stripProviderPrefix(model string) string {
	if _, name, ok := strings.Cut(model, "/"); ok {
		return name
	}
	return model
}
