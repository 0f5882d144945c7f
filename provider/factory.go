package provider

import "fmt"

// NewProvider builds the provider named by cfg.Type. Hosted providers fail
// without an API key.
func NewProvider(cfg Config) (Provider, error) {
	switch cfg.Type {
	case ProviderTypeOllama:
		return NewOllamaProvider(cfg.BaseURL, cfg.Model)
	case ProviderTypeOpenAI:
		return NewOpenAIProvider(cfg.BaseURL, cfg.APIKey, cfg.Model)
	case ProviderTypeOpenRouter:
		return NewOpenRouterProvider(cfg.BaseURL, cfg.APIKey, cfg.Model)
	case ProviderTypeAnthropic:
		return NewAnthropicProvider(cfg.BaseURL, cfg.APIKey, cfg.Model)
	}
	return nil, fmt.Errorf("unknown provider type: %s", cfg.Type)
}

// MapProviderIDToType maps a responder kind from config.toml. The kinds and
// provider types share names; unknown ids are rejected by NewProvider.
func MapProviderIDToType(id string) ProviderType {
	return ProviderType(id)
}
