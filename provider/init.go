package provider

import (
	"fmt"

	"chatwave/config"
)

// FromConfig creates the provider selected by the [responder] section.
//
// It returns (nil, nil) when the responder is not a model provider
// ("backend" or "simulated"); callers then use the gateway or canned source.
//
// Example:
//
//	p, err := provider.FromConfig(cfg)
//	if err != nil {
//	    return err
//	}
//	if p != nil {
//	    source = provider.NewSource(p, cfg.SystemPrompt)
//	}
func FromConfig(cfg *config.Config) (Provider, error) {
	if !cfg.UsesProvider() {
		return nil, nil
	}

	providerType := MapProviderIDToType(cfg.Responder)
	p, err := NewProvider(Config{
		Type:    providerType,
		BaseURL: cfg.ProviderBaseURL,
		Model:   cfg.Model,
		APIKey:  cfg.APIKey,
	})
	if err != nil {
		config.Logf("[Provider] failed to initialize %s: %v", providerType, err)
		return nil, fmt.Errorf("failed to initialize %s provider: %w", providerType, err)
	}

	config.Logf("[Provider] initialized %s (model %s)", providerType, p.GetModel())
	return p, nil
}
