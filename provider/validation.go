package provider

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"chatwave/config"
)

// PingProviderMsg is sent when a provider ping completes
type PingProviderMsg struct {
	Model string
	Valid bool
	Err   error
}

// PingProvider checks that the configured model is reachable so the UI can
// warn before the first message fails.
func PingProvider(p Provider) tea.Cmd {
	return func() tea.Msg {
		if err := p.Ping(context.Background()); err != nil {
			config.Logf("[Provider] ping %s failed: %v", p.GetDisplayName(), err)
			return PingProviderMsg{
				Model: p.GetDisplayName(),
				Err:   fmt.Errorf("connection failed: %w", err),
			}
		}

		config.Logf("[Provider] ping %s ok", p.GetDisplayName())
		return PingProviderMsg{Model: p.GetDisplayName(), Valid: true}
	}
}
