package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"chatwave/chat"
	"chatwave/config"
	"chatwave/delivery"
	"chatwave/gateway"
	appmodel "chatwave/model"
	"chatwave/provider"
	"chatwave/storage"
	"chatwave/ui"
)

const (
	Version = "v0.01.00"
	License = "Apache-2.0"
)

// simulatedLatency makes the canned responder feel like a network call
const simulatedLatency = 600 * time.Millisecond

func main() {
	cfg, err := config.Load()
	if err != nil {
		fatalModal("Configuration Error", err.Error())
	}

	config.InitDebugLog(cfg.DataDir())
	config.Logf("[Main] chatwave %s starting (responder %s)", Version, cfg.Responder)

	enc, err := loadEncryption(cfg)
	if err != nil {
		fatalModal("Encryption Error", err.Error())
	}
	if enc == nil && cfg.Security == config.EncryptionSSHKey {
		// passphrase prompt cancelled
		os.Exit(0)
	}

	state, err := storage.NewState(cfg.DataDir(), enc)
	if err != nil {
		fatalModal("Storage Error", fmt.Sprintf("Failed to open local state:\n\n%v", err))
	}
	defer state.Close()

	opts := appmodel.Options{
		Config:  cfg,
		Store:   chat.NewStore(),
		State:   state,
		Version: Version,
		License: License,
	}

	switch {
	case cfg.Responder == config.ResponderBackend:
		if cfg.BackendURL == "" {
			fatalModal("Configuration Error", "The backend responder needs [backend] url\nor CHATWAVE_BACKEND_URL.")
		}
		client := gateway.NewClient(cfg.BackendURL)
		opts.Backend = client
		opts.Source = delivery.GatewaySource{Gateway: client}

	case cfg.UsesProvider():
		p, err := provider.FromConfig(cfg)
		if err != nil {
			fatalModal("Provider Error", err.Error())
		}
		opts.Provider = p
		opts.Source = provider.NewSource(p, cfg.SystemPrompt)

	default:
		opts.Source = delivery.CannedSource{Latency: simulatedLatency}
	}

	m := appmodel.NewModel(opts)
	p := tea.NewProgram(ui.NewAppView(m), tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running chatwave: %v\n", err)
		os.Exit(1)
	}
	config.Logf("[Main] exiting")
}

// loadEncryption prepares the key that protects the stored access token,
// prompting for the SSH passphrase when the key needs one. It returns nil
// without error when encryption is off or the prompt was cancelled.
func loadEncryption(cfg *config.Config) (*config.EncryptionManager, error) {
	if cfg.Security != config.EncryptionSSHKey {
		return nil, nil
	}

	keyPath := config.ExpandPath(cfg.SSHKeyPath)
	enc := config.NewEncryptionManager(cfg.Security, keyPath)

	err := enc.Initialize()
	if err == nil {
		return enc, nil
	}
	if !errors.Is(err, config.ErrPassphraseRequired) {
		return nil, err
	}

	final, err := tea.NewProgram(ui.NewPassphraseModal(keyPath, enc), tea.WithAltScreen()).Run()
	if err != nil {
		return nil, err
	}
	pm, ok := final.(ui.PassphraseModal)
	if !ok || pm.IsCancelled() {
		return nil, nil
	}
	if !pm.Unlocked() {
		return nil, fmt.Errorf("ssh key %s was not unlocked", keyPath)
	}
	return enc, nil
}

func fatalModal(title, message string) {
	p := tea.NewProgram(ui.NewErrorModal(title, message), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", title, message)
	}
	os.Exit(1)
}
