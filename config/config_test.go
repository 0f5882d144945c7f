package config

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/crypto/ssh"
)

func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	for _, name := range []string{"DATA_DIR", "BACKEND_URL", "RESPONDER", "MODEL", "API_KEY", "MIN_DELAY", "MAX_DELAY", "SECURITY", "SSH_KEY_PATH", "DEBUG"} {
		t.Setenv(EnvPrefix+name, "")
		os.Unsetenv(EnvPrefix + name)
	}
	return home
}

func TestLoadDefaults(t *testing.T) {
	home := isolateHome(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.BackendURL != DefaultBackendURL {
		t.Errorf("backend url: got %q", cfg.BackendURL)
	}
	if cfg.Responder != ResponderBackend || cfg.Offline() {
		t.Errorf("responder: got %q (offline=%v)", cfg.Responder, cfg.Offline())
	}
	if cfg.MinDelay != 15*time.Millisecond || cfg.MaxDelay != 45*time.Millisecond {
		t.Errorf("delays: got %v-%v", cfg.MinDelay, cfg.MaxDelay)
	}
	if !FileExists(filepath.Join(home, ".config", "chatwave", "settings.toml")) {
		t.Error("settings.toml not created")
	}
	if !FileExists(filepath.Join(cfg.DataDir(), "config.toml")) {
		t.Error("config.toml not created")
	}
}

func TestLoadUserConfigFile(t *testing.T) {
	isolateHome(t)
	dataDir := t.TempDir()
	t.Setenv(EnvPrefix+"DATA_DIR", dataDir)

	content := `
[backend]
url = "http://chat.internal:9000"

[responder]
kind = "ollama"
model = "llama3.1:latest"

[delivery]
min_delay_ms = 5
max_delay_ms = 10
`
	if err := os.WriteFile(filepath.Join(dataDir, "config.toml"), []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BackendURL != "http://chat.internal:9000" {
		t.Errorf("backend url: got %q", cfg.BackendURL)
	}
	if !cfg.UsesProvider() || !cfg.Offline() || cfg.Model != "llama3.1:latest" {
		t.Errorf("responder: %+v", cfg)
	}
	if cfg.MinDelay != 5*time.Millisecond || cfg.MaxDelay != 10*time.Millisecond {
		t.Errorf("delays: got %v-%v", cfg.MinDelay, cfg.MaxDelay)
	}
	if cfg.Security != EncryptionNone {
		t.Errorf("missing [security] should keep default, got %q", cfg.Security)
	}
}

func TestEnvOverrides(t *testing.T) {
	isolateHome(t)
	t.Setenv(EnvPrefix+"DATA_DIR", t.TempDir())
	t.Setenv(EnvPrefix+"BACKEND_URL", "http://override:1")
	t.Setenv(EnvPrefix+"RESPONDER", "simulated")
	t.Setenv(EnvPrefix+"MIN_DELAY", "1ms")
	t.Setenv(EnvPrefix+"MAX_DELAY", "2ms")
	t.Setenv(EnvPrefix+"API_KEY", "sk-test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BackendURL != "http://override:1" {
		t.Errorf("backend url: got %q", cfg.BackendURL)
	}
	if cfg.Responder != ResponderSimulated || !cfg.Offline() || cfg.UsesProvider() {
		t.Errorf("responder: got %q", cfg.Responder)
	}
	if cfg.MinDelay != time.Millisecond || cfg.MaxDelay != 2*time.Millisecond {
		t.Errorf("delays: got %v-%v", cfg.MinDelay, cfg.MaxDelay)
	}
	if cfg.APIKey != "sk-test" {
		t.Errorf("api key not read from env")
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown responder", map[string]string{"RESPONDER": "carrier-pigeon"}},
		{"unknown security", map[string]string{"SECURITY": "rot13"}},
		{"ssh without key", map[string]string{"SECURITY": "ssh_key"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateHome(t)
			t.Setenv(EnvPrefix+"DATA_DIR", t.TempDir())
			for k, v := range tt.env {
				t.Setenv(EnvPrefix+k, v)
			}
			if _, err := Load(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestGetActionKey(t *testing.T) {
	kb := DefaultKeybindings()
	kb.Actions = map[string]string{"quit": "ctrl+q"}

	tests := []struct {
		action string
		want   string
	}{
		{"new_chat", "alt+n"},
		{"logout", "alt+L"},
		{"sidebar_down", "j"},
		{"quit", "ctrl+q"},
		{"select_model", "alt+m"},
		{"no_such_action", ""},
	}
	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			if got := kb.GetActionKey(tt.action); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}

	if got := kb.DisplayActionKey("logout"); got != "Alt+Shift+L" {
		t.Errorf("display: got %q", got)
	}
	if got := DisplayKey(kb.PrimaryKey("1")); got != "Alt+1" {
		t.Errorf("display digit: got %q", got)
	}
}

func writeTestKey(t *testing.T, passphrase string) string {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}

	var block *pem.Block
	if passphrase == "" {
		block, err = ssh.MarshalPrivateKey(priv, "test")
	} else {
		block, err = ssh.MarshalPrivateKeyWithPassphrase(priv, "test", []byte(passphrase))
	}
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "id_ed25519")
	if err := os.WriteFile(path, pem.EncodeToMemory(block), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestEncryptionRoundTrip(t *testing.T) {
	keyPath := writeTestKey(t, "")

	enc := NewEncryptionManager(EncryptionSSHKey, keyPath)
	if err := enc.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	secret := []byte("access-token-123")
	sealed, err := enc.Encrypt(secret)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(sealed, secret) {
		t.Error("ciphertext contains plaintext")
	}

	// a second manager over the same key must derive the same AES key
	again := NewEncryptionManager(EncryptionSSHKey, keyPath)
	if err := again.Initialize(); err != nil {
		t.Fatal(err)
	}
	opened, err := again.Decrypt(sealed)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if !bytes.Equal(opened, secret) {
		t.Errorf("got %q", opened)
	}
}

func TestEncryptionPassphrase(t *testing.T) {
	keyPath := writeTestKey(t, "hunter2")

	enc := NewEncryptionManager(EncryptionSSHKey, keyPath)
	if err := enc.Initialize(); !errors.Is(err, ErrPassphraseRequired) {
		t.Fatalf("got %v, want ErrPassphraseRequired", err)
	}

	enc.SetPassphrase("hunter2")
	if err := enc.Initialize(); err != nil {
		t.Fatalf("Initialize with passphrase: %v", err)
	}
}

func TestEncryptionNonePassthrough(t *testing.T) {
	enc := NewEncryptionManager(EncryptionNone, "")
	if err := enc.Initialize(); err != nil {
		t.Fatal(err)
	}
	out, err := enc.Encrypt([]byte("plain"))
	if err != nil || string(out) != "plain" {
		t.Errorf("got %q, %v", out, err)
	}
}

func TestUninitializedEncryptFails(t *testing.T) {
	enc := NewEncryptionManager(EncryptionSSHKey, "/nonexistent")
	if _, err := enc.Encrypt([]byte("x")); err == nil {
		t.Error("expected error before Initialize")
	}
}
