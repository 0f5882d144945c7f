package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

const EnvPrefix = "CHATWAVE_"

// Responder kinds
const (
	ResponderBackend    = "backend"
	ResponderSimulated  = "simulated"
	ResponderOllama     = "ollama"
	ResponderOpenAI     = "openai"
	ResponderOpenRouter = "openrouter"
	ResponderAnthropic  = "anthropic"
)

type SystemConfig struct {
	DataDirectory string `toml:"data_directory"`
}

type BackendConfig struct {
	URL string `toml:"url"`
}

type ResponderConfig struct {
	Kind         string `toml:"kind"`
	Model        string `toml:"model"`
	BaseURL      string `toml:"base_url"`
	SystemPrompt string `toml:"system_prompt,omitempty"`
}

type GoogleConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

type DeliveryConfig struct {
	MinDelayMS int `toml:"min_delay_ms"`
	MaxDelayMS int `toml:"max_delay_ms"`
}

type SecurityConfig struct {
	Method     EncryptionMethod `toml:"method"`
	SSHKeyPath string           `toml:"ssh_key_path"`
}

type UserConfig struct {
	Backend   BackendConfig   `toml:"backend"`
	Responder ResponderConfig `toml:"responder"`
	Google    GoogleConfig    `toml:"google"`
	Delivery  DeliveryConfig  `toml:"delivery"`
	Security  SecurityConfig  `toml:"security"`
}

// Config is the merged view of settings.toml, config.toml and CHATWAVE_*
// environment variables (highest priority).
type Config struct {
	DataDirectory string `env:"DATA_DIR"`

	BackendURL string `env:"BACKEND_URL"`

	Responder       string `env:"RESPONDER"`
	Model           string `env:"MODEL"`
	ProviderBaseURL string `env:"PROVIDER_BASE_URL"`
	APIKey          string `env:"API_KEY"`
	SystemPrompt    string `env:"SYSTEM_PROMPT"`

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`

	MinDelay time.Duration `env:"MIN_DELAY"`
	MaxDelay time.Duration `env:"MAX_DELAY"`

	Security   EncryptionMethod `env:"SECURITY"`
	SSHKeyPath string           `env:"SSH_KEY_PATH"`

	Keybindings *KeyBindingsConfig
}

var Debug = false
var DebugLog *log.Logger

func (c *Config) DataDir() string {
	return ExpandPath(c.DataDirectory)
}

// Offline reports whether chats stay local (no backend sessions)
func (c *Config) Offline() bool {
	return c.Responder != ResponderBackend
}

// UsesProvider reports whether answers come from an LLM provider
func (c *Config) UsesProvider() bool {
	switch c.Responder {
	case ResponderOllama, ResponderOpenAI, ResponderOpenRouter, ResponderAnthropic:
		return true
	}
	return false
}

func (c *Config) applyUserConfig(u *UserConfig) {
	c.BackendURL = u.Backend.URL
	c.Responder = u.Responder.Kind
	c.Model = u.Responder.Model
	c.ProviderBaseURL = u.Responder.BaseURL
	c.SystemPrompt = u.Responder.SystemPrompt
	c.GoogleClientID = u.Google.ClientID
	c.GoogleClientSecret = u.Google.ClientSecret
	c.MinDelay = time.Duration(u.Delivery.MinDelayMS) * time.Millisecond
	c.MaxDelay = time.Duration(u.Delivery.MaxDelayMS) * time.Millisecond
	c.Security = u.Security.Method
	c.SSHKeyPath = u.Security.SSHKeyPath
}

func (c *Config) applyEnvOverrides() error {
	return env.Parse(c, env.Options{Prefix: EnvPrefix})
}

func (c *Config) validate() error {
	switch c.Responder {
	case ResponderBackend, ResponderSimulated, ResponderOllama, ResponderOpenAI, ResponderOpenRouter, ResponderAnthropic:
	default:
		return fmt.Errorf("unknown responder %q", c.Responder)
	}
	switch c.Security {
	case EncryptionNone, EncryptionSSHKey:
	default:
		return fmt.Errorf("unknown security method %q", c.Security)
	}
	if c.Security == EncryptionSSHKey && c.SSHKeyPath == "" {
		return fmt.Errorf("security method ssh_key needs ssh_key_path")
	}
	if c.MaxDelay < c.MinDelay {
		c.MaxDelay = c.MinDelay
	}
	return nil
}

func CheckDebug() bool {
	debug := os.Getenv(EnvPrefix + "DEBUG")
	return debug == "true" || debug == "1"
}

func InitDebugLog(dataDir string) {
	if !CheckDebug() {
		return
	}

	Debug = true
	logPath := filepath.Join(dataDir, "debug.log")

	// 0600: the log can contain backend payloads
	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not open debug log at %s: %v\n", logPath, err)
		return
	}

	DebugLog = log.New(f, "", log.Ldate|log.Ltime|log.Lmicroseconds|log.Lshortfile)
	DebugLog.Printf("=== Debug logging started (%sDEBUG=%s) ===", EnvPrefix, os.Getenv(EnvPrefix+"DEBUG"))
	DebugLog.Printf("Log path: %s", logPath)
}

// Logf writes to the debug log when it is enabled
func Logf(format string, args ...any) {
	if Debug && DebugLog != nil {
		DebugLog.Printf(format, args...)
	}
}

// LoadDotEnv reads a .env file from the working directory if there is one.
// Variables already set in the environment win.
func LoadDotEnv() {
	if !FileExists(".env") {
		return
	}
	if err := godotenv.Load(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not read .env: %v\n", err)
	}
}

func Load() (*Config, error) {
	LoadDotEnv()

	cfg := &Config{DataDirectory: GetDefaultDataDir()}

	// CHATWAVE_DATA_DIR bypasses settings.toml entirely
	if dataDir := os.Getenv(EnvPrefix + "DATA_DIR"); dataDir != "" {
		cfg.DataDirectory = dataDir
	} else {
		systemCfg, err := LoadSystemConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to load system config: %w", err)
		}
		cfg.DataDirectory = systemCfg.DataDirectory
	}

	dataDir := cfg.DataDir()
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := EnsureDataDirPermissions(dataDir); err != nil {
		return nil, fmt.Errorf("failed to set data directory permissions: %w", err)
	}

	userCfg, err := LoadUserConfig(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}
	cfg.applyUserConfig(userCfg)

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	kb, err := LoadKeybindings(dataDir)
	if err != nil {
		Logf("[Config] %v (using default keybindings)", err)
		kb = DefaultKeybindings()
	}
	cfg.Keybindings = kb

	return cfg, nil
}
