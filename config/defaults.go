package config

const (
	DefaultBackendURL = "http://127.0.0.1:8000"
	DefaultMinDelayMS = 15
	DefaultMaxDelayMS = 45
)

func DefaultSystemConfig() *SystemConfig {
	return &SystemConfig{
		DataDirectory: "~/.local/share/chatwave",
	}
}

func DefaultUserConfig() *UserConfig {
	return &UserConfig{
		Backend: BackendConfig{
			URL: DefaultBackendURL,
		},
		Responder: ResponderConfig{
			Kind: ResponderBackend,
		},
		Delivery: DeliveryConfig{
			MinDelayMS: DefaultMinDelayMS,
			MaxDelayMS: DefaultMaxDelayMS,
		},
		Security: SecurityConfig{
			Method: EncryptionNone,
		},
	}
}

func GenerateSystemConfigTemplate() string {
	return `# chatwave System Configuration
# Location: ~/.config/chatwave/settings.toml
# This file uses TOML format: https://toml.io

# Directory where local state and user config are stored
data_directory = "~/.local/share/chatwave"
`
}

func GenerateUserConfigTemplate() string {
	return `# chatwave User Configuration
# Location: <data_directory>/config.toml
# This file uses TOML format: https://toml.io
# Every value can be overridden with a CHATWAVE_* environment variable.

[backend]
# Chat backend base URL
url = "http://127.0.0.1:8000"

[responder]
# Where answers come from:
#   backend    - the chat backend (sessions are created and synced)
#   simulated  - canned demo replies, nothing leaves the machine
#   ollama, openai, openrouter, anthropic - a local or hosted model
# API keys are read from CHATWAVE_API_KEY only.
kind = "backend"
model = ""
base_url = ""
system_prompt = ""

[google]
# OAuth client used for the device sign-in flow ("TVs and Limited Input devices")
client_id = ""
client_secret = ""

[delivery]
# Per-character typing delay range in milliseconds
min_delay_ms = 15
max_delay_ms = 45

[security]
# "none" or "ssh_key" (encrypts the stored access token)
method = "none"
ssh_key_path = ""
`
}
