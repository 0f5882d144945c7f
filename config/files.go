package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// decodeOrSeed decodes the TOML file at path into v. A missing file is
// created from template and v keeps its defaults.
func decodeOrSeed(path string, v any, template string) error {
	if !FileExists(path) {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, []byte(template), 0600); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		return nil
	}

	if _, err := toml.DecodeFile(path, v); err != nil {
		return fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

// LoadSystemConfig reads settings.toml from the config directory
func LoadSystemConfig() (*SystemConfig, error) {
	cfg := DefaultSystemConfig()
	if err := decodeOrSeed(GetSettingsFilePath(), cfg, GenerateSystemConfigTemplate()); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadUserConfig reads <dataDir>/config.toml. Keys absent from the file keep
// their defaults.
func LoadUserConfig(dataDir string) (*UserConfig, error) {
	cfg := DefaultUserConfig()
	if err := decodeOrSeed(filepath.Join(dataDir, "config.toml"), cfg, GenerateUserConfigTemplate()); err != nil {
		return nil, err
	}
	return cfg, nil
}
