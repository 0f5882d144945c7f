package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const appName = "chatwave"

// GetHomeDir falls back to the filesystem root when HOME is unset
func GetHomeDir() string {
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return home
	}
	if runtime.GOOS == "windows" {
		return `C:\`
	}
	return "/"
}

// GetConfigDir holds settings.toml: ~/.config/chatwave on every platform
func GetConfigDir() string {
	return filepath.Join(GetHomeDir(), ".config", appName)
}

// GetDefaultDataDir is %LOCALAPPDATA%\chatwave on Windows and
// ~/.local/share/chatwave elsewhere
func GetDefaultDataDir() string {
	if runtime.GOOS != "windows" {
		return filepath.Join(GetHomeDir(), ".local", "share", appName)
	}
	base := os.Getenv("LOCALAPPDATA")
	if base == "" {
		base = filepath.Join(GetHomeDir(), "AppData", "Local")
	}
	return filepath.Join(base, appName)
}

func GetSettingsFilePath() string {
	return filepath.Join(GetConfigDir(), "settings.toml")
}

// GetExportDir is where transcripts land
func GetExportDir() string {
	return filepath.Join(GetHomeDir(), "Downloads")
}

// ExpandPath resolves a leading ~/ and $VARS
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		path = filepath.Join(GetHomeDir(), rest)
	}
	return filepath.Clean(os.ExpandEnv(path))
}

// EnsureDir creates path with user-only access
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0700)
}

func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// EnsureDataDirPermissions creates dataDir or tightens it to 0700. The
// access token lives there.
func EnsureDataDirPermissions(dataDir string) error {
	info, err := os.Stat(dataDir)
	if os.IsNotExist(err) {
		return EnsureDir(dataDir)
	}
	if err != nil {
		return err
	}
	if info.Mode().Perm() != 0700 {
		return os.Chmod(dataDir, 0700)
	}
	return nil
}
