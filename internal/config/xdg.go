// Package config provides XDG path helpers.
package config

import (
	"os"
	"path/filepath"
)

const appDir = "minirace"

// XDGConfigHome returns the XDG config home or a default fallback.
func XDGConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".config")
}

// XDGDataHome returns the XDG data home or a default fallback.
func XDGDataHome() string {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".local", "share")
}

// DefaultConfigPath returns the default TOML config path.
func DefaultConfigPath() string {
	return filepath.Join(XDGConfigHome(), appDir, "config.toml")
}

// DefaultTokensPath returns the default path of the players token file.
func DefaultTokensPath() string {
	return filepath.Join(XDGConfigHome(), appDir, "tokens.json")
}

// DefaultExportDir returns the directory exports are written to by default.
func DefaultExportDir() string {
	return filepath.Join(XDGDataHome(), appDir)
}
