// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	TokensFile *string        `toml:"tokens-file"`
	Fetch      FetchConfig    `toml:"fetch"`
	Stats      StatsConfig    `toml:"stats"`
	Players    []PlayerConfig `toml:"players"`
}

// FetchConfig maps puzzle service settings.
type FetchConfig struct {
	BaseURL     *string `toml:"base-url"`
	Concurrency *int    `toml:"concurrency"`
	Timeout     *string `toml:"timeout"`
	OnInvalid   *string `toml:"on-invalid"`
}

// StatsConfig maps stats-related defaults.
type StatsConfig struct {
	Days        *int `toml:"days"`
	CurveWindow *int `toml:"curve-window"`
}

// PlayerConfig is one [[players]] entry. The token may be given inline or
// read from the environment variable named by TokenEnv.
type PlayerConfig struct {
	Name     string `toml:"name"`
	Token    string `toml:"token"`
	TokenEnv string `toml:"token-env"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
