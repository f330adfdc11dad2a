package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// EnvConfig holds settings read from the environment. Empty values mean
// "not set" and leave file or default values in place.
type EnvConfig struct {
	BaseURL     string `env:"MINIRACE_BASE_URL"`
	TokensFile  string `env:"MINIRACE_TOKENS_FILE"`
	Concurrency int    `env:"MINIRACE_CONCURRENCY"`
	LogLevel    string `env:"MINIRACE_LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"MINIRACE_LOG_FORMAT" envDefault:"console"`
}

// LoadDotEnv loads variables from a .env file without overriding ones
// already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// LoadEnv parses MINIRACE_* environment variables.
func LoadEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := env.Parse(&cfg); err != nil {
		return EnvConfig{}, fmt.Errorf("failed to parse env: %w", err)
	}
	return cfg, nil
}
