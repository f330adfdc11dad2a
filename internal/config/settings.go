package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/verte-zerg/minirace/internal/model"
)

// Defaults applied when neither the file nor the environment sets a value.
const (
	DefaultBaseURL     = "https://www.nytimes.com"
	DefaultConcurrency = 4
	DefaultTimeout     = 30 * time.Second
	DefaultDays        = 7
	DefaultCurveWindow = 3
	OnInvalidAbort     = "abort"
	OnInvalidDefault   = "default"
)

// Settings is the resolved configuration passed into the rest of the program.
type Settings struct {
	BaseURL     string
	Concurrency int
	Timeout     time.Duration
	OnInvalid   string
	Days        int
	CurveWindow int
	TokensPath  string
	Players     []model.Player
}

// Resolve merges defaults, the config file and the environment, in that
// order of increasing precedence, and loads players.
func Resolve(file FileConfig, envCfg EnvConfig) (Settings, error) {
	s := Settings{
		BaseURL:     DefaultBaseURL,
		Concurrency: DefaultConcurrency,
		Timeout:     DefaultTimeout,
		OnInvalid:   OnInvalidAbort,
		Days:        DefaultDays,
		CurveWindow: DefaultCurveWindow,
		TokensPath:  DefaultTokensPath(),
	}
	if file.TokensFile != nil {
		s.TokensPath = *file.TokensFile
	}
	if file.Fetch.BaseURL != nil {
		s.BaseURL = *file.Fetch.BaseURL
	}
	if file.Fetch.Concurrency != nil {
		s.Concurrency = *file.Fetch.Concurrency
	}
	if file.Fetch.Timeout != nil {
		d, err := time.ParseDuration(*file.Fetch.Timeout)
		if err != nil {
			return Settings{}, fmt.Errorf("invalid fetch.timeout: %w", err)
		}
		s.Timeout = d
	}
	if file.Fetch.OnInvalid != nil {
		s.OnInvalid = strings.ToLower(strings.TrimSpace(*file.Fetch.OnInvalid))
	}
	if file.Stats.Days != nil {
		s.Days = *file.Stats.Days
	}
	if file.Stats.CurveWindow != nil {
		s.CurveWindow = *file.Stats.CurveWindow
	}

	if envCfg.BaseURL != "" {
		s.BaseURL = envCfg.BaseURL
	}
	if envCfg.TokensFile != "" {
		s.TokensPath = envCfg.TokensFile
	}
	if envCfg.Concurrency != 0 {
		s.Concurrency = envCfg.Concurrency
	}
	s.BaseURL = strings.TrimRight(s.BaseURL, "/")

	if len(file.Players) > 0 {
		s.Players = playersFromFile(file.Players)
	} else {
		players, err := LoadTokens(s.TokensPath)
		if err != nil {
			return Settings{}, err
		}
		s.Players = players
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks resolved settings.
func (s Settings) Validate() error {
	if s.BaseURL == "" {
		return fmt.Errorf("base URL must not be empty")
	}
	if s.Concurrency < 1 {
		return fmt.Errorf("concurrency must be >= 1")
	}
	if s.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0")
	}
	if s.OnInvalid != OnInvalidAbort && s.OnInvalid != OnInvalidDefault {
		return fmt.Errorf("on-invalid must be %q or %q", OnInvalidAbort, OnInvalidDefault)
	}
	if s.Days < 1 {
		return fmt.Errorf("days must be >= 1")
	}
	if s.CurveWindow < 1 {
		return fmt.Errorf("curve-window must be >= 1")
	}
	return ValidatePlayers(s.Players)
}
