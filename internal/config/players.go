package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/verte-zerg/minirace/internal/model"
)

type tokenEntry struct {
	Name  string `json:"name"`
	Token string `json:"token"`
}

// LoadTokens reads players from a JSON file of {"name", "token"} objects.
// Order in the file is the configured player order.
func LoadTokens(path string) ([]model.Player, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tokens file: %w", err)
	}
	var entries []tokenEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode tokens file: %w", err)
	}
	players := make([]model.Player, 0, len(entries))
	for _, e := range entries {
		players = append(players, model.Player{
			Name:  strings.TrimSpace(e.Name),
			Token: strings.TrimSpace(e.Token),
		})
	}
	return players, nil
}

func playersFromFile(entries []PlayerConfig) []model.Player {
	players := make([]model.Player, 0, len(entries))
	for _, e := range entries {
		token := strings.TrimSpace(e.Token)
		if token == "" && e.TokenEnv != "" {
			token = strings.TrimSpace(os.Getenv(e.TokenEnv))
		}
		players = append(players, model.Player{
			Name:  strings.TrimSpace(e.Name),
			Token: token,
		})
	}
	return players
}

// ValidatePlayers checks that players form a usable ordered set.
func ValidatePlayers(players []model.Player) error {
	if len(players) == 0 {
		return fmt.Errorf("no players configured (add [[players]] to the config or create a tokens file)")
	}
	seen := make(map[string]struct{}, len(players))
	for i, p := range players {
		if p.Name == "" {
			return fmt.Errorf("player #%d has no name", i+1)
		}
		if _, ok := seen[p.Name]; ok {
			return fmt.Errorf("player %q configured twice", p.Name)
		}
		seen[p.Name] = struct{}{}
		if p.Token == "" {
			return fmt.Errorf("player %q has no token", p.Name)
		}
	}
	return nil
}

// PlayerNames returns the names of players in order.
func PlayerNames(players []model.Player) []string {
	names := make([]string, len(players))
	for i, p := range players {
		names[i] = p.Name
	}
	return names
}
