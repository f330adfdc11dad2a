package stats

import (
	"fmt"
	"strings"
	"time"

	"github.com/verte-zerg/minirace/internal/model"
)

// Engine reconciles results for a fixed, ordered set of players.
type Engine struct {
	players []string
	known   map[string]struct{}
}

// NewEngine returns an Engine for the given players. Order is preserved
// and used for every per-player output.
func NewEngine(players []string) (*Engine, error) {
	if len(players) == 0 {
		return nil, ErrNoPlayers
	}
	known := make(map[string]struct{}, len(players))
	for _, p := range players {
		if strings.TrimSpace(p) == "" {
			return nil, fmt.Errorf("player name must not be empty")
		}
		if _, ok := known[p]; ok {
			return nil, fmt.Errorf("player %q configured twice", p)
		}
		known[p] = struct{}{}
	}
	return &Engine{
		players: append([]string(nil), players...),
		known:   known,
	}, nil
}

// Players returns the configured players in order.
func (e *Engine) Players() []string {
	return append([]string(nil), e.players...)
}

func (e *Engine) isKnown(player string) bool {
	_, ok := e.known[player]
	return ok
}

// Merge normalizes every configured player's raw record for date into one
// DayRow. Players missing from raw get an unsolved record. Winner and
// CumulativeWins are left unset.
func (e *Engine) Merge(date time.Time, raw map[string]*model.RawRecord) (model.DayRow, error) {
	for player := range raw {
		if !e.isKnown(player) {
			return model.DayRow{}, &UnknownPlayerError{Player: player}
		}
	}
	day := model.Day(date)
	records := make(map[string]model.PlayerRecord, len(e.players))
	for _, player := range e.players {
		res, err := Normalize(raw[player])
		if err != nil {
			if invalid, ok := err.(*InvalidRecordError); ok {
				invalid.Player = player
				invalid.Date = day
			}
			return model.DayRow{}, err
		}
		records[player] = model.PlayerRecord{
			Player:  player,
			Date:    day,
			Solved:  res.Solved,
			Seconds: res.Seconds,
		}
	}
	return model.DayRow{Date: day, Records: records}, nil
}

// Resolve returns a copy of row with Winner set.
func (e *Engine) Resolve(row model.DayRow) model.DayRow {
	out := copyRow(row)
	out.Winner = ResolveWinner(out.Records)
	return out
}

func copyRow(row model.DayRow) model.DayRow {
	out := model.DayRow{
		Date:   row.Date,
		Winner: row.Winner,
	}
	if row.Records != nil {
		out.Records = make(map[string]model.PlayerRecord, len(row.Records))
		for k, v := range row.Records {
			out.Records[k] = v
		}
	}
	if row.CumulativeWins != nil {
		out.CumulativeWins = make(map[string]int, len(row.CumulativeWins))
		for k, v := range row.CumulativeWins {
			out.CumulativeWins[k] = v
		}
	}
	return out
}
