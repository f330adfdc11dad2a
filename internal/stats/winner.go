package stats

import "github.com/verte-zerg/minirace/internal/model"

// ResolveWinner returns the day's winner, or "" when there is none.
//
// Only solved records compete. A sole solver wins. Otherwise the solver
// with the strictly lowest time wins; a tie on the lowest time means no
// winner. The result does not depend on map iteration order.
func ResolveWinner(records map[string]model.PlayerRecord) string {
	var (
		seen   bool
		tied   bool
		winner string
		best   int
	)
	for player, rec := range records {
		if !rec.Solved {
			continue
		}
		switch {
		case !seen:
			seen, winner, best = true, player, rec.Seconds
		case rec.Seconds < best:
			winner, best, tied = player, rec.Seconds, false
		case rec.Seconds == best:
			tied = true
		}
	}
	if !seen || tied {
		return ""
	}
	return winner
}
