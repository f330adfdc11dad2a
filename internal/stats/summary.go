package stats

import "github.com/verte-zerg/minirace/internal/model"

// Summarize reduces a timeline to one player's summary.
func (e *Engine) Summarize(tl model.Timeline, player string) (model.PlayerSummary, error) {
	if !e.isKnown(player) {
		return model.PlayerSummary{}, &UnknownPlayerError{Player: player}
	}
	return summarize(tl, player), nil
}

func summarize(tl model.Timeline, player string) model.PlayerSummary {
	sum := model.PlayerSummary{Player: player}
	if n := len(tl.Days); n > 0 {
		sum.TotalWins = tl.Days[n-1].CumulativeWins[player]
	}
	fastest, slowest := 0, 0
	for _, day := range tl.Days {
		rec := day.Records[player]
		if !rec.Solved {
			sum.TotalUnsolved++
			continue
		}
		if sum.TotalSolved == 0 || rec.Seconds < fastest {
			fastest = rec.Seconds
		}
		if sum.TotalSolved == 0 || rec.Seconds > slowest {
			slowest = rec.Seconds
		}
		sum.TotalSolved++
		sum.TotalTimeSolved += rec.Seconds
	}
	if sum.TotalSolved > 0 {
		avg := roundDiv(sum.TotalTimeSolved, sum.TotalSolved)
		sum.AverageTimeSolved = &avg
		sum.FastestSolve = &fastest
		sum.SlowestSolve = &slowest
	}
	return sum
}

// SummarizeAll summarizes every configured player, in configured order.
func (e *Engine) SummarizeAll(tl model.Timeline) []model.PlayerSummary {
	out := make([]model.PlayerSummary, 0, len(e.players))
	for _, p := range e.players {
		out = append(out, summarize(tl, p))
	}
	return out
}

// roundDiv divides non-negative integers rounding half up.
func roundDiv(num, den int) int {
	return (2*num + den) / (2 * den)
}
