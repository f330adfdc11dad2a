package stats

import "github.com/verte-zerg/minirace/internal/model"

// Streaks returns the longest run of consecutive days won by player and
// the run still open on the last day of the timeline.
func Streaks(tl model.Timeline, player string) (longest, current int) {
	for _, day := range tl.Days {
		if day.Winner == player {
			current++
			if current > longest {
				longest = current
			}
			continue
		}
		current = 0
	}
	return longest, current
}
