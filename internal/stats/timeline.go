package stats

import (
	"sort"

	"github.com/verte-zerg/minirace/internal/model"
)

// BuildTimeline orders rows by calendar date and fills in running win counts.
//
// Rows must already carry their winner. Dates are reduced to their calendar
// day first, so two rows on the same day are duplicates whatever their time
// of day or zone. Each row's CumulativeWins holds every configured player's
// count up to and including that row.
func (e *Engine) BuildTimeline(rows []model.DayRow) (model.Timeline, error) {
	days := make([]model.DayRow, len(rows))
	for i, row := range rows {
		days[i] = copyRow(row)
		days[i].Date = model.Day(row.Date)
		for p, rec := range days[i].Records {
			rec.Date = days[i].Date
			days[i].Records[p] = rec
		}
	}
	sort.SliceStable(days, func(i, j int) bool {
		return days[i].Date.Before(days[j].Date)
	})
	for i := 1; i < len(days); i++ {
		if days[i].Date.Equal(days[i-1].Date) {
			return model.Timeline{}, &DuplicateDateError{Date: days[i].Date}
		}
	}

	counts := make(map[string]int, len(e.players))
	for i := range days {
		if w := days[i].Winner; w != "" {
			if !e.isKnown(w) {
				return model.Timeline{}, &UnknownPlayerError{Player: w}
			}
			counts[w]++
		}
		snapshot := make(map[string]int, len(e.players))
		for _, p := range e.players {
			snapshot[p] = counts[p]
		}
		days[i].CumulativeWins = snapshot
	}
	return model.Timeline{Players: e.Players(), Days: days}, nil
}
