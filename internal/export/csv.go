// Package export writes a completed timeline in machine-readable form.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/verte-zerg/minirace/internal/model"
)

// Header returns the CSV header for the given players.
func Header(players []string) []string {
	header := []string{"date"}
	for _, p := range players {
		header = append(header, p+"_solved", p+"_time", p+"_wins")
	}
	return append(header, "winner")
}

// WriteCSV writes one row per day. Unsolved days have an empty time cell.
func WriteCSV(w io.Writer, tl model.Timeline) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header(tl.Players)); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, day := range tl.Days {
		row := []string{model.FormatDate(day.Date)}
		for _, p := range tl.Players {
			rec := day.Records[p]
			seconds := ""
			if rec.Solved {
				seconds = strconv.Itoa(rec.Seconds)
			}
			row = append(row, strconv.FormatBool(rec.Solved), seconds, strconv.Itoa(day.CumulativeWins[p]))
		}
		row = append(row, day.Winner)
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row %s: %w", model.FormatDate(day.Date), err)
		}
	}
	cw.Flush()
	return cw.Error()
}
