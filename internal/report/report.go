// Package report renders a completed run as text tables and plots.
package report

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/stat"

	"github.com/verte-zerg/minirace/internal/model"
	"github.com/verte-zerg/minirace/internal/stats"
)

const missing = "-"

// FormatSeconds renders a duration in seconds as m:ss.
func FormatSeconds(s int) string {
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}

func formatOptional(v *int) string {
	if v == nil {
		return missing
	}
	return FormatSeconds(*v)
}

// TimelineTable returns headers and rows for the per-day table.
func TimelineTable(tl model.Timeline) ([]string, [][]string) {
	headers := []string{"Date"}
	for _, p := range tl.Players {
		headers = append(headers, p)
	}
	headers = append(headers, "Winner")
	for _, p := range tl.Players {
		headers = append(headers, p+" wins")
	}
	rows := make([][]string, 0, len(tl.Days))
	for _, day := range tl.Days {
		row := []string{model.FormatDate(day.Date)}
		for _, p := range tl.Players {
			rec := day.Records[p]
			if rec.Solved {
				row = append(row, FormatSeconds(rec.Seconds))
			} else {
				row = append(row, missing)
			}
		}
		winner := day.Winner
		if winner == "" {
			winner = missing
		}
		row = append(row, winner)
		for _, p := range tl.Players {
			row = append(row, strconv.Itoa(day.CumulativeWins[p]))
		}
		rows = append(rows, row)
	}
	return headers, rows
}

// SummaryTable returns headers and rows for the per-player summary table.
func SummaryTable(summaries []model.PlayerSummary) ([]string, [][]string) {
	headers := []string{"Player", "Wins", "Solved", "Unsolved", "Total", "Avg", "Fastest", "Slowest"}
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{
			s.Player,
			strconv.Itoa(s.TotalWins),
			strconv.Itoa(s.TotalSolved),
			strconv.Itoa(s.TotalUnsolved),
			FormatSeconds(s.TotalTimeSolved),
			formatOptional(s.AverageTimeSolved),
			formatOptional(s.FastestSolve),
			formatOptional(s.SlowestSolve),
		})
	}
	return headers, rows
}

// WriteTimeline prints one row per day: each player's time, the winner
// and running win counts.
func WriteTimeline(w io.Writer, tl model.Timeline) error {
	if len(tl.Days) == 0 {
		_, err := fmt.Fprintln(w, "No puzzles found.")
		return err
	}
	headers, rows := TimelineTable(tl)
	right := map[int]bool{}
	for i := 1; i < len(headers); i++ {
		if i != len(tl.Players)+1 {
			right[i] = true
		}
	}
	if err := (table{headers: headers, rows: rows, rightAlign: right}).write(w); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w)
	return err
}

// WriteSummaries prints the per-player summary table.
func WriteSummaries(w io.Writer, summaries []model.PlayerSummary) error {
	headers, rows := SummaryTable(summaries)
	right := map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true, 6: true, 7: true}
	if err := (table{headers: headers, rows: rows, rightAlign: right}).write(w); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w)
	return err
}

// Extended holds statistics beyond the core summary.
type Extended struct {
	Player        string
	Median        *float64
	StdDev        *float64
	LongestStreak int
	CurrentStreak int
}

// ExtendedStats computes median and spread of solve times and win streaks.
func ExtendedStats(tl model.Timeline) []Extended {
	out := make([]Extended, 0, len(tl.Players))
	for _, p := range tl.Players {
		var times []float64
		for _, day := range tl.Days {
			if rec := day.Records[p]; rec.Solved {
				times = append(times, float64(rec.Seconds))
			}
		}
		ext := Extended{Player: p}
		ext.LongestStreak, ext.CurrentStreak = stats.Streaks(tl, p)
		if len(times) > 0 {
			sort.Float64s(times)
			median := stat.Quantile(0.5, stat.Empirical, times, nil)
			ext.Median = &median
		}
		if len(times) > 1 {
			sd := stat.StdDev(times, nil)
			ext.StdDev = &sd
		}
		out = append(out, ext)
	}
	return out
}

// WriteExtended prints ExtendedStats as a table.
func WriteExtended(w io.Writer, tl model.Timeline) error {
	headers := []string{"Player", "Median", "Std Dev", "Best Streak", "Current Streak"}
	var rows [][]string
	for _, e := range ExtendedStats(tl) {
		median, sd := missing, missing
		if e.Median != nil {
			median = FormatSeconds(int(math.Round(*e.Median)))
		}
		if e.StdDev != nil {
			sd = fmt.Sprintf("%.1fs", *e.StdDev)
		}
		rows = append(rows, []string{e.Player, median, sd, strconv.Itoa(e.LongestStreak), strconv.Itoa(e.CurrentStreak)})
	}
	right := map[int]bool{1: true, 2: true, 3: true, 4: true}
	if err := (table{headers: headers, rows: rows, rightAlign: right}).write(w); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w)
	return err
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		den := i + 1
		if i >= window {
			sum -= values[i-window]
			den = window
		}
		out[i] = sum / float64(den)
	}
	return out
}

// WinSeries returns each player's cumulative wins per day.
func WinSeries(tl model.Timeline) []Series {
	out := make([]Series, 0, len(tl.Players))
	for _, p := range tl.Players {
		values := make([]float64, len(tl.Days))
		for i, day := range tl.Days {
			values[i] = float64(day.CumulativeWins[p])
		}
		out = append(out, Series{Name: p, Values: values})
	}
	return out
}

// SolveTimeSeries returns each player's moving-average solve time over
// solved days only. Players with no solves are omitted.
func SolveTimeSeries(tl model.Timeline, window int) []Series {
	out := make([]Series, 0, len(tl.Players))
	for _, p := range tl.Players {
		var values []float64
		for _, day := range tl.Days {
			if rec := day.Records[p]; rec.Solved {
				values = append(values, float64(rec.Seconds))
			}
		}
		if len(values) == 0 {
			continue
		}
		out = append(out, Series{Name: p, Values: MovingAverage(values, window)})
	}
	return out
}

// WritePlots prints cumulative-win and solve-time curves.
func WritePlots(w io.Writer, tl model.Timeline, window, totalWidth, height int, forceColor bool) error {
	if len(tl.Days) == 0 {
		return nil
	}
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	if err := PlotSeries(w, "Cumulative Wins", WinSeries(tl), width, height, forceColor); err != nil {
		return err
	}
	title := fmt.Sprintf("Solve Time (seconds, %d-solve moving average)", window)
	return PlotSeries(w, title, SolveTimeSeries(tl, window), width, height, forceColor)
}
