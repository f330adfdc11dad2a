// Package model defines shared data structures.
package model

import (
	"encoding/json"
	"time"
)

// DateLayout is the calendar date format used on every boundary.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD calendar date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// FormatDate formats a calendar date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Day truncates t to its calendar date at midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Player is a configured player and the cookie used to read their results.
type Player struct {
	Name  string
	Token string
}

// Puzzle identifies the mini published on a given date.
type Puzzle struct {
	Date     time.Time
	PuzzleID int64
}

// RawRecord is the completion record as returned by the puzzle service.
// SecondsSpentSolving is kept raw so absent, null and malformed values can
// be told apart during normalization.
type RawRecord struct {
	PercentFilled       *int            `json:"percentFilled,omitempty"`
	SecondsSpentSolving json.RawMessage `json:"secondsSpentSolving,omitempty"`
	Solved              *bool           `json:"solved,omitempty"`
}

// Result is a normalized completion.
type Result struct {
	Solved  bool
	Seconds int
}

// PlayerRecord is one player's normalized result for one day.
type PlayerRecord struct {
	Player  string
	Date    time.Time
	Solved  bool
	Seconds int
}

// DayRow holds every configured player's record for a date.
type DayRow struct {
	Date           time.Time
	Records        map[string]PlayerRecord
	Winner         string
	CumulativeWins map[string]int
}

// HasWinner reports whether a single player won the day.
func (r DayRow) HasWinner() bool {
	return r.Winner != ""
}

// Timeline is the chronologically ordered set of day rows.
type Timeline struct {
	Players []string
	Days    []DayRow
}

// PlayerSummary aggregates a player's results across a timeline.
// The pointer fields are nil when the player solved nothing.
type PlayerSummary struct {
	Player            string
	TotalWins         int
	TotalSolved       int
	TotalUnsolved     int
	TotalTimeSolved   int
	AverageTimeSolved *int
	FastestSolve      *int
	SlowestSolve      *int
}

// RunConfig defines the date range and options for a stats run.
// With SkipInvalid set, a record with an unusable solve time is treated
// as missing instead of aborting the run.
type RunConfig struct {
	From        time.Time
	To          time.Time
	Concurrency int
	SkipInvalid bool
}

// Run is the complete output of a stats run.
type Run struct {
	From      time.Time
	To        time.Time
	Timeline  Timeline
	Summaries []PlayerSummary
}
