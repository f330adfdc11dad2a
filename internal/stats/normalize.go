// Package stats reconciles per-player puzzle results into a daily timeline
// and derives win counts and per-player statistics from it.
//
// Everything in this package is pure: no I/O, no logging, no shared state.
// Each stage copies what it needs from its input.
package stats

import (
	"bytes"
	"encoding/json"
	"math"

	"github.com/verte-zerg/minirace/internal/model"
)

// Normalize converts a raw service record into a Result.
//
// A missing record, a missing solved flag and solved=false all yield an
// unsolved result with zero time; the time field is not inspected for
// unsolved records. A solved record without a time yields zero seconds.
// Fractional times are truncated. Negative or non-numeric times, and
// times too large to convert to int, are reported as *InvalidRecordError.
func Normalize(raw *model.RawRecord) (model.Result, error) {
	if raw == nil || raw.Solved == nil || !*raw.Solved {
		return model.Result{}, nil
	}
	seconds, err := parseSeconds(raw.SecondsSpentSolving)
	if err != nil {
		return model.Result{}, err
	}
	return model.Result{Solved: true, Seconds: seconds}, nil
}

func parseSeconds(value json.RawMessage) (int, error) {
	trimmed := bytes.TrimSpace(value)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return 0, nil
	}
	var num json.Number
	if err := json.Unmarshal(trimmed, &num); err != nil || trimmed[0] == '"' {
		return 0, &InvalidRecordError{Value: string(trimmed), Reason: "not a number"}
	}
	f, err := num.Float64()
	if err != nil {
		return 0, &InvalidRecordError{Value: string(trimmed), Reason: "not a number"}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &InvalidRecordError{Value: string(trimmed), Reason: "not a finite number"}
	}
	if f < 0 {
		return 0, &InvalidRecordError{Value: string(trimmed), Reason: "negative"}
	}
	if f >= math.MaxInt {
		return 0, &InvalidRecordError{Value: string(trimmed), Reason: "out of range"}
	}
	return int(math.Trunc(f)), nil
}
