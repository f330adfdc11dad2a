package stats

import (
	"errors"
	"fmt"
	"time"

	"github.com/verte-zerg/minirace/internal/model"
)

// ErrNoPlayers is returned when an engine is built without players.
var ErrNoPlayers = errors.New("no players configured")

// InvalidRecordError reports a raw record whose solve time cannot be used.
// Player and Date are filled in when the record was merged into a day.
type InvalidRecordError struct {
	Player string
	Date   time.Time
	Value  string
	Reason string
}

func (e *InvalidRecordError) Error() string {
	msg := fmt.Sprintf("invalid solve time %s: %s", e.Value, e.Reason)
	if e.Player != "" {
		msg = fmt.Sprintf("player %q on %s: %s", e.Player, model.FormatDate(e.Date), msg)
	}
	return msg
}

// UnknownPlayerError reports a player outside the configured set.
type UnknownPlayerError struct {
	Player string
}

func (e *UnknownPlayerError) Error() string {
	return fmt.Sprintf("unknown player %q", e.Player)
}

// DuplicateDateError reports two day rows sharing a date.
type DuplicateDateError struct {
	Date time.Time
}

func (e *DuplicateDateError) Error() string {
	return fmt.Sprintf("duplicate day %s", model.FormatDate(e.Date))
}
