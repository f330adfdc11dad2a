package stats

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/verte-zerg/minirace/internal/model"
)

type dayInput struct {
	date       string
	benSolved  bool
	benTime    int
	ellaSolved bool
	ellaTime   int
}

func rawFor(isSolved bool, seconds int) *model.RawRecord {
	if !isSolved {
		return raw(boolPtr(false), "")
	}
	return raw(boolPtr(true), fmt.Sprintf("%d", seconds))
}

func buildScenario(t *testing.T) (*Engine, model.Timeline) {
	t.Helper()
	e := mustEngine(t, "Ben", "Ella")
	inputs := []dayInput{
		{"2024-07-18", true, 42, true, 60},
		{"2024-07-19", true, 160, true, 85},
		{"2024-07-20", true, 294, false, 0},
		{"2024-07-21", false, 0, false, 234},
		{"2024-07-22", true, 60, true, 60},
	}
	rows := make([]model.DayRow, 0, len(inputs))
	// Feed days newest first to exercise sorting.
	for i := len(inputs) - 1; i >= 0; i-- {
		in := inputs[i]
		row, err := e.Merge(mustDate(t, in.date), map[string]*model.RawRecord{
			"Ben":  rawFor(in.benSolved, in.benTime),
			"Ella": rawFor(in.ellaSolved, in.ellaTime),
		})
		if err != nil {
			t.Fatalf("Merge failed: %v", err)
		}
		rows = append(rows, e.Resolve(row))
	}
	tl, err := e.BuildTimeline(rows)
	if err != nil {
		t.Fatalf("BuildTimeline failed: %v", err)
	}
	return e, tl
}

func TestEndToEndTwoPlayers(t *testing.T) {
	e, tl := buildScenario(t)

	winners := make([]string, len(tl.Days))
	for i, day := range tl.Days {
		winners[i] = day.Winner
	}
	wantWinners := []string{"Ben", "Ella", "Ben", "", ""}
	if !reflect.DeepEqual(winners, wantWinners) {
		t.Fatalf("expected winners %v, got %v", wantWinners, winners)
	}

	ben, err := e.Summarize(tl, "Ben")
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if ben.TotalWins != 2 || ben.TotalSolved != 4 || ben.TotalUnsolved != 1 || ben.TotalTimeSolved != 556 {
		t.Fatalf("unexpected Ben summary: %+v", ben)
	}
	if ben.AverageTimeSolved == nil || *ben.AverageTimeSolved != 139 {
		t.Fatalf("expected Ben average 139, got %v", ben.AverageTimeSolved)
	}
	if *ben.FastestSolve != 42 || *ben.SlowestSolve != 294 {
		t.Fatalf("unexpected Ben fastest/slowest: %d/%d", *ben.FastestSolve, *ben.SlowestSolve)
	}

	ella, err := e.Summarize(tl, "Ella")
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if ella.TotalWins != 1 || ella.TotalSolved != 3 || ella.TotalUnsolved != 2 || ella.TotalTimeSolved != 205 {
		t.Fatalf("unexpected Ella summary: %+v", ella)
	}
	if ella.AverageTimeSolved == nil || *ella.AverageTimeSolved != 68 {
		t.Fatalf("expected Ella average 68, got %v", ella.AverageTimeSolved)
	}
	if *ella.FastestSolve != 60 || *ella.SlowestSolve != 85 {
		t.Fatalf("unexpected Ella fastest/slowest: %d/%d", *ella.FastestSolve, *ella.SlowestSolve)
	}
}

func TestSummarizeIdempotent(t *testing.T) {
	e, tl := buildScenario(t)
	first, err := e.Summarize(tl, "Ella")
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	second, err := e.Summarize(tl, "Ella")
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical summaries, got %+v and %+v", first, second)
	}
	all := e.SummarizeAll(tl)
	if len(all) != 2 || all[0].Player != "Ben" || all[1].Player != "Ella" {
		t.Fatalf("unexpected SummarizeAll output: %+v", all)
	}
	if !reflect.DeepEqual(all[1], first) {
		t.Fatalf("SummarizeAll disagrees with Summarize: %+v vs %+v", all[1], first)
	}
}

func TestSummarizeNoSolves(t *testing.T) {
	e := mustEngine(t, "Ben", "Ella")
	row, err := e.Merge(mustDate(t, "2024-07-18"), map[string]*model.RawRecord{"Ella": rawFor(true, 30)})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	tl, err := e.BuildTimeline([]model.DayRow{e.Resolve(row)})
	if err != nil {
		t.Fatalf("BuildTimeline failed: %v", err)
	}
	ben, err := e.Summarize(tl, "Ben")
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if ben.TotalSolved != 0 || ben.TotalUnsolved != 1 || ben.TotalWins != 0 {
		t.Fatalf("unexpected summary: %+v", ben)
	}
	if ben.AverageTimeSolved != nil || ben.FastestSolve != nil || ben.SlowestSolve != nil {
		t.Fatalf("expected nil averages without solves: %+v", ben)
	}
}

func TestSummarizeEmptyTimeline(t *testing.T) {
	e := mustEngine(t, "Ben")
	s, err := e.Summarize(model.Timeline{}, "Ben")
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if s.TotalWins != 0 || s.TotalSolved != 0 || s.AverageTimeSolved != nil {
		t.Fatalf("unexpected summary for empty timeline: %+v", s)
	}
}

func TestSummarizeUnknownPlayer(t *testing.T) {
	e, tl := buildScenario(t)
	_, err := e.Summarize(tl, "Sam")
	var unknown *UnknownPlayerError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownPlayerError, got %v", err)
	}
}

func TestRoundDiv(t *testing.T) {
	cases := [][3]int{{556, 4, 139}, {205, 3, 68}, {5, 2, 3}, {7, 2, 4}, {1, 3, 0}, {2, 3, 1}}
	for _, c := range cases {
		if got := roundDiv(c[0], c[1]); got != c[2] {
			t.Fatalf("roundDiv(%d, %d): expected %d, got %d", c[0], c[1], c[2], got)
		}
	}
}

func TestStreaks(t *testing.T) {
	_, tl := buildScenario(t)
	longest, current := Streaks(tl, "Ben")
	if longest != 1 || current != 0 {
		t.Fatalf("unexpected Ben streaks: %d/%d", longest, current)
	}
	tl.Days[1].Winner = "Ben"
	longest, _ = Streaks(tl, "Ben")
	if longest != 3 {
		t.Fatalf("expected longest streak 3, got %d", longest)
	}
}
