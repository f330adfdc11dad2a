package store

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/verte-zerg/minirace/internal/model"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "minirace.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
	})
	return s
}

func sampleRun(t *testing.T) model.Run {
	t.Helper()
	d1, _ := model.ParseDate("2024-07-18")
	d2, _ := model.ParseDate("2024-07-19")
	avg, fastest, slowest := 42, 42, 42
	return model.Run{
		From: d1,
		To:   d2,
		Timeline: model.Timeline{
			Players: []string{"Ella", "Ben"},
			Days: []model.DayRow{
				{
					Date: d1,
					Records: map[string]model.PlayerRecord{
						"Ella": {Player: "Ella", Date: d1},
						"Ben":  {Player: "Ben", Date: d1, Solved: true, Seconds: 42},
					},
					Winner:         "Ben",
					CumulativeWins: map[string]int{"Ella": 0, "Ben": 1},
				},
				{
					Date: d2,
					Records: map[string]model.PlayerRecord{
						"Ella": {Player: "Ella", Date: d2},
						"Ben":  {Player: "Ben", Date: d2},
					},
					CumulativeWins: map[string]int{"Ella": 0, "Ben": 1},
				},
			},
		},
		Summaries: []model.PlayerSummary{
			{Player: "Ella", TotalUnsolved: 2},
			{Player: "Ben", TotalWins: 1, TotalSolved: 1, TotalUnsolved: 1, TotalTimeSolved: 42,
				AverageTimeSolved: &avg, FastestSolve: &fastest, SlowestSolve: &slowest},
		},
	}
}

func TestSaveRunRoundTrip(t *testing.T) {
	s := openTemp(t)
	fixed := time.Date(2024, 7, 20, 9, 30, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }
	run := sampleRun(t)

	id, err := s.SaveRun(context.Background(), run)
	if err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	runs, err := s.ListRuns(context.Background())
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != id {
		t.Fatalf("unexpected runs: %+v", runs)
	}
	if !runs[0].CreatedAt.Equal(fixed) || !runs[0].From.Equal(run.From) || !runs[0].To.Equal(run.To) {
		t.Fatalf("unexpected run info: %+v", runs[0])
	}
	if !reflect.DeepEqual(runs[0].Players, []string{"Ella", "Ben"}) {
		t.Fatalf("expected configured player order, got %v", runs[0].Players)
	}

	days, err := s.ListDays(context.Background(), id)
	if err != nil {
		t.Fatalf("ListDays failed: %v", err)
	}
	if !reflect.DeepEqual(days, run.Timeline.Days) {
		t.Fatalf("days did not round-trip:\n got %+v\nwant %+v", days, run.Timeline.Days)
	}
}

func TestSaveRunCreatesNewRunEachTime(t *testing.T) {
	s := openTemp(t)
	run := sampleRun(t)
	first, err := s.SaveRun(context.Background(), run)
	if err != nil {
		t.Fatalf("first SaveRun failed: %v", err)
	}
	second, err := s.SaveRun(context.Background(), run)
	if err != nil {
		t.Fatalf("second SaveRun failed: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct run ids, got %d twice", first)
	}
	runs, err := s.ListRuns(context.Background())
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
}

func TestSaveRunRollsBackOnFailure(t *testing.T) {
	s := openTemp(t)
	run := sampleRun(t)
	run.Timeline.Days = append(run.Timeline.Days, run.Timeline.Days[0])

	if _, err := s.SaveRun(context.Background(), run); err == nil {
		t.Fatalf("expected duplicate day to fail")
	}
	runs, err := s.ListRuns(context.Background())
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 0 {
		t.Fatalf("expected rollback to leave no runs, got %+v", runs)
	}
}

func TestListDaysUnknownRun(t *testing.T) {
	s := openTemp(t)
	days, err := s.ListDays(context.Background(), 99)
	if err != nil {
		t.Fatalf("ListDays failed: %v", err)
	}
	if len(days) != 0 {
		t.Fatalf("expected no days, got %d", len(days))
	}
}
