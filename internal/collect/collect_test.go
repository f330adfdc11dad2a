package collect

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/verte-zerg/minirace/internal/model"
	"github.com/verte-zerg/minirace/internal/nyt"
	"github.com/verte-zerg/minirace/internal/stats"
)

type fakeResult struct {
	solved  *bool
	seconds string
	err     error
}

type fakeSource struct {
	mu      sync.Mutex
	puzzles []model.Puzzle
	results map[string]fakeResult // key: token/puzzleID
	calls   int
}

func (f *fakeSource) ListPuzzles(_ context.Context, _ string, _, _ time.Time) ([]model.Puzzle, error) {
	return f.puzzles, nil
}

func (f *fakeSource) Result(_ context.Context, token string, puzzleID int64) (*model.RawRecord, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	r, ok := f.results[fmt.Sprintf("%s/%d", token, puzzleID)]
	if !ok {
		return nil, nil
	}
	if r.err != nil {
		return nil, r.err
	}
	rec := &model.RawRecord{Solved: r.solved}
	if r.seconds != "" {
		rec.SecondsSpentSolving = json.RawMessage(r.seconds)
	}
	return rec, nil
}

func yes() *bool { v := true; return &v }
func no() *bool  { v := false; return &v }

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := model.ParseDate(s)
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	return d
}

var players = []model.Player{{Name: "Ben", Token: "ben"}, {Name: "Ella", Token: "ella"}}

func scenarioSource(t *testing.T) *fakeSource {
	t.Helper()
	return &fakeSource{
		puzzles: []model.Puzzle{
			{Date: date(t, "2024-07-22"), PuzzleID: 5},
			{Date: date(t, "2024-07-18"), PuzzleID: 1},
			{Date: date(t, "2024-07-19"), PuzzleID: 2},
			{Date: date(t, "2024-07-20"), PuzzleID: 3},
			{Date: date(t, "2024-07-21"), PuzzleID: 4},
		},
		results: map[string]fakeResult{
			"ben/1": {solved: yes(), seconds: "42"}, "ella/1": {solved: yes(), seconds: "60"},
			"ben/2": {solved: yes(), seconds: "160"}, "ella/2": {solved: yes(), seconds: "85"},
			"ben/3": {solved: yes(), seconds: "294"}, "ella/3": {solved: no()},
			"ben/4": {solved: no()}, "ella/4": {solved: no(), seconds: "234"},
			"ben/5": {solved: yes(), seconds: "60"}, "ella/5": {solved: yes(), seconds: "60"},
		},
	}
}

func TestRunEndToEnd(t *testing.T) {
	src := scenarioSource(t)
	c, err := New(src, players, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	run, err := c.Run(context.Background(), model.RunConfig{
		From:        date(t, "2024-07-18"),
		To:          date(t, "2024-07-22"),
		Concurrency: 3,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if src.calls != 10 {
		t.Fatalf("expected 10 result fetches, got %d", src.calls)
	}
	var winners []string
	for _, d := range run.Timeline.Days {
		winners = append(winners, d.Winner)
	}
	if strings.Join(winners, ",") != "Ben,Ella,Ben,," {
		t.Fatalf("unexpected winners: %q", winners)
	}
	if len(run.Summaries) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(run.Summaries))
	}
	ben, ella := run.Summaries[0], run.Summaries[1]
	if ben.TotalWins != 2 || *ben.AverageTimeSolved != 139 {
		t.Fatalf("unexpected Ben summary: %+v", ben)
	}
	if ella.TotalWins != 1 || *ella.AverageTimeSolved != 68 {
		t.Fatalf("unexpected Ella summary: %+v", ella)
	}
}

func TestRunInvalidRecordPolicy(t *testing.T) {
	src := &fakeSource{
		puzzles: []model.Puzzle{{Date: date(t, "2024-07-18"), PuzzleID: 1}},
		results: map[string]fakeResult{
			"ben/1":  {solved: yes(), seconds: "-4"},
			"ella/1": {solved: yes(), seconds: "70"},
		},
	}
	c, err := New(src, players, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	cfg := model.RunConfig{From: date(t, "2024-07-18"), To: date(t, "2024-07-18"), Concurrency: 1}

	_, err = c.Run(context.Background(), cfg)
	var invalid *stats.InvalidRecordError
	if !errors.As(err, &invalid) || invalid.Player != "Ben" {
		t.Fatalf("expected InvalidRecordError for Ben, got %v", err)
	}

	cfg.SkipInvalid = true
	run, err := c.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run with SkipInvalid failed: %v", err)
	}
	day := run.Timeline.Days[0]
	if day.Records["Ben"].Solved || day.Winner != "Ella" {
		t.Fatalf("expected Ben defaulted and Ella winning, got %+v", day)
	}
}

func TestRunTransportErrorAborts(t *testing.T) {
	src := &fakeSource{
		puzzles: []model.Puzzle{{Date: date(t, "2024-07-18"), PuzzleID: 1}},
		results: map[string]fakeResult{"ella/1": {err: errors.New("connection reset")}},
	}
	c, err := New(src, players, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	_, err = c.Run(context.Background(), model.RunConfig{From: date(t, "2024-07-18"), To: date(t, "2024-07-18")})
	if err == nil || !strings.Contains(err.Error(), "connection reset") {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestRunDuplicatePuzzleDate(t *testing.T) {
	src := &fakeSource{
		puzzles: []model.Puzzle{
			{Date: date(t, "2024-07-18"), PuzzleID: 1},
			{Date: date(t, "2024-07-18"), PuzzleID: 2},
		},
	}
	c, err := New(src, players, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	_, err = c.Run(context.Background(), model.RunConfig{From: date(t, "2024-07-18"), To: date(t, "2024-07-18")})
	var dup *stats.DuplicateDateError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateDateError, got %v", err)
	}
}

func TestRunRejectsReversedRange(t *testing.T) {
	c, err := New(&fakeSource{}, players, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := c.Run(context.Background(), model.RunConfig{From: date(t, "2024-07-20"), To: date(t, "2024-07-18")}); err == nil {
		t.Fatalf("expected error for reversed range")
	}
}

func TestNewRequiresPlayers(t *testing.T) {
	if _, err := New(&fakeSource{}, nil, nil); !errors.Is(err, stats.ErrNoPlayers) {
		t.Fatalf("expected ErrNoPlayers, got %v", err)
	}
}

func TestRunWithHTTPClientSkipsRefusedResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie := r.Header.Get("Cookie")
		switch {
		case strings.HasSuffix(r.URL.Path, "puzzles.json"):
			_, _ = w.Write([]byte(`{"status":"OK","results":[{"print_date":"2024-07-18","puzzle_id":7}]}`))
		case cookie == "nyt-s=ella;":
			http.Error(w, "nope", http.StatusUnauthorized)
		default:
			_, _ = w.Write([]byte(`{"calcs":{"secondsSpentSolving":33,"solved":true}}`))
		}
	}))
	t.Cleanup(srv.Close)

	c, err := New(nyt.NewClient(srv.URL, 5*time.Second), players, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	run, err := c.Run(context.Background(), model.RunConfig{From: date(t, "2024-07-18"), To: date(t, "2024-07-18"), Concurrency: 2})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	day := run.Timeline.Days[0]
	if !day.Records["Ben"].Solved || day.Records["Ella"].Solved || day.Winner != "Ben" {
		t.Fatalf("unexpected day: %+v", day)
	}
}
