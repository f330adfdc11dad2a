// Package nyt reads mini crossword listings and per-player results from
// the puzzle service.
package nyt

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/verte-zerg/minirace/internal/model"
)

const (
	listPath   = "/svc/crosswords/v3/36569100/puzzles.json"
	resultPath = "/svc/crosswords/v6/game/%d.json"
	statusOK   = "OK"
)

// StatusError reports a non-200 response.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status from %s: %s", e.URL, e.Status)
}

// Client talks to the puzzle service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient returns a Client for baseURL, e.g. "https://www.nytimes.com".
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type listResponse struct {
	Status  string `json:"status"`
	Results []struct {
		PrintDate string `json:"print_date"`
		PuzzleID  int64  `json:"puzzle_id"`
	} `json:"results"`
}

type gameResponse struct {
	Calcs *model.RawRecord `json:"calcs"`
}

// ListPuzzles returns the minis published between start and end inclusive.
func (c *Client) ListPuzzles(ctx context.Context, token string, start, end time.Time) ([]model.Puzzle, error) {
	q := url.Values{}
	q.Set("publish_type", "mini")
	q.Set("date_start", model.FormatDate(start))
	q.Set("date_end", model.FormatDate(end))
	endpoint := c.baseURL + listPath + "?" + q.Encode()

	var payload listResponse
	if err := c.getJSON(ctx, endpoint, token, &payload); err != nil {
		return nil, err
	}
	if payload.Status != statusOK {
		return nil, fmt.Errorf("puzzle list status %q", payload.Status)
	}
	puzzles := make([]model.Puzzle, 0, len(payload.Results))
	for _, r := range payload.Results {
		date, err := model.ParseDate(r.PrintDate)
		if err != nil {
			return nil, fmt.Errorf("invalid print_date %q: %w", r.PrintDate, err)
		}
		puzzles = append(puzzles, model.Puzzle{Date: date, PuzzleID: r.PuzzleID})
	}
	return puzzles, nil
}

// Result returns a player's completion record for a puzzle. A response
// without calcs yields a nil record.
func (c *Client) Result(ctx context.Context, token string, puzzleID int64) (*model.RawRecord, error) {
	endpoint := c.baseURL + fmt.Sprintf(resultPath, puzzleID)
	var payload gameResponse
	if err := c.getJSON(ctx, endpoint, token, &payload); err != nil {
		return nil, err
	}
	return payload.Calcs, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint, token string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Cookie", fmt.Sprintf("nyt-s=%s;", token))
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &StatusError{URL: redact(endpoint), StatusCode: resp.StatusCode, Status: resp.Status}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func redact(endpoint string) string {
	if i := strings.IndexByte(endpoint, '?'); i >= 0 {
		return endpoint[:i]
	}
	return endpoint
}
