// Package store exports completed runs to a SQLite file.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/minirace/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps a SQLite export file.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// RunInfo describes one exported run.
type RunInfo struct {
	ID        int64
	CreatedAt time.Time
	From      time.Time
	To        time.Time
	Players   []string
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db, now: time.Now}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY,
			created_at TEXT NOT NULL,
			from_date TEXT NOT NULL,
			to_date TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS days (
			run_id INTEGER NOT NULL,
			date TEXT NOT NULL,
			winner TEXT,
			PRIMARY KEY (run_id, date)
		);`,
		`CREATE TABLE IF NOT EXISTS records (
			run_id INTEGER NOT NULL,
			date TEXT NOT NULL,
			player TEXT NOT NULL,
			solved INTEGER NOT NULL,
			seconds INTEGER NOT NULL,
			cumulative_wins INTEGER NOT NULL,
			PRIMARY KEY (run_id, date, player)
		);`,
		`CREATE TABLE IF NOT EXISTS summaries (
			run_id INTEGER NOT NULL,
			position INTEGER NOT NULL,
			player TEXT NOT NULL,
			wins INTEGER NOT NULL,
			solved INTEGER NOT NULL,
			unsolved INTEGER NOT NULL,
			total_seconds INTEGER NOT NULL,
			average_seconds INTEGER,
			fastest_seconds INTEGER,
			slowest_seconds INTEGER,
			PRIMARY KEY (run_id, player)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_records_player ON records(player);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveRun stores a run with its days, records and summaries in one
// transaction and returns the new run id.
func (s *Store) SaveRun(ctx context.Context, run model.Run) (id int64, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (created_at, from_date, to_date) VALUES (?, ?, ?)`,
		s.now().UTC().Format(time.RFC3339Nano),
		model.FormatDate(run.From),
		model.FormatDate(run.To),
	)
	if err != nil {
		return 0, err
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, day := range run.Timeline.Days {
		date := model.FormatDate(day.Date)
		var winner sql.NullString
		if day.HasWinner() {
			winner = sql.NullString{String: day.Winner, Valid: true}
		}
		if _, err = tx.ExecContext(ctx, `INSERT INTO days (run_id, date, winner) VALUES (?, ?, ?)`, id, date, winner); err != nil {
			return 0, fmt.Errorf("failed to save day %s: %w", date, err)
		}
		for _, p := range run.Timeline.Players {
			rec := day.Records[p]
			if _, err = tx.ExecContext(ctx,
				`INSERT INTO records (run_id, date, player, solved, seconds, cumulative_wins) VALUES (?, ?, ?, ?, ?, ?)`,
				id, date, p, rec.Solved, rec.Seconds, day.CumulativeWins[p],
			); err != nil {
				return 0, fmt.Errorf("failed to save record %s/%s: %w", date, p, err)
			}
		}
	}

	for i, sum := range run.Summaries {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO summaries (run_id, position, player, wins, solved, unsolved, total_seconds, average_seconds, fastest_seconds, slowest_seconds)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, i, sum.Player, sum.TotalWins, sum.TotalSolved, sum.TotalUnsolved, sum.TotalTimeSolved,
			nullInt(sum.AverageTimeSolved), nullInt(sum.FastestSolve), nullInt(sum.SlowestSolve),
		); err != nil {
			return 0, fmt.Errorf("failed to save summary for %s: %w", sum.Player, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// ListRuns returns every exported run, oldest first.
func (s *Store) ListRuns(ctx context.Context) ([]RunInfo, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, created_at, from_date, to_date FROM runs ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var runs []RunInfo
	for rows.Next() {
		var info RunInfo
		var createdAt, from, to string
		if err := rows.Scan(&info.ID, &createdAt, &from, &to); err != nil {
			return nil, err
		}
		if info.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, err
		}
		if info.From, err = model.ParseDate(from); err != nil {
			return nil, err
		}
		if info.To, err = model.ParseDate(to); err != nil {
			return nil, err
		}
		runs = append(runs, info)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range runs {
		players, err := s.runPlayers(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Players = players
	}
	return runs, nil
}

func (s *Store) runPlayers(ctx context.Context, runID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT player FROM summaries WHERE run_id = ? ORDER BY position ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var players []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// ListDays rebuilds the day rows of an exported run in date order.
func (s *Store) ListDays(ctx context.Context, runID int64) ([]model.DayRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT d.date, d.winner, r.player, r.solved, r.seconds, r.cumulative_wins
		 FROM days d
		 JOIN records r ON r.run_id = d.run_id AND r.date = d.date
		 WHERE d.run_id = ?
		 ORDER BY d.date ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var days []model.DayRow
	for rows.Next() {
		var date, player string
		var winner sql.NullString
		var rec model.PlayerRecord
		var wins int
		if err := rows.Scan(&date, &winner, &player, &rec.Solved, &rec.Seconds, &wins); err != nil {
			return nil, err
		}
		d, err := model.ParseDate(date)
		if err != nil {
			return nil, err
		}
		if n := len(days); n == 0 || !days[n-1].Date.Equal(d) {
			days = append(days, model.DayRow{
				Date:           d,
				Records:        map[string]model.PlayerRecord{},
				Winner:         winner.String,
				CumulativeWins: map[string]int{},
			})
		}
		row := &days[len(days)-1]
		rec.Player, rec.Date = player, d
		row.Records[player] = rec
		row.CumulativeWins[player] = wins
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return days, nil
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
