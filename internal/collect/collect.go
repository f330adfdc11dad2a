// Package collect fetches every player's results for a date range and runs
// them through the reconciliation engine.
package collect

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/minirace/internal/model"
	"github.com/verte-zerg/minirace/internal/nyt"
	"github.com/verte-zerg/minirace/internal/stats"
)

// Source supplies puzzle listings and per-player results.
type Source interface {
	ListPuzzles(ctx context.Context, token string, start, end time.Time) ([]model.Puzzle, error)
	Result(ctx context.Context, token string, puzzleID int64) (*model.RawRecord, error)
}

// Collector runs stats for a fixed set of players.
type Collector struct {
	src     Source
	players []model.Player
	engine  *stats.Engine
	log     *zap.Logger
}

// New returns a Collector. The first player's token is used to list puzzles.
func New(src Source, players []model.Player, log *zap.Logger) (*Collector, error) {
	names := make([]string, len(players))
	for i, p := range players {
		names[i] = p.Name
	}
	engine, err := stats.NewEngine(names)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Collector{
		src:     src,
		players: append([]model.Player(nil), players...),
		engine:  engine,
		log:     log,
	}, nil
}

// Engine returns the reconciliation engine for the configured players.
func (c *Collector) Engine() *stats.Engine {
	return c.engine
}

// Run fetches all results for cfg's range, then reconciles them. Every
// fetch completes before reconciliation starts.
func (c *Collector) Run(ctx context.Context, cfg model.RunConfig) (model.Run, error) {
	from, to := model.Day(cfg.From), model.Day(cfg.To)
	if to.Before(from) {
		return model.Run{}, fmt.Errorf("range end %s is before start %s", model.FormatDate(to), model.FormatDate(from))
	}
	puzzles, err := c.src.ListPuzzles(ctx, c.players[0].Token, from, to)
	if err != nil {
		return model.Run{}, fmt.Errorf("failed to list puzzles: %w", err)
	}
	c.log.Info("listed puzzles",
		zap.String("from", model.FormatDate(from)),
		zap.String("to", model.FormatDate(to)),
		zap.Int("count", len(puzzles)))

	raw, err := c.fetchAll(ctx, puzzles, cfg.Concurrency)
	if err != nil {
		return model.Run{}, err
	}

	rows := make([]model.DayRow, 0, len(puzzles))
	for i, pz := range puzzles {
		row, err := c.merge(pz.Date, raw[i], cfg.SkipInvalid)
		if err != nil {
			return model.Run{}, err
		}
		rows = append(rows, c.engine.Resolve(row))
	}
	tl, err := c.engine.BuildTimeline(rows)
	if err != nil {
		return model.Run{}, err
	}
	return model.Run{
		From:      from,
		To:        to,
		Timeline:  tl,
		Summaries: c.engine.SummarizeAll(tl),
	}, nil
}

// fetchAll returns one map per puzzle, indexed like puzzles. Players whose
// result could not be read are absent from the map.
func (c *Collector) fetchAll(ctx context.Context, puzzles []model.Puzzle, concurrency int) ([]map[string]*model.RawRecord, error) {
	if concurrency < 1 {
		concurrency = 1
	}
	slots := make([][]*model.RawRecord, len(puzzles))
	for i := range slots {
		slots[i] = make([]*model.RawRecord, len(c.players))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, pz := range puzzles {
		for j, player := range c.players {
			g.Go(func() error {
				rec, err := c.src.Result(gctx, player.Token, pz.PuzzleID)
				if err != nil {
					var statusErr *nyt.StatusError
					if errors.As(err, &statusErr) {
						c.log.Warn("no result",
							zap.String("player", player.Name),
							zap.String("date", model.FormatDate(pz.Date)),
							zap.Int("status", statusErr.StatusCode))
						return nil
					}
					return fmt.Errorf("failed to fetch %s for %s: %w", model.FormatDate(pz.Date), player.Name, err)
				}
				slots[i][j] = rec
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]map[string]*model.RawRecord, len(puzzles))
	for i := range puzzles {
		m := make(map[string]*model.RawRecord, len(c.players))
		for j, player := range c.players {
			if slots[i][j] != nil {
				m[player.Name] = slots[i][j]
			}
		}
		out[i] = m
	}
	return out, nil
}

func (c *Collector) merge(date time.Time, raw map[string]*model.RawRecord, skipInvalid bool) (model.DayRow, error) {
	for {
		row, err := c.engine.Merge(date, raw)
		if err == nil {
			return row, nil
		}
		var invalid *stats.InvalidRecordError
		if !skipInvalid || !errors.As(err, &invalid) {
			return model.DayRow{}, err
		}
		c.log.Warn("treating invalid record as missing",
			zap.String("player", invalid.Player),
			zap.String("date", model.FormatDate(date)),
			zap.String("value", invalid.Value),
			zap.String("reason", invalid.Reason))
		delete(raw, invalid.Player)
	}
}
