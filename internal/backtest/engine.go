// Package backtest replays a market feed through a set of strategies and
// folds the result into an equity curve, a trade ledger and a summary.
package backtest

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/backtester/internal/feed"
	"github.com/rustyeddy/backtester/internal/market"
	"github.com/rustyeddy/backtester/internal/strategies"
)

// Config is everything a run needs: the universe and inclusive window, the
// strategies in dispatch order, and an optional market log.
type Config struct {
	ScenarioID string
	Symbols    []string
	Start      time.Time
	End        time.Time
	Strategies []strategies.Spec
	LogPath    string
}

// Engine runs one deterministic pass per call to Run. It holds no state
// between runs: strategies are built fresh each time.
type Engine struct {
	cfg  Config
	open func() (feed.Feed, error)
	log  *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithFeed replaces the market data source with open, which must return a
// fresh feed on every call.
func WithFeed(open func() (feed.Feed, error)) Option {
	return func(e *Engine) {
		if open != nil {
			e.open = open
		}
	}
}

// NewEngine validates cfg and returns an Engine. Bad windows and unknown
// strategy kinds are rejected here, before any bar is read.
func NewEngine(cfg Config, opts ...Option) (*Engine, error) {
	if _, err := strategies.NewAll(cfg.Strategies); err != nil {
		return nil, err
	}

	e := &Engine{cfg: cfg, log: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}

	if e.open == nil {
		src, err := feed.NewSource(cfg.Symbols, cfg.Start, cfg.End, cfg.LogPath,
			feed.WithLogger(e.log.Named("feed")))
		if err != nil {
			return nil, err
		}
		e.open = src.Open
	} else if err := market.CheckWindow(cfg.Start, cfg.End); err != nil {
		return nil, err
	}
	return e, nil
}

// Run replays the feed once:
//  1. dispatch the bar to every strategy, in configuration order
//  2. value all strategies against the bar's single-symbol price map
//  3. update peak equity and running max drawdown, append an equity point
//
// Any feed error aborts the run and no Result is returned. ctx is checked
// between bars.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	strats, err := strategies.NewAll(e.cfg.Strategies)
	if err != nil {
		return nil, err
	}

	f, err := e.open()
	if err != nil {
		return nil, fmt.Errorf("backtest: open feed: %w", err)
	}
	defer f.Close()

	e.log.Info("backtest started",
		zap.String("scenario_id", e.cfg.ScenarioID),
		zap.Int("strategies", len(strats)),
		zap.Time("start", e.cfg.Start),
		zap.Time("end", e.cfg.End),
	)

	var acc accumulator
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		b, ok, err := f.Next()
		if err != nil {
			return nil, fmt.Errorf("backtest: feed: %w", err)
		}
		if !ok {
			break
		}

		for _, s := range strats {
			s.OnBar(b)
		}

		prices := b.PriceMap()
		equity := 0.0
		for _, s := range strats {
			equity += s.MarkToMarket(prices)
		}
		acc.add(b.Time, equity)
	}

	r := acc.result(e.cfg, strats)

	e.log.Info("backtest finished",
		zap.String("scenario_id", r.ScenarioID),
		zap.Int("points", r.Summary.NumPoints),
		zap.Int("trades", r.Summary.NumTrades),
		zap.Float64("final_equity", r.Summary.FinalEquity),
		zap.Float64("max_drawdown", r.Summary.MaxDrawdown),
	)
	return r, nil
}
