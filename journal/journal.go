// Package journal persists finished backtest runs: the per-run artifact
// directory and optional CSV or SQLite journals that accumulate runs.
package journal

import (
	"fmt"
	"time"

	"github.com/rustyeddy/backtester/internal/backtest"
	"github.com/rustyeddy/backtester/internal/market"
)

// RunRecord is one finished run.
type RunRecord struct {
	RunID       string
	ScenarioID  string
	Created     time.Time
	Start       string
	End         string
	FinalEquity float64
	MaxDrawdown float64
	NumTrades   int
	NumPoints   int
}

// TradeRecord is one ledger entry of a run. Seq preserves ledger order.
type TradeRecord struct {
	RunID      string
	Seq        int
	Time       time.Time
	Symbol     string
	Qty        float64
	Price      float64
	StrategyID string
}

// EquitySnapshot is one equity curve point of a run.
type EquitySnapshot struct {
	RunID       string
	Seq         int
	Time        time.Time
	Equity      float64
	MaxDrawdown float64
}

type Journal interface {
	RecordRun(RunRecord) error
	RecordTrade(TradeRecord) error
	RecordEquity(EquitySnapshot) error
	Close() error
}

// Records flattens a result into journal rows.
func Records(runID string, created time.Time, res *backtest.Result) (RunRecord, []TradeRecord, []EquitySnapshot) {
	s := res.Summary
	run := RunRecord{
		RunID:       runID,
		ScenarioID:  s.ScenarioID,
		Created:     created,
		Start:       s.Start,
		End:         s.End,
		FinalEquity: s.FinalEquity,
		MaxDrawdown: s.MaxDrawdown,
		NumTrades:   s.NumTrades,
		NumPoints:   s.NumPoints,
	}

	trades := make([]TradeRecord, 0, len(res.Trades))
	for i, t := range res.Trades {
		trades = append(trades, TradeRecord{
			RunID:      runID,
			Seq:        i,
			Time:       t.Time,
			Symbol:     t.Symbol,
			Qty:        t.Qty,
			Price:      t.Price,
			StrategyID: t.StrategyID,
		})
	}

	equity := make([]EquitySnapshot, 0, len(res.EquityCurve))
	for i, p := range res.EquityCurve {
		equity = append(equity, EquitySnapshot{
			RunID:       runID,
			Seq:         i,
			Time:        p.Time,
			Equity:      p.Equity,
			MaxDrawdown: p.MaxDrawdown,
		})
	}
	return run, trades, equity
}

// Record writes a whole run to j.
func Record(j Journal, runID string, created time.Time, res *backtest.Result) error {
	run, trades, equity := Records(runID, created, res)

	if err := j.RecordRun(run); err != nil {
		return fmt.Errorf("record run %s: %w", runID, err)
	}
	for _, t := range trades {
		if err := j.RecordTrade(t); err != nil {
			return fmt.Errorf("record trade %d: %w", t.Seq, err)
		}
	}
	for _, e := range equity {
		if err := j.RecordEquity(e); err != nil {
			return fmt.Errorf("record equity %d: %w", e.Seq, err)
		}
	}
	return nil
}

func ts(t time.Time) string {
	return market.FormatTimestamp(t)
}
