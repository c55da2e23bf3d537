package backtest

import (
	"fmt"
	"io"
	"time"

	"github.com/rustyeddy/backtester/internal/market"
	"github.com/rustyeddy/backtester/internal/strategies"
)

// EquityPoint is the portfolio value after one bar.
type EquityPoint struct {
	Time        time.Time `json:"ts"`
	Equity      float64   `json:"equity"`
	MaxDrawdown float64   `json:"max_drawdown"`
}

// Summary is the flat, serializable digest of a run.
type Summary struct {
	ScenarioID  string  `json:"scenario_id"`
	Start       string  `json:"start_ts"`
	End         string  `json:"end_ts"`
	FinalEquity float64 `json:"final_equity"`
	MaxDrawdown float64 `json:"max_drawdown"`
	NumTrades   int     `json:"num_trades"`
	NumPoints   int     `json:"num_points"`
}

// Result is owned by the caller once Run returns. Trades are grouped by
// strategy in configuration order, chronological within a strategy.
// Positions are the strategies' open positions at the end of the run.
type Result struct {
	ScenarioID  string
	Start       time.Time
	End         time.Time
	EquityCurve []EquityPoint
	Trades      []strategies.Trade
	Positions   []strategies.Position
	Summary     Summary
}

// DrawdownFloor keeps the drawdown denominator away from zero.
const DrawdownFloor = 1e-9

// accumulator tracks equity, peak and drawdown across bars.
type accumulator struct {
	curve       []EquityPoint
	equity      float64
	peak        float64
	maxDrawdown float64
	last        time.Time
	seen        bool
}

func (a *accumulator) add(ts time.Time, equity float64) {
	a.equity = equity
	a.peak = max(a.peak, equity)

	dd := 0.0
	if a.peak != 0 {
		dd = (a.peak - equity) / max(a.peak, DrawdownFloor)
	}
	a.maxDrawdown = max(a.maxDrawdown, dd)

	a.curve = append(a.curve, EquityPoint{Time: ts, Equity: equity, MaxDrawdown: a.maxDrawdown})
	a.last = ts
	a.seen = true
}

func (a *accumulator) result(cfg Config, strats []strategies.Strategy) *Result {
	trades := []strategies.Trade{}
	positions := []strategies.Position{}
	for _, s := range strats {
		trades = append(trades, s.Trades()...)
		positions = append(positions, s.Positions()...)
	}

	end := cfg.End
	if a.seen {
		end = a.last
	}

	curve := a.curve
	if curve == nil {
		curve = []EquityPoint{}
	}

	return &Result{
		ScenarioID:  cfg.ScenarioID,
		Start:       cfg.Start,
		End:         end,
		EquityCurve: curve,
		Trades:      trades,
		Positions:   positions,
		Summary: Summary{
			ScenarioID:  cfg.ScenarioID,
			Start:       market.FormatTimestamp(cfg.Start),
			End:         market.FormatTimestamp(end),
			FinalEquity: a.equity,
			MaxDrawdown: a.maxDrawdown,
			NumTrades:   len(trades),
			NumPoints:   len(curve),
		},
	}
}

// PrintSummary writes a human readable report of r to w.
func PrintSummary(w io.Writer, r *Result) {
	s := r.Summary

	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, " Backtest Result")
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintf(w, "Scenario:      %s\n", s.ScenarioID)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Period")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Start:         %s\n", s.Start)
	fmt.Fprintf(w, "End:           %s\n", s.End)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Performance")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Final Equity:  %.6f\n", s.FinalEquity)
	fmt.Fprintf(w, "Max Drawdown:  %.2f%%\n", s.MaxDrawdown*100)
	fmt.Fprintf(w, "Trades:        %d\n", s.NumTrades)
	fmt.Fprintf(w, "Points:        %d\n", s.NumPoints)

	if len(r.Positions) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Open Positions")
		fmt.Fprintln(w, "--------------------------------------------------")
		for _, p := range r.Positions {
			fmt.Fprintf(w, "- %-12s %-10s qty=%.6f avg=%.6f\n", p.StrategyID, p.Symbol, p.Qty, p.AvgPrice)
		}
	}

	fmt.Fprintln(w)
}
