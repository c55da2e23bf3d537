package journal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/backtester/internal/backtest"
	"github.com/rustyeddy/backtester/internal/scenario"
	"github.com/rustyeddy/backtester/internal/strategies"
)

var t0 = time.Date(2025, 1, 2, 14, 30, 0, 0, time.UTC)

// sampleResult is a small hand built run.
func sampleResult() *backtest.Result {
	return &backtest.Result{
		ScenarioID: "unit",
		Start:      t0,
		End:        t0.Add(5 * time.Minute),
		EquityCurve: []backtest.EquityPoint{
			{Time: t0, Equity: 0, MaxDrawdown: 0},
			{Time: t0.Add(5 * time.Minute), Equity: 12.5, MaxDrawdown: 0},
		},
		Trades: []strategies.Trade{
			{Time: t0, Symbol: "SPY", Qty: -2.5, Price: 100, StrategyID: "vol_1"},
			{Time: t0.Add(5 * time.Minute), Symbol: "SPY", Qty: 0.1, Price: 105, StrategyID: "vol_1"},
		},
		Positions: []strategies.Position{
			{StrategyID: "vol_1", Symbol: "SPY", Qty: -2.4, AvgPrice: 100},
		},
		Summary: backtest.Summary{
			ScenarioID:  "unit",
			Start:       "2025-01-02T14:30:00Z",
			End:         "2025-01-02T14:35:00Z",
			FinalEquity: 12.5,
			MaxDrawdown: 0,
			NumTrades:   2,
			NumPoints:   2,
		},
	}
}

// defaultRun runs the sample scenario end to end.
func defaultRun(t *testing.T) (*scenario.Scenario, *backtest.Result) {
	t.Helper()

	sc := scenario.Default()
	cfg, err := sc.Backtest()
	require.NoError(t, err)

	eng, err := backtest.NewEngine(cfg)
	require.NoError(t, err)

	res, err := eng.Run(context.Background())
	require.NoError(t, err)
	return sc, res
}
