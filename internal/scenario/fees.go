package scenario

import (
	"math"

	"github.com/rustyeddy/backtester/internal/strategies"
)

// FeeEstimate is the trading cost implied by a ledger under Fees. It is
// reported next to the run and never deducted from equity.
type FeeEstimate struct {
	Commission float64 `json:"commission"`
	Slippage   float64 `json:"slippage"`
	Total      float64 `json:"total"`
}

// Estimate charges commission per unit traded and slippage in basis points
// of traded notional.
func (f Fees) Estimate(trades []strategies.Trade) FeeEstimate {
	var units, notional float64
	for _, t := range trades {
		units += math.Abs(t.Qty)
		notional += t.Notional()
	}

	e := FeeEstimate{
		Commission: f.CommissionPerContract * units,
		Slippage:   f.SlippageBps / 10_000 * notional,
	}
	e.Total = e.Commission + e.Slippage
	return e
}
