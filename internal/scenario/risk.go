package scenario

import (
	"fmt"
	"math"

	"github.com/rustyeddy/backtester/internal/backtest"
	"github.com/rustyeddy/backtester/internal/strategies"
)

// Breach is a risk limit exceeded by a finished run.
type Breach struct {
	Limit     string  `json:"limit"`
	Value     float64 `json:"value"`
	Threshold float64 `json:"threshold"`
}

func (b Breach) String() string {
	return fmt.Sprintf("%s %.6f exceeds %.6f", b.Limit, b.Value, b.Threshold)
}

// GrossNotional is Σ|qty*avg_price| over positions.
func GrossNotional(positions []strategies.Position) float64 {
	total := 0.0
	for _, p := range positions {
		total += math.Abs(p.Qty * p.AvgPrice)
	}
	return total
}

// Check compares a run against the configured limits. It only reports;
// the run itself is never altered.
func (r Risk) Check(res *backtest.Result) []Breach {
	var out []Breach

	if r.MaxDrawdown > 0 && res.Summary.MaxDrawdown > r.MaxDrawdown {
		out = append(out, Breach{Limit: "max_drawdown", Value: res.Summary.MaxDrawdown, Threshold: r.MaxDrawdown})
	}
	if r.MaxGrossNotional > 0 {
		if g := GrossNotional(res.Positions); g > r.MaxGrossNotional {
			out = append(out, Breach{Limit: "max_gross_notional", Value: g, Threshold: r.MaxGrossNotional})
		}
	}
	return out
}
