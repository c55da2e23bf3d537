package feed

import (
	"time"

	"github.com/rustyeddy/backtester/internal/market"
)

// SyntheticStep is the spacing between generated bars.
const SyntheticStep = 5 * time.Minute

// Synthetic generates one bar per symbol every SyntheticStep from start to
// end inclusive. For the symbol at index i:
//
//	price  = (100 + i) * (1 + 0.01 * hours since start)
//	volume = 1000
//	iv     = 0.2 + 0.01 * (i mod 5)
type Synthetic struct {
	symbols []string
	start   time.Time
	end     time.Time

	ts  time.Time
	idx int
}

func NewSynthetic(symbols []string, start, end time.Time) *Synthetic {
	return &Synthetic{
		symbols: symbols,
		start:   start,
		end:     end,
		ts:      start,
	}
}

func (s *Synthetic) Next() (market.Bar, bool, error) {
	if len(s.symbols) == 0 || s.ts.After(s.end) {
		return market.Bar{}, false, nil
	}

	i := s.idx
	base := 100.0 + float64(i)
	hours := s.ts.Sub(s.start).Seconds() / 3600.0
	b := market.Bar{
		Time:   s.ts,
		Symbol: s.symbols[i],
		Price:  base * (1.0 + 0.01*hours),
		Volume: 1000.0,
		IV:     0.2 + 0.01*float64(i%5),
	}

	s.idx++
	if s.idx == len(s.symbols) {
		s.idx = 0
		s.ts = s.ts.Add(SyntheticStep)
	}
	return b, true, nil
}

func (s *Synthetic) Close() error { return nil }
