package strategies

import (
	"github.com/rustyeddy/backtester/internal/market"
)

// Parameter defaults.
const (
	DefaultTrendSensitivity = 0.1

	DefaultGammaScale = 0.05
	DefaultRefPrice   = 100.0

	DefaultVolTarget   = 0.25
	DefaultVolLeverage = 10.0
)

// UWReferencePrice is the level UW measures price deviation from.
const UWReferencePrice = 100.0

// UW rebalances toward a notional proportional to the price's distance from
// UWReferencePrice:
//
//	target = trend_sensitivity * (price - 100)
//	qty    = (target - held*price) / price
type UW struct {
	book
	TrendSensitivity float64
}

func (s *UW) Kind() Kind { return KindUW }

func (s *UW) OnBar(b market.Bar) {
	s.fill(b.Time, b.Symbol, s.quantity(b), b.Price)
}

func (s *UW) quantity(b market.Bar) float64 {
	if b.Price == 0 {
		return 0
	}
	target := s.TrendSensitivity * (b.Price - UWReferencePrice)
	delta := target - s.qty(b.Symbol)*b.Price
	return delta / b.Price
}

// Gamma trades against moves away from RefPrice, scaled up by implied vol:
//
//	qty = -gamma_scale * (price - ref)/ref * (1 + iv)
type Gamma struct {
	book
	GammaScale float64
	RefPrice   float64
}

func (s *Gamma) Kind() Kind { return KindGamma }

func (s *Gamma) OnBar(b market.Bar) {
	s.fill(b.Time, b.Symbol, s.quantity(b), b.Price)
}

func (s *Gamma) quantity(b market.Bar) float64 {
	if s.RefPrice == 0 {
		return 0
	}
	move := (b.Price - s.RefPrice) / s.RefPrice
	return -s.GammaScale * move * (1.0 + b.IV)
}

// Vol takes a directional position on implied vol relative to VolTarget:
//
//	qty = vol_leverage * (iv - vol_target)
type Vol struct {
	book
	VolTarget   float64
	VolLeverage float64
}

func (s *Vol) Kind() Kind { return KindVol }

func (s *Vol) OnBar(b market.Bar) {
	s.fill(b.Time, b.Symbol, s.quantity(b), b.Price)
}

func (s *Vol) quantity(b market.Bar) float64 {
	return s.VolLeverage * (b.IV - s.VolTarget)
}
