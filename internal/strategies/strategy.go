package strategies

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"github.com/rustyeddy/backtester/internal/market"
)

var (
	// ErrUnknownStrategyKind is returned by New for kinds outside uw, gamma and vol.
	ErrUnknownStrategyKind = errors.New("unknown strategy kind")
	// ErrInvalidParam is returned when a strategy parameter is not numeric.
	ErrInvalidParam = errors.New("invalid strategy parameter")
)

// Kind names a strategy variant.
type Kind string

const (
	KindUW    Kind = "uw"
	KindGamma Kind = "gamma"
	KindVol   Kind = "vol"
)

// Kinds lists every supported variant.
var Kinds = []Kind{KindUW, KindGamma, KindVol}

// Spec describes one strategy entry of a scenario.
type Spec struct {
	ID     string         `json:"strategy_id" yaml:"strategy_id" validate:"required"`
	Kind   string         `json:"kind" yaml:"kind" validate:"required"`
	Params map[string]any `json:"params" yaml:"params"`
}

// Strategy holds per-symbol positions and a trade ledger, and reacts to one
// bar at a time. The set of implementations is closed: UW, Gamma and Vol.
type Strategy interface {
	ID() string
	Kind() Kind

	// OnBar sizes a trade for b.Symbol and books it when it clears the dust
	// threshold.
	OnBar(b market.Bar)

	MarkToMarket(prices market.Prices) float64
	Trades() []Trade
	Positions() []Position

	quantity(b market.Bar) float64
}

// ParseKind normalizes a kind string.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case KindUW, KindGamma, KindVol:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q (supported: uw, gamma, vol)", ErrUnknownStrategyKind, s)
	}
}

// New builds the variant named by spec.Kind, reading its parameters with
// their documented defaults.
func New(spec Spec) (Strategy, error) {
	kind, err := ParseKind(spec.Kind)
	if err != nil {
		return nil, err
	}

	p := params{m: spec.Params}
	var s Strategy
	switch kind {
	case KindUW:
		s = &UW{
			book:             newBook(spec.ID),
			TrendSensitivity: p.float("trend_sensitivity", DefaultTrendSensitivity),
		}
	case KindGamma:
		s = &Gamma{
			book:       newBook(spec.ID),
			GammaScale: p.float("gamma_scale", DefaultGammaScale),
			RefPrice:   p.float("ref_price", DefaultRefPrice),
		}
	case KindVol:
		s = &Vol{
			book:        newBook(spec.ID),
			VolTarget:   p.float("vol_target", DefaultVolTarget),
			VolLeverage: p.float("vol_leverage", DefaultVolLeverage),
		}
	}
	if p.err != nil {
		return nil, p.err
	}
	return s, nil
}

// NewAll builds one strategy per spec, in order.
func NewAll(specs []Spec) ([]Strategy, error) {
	out := make([]Strategy, 0, len(specs))
	for _, spec := range specs {
		s, err := New(spec)
		if err != nil {
			return nil, fmt.Errorf("strategy %q: %w", spec.ID, err)
		}
		out = append(out, s)
	}
	return out, nil
}

// params reads numeric values out of a loosely typed mapping and keeps the
// first conversion error.
type params struct {
	m   map[string]any
	err error
}

func (p *params) float(key string, def float64) float64 {
	v, ok := p.m[key]
	if !ok || v == nil {
		return def
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		if p.err == nil {
			p.err = fmt.Errorf("%w: %s=%v", ErrInvalidParam, key, v)
		}
		return def
	}
	return f
}
