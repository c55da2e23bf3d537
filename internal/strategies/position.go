package strategies

import (
	"math"
	"slices"
	"time"

	"github.com/rustyeddy/backtester/internal/market"
)

// DustNotional is the smallest |qty*price| a strategy will trade.
const DustNotional = 1e-6

// Position is a strategy's net signed holding in one symbol. AvgPrice is the
// volume-weighted entry price and only has meaning while Qty != 0.
type Position struct {
	StrategyID string  `json:"strategy_id"`
	Symbol     string  `json:"symbol"`
	Qty        float64 `json:"qty"`
	AvgPrice   float64 `json:"avg_price"`
}

// Trade records one change to a position. Trades are append-only.
type Trade struct {
	Time       time.Time `json:"ts"`
	Symbol     string    `json:"symbol"`
	Qty        float64   `json:"qty"`
	Price      float64   `json:"price"`
	StrategyID string    `json:"strategy_id"`
}

// Notional is |qty*price|.
func (t Trade) Notional() float64 {
	return math.Abs(t.Qty * t.Price)
}

func clearsDust(qty, price float64) bool {
	return math.Abs(qty*price) >= DustNotional
}

// book owns a strategy's positions and trade ledger. Positions are kept in
// insertion order so that valuation sums are reproducible run to run; a
// position that goes flat is dropped and re-enters at the back.
type book struct {
	id        string
	positions map[string]*Position
	order     []string
	trades    []Trade
}

func newBook(id string) book {
	return book{id: id, positions: make(map[string]*Position)}
}

func (b *book) ID() string { return b.id }

// qty returns the current signed quantity held in symbol (0 when flat).
func (b *book) qty(symbol string) float64 {
	if p, ok := b.positions[symbol]; ok {
		return p.Qty
	}
	return 0
}

// fill applies a trade of qty at price unless it is zero, not finite, or
// below the dust notional. It reports whether a trade was booked.
func (b *book) fill(ts time.Time, symbol string, qty, price float64) bool {
	if qty == 0 || math.IsNaN(qty) || math.IsInf(qty, 0) {
		return false
	}
	if !clearsDust(qty, price) {
		return false
	}
	b.apply(ts, symbol, qty, price)
	return true
}

func (b *book) apply(ts time.Time, symbol string, qty, price float64) {
	p, ok := b.positions[symbol]
	if !ok {
		b.positions[symbol] = &Position{StrategyID: b.id, Symbol: symbol, Qty: qty, AvgPrice: price}
		b.order = append(b.order, symbol)
	} else {
		newQty := p.Qty + qty
		if newQty == 0 {
			delete(b.positions, symbol)
			if i := slices.Index(b.order, symbol); i >= 0 {
				b.order = slices.Delete(b.order, i, i+1)
			}
		} else {
			p.AvgPrice = (p.AvgPrice*p.Qty + price*qty) / newQty
			p.Qty = newQty
		}
	}

	b.trades = append(b.trades, Trade{
		Time:       ts,
		Symbol:     symbol,
		Qty:        qty,
		Price:      price,
		StrategyID: b.id,
	})
}

// MarkToMarket returns the unrealized P/L of all open positions. Symbols
// missing from prices are valued at their average price and contribute 0.
func (b *book) MarkToMarket(prices market.Prices) float64 {
	pnl := 0.0
	for _, sym := range b.order {
		p := b.positions[sym]
		px, ok := prices[sym]
		if !ok {
			px = p.AvgPrice
		}
		pnl += p.Qty * (px - p.AvgPrice)
	}
	return pnl
}

// Trades returns a copy of the ledger in booking order.
func (b *book) Trades() []Trade {
	return slices.Clone(b.trades)
}

// Positions returns copies of the open positions in insertion order.
func (b *book) Positions() []Position {
	out := make([]Position, 0, len(b.order))
	for _, sym := range b.order {
		out = append(out, *b.positions[sym])
	}
	return out
}
