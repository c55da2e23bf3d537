package market

import "time"

// Bar is a single observation for one symbol: price, traded volume and an
// implied volatility reading taken at Time.
type Bar struct {
	Time   time.Time `json:"ts"`
	Symbol string    `json:"symbol"`
	Price  float64   `json:"price"`
	Volume float64   `json:"volume"`
	IV     float64   `json:"iv"`
}

// Prices maps a symbol to its current price.
type Prices map[string]float64

// PriceMap returns the single-symbol price map used to value positions
// after this bar has been dispatched.
func (b Bar) PriceMap() Prices {
	return Prices{b.Symbol: b.Price}
}
