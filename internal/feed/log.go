package feed

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/cast"

	"github.com/rustyeddy/backtester/internal/market"
)

const maxLineBytes = 1 << 20

// LogFeed replays a newline-delimited JSON market log:
//
//	{"ts": "2025-01-02T14:30:00Z", "symbol": "SPY", "price": 471.2, "volume": 1200, "iv": 0.18}
//
// ts, symbol and price are required. volume and iv are optional and fall
// back to 0 when absent or not numeric. Blank lines are skipped and records
// outside [start, end] are filtered out; the rest are returned in file order.
// The first bad record ends the pass with an error.
type LogFeed struct {
	f     *os.File
	sc    *bufio.Scanner
	start time.Time
	end   time.Time
	line  int
}

// OpenLog opens path for a single pass.
func OpenLog(path string, start, end time.Time) (*LogFeed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	return &LogFeed{f: f, sc: sc, start: start, end: end}, nil
}

func (l *LogFeed) Close() error {
	if l.f != nil {
		err := l.f.Close()
		l.f = nil
		return err
	}
	return nil
}

func (l *LogFeed) Next() (market.Bar, bool, error) {
	for l.sc.Scan() {
		l.line++
		raw := bytes.TrimSpace(l.sc.Bytes())
		if len(raw) == 0 {
			continue
		}

		b, err := parseRecord(raw)
		if err != nil {
			return market.Bar{}, false, fmt.Errorf("line %d: %w", l.line, err)
		}
		if !inWindow(b.Time, l.start, l.end) {
			continue
		}
		return b, true, nil
	}
	if err := l.sc.Err(); err != nil {
		return market.Bar{}, false, err
	}
	return market.Bar{}, false, nil
}

func parseRecord(raw []byte) (market.Bar, error) {
	var rec map[string]any
	if err := json.Unmarshal(raw, &rec); err != nil {
		return market.Bar{}, fmt.Errorf("%w: %v", market.ErrMalformedRecord, err)
	}

	tsRaw, ok := rec["ts"].(string)
	if !ok {
		return market.Bar{}, fmt.Errorf("%w: missing ts", market.ErrMalformedRecord)
	}
	ts, err := market.ParseTimestamp(tsRaw)
	if err != nil {
		return market.Bar{}, fmt.Errorf("%w: %w", market.ErrMalformedRecord, err)
	}

	symbol, ok := rec["symbol"].(string)
	if !ok || symbol == "" {
		return market.Bar{}, fmt.Errorf("%w: missing symbol", market.ErrMalformedRecord)
	}

	pv, ok := rec["price"]
	if !ok || pv == nil {
		return market.Bar{}, fmt.Errorf("%w: missing price", market.ErrMalformedRecord)
	}
	price, err := cast.ToFloat64E(pv)
	if err != nil {
		return market.Bar{}, fmt.Errorf("%w: price: %v", market.ErrMalformedRecord, err)
	}

	return market.Bar{
		Time:   ts,
		Symbol: symbol,
		Price:  price,
		Volume: optionalFloat(rec["volume"]),
		IV:     optionalFloat(rec["iv"]),
	}, nil
}

func optionalFloat(v any) float64 {
	if v == nil {
		return 0
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0
	}
	return f
}
