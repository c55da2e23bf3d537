package feed

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/backtester/internal/market"
)

var t0 = time.Date(2025, 1, 2, 14, 30, 0, 0, time.UTC)

func writeLog(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bars.ndjson")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

func drain(t *testing.T, f Feed) ([]market.Bar, error) {
	t.Helper()
	defer f.Close()

	var out []market.Bar
	for {
		b, ok, err := f.Next()
		if err != nil {
			return out, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, b)
	}
}

func TestNewSourceRejectsInvertedWindow(t *testing.T) {
	t.Parallel()

	_, err := NewSource([]string{"SPY"}, t0, t0.Add(-time.Minute), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, market.ErrInvalidWindow)
}

func TestSyntheticOneHourTwoSymbols(t *testing.T) {
	t.Parallel()

	src, err := NewSource([]string{"AAA", "BBB"}, t0, t0.Add(time.Hour), "")
	require.NoError(t, err)

	f, err := src.Open()
	require.NoError(t, err)
	bars, err := drain(t, f)
	require.NoError(t, err)

	require.Len(t, bars, 26)

	// first step
	assert.Equal(t, market.Bar{Time: t0, Symbol: "AAA", Price: 100, Volume: 1000, IV: 0.2}, bars[0])
	assert.Equal(t, "BBB", bars[1].Symbol)
	assert.Equal(t, 101.0, bars[1].Price)
	assert.InDelta(t, 0.21, bars[1].IV, 1e-12)

	// last step is exactly one hour in: +1%
	last := bars[len(bars)-1]
	assert.True(t, t0.Add(time.Hour).Equal(last.Time))
	assert.Equal(t, "BBB", last.Symbol)
	assert.InDelta(t, 101*1.01, last.Price, 1e-9)

	for i := 1; i < len(bars); i++ {
		assert.False(t, bars[i].Time.Before(bars[i-1].Time), "bars must be time ordered")
	}
}

func TestSyntheticIVCyclesEveryFiveSymbols(t *testing.T) {
	t.Parallel()

	syms := []string{"A", "B", "C", "D", "E", "F"}
	bars, err := drain(t, NewSynthetic(syms, t0, t0))
	require.NoError(t, err)
	require.Len(t, bars, 6)

	assert.InDelta(t, 0.24, bars[4].IV, 1e-12)
	assert.InDelta(t, 0.2, bars[5].IV, 1e-12)
	assert.Equal(t, 105.0, bars[5].Price)
}

func TestSyntheticSingleInstantWindow(t *testing.T) {
	t.Parallel()

	bars, err := drain(t, NewSynthetic([]string{"X"}, t0, t0.Add(4*time.Minute)))
	require.NoError(t, err)
	assert.Len(t, bars, 1)
}

func TestSyntheticEmptyUniverse(t *testing.T) {
	t.Parallel()

	bars, err := drain(t, NewSynthetic(nil, t0, t0.Add(time.Hour)))
	require.NoError(t, err)
	assert.Empty(t, bars)
}

func TestSourceOpenIsRestartable(t *testing.T) {
	t.Parallel()

	src, err := NewSource([]string{"AAA"}, t0, t0.Add(30*time.Minute), "")
	require.NoError(t, err)

	f1, err := src.Open()
	require.NoError(t, err)
	first, err := drain(t, f1)
	require.NoError(t, err)

	f2, err := src.Open()
	require.NoError(t, err)
	second, err := drain(t, f2)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 7)
}

func TestSourceMissingLogFallsBackToSynthetic(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "nope.ndjson")
	src, err := NewSource([]string{"AAA"}, t0, t0.Add(10*time.Minute), missing)
	require.NoError(t, err)

	f, err := src.Open()
	require.NoError(t, err)
	_, isSynthetic := f.(*Synthetic)
	assert.True(t, isSynthetic)

	bars, err := drain(t, f)
	require.NoError(t, err)
	assert.Len(t, bars, 3)
}

func TestLogFeedReplay(t *testing.T) {
	t.Parallel()

	path := writeLog(t,
		`{"ts":"2025-01-02T14:25:00Z","symbol":"SPY","price":470.0}`,
		`{"ts":"2025-01-02T14:30:00Z","symbol":"SPY","price":471.2,"volume":1200,"iv":0.18}`,
		``,
		`{"ts":"2025-01-02T14:35:00+00:00","symbol":"QQQ","price":"402.5","volume":"n/a"}`,
		`{"ts":"2025-01-02T14:40:00Z","symbol":"SPY","price":471.9,"iv":null}`,
		`{"ts":"2025-01-02T14:45:00Z","symbol":"SPY","price":472.0}`,
	)

	src, err := NewSource(nil, t0, t0.Add(10*time.Minute), path)
	require.NoError(t, err)
	f, err := src.Open()
	require.NoError(t, err)
	_, isLog := f.(*LogFeed)
	require.True(t, isLog)

	bars, err := drain(t, f)
	require.NoError(t, err)
	require.Len(t, bars, 3)

	assert.Equal(t, "SPY", bars[0].Symbol)
	assert.Equal(t, 471.2, bars[0].Price)
	assert.Equal(t, 1200.0, bars[0].Volume)
	assert.Equal(t, 0.18, bars[0].IV)

	assert.Equal(t, "QQQ", bars[1].Symbol)
	assert.Equal(t, 402.5, bars[1].Price)
	assert.Equal(t, 0.0, bars[1].Volume, "unparseable volume defaults to zero")
	assert.Equal(t, 0.0, bars[1].IV)

	assert.True(t, t0.Add(10*time.Minute).Equal(bars[2].Time), "window end is inclusive")
	assert.Equal(t, 0.0, bars[2].IV)
}

func TestLogFeedMalformedRecords(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		line    string
		wantErr error
	}{
		{name: "not json", line: `ts=2025-01-02`, wantErr: market.ErrMalformedRecord},
		{name: "missing ts", line: `{"symbol":"SPY","price":1}`, wantErr: market.ErrMalformedRecord},
		{name: "missing symbol", line: `{"ts":"2025-01-02T14:30:00Z","price":1}`, wantErr: market.ErrMalformedRecord},
		{name: "missing price", line: `{"ts":"2025-01-02T14:30:00Z","symbol":"SPY"}`, wantErr: market.ErrMalformedRecord},
		{name: "bad price", line: `{"ts":"2025-01-02T14:30:00Z","symbol":"SPY","price":"abc"}`, wantErr: market.ErrMalformedRecord},
		{name: "bad ts", line: `{"ts":"soon","symbol":"SPY","price":1}`, wantErr: market.ErrInvalidTimestamp},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := writeLog(t,
				`{"ts":"2025-01-02T14:30:00Z","symbol":"SPY","price":471.2}`,
				tt.line,
				`{"ts":"2025-01-02T14:35:00Z","symbol":"SPY","price":471.5}`,
			)
			f, err := OpenLog(path, t0, t0.Add(time.Hour))
			require.NoError(t, err)

			bars, err := drain(t, f)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, err.Error(), "line 2")
			assert.Len(t, bars, 1, "the pass stops at the first bad record")
		})
	}
}

func TestOpenLogMissingFile(t *testing.T) {
	t.Parallel()

	_, err := OpenLog(filepath.Join(t.TempDir(), "missing"), t0, t0)
	assert.Error(t, err)
}
