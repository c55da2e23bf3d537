package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	want := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		in      string
		want    time.Time
		wantErr bool
	}{
		{name: "rfc3339 zulu", in: "2025-03-14T09:30:00Z", want: want},
		{name: "numeric offset", in: "2025-03-14T09:30:00+00:00", want: want},
		{name: "other offset", in: "2025-03-14T11:30:00+02:00", want: want},
		{name: "nanos", in: "2025-03-14T09:30:00.5Z", want: want.Add(500 * time.Millisecond)},
		{name: "space separator", in: "2025-03-14 09:30:00+00:00", want: want},
		{name: "naive is utc", in: "2025-03-14T09:30:00", want: want},
		{name: "whitespace", in: "  2025-03-14T09:30:00Z ", want: want},
		{name: "empty", in: "", wantErr: true},
		{name: "garbage", in: "yesterday", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseTimestamp(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidTimestamp)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s want %s", got, tt.want)
		})
	}
}

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	assert.Equal(t, "2025-03-14T09:30:00Z", FormatTimestamp(ts))
	assert.Equal(t, "2025-03-14T09:30:00.25Z", FormatTimestamp(ts.Add(250*time.Millisecond)))
}

func TestCheckWindow(t *testing.T) {
	start := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

	assert.NoError(t, CheckWindow(start, start))
	assert.NoError(t, CheckWindow(start, start.Add(time.Hour)))

	err := CheckWindow(start, start.Add(-time.Minute))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidWindow)
}

func TestBarPriceMap(t *testing.T) {
	b := Bar{Symbol: "SPY", Price: 512.5}
	assert.Equal(t, Prices{"SPY": 512.5}, b.PriceMap())
}
