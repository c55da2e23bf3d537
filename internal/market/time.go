package market

import (
	"fmt"
	"strings"
	"time"
)

// Zone-less layouts are read as UTC.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseTimestamp accepts RFC3339 / RFC3339Nano (with "Z" or a numeric offset),
// the same with a space separator, or a zone-less date-time taken as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	ts := strings.TrimSpace(s)
	if ts == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidTimestamp)
	}

	if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, strings.Replace(ts, " ", "T", 1)); err == nil {
		return t, nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, ts, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
}

// FormatTimestamp renders t as ISO-8601 with only as much sub-second
// precision as it carries.
func FormatTimestamp(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

// CheckWindow reports ErrInvalidWindow when end is before start.
func CheckWindow(start, end time.Time) error {
	if end.Before(start) {
		return fmt.Errorf("%w: end %s is before start %s", ErrInvalidWindow,
			FormatTimestamp(end), FormatTimestamp(start))
	}
	return nil
}
