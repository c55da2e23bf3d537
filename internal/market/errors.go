package market

import "errors"

var (
	// ErrMalformedRecord is returned when a market-data log line is missing a
	// required field or cannot be decoded.
	ErrMalformedRecord = errors.New("malformed market record")
	// ErrInvalidTimestamp is returned for timestamps that are not ISO-8601.
	ErrInvalidTimestamp = errors.New("invalid timestamp")
	// ErrInvalidWindow is returned when a window ends before it starts.
	ErrInvalidWindow = errors.New("invalid time window")
)
