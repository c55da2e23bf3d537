// Package feed produces the time-ordered market observations a backtest
// replays: either from a newline-delimited JSON log or, when no log is
// available, from a deterministic synthetic generator.
package feed

import (
	"errors"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/backtester/internal/market"
)

// Feed yields bars one at a time. Implementations are deterministic and
// return (ok=false, err=nil) once exhausted.
type Feed interface {
	Next() (b market.Bar, ok bool, err error)
	Close() error
}

// Source describes a symbol universe over an inclusive [Start, End] window,
// optionally backed by a market-data log. Every call to Open starts a fresh
// pass over the same observations.
type Source struct {
	Symbols []string
	Start   time.Time
	End     time.Time
	LogPath string

	log *zap.Logger
}

// Option configures a Source.
type Option func(*Source)

// WithLogger sets the logger used to report which backing the Source picked.
func WithLogger(l *zap.Logger) Option {
	return func(s *Source) {
		if l != nil {
			s.log = l
		}
	}
}

// NewSource validates the window and returns a Source. An empty logPath
// selects the synthetic generator.
func NewSource(symbols []string, start, end time.Time, logPath string, opts ...Option) (*Source, error) {
	if err := market.CheckWindow(start, end); err != nil {
		return nil, err
	}

	s := &Source{
		Symbols: append([]string(nil), symbols...),
		Start:   start,
		End:     end,
		LogPath: logPath,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Open starts a new pass. A log path that does not exist falls back to the
// synthetic generator.
func (s *Source) Open() (Feed, error) {
	if s.LogPath != "" {
		_, err := os.Stat(s.LogPath)
		switch {
		case err == nil:
			s.log.Debug("replaying market log", zap.String("path", s.LogPath))
			return OpenLog(s.LogPath, s.Start, s.End)
		case errors.Is(err, os.ErrNotExist):
			s.log.Warn("market log not found, using synthetic bars", zap.String("path", s.LogPath))
		default:
			return nil, err
		}
	}
	s.log.Debug("generating synthetic bars",
		zap.Strings("symbols", s.Symbols),
		zap.Time("start", s.Start),
		zap.Time("end", s.End),
	)
	return NewSynthetic(s.Symbols, s.Start, s.End), nil
}

func inWindow(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}
