// Package logging builds the process logger used by the command line.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	Level       string // debug|info|warn|error, empty is info
	File        string // rotate into this file instead of stderr
	Development bool

	// Writer overrides stderr when File is empty.
	Writer io.Writer
}

// ParseLevel maps a flag value onto a zap level.
func ParseLevel(s string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "debug":
		return zapcore.DebugLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q (want debug|info|warn|error)", s)
	}
}

// New returns a logger writing JSON lines to a rotating file when
// opts.File is set, or console lines to stderr otherwise.
func New(opts Options) (*zap.Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	var encCfg zapcore.EncoderConfig
	if opts.Development {
		encCfg = zap.NewDevelopmentEncoderConfig()
	} else {
		encCfg = zap.NewProductionEncoderConfig()
	}
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var (
		enc zapcore.Encoder
		out zapcore.WriteSyncer
	)
	if opts.File != "" {
		enc = zapcore.NewJSONEncoder(encCfg)
		out = zapcore.AddSync(&lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    50, // MB
			MaxBackups: 5,
			MaxAge:     28, // days
		})
	} else {
		enc = zapcore.NewConsoleEncoder(encCfg)
		w := opts.Writer
		if w == nil {
			w = os.Stderr
		}
		out = zapcore.Lock(zapcore.AddSync(w))
	}

	zopts := []zap.Option{zap.AddCaller()}
	if opts.Development {
		zopts = append(zopts, zap.Development())
	}
	return zap.New(zapcore.NewCore(enc, out, level), zopts...), nil
}
