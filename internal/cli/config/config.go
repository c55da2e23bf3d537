// Package config holds the process settings shared by every command.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/rustyeddy/backtester/internal/logging"
	"github.com/rustyeddy/backtester/journal"
)

const EnvPrefix = "BACKTESTER"

// Journal kinds accepted by --journal.
const (
	JournalNone   = "none"
	JournalCSV    = "csv"
	JournalSQLite = "sqlite"
)

type RootConfig struct {
	LogLevel   string
	LogFile    string
	Journal    string
	DBPath     string
	JournalDir string

	v   *viper.Viper
	log *zap.Logger
}

func New() *RootConfig {
	return &RootConfig{v: viper.New(), log: zap.NewNop()}
}

// Bind registers the persistent flags on cmd and lets BACKTESTER_* env
// vars fill any flag not given on the command line.
func (rc *RootConfig) Bind(cmd *cobra.Command) error {
	pf := cmd.PersistentFlags()
	pf.String("log-level", "info", "Log level: debug|info|warn|error")
	pf.String("log-file", "", "Write JSON logs to this file (rotated) instead of stderr")
	pf.String("journal", JournalNone, "Run journal: none|csv|sqlite")
	pf.String("db", "./backtester.sqlite", "SQLite journal database")
	pf.String("journal-dir", "journal", "Directory for the CSV journal")

	if err := rc.v.BindPFlags(pf); err != nil {
		return err
	}
	rc.v.SetEnvPrefix(EnvPrefix)
	rc.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	rc.v.AutomaticEnv()
	return nil
}

// Load resolves the settings and builds the logger. It runs before every
// command.
func (rc *RootConfig) Load() error {
	rc.LogLevel = rc.v.GetString("log-level")
	rc.LogFile = rc.v.GetString("log-file")
	rc.Journal = strings.ToLower(strings.TrimSpace(rc.v.GetString("journal")))
	rc.DBPath = rc.v.GetString("db")
	rc.JournalDir = rc.v.GetString("journal-dir")

	switch rc.Journal {
	case "", JournalNone, JournalCSV, JournalSQLite:
	default:
		return fmt.Errorf("unknown journal %q (want none|csv|sqlite)", rc.Journal)
	}

	log, err := logging.New(logging.Options{Level: rc.LogLevel, File: rc.LogFile})
	if err != nil {
		return err
	}
	rc.log = log
	return nil
}

func (rc *RootConfig) Logger() *zap.Logger {
	return rc.log
}

// OpenJournal returns the configured run journal, or nil when journaling
// is off.
func (rc *RootConfig) OpenJournal() (journal.Journal, error) {
	switch rc.Journal {
	case JournalCSV:
		return journal.NewCSV(rc.JournalDir)
	case JournalSQLite:
		return rc.OpenSQLite()
	default:
		return nil, nil
	}
}

func (rc *RootConfig) OpenSQLite() (*journal.SQLiteJournal, error) {
	j, err := journal.NewSQLite(rc.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return j, nil
}
