// Package cli assembles the backtester command tree.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/backtester/internal/cli/config"
	"github.com/rustyeddy/backtester/internal/cli/journal"
	"github.com/rustyeddy/backtester/internal/cli/run"
	"github.com/rustyeddy/backtester/internal/cli/scenario"
)

// Version is set at build time with -ldflags.
var Version = "dev"

func NewRootCmd() *cobra.Command {
	rc := config.New()

	cmd := &cobra.Command{
		Use:           "backtester",
		Short:         "Deterministic strategy backtests over market logs or synthetic data",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	if err := rc.Bind(cmd); err != nil {
		panic(err)
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return rc.Load()
	}
	cmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		_ = rc.Logger().Sync()
	}

	cmd.AddCommand(
		run.New(rc),
		scenario.New(rc),
		journal.New(rc),
	)

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "backtester %s\n", Version)
		},
	})

	return cmd
}

// Execute runs the command tree; an interrupt cancels a running backtest.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
