// Package journal implements commands that read the SQLite run journal.
package journal

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/backtester/internal/cli/config"
	"github.com/rustyeddy/backtester/internal/market"
)

func New(rc *config.RootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Query runs recorded in the SQLite journal",
		Long: `Query runs recorded with --journal sqlite.

Examples:
  backtester journal runs <scenario-id>
  backtester journal show <run-id>
  backtester journal trades <run-id>
  backtester journal equity <run-id>`,
	}
	cmd.AddCommand(
		newRunsCmd(rc),
		newShowCmd(rc),
		newTradesCmd(rc),
		newEquityCmd(rc),
	)
	return cmd
}

func newRunsCmd(rc *config.RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "runs <scenario-id>",
		Short: "List run IDs of a scenario, oldest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := rc.OpenSQLite()
			if err != nil {
				return err
			}
			defer j.Close()

			ids, err := j.ListRunsByScenario(args[0])
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
}

func newShowCmd(rc *config.RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show a run's summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := rc.OpenSQLite()
			if err != nil {
				return err
			}
			defer j.Close()

			r, err := j.GetRun(args[0])
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "run_id\t%s\n", r.RunID)
			fmt.Fprintf(w, "scenario_id\t%s\n", r.ScenarioID)
			fmt.Fprintf(w, "created\t%s\n", market.FormatTimestamp(r.Created))
			fmt.Fprintf(w, "window\t%s .. %s\n", r.Start, r.End)
			fmt.Fprintf(w, "final_equity\t%.6f\n", r.FinalEquity)
			fmt.Fprintf(w, "max_drawdown\t%.6f\n", r.MaxDrawdown)
			fmt.Fprintf(w, "num_trades\t%d\n", r.NumTrades)
			fmt.Fprintf(w, "num_points\t%d\n", r.NumPoints)
			return w.Flush()
		},
	}
}

func newTradesCmd(rc *config.RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "trades <run-id>",
		Short: "List a run's trades in ledger order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := rc.OpenSQLite()
			if err != nil {
				return err
			}
			defer j.Close()

			trades, err := j.ListTradesByRunID(args[0])
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "SEQ\tTIME\tSTRATEGY\tSYMBOL\tQTY\tPRICE")
			for _, t := range trades {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%.6f\t%.4f\n",
					t.Seq, market.FormatTimestamp(t.Time), t.StrategyID, t.Symbol, t.Qty, t.Price)
			}
			return w.Flush()
		},
	}
}

func newEquityCmd(rc *config.RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "equity <run-id>",
		Short: "Print a run's equity curve",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := rc.OpenSQLite()
			if err != nil {
				return err
			}
			defer j.Close()

			points, err := j.ListEquityByRunID(args[0])
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tEQUITY\tMAX_DD")
			for _, p := range points {
				fmt.Fprintf(w, "%s\t%.6f\t%.6f\n", market.FormatTimestamp(p.Time), p.Equity, p.MaxDrawdown)
			}
			return w.Flush()
		},
	}
}
