// Package run implements the run command.
package run

import (
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/backtester/internal/backtest"
	"github.com/rustyeddy/backtester/internal/cli/config"
	"github.com/rustyeddy/backtester/internal/scenario"
	"github.com/rustyeddy/backtester/journal"
	"github.com/rustyeddy/backtester/pkg/id"
)

func New(rc *config.RootConfig) *cobra.Command {
	var (
		scenarioPath string
		artifactsDir string
		printSummary bool
		report       bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a scenario and write its artifacts",
		Long: `Run replays a scenario's market data through its strategies and writes
scenario.json, equity_curve.json, trades.json, summary.json and
diagnostics.txt under <artifacts-dir>/<scenario_id>/.

Examples:
  backtester run --scenario scenario.yaml
  backtester run --scenario scenario.json --artifacts-dir out --print-summary`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := rc.Logger()

			sc, err := scenario.LoadFromFile(scenarioPath)
			if err != nil {
				return err
			}
			if artifactsDir != "" {
				sc.ArtifactsDir = artifactsDir
			}

			cfg, err := sc.Backtest()
			if err != nil {
				return err
			}

			eng, err := backtest.NewEngine(cfg, backtest.WithLogger(log))
			if err != nil {
				return err
			}

			res, err := eng.Run(cmd.Context())
			if err != nil {
				return err
			}

			aw := journal.NewArtifactWriter(sc.ArtifactsDir)
			paths, err := aw.WriteAll(sc, res)
			if err != nil {
				return err
			}

			if err := record(rc, res, cmd); err != nil {
				return err
			}

			if printSummary {
				out, err := json.MarshalIndent(res.Summary, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
			}
			if report {
				backtest.PrintSummary(cmd.OutOrStdout(), res)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Backtest complete. Summary written to: %s\n", paths[journal.ArtifactSummary])

			log.Info("artifacts written",
				zap.String("scenario_id", sc.ID),
				zap.String("dir", aw.Dir(sc.ID)),
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&scenarioPath, "scenario", "", "Scenario file (YAML or JSON)")
	cmd.Flags().StringVar(&artifactsDir, "artifacts-dir", "", "Override the scenario's artifacts_dir")
	cmd.Flags().BoolVar(&printSummary, "print-summary", false, "Print the summary JSON to stdout")
	cmd.Flags().BoolVar(&report, "report", false, "Print a human readable report to stdout")
	_ = cmd.MarkFlagRequired("scenario")

	return cmd
}

// record appends the run to the configured journal, if any.
func record(rc *config.RootConfig, res *backtest.Result, cmd *cobra.Command) error {
	j, err := rc.OpenJournal()
	if err != nil {
		return err
	}
	if j == nil {
		return nil
	}
	defer j.Close()

	now := time.Now().UTC()
	runID := id.NewAt(now)
	if err := journal.Record(j, runID, now, res); err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Run %s recorded in %s journal\n", runID, rc.Journal)
	return nil
}
