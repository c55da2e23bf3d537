// Package scenario implements the scenario init and validate commands.
package scenario

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/backtester/internal/cli/config"
	"github.com/rustyeddy/backtester/internal/scenario"
)

func New(rc *config.RootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenario",
		Short: "Create and check scenario files",
	}
	cmd.AddCommand(newInitCmd(), newValidateCmd())
	return cmd
}

func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the sample scenario (YAML for .yaml/.yml, JSON otherwise)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "scenario.yaml"
			if len(args) == 1 {
				path = args[0]
			}

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			if err := scenario.Default().SaveToFile(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <path>",
		Short: "Check a scenario file without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := scenario.LoadFromFile(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %s (%d symbols, %d strategies, %s to %s)\n",
				sc.ID, len(sc.Universe.Symbols), len(sc.Strategies), sc.StartTS, sc.EndTS)
			return nil
		},
	}
}
