package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentic-research/stackgen/internal/generator"
	"github.com/agentic-research/stackgen/internal/materialize"
)

func newBuildCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [output.db]",
		Short: "Generate a project into a SQLite database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := args[0]
			cfg, err := a.loadStack(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			start := time.Now()
			res := generator.Generate(cfg, a.options())
			if err := report(out, res); err != nil {
				return err
			}
			written := materialize.ToSQLite(res.Tree, res.Config, output)
			if !written.Success {
				return fmt.Errorf("build %s: %s", output, written.Error)
			}
			fmt.Fprintf(out, "Built %s (%d files) in %v.\n", output, res.Snapshot.FileCount, time.Since(start).Round(time.Millisecond))
			return nil
		},
	}
	addStackFlags(cmd)
	return cmd
}
