package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentic-research/stackgen/internal/generator"
	"github.com/agentic-research/stackgen/internal/materialize"
	"github.com/agentic-research/stackgen/internal/syntax"
)

func newCreateCmd(a *app) *cobra.Command {
	var (
		check     bool
		overwrite bool
	)
	cmd := &cobra.Command{
		Use:   "create [directory]",
		Short: "Generate a project and write it to disk",
		Long: `Generate a project from a stack file and flags. The project is written to
directory, or ./<projectName> when omitted. Nothing is written unless the
whole generation succeeds.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadStack(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			res := generator.Generate(cfg, a.options())
			if err := report(out, res); err != nil {
				return err
			}

			if check {
				for _, d := range syntax.CheckTree(res.Tree) {
					warn.Fprint(out, "! ")
					fmt.Fprintln(out, d.Error())
				}
			}

			dir := res.Config.ProjectName
			if len(args) == 1 {
				dir = args[0]
			}
			written := materialize.ToDirectory(res.Tree, dir, overwrite || a.settings.Overwrite)
			if !written.Success {
				return fmt.Errorf("write %s: %s", dir, written.Error)
			}
			good.Fprintf(out, "created %s", written.Directory)
			fmt.Fprintf(out, " (%d files, %d directories)\n", res.Snapshot.FileCount, res.Snapshot.DirectoryCount)
			return nil
		},
	}
	addStackFlags(cmd)
	cmd.Flags().BoolVar(&check, "check", false, "syntax-check generated sources and print diagnostics")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace an existing directory")
	return cmd
}
