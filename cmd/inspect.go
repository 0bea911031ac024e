package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/agentic-research/stackgen/api"
	"github.com/agentic-research/stackgen/internal/generator"
)

func newValidateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Report every compatibility issue in a stack",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadStack(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if err := report(out, generator.Check(cfg, a.options())); err != nil {
				return err
			}
			good.Fprintln(out, "✓ stack is valid")
			return nil
		},
	}
	addStackFlags(cmd)
	return cmd
}

func newPlanCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the normalized stack and the steps that would run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadStack(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			res := generator.Check(cfg, a.options())
			if asJSON {
				return writeJSON(out, res)
			}
			if err := report(out, res); err != nil {
				return err
			}
			for i, step := range res.Plan {
				fmt.Fprintf(out, "%2d. %s\n", i+1, step)
			}
			return nil
		},
	}
	addStackFlags(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the check result as JSON")
	return cmd
}

func newTreeCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Generate in memory and print the project tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadStack(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			res := generator.Generate(cfg, a.options())
			if asJSON {
				if !res.Success {
					return writeJSON(out, res)
				}
				return writeJSON(out, res.Snapshot)
			}
			if err := report(out, res); err != nil {
				return err
			}
			fmt.Fprintln(out, res.Snapshot.Root.Name+"/")
			printTree(out, res.Snapshot.Root, "")
			fmt.Fprintf(out, "\n%d directories, %d files\n", res.Snapshot.DirectoryCount, res.Snapshot.FileCount)
			return nil
		},
	}
	addStackFlags(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the snapshot as JSON")
	return cmd
}

func printTree(w io.Writer, n *api.TreeNode, prefix string) {
	for i, c := range n.Children {
		branch, indent := "├── ", "│   "
		if i == len(n.Children)-1 {
			branch, indent = "└── ", "    "
		}
		name := c.Name
		if c.Type == api.NodeDirectory {
			name += "/"
		}
		fmt.Fprintln(w, prefix+branch+name)
		if c.Type == api.NodeDirectory {
			printTree(w, c, prefix+indent)
		}
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
