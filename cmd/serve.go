package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/agentic-research/stackgen/internal/generator"
	"github.com/agentic-research/stackgen/internal/mcptools"
	"github.com/agentic-research/stackgen/internal/preview"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		addr  string
		mount string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Generate in memory and export the project read-only over NFS",
		Args:  cobra.NoArgs,
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

			if addr == "" {
				addr = a.settings.PreviewAddr
			}
			srv, err := preview.Serve(res.Tree, addr)
			if err != nil {
				return err
			}
			defer func() { _ = srv.Close() }()

			fmt.Fprintf(out, "Serving %s on %s\n", res.Config.ProjectName, srv.Addr())
			if mount != "" {
				if err := preview.Mount(srv.Port(), mount); err != nil {
					return err
				}
				defer func() {
					if err := preview.Unmount(mount); err != nil {
						fmt.Fprintln(cmd.ErrOrStderr(), err)
					}
				}()
				good.Fprintf(out, "Mounted at %s\n", mount)
			} else if mc, err := preview.MountCommand(srv.Port(), "<mountpoint>"); err == nil {
				fmt.Fprintf(out, "Mount with: %s\n", strings.Join(mc.Args, " "))
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			<-ctx.Done()
			return nil
		},
	}
	addStackFlags(cmd)
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from settings preview.addr)")
	cmd.Flags().StringVar(&mount, "mount", "", "mount the export at this directory (requires sudo)")
	return cmd
}

func newMCPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run the MCP tool server on stdio",
		Long: `Run a Model Context Protocol server on stdin/stdout exposing
validate_stack, preview_project and list_options.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return mcptools.New(a.options()).ServeStdio(Version)
		},
	}
}
