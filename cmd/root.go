package cmd

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/agentic-research/stackgen/internal/config"
	"github.com/agentic-research/stackgen/internal/content"
	"github.com/agentic-research/stackgen/internal/generator"
)

// Version is stamped at build time with -ldflags.
var Version = "dev"

// app carries the resolved settings from the root command to its
// subcommands.
type app struct {
	settingsFile string
	settings     config.Settings
	logger       *log.Logger
}

func (a *app) options() generator.Options {
	opts := generator.Options{Logger: a.logger}
	if a.settings.Templates != "" {
		opts.Source = content.Dir(a.settings.Templates)
	}
	return opts
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{logger: log.New(io.Discard, "", 0)}

	root := &cobra.Command{
		Use:           "stackgen",
		Short:         "Generate project scaffolds from a stack configuration",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v := config.NewViper(a.settingsFile)
			if err := bindFlags(v, cmd.Root()); err != nil {
				return err
			}
			s, err := config.ReadSettings(v)
			if err != nil {
				return err
			}
			a.settings = s
			if s.Verbose {
				a.logger = log.New(cmd.ErrOrStderr(), "stackgen: ", 0)
			}
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.settingsFile, "settings", "", "settings file (default ~/.config/stackgen/settings.yaml)")
	pf.BoolP("verbose", "v", false, "log generation steps to stderr")
	pf.String("templates", "", "template directory replacing the bundled templates")

	root.AddCommand(
		newCreateCmd(a),
		newValidateCmd(a),
		newPlanCmd(a),
		newTreeCmd(a),
		newBuildCmd(a),
		newServeCmd(a),
		newMCPCmd(a),
	)
	return root
}

func bindFlags(v *viper.Viper, root *cobra.Command) error {
	for key, flag := range map[string]string{"verbose": "verbose", "templates": "templates"} {
		if err := v.BindPFlag(key, root.PersistentFlags().Lookup(flag)); err != nil {
			return fmt.Errorf("bind flag %s: %w", flag, err)
		}
	}
	return nil
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
