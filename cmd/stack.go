package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/agentic-research/stackgen/api"
	"github.com/agentic-research/stackgen/internal/config"
	"github.com/agentic-research/stackgen/internal/generator"
)

var errInvalid = errors.New("stack configuration is invalid")

// addStackFlags registers --file, --name and one flag per category.
func addStackFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringP("file", "f", "", "stack file ("+strings.Join(config.Extensions, ", ")+")")
	f.String("name", "", "project name")
	for _, cat := range api.Categories {
		usage := strings.Join(cat.Values, ", ")
		if cat.Multi {
			f.StringSlice(cat.Name, nil, usage)
		} else {
			f.String(cat.Name, "", usage)
		}
	}
}

// loadStack reads the stack file, if any, and applies category flags on
// top of it.
func (a *app) loadStack(cmd *cobra.Command) (*api.Config, error) {
	f := cmd.Flags()
	cfg := &api.Config{}
	if file, _ := f.GetString("file"); file != "" {
		loaded, err := config.Load(file)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if f.Changed("name") {
		name, _ := f.GetString("name")
		if err := config.Set(cfg, "projectName", name); err != nil {
			return nil, fmt.Errorf("flag --name: %w", err)
		}
	}
	for _, cat := range api.Categories {
		if !f.Changed(cat.Name) {
			continue
		}
		var values []string
		if cat.Multi {
			values, _ = f.GetStringSlice(cat.Name)
		} else {
			v, _ := f.GetString(cat.Name)
			values = []string{v}
		}
		if err := config.Set(cfg, cat.Name, values...); err != nil {
			return nil, fmt.Errorf("flag --%s: %w", cat.Name, err)
		}
	}
	ts := cfg.Ecosystem == "" || cfg.Ecosystem == api.EcosystemTypeScript
	if ts && cfg.PackageManager == "" && a.settings.PackageManager != "" {
		cfg.PackageManager = api.PackageManager(a.settings.PackageManager)
	}
	return cfg, nil
}

var (
	bad  = color.New(color.FgRed, color.Bold)
	warn = color.New(color.FgYellow)
	good = color.New(color.FgGreen)
)

// report prints the issues and warnings of res and returns errInvalid
// (or the generation error) on failure.
func report(w io.Writer, res *generator.Result) error {
	for _, is := range res.Issues {
		bad.Fprint(w, "✗ ")
		fmt.Fprintln(w, is)
	}
	for _, wn := range res.Warnings {
		warn.Fprint(w, "! ")
		fmt.Fprintln(w, wn)
	}
	if res.Success {
		return nil
	}
	if len(res.Issues) > 0 {
		return errInvalid
	}
	if res.Err != nil {
		return res.Err
	}
	return errors.New(res.Error)
}
