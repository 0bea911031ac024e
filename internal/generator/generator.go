// Package generator is the public entry point of project generation:
// normalize, validate, run the pipeline, snapshot.
//
// Generate never panics and never returns an error across its boundary;
// the outcome is carried by Result.Success.
package generator

import (
	"fmt"
	"io"
	"log"

	"github.com/agentic-research/stackgen/api"
	"github.com/agentic-research/stackgen/internal/config"
	"github.com/agentic-research/stackgen/internal/content"
	"github.com/agentic-research/stackgen/internal/materialize"
	"github.com/agentic-research/stackgen/internal/merge"
	"github.com/agentic-research/stackgen/internal/pipeline"
	"github.com/agentic-research/stackgen/internal/validate"
	"github.com/agentic-research/stackgen/internal/vfs"
)

// Options tunes one generation. The zero value uses the bundled
// templates, the default rules and a discarding logger.
type Options struct {
	Source    content.Source
	Logger    *log.Logger
	Validator *validate.Validator
}

func (o Options) withDefaults() Options {
	if o.Source == nil {
		o.Source = content.Bundled()
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard, "", 0)
	}
	if o.Validator == nil {
		o.Validator = validate.New()
	}
	return o
}

// Result is the outcome of Generate.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	// Kind classifies a failure; empty on success.
	Kind pipeline.Kind `json:"kind,omitempty"`
	// Issues lists every validator violation when Kind is
	// ConfigurationInvalid.
	Issues   []string `json:"issues,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
	// Config is the normalized configuration that was validated.
	Config *api.Config `json:"config"`
	// Plan names the steps selected for Config.
	Plan     []string      `json:"plan,omitempty"`
	Snapshot *api.Snapshot `json:"snapshot,omitempty"`

	// Tree is the generated tree. After a pipeline failure it holds the
	// partial tree for diagnostics only and must not be materialized.
	Tree *vfs.Tree `json:"-"`
	// Err is the typed failure, a *pipeline.GenerationError.
	Err error `json:"-"`
}

// Check normalizes and validates cfg without generating anything.
func Check(cfg *api.Config, opts Options) *Result {
	opts = opts.withDefaults()
	norm := config.Normalize(cfg)
	res := &Result{Config: norm, Plan: pipeline.Names(pipeline.Plan(norm))}
	if rep := opts.Validator.Validate(norm); !rep.OK() {
		return res.fail(&pipeline.GenerationError{Kind: pipeline.KindConfigurationInvalid, Err: rep}, rep.Messages())
	}
	res.Success = true
	return res
}

// Generate builds the project described by cfg in memory.
func Generate(cfg *api.Config, opts Options) (res *Result) {
	opts = opts.withDefaults()
	defer func() {
		if r := recover(); r != nil {
			err := &pipeline.GenerationError{Kind: pipeline.KindInternal, Err: fmt.Errorf("panic: %v", r)}
			if res == nil {
				res = &Result{}
			}
			res.fail(err, nil)
		}
	}()

	res = Check(cfg, opts)
	if !res.Success {
		opts.Logger.Printf("configuration rejected: %d issue(s)", len(res.Issues))
		return res
	}
	res.Success = false

	norm := res.Config
	opts.Logger.Printf("generate %s (%s): %d steps", norm.ProjectName, norm.Ecosystem, len(res.Plan))
	engine := merge.NewEngine()
	tree := vfs.New(vfs.WithMerger(engine))
	res.Tree = tree

	err := pipeline.Run(pipeline.NewContext(norm, tree, opts.Source, opts.Logger), pipeline.Plan(norm))
	for _, w := range engine.Warnings() {
		res.Warnings = append(res.Warnings, w.String())
	}
	if err != nil {
		opts.Logger.Printf("generation failed: %v", err)
		return res.fail(err, nil)
	}

	res.Success = true
	res.Snapshot = materialize.Snapshot(tree, norm)
	opts.Logger.Printf("generated %d files in %d directories", tree.FileCount(), tree.DirectoryCount())
	return res
}

func (r *Result) fail(err error, issues []string) *Result {
	r.Success = false
	r.Err = err
	r.Error = err.Error()
	r.Kind = pipeline.KindOf(err)
	r.Issues = issues
	r.Snapshot = nil
	return r
}

// WriteDirectory generates cfg and writes it to dir. Nothing is written
// unless generation succeeds.
func WriteDirectory(cfg *api.Config, dir string, overwrite bool, opts Options) (*Result, api.MaterializeResult) {
	res := Generate(cfg, opts)
	if !res.Success {
		return res, api.MaterializeResult{Error: res.Error}
	}
	return res, materialize.ToDirectory(res.Tree, dir, overwrite)
}
