// Package pipeline turns a validated configuration into a project tree.
//
// Generation is a fixed, ordered list of steps (the plan) selected once
// from the configuration. Each ecosystem contributes a disjoint step group;
// all ecosystems share the aggregation tail. Steps communicate only
// through the tree: a second write to a shared manifest is a structured
// merge, anything else is a PathCollision.
package pipeline

import (
	"github.com/agentic-research/stackgen/api"
)

// Groups a Step can belong to.
const (
	GroupTypeScript = "typescript"
	GroupRust       = "rust"
	GroupPython     = "python"
	GroupGo         = "go"
	GroupShared     = "shared"
)

// Step is one descriptor of the plan.
type Step struct {
	Name  string
	Group string
	// When reports whether the step applies to the configuration; nil
	// means always.
	When func(*api.Config) bool
	Run  func(*Context) error
}

// Plan returns the ordered steps for cfg. It is a pure function of cfg.
func Plan(cfg *api.Config) []Step {
	var group []Step
	switch cfg.Ecosystem {
	case api.EcosystemRust:
		group = rustSteps
	case api.EcosystemPython:
		group = pythonSteps
	case api.EcosystemGo:
		group = goSteps
	default:
		group = typeScriptSteps
	}
	var out []Step
	for _, s := range append(append(group[:len(group):len(group)], configRecordStep), sharedSteps...) {
		if s.When == nil || s.When(cfg) {
			out = append(out, s)
		}
	}
	return out
}

// Names returns the step names of plan, in order.
func Names(plan []Step) []string {
	out := make([]string, len(plan))
	for i, s := range plan {
		out[i] = s.Name
	}
	return out
}

// Run executes plan in order against c, aborting on the first failure.
// The returned error is a *GenerationError.
func Run(c *Context, plan []Step) error {
	for _, s := range plan {
		c.step = s.Name
		c.Log.Printf("step %s", s.Name)
		if err := s.Run(c); err != nil {
			return wrap(s.Name, "", err)
		}
	}
	c.step = ""
	return nil
}

func set[T ~string](v T) bool { return v != "" && v != api.None }
