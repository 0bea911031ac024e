// Package merge reconciles structured files written by more than one
// pipeline step. Each mergeable file kind has a declared policy; the
// Engine picks the policy from the file's base name and is installed on a
// vfs.Tree as its Merger.
package merge

import (
	"errors"
	"fmt"
	"path"
	"sort"

	"github.com/agentic-research/stackgen/internal/vfs"
)

// ErrConflict marks irreconcilable structured content.
var ErrConflict = errors.New("merge conflict")

// ConflictError carries both competing values of a failed merge.
type ConflictError struct {
	Path     string
	Key      string
	Existing string
	Incoming string
	Reason   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %s %s: %s (existing %q, incoming %q)", ErrConflict, e.Path, e.Key, e.Reason, e.Existing, e.Incoming)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// Warning is a non-fatal merge inconsistency.
type Warning struct {
	Path    string
	Key     string
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s: %s", w.Path, w.Key, w.Message)
}

// Context is handed to a Policy for one merge.
type Context struct {
	Path    string
	Options vfs.MergeOptions
	engine  *Engine
}

// Warn records a non-fatal inconsistency.
func (c *Context) Warn(key, format string, args ...any) {
	c.engine.warnings = append(c.engine.warnings, Warning{Path: c.Path, Key: key, Message: fmt.Sprintf(format, args...)})
}

// Conflict builds a fatal *ConflictError for key.
func (c *Context) Conflict(key, existing, incoming, reason string) error {
	return &ConflictError{Path: c.Path, Key: key, Existing: existing, Incoming: incoming, Reason: reason}
}

// Policy merges incoming into existing for one file kind.
type Policy func(c *Context, existing, incoming []byte) ([]byte, error)

// Engine is the structured merge engine. It holds per-generation warning
// state and must not be shared between generations.
type Engine struct {
	policies map[string]Policy
	warnings []Warning
}

// NewEngine returns an Engine with the default policies registered.
func NewEngine() *Engine {
	e := &Engine{policies: make(map[string]Policy)}
	e.Register("package.json", MergeManifest)
	for _, name := range []string{".env", ".env.example", ".env.local", ".dev.vars"} {
		e.Register(name, MergeEnv)
	}
	e.Register("pnpm-workspace.yaml", MergeWorkspace)
	e.Register("Cargo.toml", MergeTOML)
	e.Register("pyproject.toml", MergeTOML)
	e.Register("go.mod", MergeGoMod)
	e.Register(".gitignore", MergeLines)
	return e
}

// Register declares policy p for files whose base name is baseName.
func (e *Engine) Register(baseName string, p Policy) {
	e.policies[baseName] = p
}

// CanMerge implements vfs.Merger.
func (e *Engine) CanMerge(p string) bool {
	_, ok := e.policies[path.Base(p)]
	return ok
}

// Merge implements vfs.Merger.
func (e *Engine) Merge(p string, existing, incoming []byte, opts vfs.MergeOptions) ([]byte, error) {
	policy, ok := e.policies[path.Base(p)]
	if !ok {
		return nil, fmt.Errorf("no merge policy for %s", p)
	}
	return policy(&Context{Path: p, Options: opts, engine: e}, existing, incoming)
}

// Warnings returns the accumulated warnings sorted by path then key.
func (e *Engine) Warnings() []Warning {
	out := append([]Warning(nil), e.warnings...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Key < out[j].Key
	})
	return out
}

var _ vfs.Merger = (*Engine)(nil)
