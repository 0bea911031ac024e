package pipeline

import (
	"fmt"
	"io"
	"log"
	"path"
	"strings"

	"github.com/agentic-research/stackgen/api"
	"github.com/agentic-research/stackgen/internal/content"
	"github.com/agentic-research/stackgen/internal/deps"
	"github.com/agentic-research/stackgen/internal/merge"
	"github.com/agentic-research/stackgen/internal/vfs"
)

// Workspace member directories of a TypeScript project.
const (
	WebDir     = "apps/web"
	NativeDir  = "apps/native"
	ServerDir  = "apps/server"
	DocsDir    = "apps/docs"
	BackendDir = "packages/backend"
)

// EnvDecl is one environment variable contributed by a step.
type EnvDecl struct {
	File     string
	Name     string
	Value    string
	Comment  string
	Required bool
}

// Data is the value templates are rendered against.
type Data struct {
	Config      *api.Config
	ProjectName string
	// Member is the destination directory of the template being written.
	Member string
}

// Context is the per-generation state handed to every step. It memoizes
// template lookups and collects dependency and environment declarations
// for the aggregation steps. A Context is never shared between
// generations.
type Context struct {
	Config *api.Config
	Tree   *vfs.Tree
	Source content.Source
	Log    *log.Logger

	step      string
	templates map[string]*content.Template
	globs     map[string][]string
	deps      []deps.Declaration
	env       []EnvDecl
}

// NewContext returns a Context for one generation. A nil logger discards.
func NewContext(cfg *api.Config, tree *vfs.Tree, src content.Source, logger *log.Logger) *Context {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Context{
		Config:    cfg,
		Tree:      tree,
		Source:    src,
		Log:       logger,
		templates: make(map[string]*content.Template),
		globs:     make(map[string][]string),
	}
}

// Step returns the name of the running step.
func (c *Context) Step() string { return c.step }

// Declarations returns the dependency declarations so far.
func (c *Context) Declarations() []deps.Declaration { return c.deps }

// EnvDecls returns the environment declarations so far.
func (c *Context) EnvDecls() []EnvDecl { return c.env }

func (c *Context) lookup(id string) (*content.Template, error) {
	if t, ok := c.templates[id]; ok {
		return t, nil
	}
	t, err := c.Source.Lookup(id)
	if err != nil {
		return nil, &GenerationError{Kind: KindOf(err), Step: c.step, Path: id, Err: err}
	}
	c.templates[id] = t
	return t, nil
}

func (c *Context) glob(dir string) ([]string, error) {
	if ids, ok := c.globs[dir]; ok {
		return ids, nil
	}
	ids, err := c.Source.Glob(dir + "/**")
	if err != nil {
		return nil, err
	}
	c.globs[dir] = ids
	return ids, nil
}

// Emit renders template id and writes it to dest.
func (c *Context) Emit(id, dest string) error {
	return c.emit(id, dest, path.Dir(dest))
}

func (c *Context) emit(id, dest, member string) error {
	t, err := c.lookup(id)
	if err != nil {
		return err
	}
	data, err := content.Render(t, Data{Config: c.Config, ProjectName: c.Config.ProjectName, Member: member})
	if err != nil {
		return &GenerationError{Kind: KindInternal, Step: c.step, Path: id, Err: err}
	}
	return c.Write(dest, data, vfs.WriteOptions{Template: true, Binary: t.Binary, Executable: t.Executable})
}

// EmitDir writes every template below dir into dest, keeping relative
// paths. A dir with no templates is a TemplateMissing error.
func (c *Context) EmitDir(dir, dest string) error {
	ids, err := c.glob(dir)
	if err != nil {
		return wrap(c.step, dir, err)
	}
	if len(ids) == 0 {
		return &GenerationError{
			Kind: KindTemplateMissing, Step: c.step, Path: dir,
			Err: fmt.Errorf("%w: %s/**", content.ErrTemplateNotFound, dir),
		}
	}
	return c.emitAll(dir, dest, ids)
}

// EmitOptional is EmitDir for overlays that may legitimately be absent.
func (c *Context) EmitOptional(dir, dest string) error {
	ids, err := c.glob(dir)
	if err != nil {
		return wrap(c.step, dir, err)
	}
	return c.emitAll(dir, dest, ids)
}

func (c *Context) emitAll(dir, dest string, ids []string) error {
	for _, id := range ids {
		rel := content.TargetPath(strings.TrimPrefix(id, dir+"/"))
		if err := c.emit(id, path.Join(dest, rel), dest); err != nil {
			return err
		}
	}
	return nil
}

// Write stores data at p tagged with the running step.
func (c *Context) Write(p string, data []byte, opts vfs.WriteOptions) error {
	opts.Origin = c.step
	if err := c.Tree.Write(p, data, opts); err != nil {
		return wrap(c.step, p, err)
	}
	return nil
}

// MergeJSON merges obj into the JSON manifest at p.
func (c *Context) MergeJSON(p string, obj *merge.Object, opts vfs.MergeOptions) error {
	data, err := merge.EncodeJSON(obj)
	if err != nil {
		return wrap(c.step, p, err)
	}
	return c.Write(p, data, vfs.WriteOptions{Merge: opts})
}

// Require declares runtime dependencies of the manifest in member.
func (c *Context) Require(member string, names ...string) {
	c.declare(member, deps.Runtime, names)
}

// RequireDev declares development dependencies of the manifest in member.
func (c *Context) RequireDev(member string, names ...string) {
	c.declare(member, deps.Dev, names)
}

func (c *Context) declare(member string, kind deps.Kind, names []string) {
	for _, n := range names {
		c.deps = append(c.deps, deps.Declaration{Name: n, Manifest: member, Kind: kind})
	}
}

// Env declares an environment variable in file.
func (c *Context) Env(file, name, value, comment string, required bool) {
	c.env = append(c.env, EnvDecl{File: file, Name: name, Value: value, Comment: comment, Required: required})
}

// ServerMember returns the member directory hosting server code, or ""
// when the project has none.
func (c *Context) ServerMember() string {
	switch c.Config.Backend {
	case api.BackendConvex:
		return BackendDir
	case api.BackendSelf:
		return WebDir
	case api.BackendNone, "":
		return ""
	}
	return ServerDir
}

// RequireFeatures declares a runtime dependency with Cargo features or
// Python extras.
func (c *Context) RequireFeatures(member, name string, features ...string) {
	c.deps = append(c.deps, deps.Declaration{Name: name, Manifest: member, Kind: deps.Runtime, Features: features})
}
