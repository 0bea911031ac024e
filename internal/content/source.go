// Package content is the template content source consumed by the pipeline.
//
// Templates are addressed by slash-separated ids relative to the source
// root ("ts/backend/hono/src/index.ts.tmpl"). File names follow a small
// set of conventions so the bundled tree can hold dotfiles and
// non-rendered files side by side:
//
//   - a ".tmpl" suffix marks a template to render; the suffix is dropped
//   - a "dot_" prefix on a path segment becomes "." ("dot_gitignore")
//   - "*.sh" files and hooks under ".husky/" are executable
//   - images and fonts are binary and never rendered
package content

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrTemplateNotFound is returned when an id has no content.
var ErrTemplateNotFound = errors.New("template not found")

// Template is one entry of a content source.
type Template struct {
	// ID is the source-relative identifier.
	ID string
	// Path is the target path derived from ID by the naming conventions.
	Path       string
	Data       []byte
	Binary     bool
	Render     bool
	Executable bool
}

// Source is a read-only template lookup.
type Source interface {
	// Lookup returns the template for id or an error wrapping
	// ErrTemplateNotFound.
	Lookup(id string) (*Template, error)
	// Glob returns the ids matching a doublestar pattern, sorted.
	Glob(pattern string) ([]string, error)
}

//go:embed all:templates
var bundled embed.FS

// Bundled returns the templates compiled into the binary.
func Bundled() Source {
	sub, err := fs.Sub(bundled, "templates")
	if err != nil {
		panic(err) // embedded layout is fixed at build time
	}
	return NewFSSource(sub)
}

// Dir returns a source reading templates from a directory on disk.
func Dir(dir string) Source {
	return NewFSSource(os.DirFS(dir))
}

// FSSource serves templates from an fs.FS.
type FSSource struct {
	fsys fs.FS
}

// NewFSSource wraps fsys.
func NewFSSource(fsys fs.FS) *FSSource {
	return &FSSource{fsys: fsys}
}

func (s *FSSource) Lookup(id string) (*Template, error) {
	data, err := fs.ReadFile(s.fsys, id)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrInvalid) {
			return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
		}
		return nil, fmt.Errorf("read template %s: %w", id, err)
	}
	return NewTemplate(id, data), nil
}

func (s *FSSource) Glob(pattern string) ([]string, error) {
	matches, err := doublestar.Glob(s.fsys, pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", pattern, err)
	}
	sort.Strings(matches)
	return matches, nil
}

// MapSource serves templates from memory, keyed by id.
type MapSource map[string][]byte

func (m MapSource) Lookup(id string) (*Template, error) {
	data, ok := m[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}
	return NewTemplate(id, data), nil
}

func (m MapSource) Glob(pattern string) ([]string, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("glob %s: %w", pattern, doublestar.ErrBadPattern)
	}
	var out []string
	for id := range m {
		if ok, _ := doublestar.Match(pattern, id); ok {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out, nil
}

// NewTemplate applies the naming conventions to id.
func NewTemplate(id string, data []byte) *Template {
	t := &Template{ID: id, Data: data, Path: TargetPath(id)}
	t.Binary = isBinary(id, data)
	t.Render = !t.Binary && strings.HasSuffix(id, ".tmpl")
	t.Executable = strings.HasSuffix(t.Path, ".sh") || strings.Contains("/"+t.Path, "/.husky/")
	return t
}

// TargetPath maps a template id to the path it is written to.
func TargetPath(id string) string {
	id = strings.TrimSuffix(id, ".tmpl")
	segs := strings.Split(id, "/")
	for i, s := range segs {
		if rest, ok := strings.CutPrefix(s, "dot_"); ok {
			segs[i] = "." + rest
		}
	}
	return path.Join(segs...)
}

var binaryExt = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true,
	".ico": true, ".woff": true, ".woff2": true, ".ttf": true,
}

func isBinary(id string, data []byte) bool {
	return binaryExt[strings.ToLower(path.Ext(id))] || bytes.IndexByte(data, 0) >= 0
}
