// Package vfs holds a generated project as an ordered, in-memory file tree.
//
// A Tree accumulates writes from many independent pipeline steps. Parent
// directories are created implicitly, children keep insertion order so two
// runs over the same sequence of writes produce identical trees, and a
// second write to an existing file must be either an explicit overwrite or
// a structured merge delegated to the Tree's Merger.
//
// A Tree has no internal locking. Each generation owns its own Tree.
package vfs

import (
	"fmt"
	"slices"
	"sort"

	"github.com/RoaringBitmap/roaring"
)

// MergeOptions is passed through to the Merger on a second write.
type MergeOptions struct {
	// Authoritative lets the incoming write win dependency version
	// collisions (version pinning passes).
	Authoritative bool
	// Override lets the incoming write replace colliding scripts.
	Override bool
}

// Merger reconciles two writes to the same structured file.
type Merger interface {
	// CanMerge reports whether a merge policy is declared for p.
	CanMerge(p string) bool
	// Merge returns the reconciled content of existing and incoming.
	Merge(p string, existing, incoming []byte, opts MergeOptions) ([]byte, error)
}

// WriteOptions controls a single Write.
type WriteOptions struct {
	Overwrite  bool
	Executable bool
	Binary     bool
	Template   bool
	// Origin tags the file with the step that wrote it.
	Origin string
	Merge  MergeOptions
}

// Tree is the Virtual File Tree.
type Tree struct {
	nodes  map[string]*node
	merger Merger

	files int
	dirs  int

	// Roaring bitmap index: origin → set of file internal IDs, in
	// creation order. Backs FilesByOrigin without a full traversal.
	byOrigin  map[string]*roaring.Bitmap
	nodeIntID map[string]uint32
	intToPath []string
	nextIntID uint32
}

// Option configures a Tree.
type Option func(*Tree)

// WithMerger installs the structured merge engine.
func WithMerger(m Merger) Option {
	return func(t *Tree) { t.merger = m }
}

// New returns an empty tree holding only the root directory.
func New(opts ...Option) *Tree {
	t := &Tree{
		nodes:     map[string]*node{"": {path: "", mode: dirMode}},
		byOrigin:  make(map[string]*roaring.Bitmap),
		nodeIntID: make(map[string]uint32),
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// FileCount returns the number of files. Maintained incrementally.
func (t *Tree) FileCount() int { return t.files }

// DirectoryCount returns the number of directories, excluding the root.
func (t *Tree) DirectoryCount() int { return t.dirs }

// Mkdir creates p and any missing parents. Creating an existing
// directory is a no-op.
func (t *Tree) Mkdir(p string) error {
	p, err := CleanPath(p)
	if err != nil {
		return err
	}
	_, err = t.mkdirAll(p)
	return err
}

func (t *Tree) mkdirAll(p string) (*node, error) {
	if n, ok := t.nodes[p]; ok {
		if !n.isDir() {
			return nil, fmt.Errorf("mkdir %s: %w", p, ErrNotDirectory)
		}
		return n, nil
	}
	parent, err := t.mkdirAll(parentOf(p))
	if err != nil {
		return nil, err
	}
	n := &node{path: p, mode: dirMode}
	t.nodes[p] = n
	parent.children = append(parent.children, p)
	t.dirs++
	return n, nil
}

// Write stores data at p. If p already holds a file the write is an
// overwrite (opts.Overwrite), a structured merge (the Merger declares a
// policy for p), or a *CollisionError.
func (t *Tree) Write(p string, data []byte, opts WriteOptions) error {
	p, err := CleanPath(p)
	if err != nil {
		return err
	}
	if p == "" {
		return fmt.Errorf("write: %w: empty path", ErrInvalidPath)
	}

	if existing, ok := t.nodes[p]; ok {
		if existing.isDir() {
			return fmt.Errorf("write %s: %w", p, ErrIsDirectory)
		}
		switch {
		case opts.Overwrite:
			existing.data = slices.Clone(data)
			existing.binary = opts.Binary
			existing.template = existing.template || opts.Template
			existing.mode = fileMode
			if opts.Executable {
				existing.mode = execMode
			}
			t.reorigin(existing, opts.Origin)
			return nil
		case t.merger != nil && !opts.Binary && t.merger.CanMerge(p):
			merged, err := t.merger.Merge(p, existing.data, data, opts.Merge)
			if err != nil {
				return fmt.Errorf("merge %s: %w", p, err)
			}
			existing.data = merged
			existing.template = existing.template || opts.Template
			return nil
		default:
			return &CollisionError{Path: p, Existing: existing.origin, Incoming: opts.Origin}
		}
	}

	parent, err := t.mkdirAll(parentOf(p))
	if err != nil {
		return fmt.Errorf("write %s: %w", p, err)
	}

	mode := fileMode
	if opts.Executable {
		mode = execMode
	}
	n := &node{
		path:     p,
		mode:     mode,
		data:     slices.Clone(data),
		binary:   opts.Binary,
		template: opts.Template,
		origin:   opts.Origin,
	}
	t.nodes[p] = n
	parent.children = append(parent.children, p)
	t.files++
	t.indexNode(n)
	return nil
}

// WriteString is Write for text content.
func (t *Tree) WriteString(p, content string, opts WriteOptions) error {
	return t.Write(p, []byte(content), opts)
}

// indexNode assigns an internal bitmap ID and registers the file under
// its origin.
func (t *Tree) indexNode(n *node) {
	intID, ok := t.nodeIntID[n.path]
	if !ok {
		intID = t.nextIntID
		t.nextIntID++
		t.nodeIntID[n.path] = intID
		t.intToPath = append(t.intToPath, n.path)
	}
	bm, exists := t.byOrigin[n.origin]
	if !exists {
		bm = roaring.New()
		t.byOrigin[n.origin] = bm
	}
	bm.Add(intID)
}

// reorigin moves a file to a new origin in the bitmap index.
func (t *Tree) reorigin(n *node, origin string) {
	if n.origin == origin {
		return
	}
	if bm, ok := t.byOrigin[n.origin]; ok {
		bm.Remove(t.nodeIntID[n.path])
		if bm.IsEmpty() {
			delete(t.byOrigin, n.origin)
		}
	}
	n.origin = origin
	t.indexNode(n)
}

// Read returns a copy of the file content at p.
func (t *Tree) Read(p string) ([]byte, error) {
	p, err := CleanPath(p)
	if err != nil {
		return nil, err
	}
	n, ok := t.nodes[p]
	if !ok {
		return nil, fmt.Errorf("read %s: %w", p, ErrNotFound)
	}
	if n.isDir() {
		return nil, fmt.Errorf("read %s: %w", p, ErrIsDirectory)
	}
	return slices.Clone(n.data), nil
}

// Exists reports whether p names a file or directory.
func (t *Tree) Exists(p string) bool {
	p, err := CleanPath(p)
	if err != nil {
		return false
	}
	_, ok := t.nodes[p]
	return ok
}

// Stat returns metadata for p.
func (t *Tree) Stat(p string) (Info, error) {
	p, err := CleanPath(p)
	if err != nil {
		return Info{}, err
	}
	n, ok := t.nodes[p]
	if !ok {
		return Info{}, fmt.Errorf("stat %s: %w", p, ErrNotFound)
	}
	return n.info(), nil
}

// ListChildren returns the child paths of directory p in insertion order.
func (t *Tree) ListChildren(p string) ([]string, error) {
	p, err := CleanPath(p)
	if err != nil {
		return nil, err
	}
	n, ok := t.nodes[p]
	if !ok {
		return nil, fmt.Errorf("list %s: %w", p, ErrNotFound)
	}
	if !n.isDir() {
		return nil, fmt.Errorf("list %s: %w", p, ErrNotDirectory)
	}
	return slices.Clone(n.children), nil
}

// Remove deletes the file or directory subtree at p.
func (t *Tree) Remove(p string) error {
	p, err := CleanPath(p)
	if err != nil {
		return err
	}
	if p == "" {
		return fmt.Errorf("remove: %w: cannot remove the root", ErrInvalidPath)
	}
	n, ok := t.nodes[p]
	if !ok {
		return fmt.Errorf("remove %s: %w", p, ErrNotFound)
	}

	t.removeSubtree(n)

	parent := t.nodes[parentOf(p)]
	parent.children = slices.DeleteFunc(parent.children, func(c string) bool { return c == p })
	return nil
}

func (t *Tree) removeSubtree(n *node) {
	for _, c := range n.children {
		t.removeSubtree(t.nodes[c])
	}
	delete(t.nodes, n.path)
	if n.isDir() {
		t.dirs--
		return
	}
	t.files--
	if intID, ok := t.nodeIntID[n.path]; ok {
		if bm, ok := t.byOrigin[n.origin]; ok {
			bm.Remove(intID)
			if bm.IsEmpty() {
				delete(t.byOrigin, n.origin)
			}
		}
		delete(t.nodeIntID, n.path)
		t.intToPath[intID] = ""
	}
}

// Walk visits every node depth-first in insertion order, the root excluded.
func (t *Tree) Walk(fn func(info Info, data []byte) error) error {
	return t.walk(t.nodes[""], fn)
}

func (t *Tree) walk(dir *node, fn func(Info, []byte) error) error {
	for _, c := range dir.children {
		n := t.nodes[c]
		if err := fn(n.info(), slices.Clone(n.data)); err != nil {
			return err
		}
		if n.isDir() {
			if err := t.walk(n, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// Files returns every file path in walk order.
func (t *Tree) Files() []string {
	out := make([]string, 0, t.files)
	_ = t.Walk(func(info Info, _ []byte) error {
		if !info.IsDir() {
			out = append(out, info.Path)
		}
		return nil
	})
	return out
}

// FilesByOrigin returns the files first written by origin, in creation order.
func (t *Tree) FilesByOrigin(origin string) []string {
	bm, ok := t.byOrigin[origin]
	if !ok {
		return nil
	}
	out := make([]string, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		if p := t.intToPath[it.Next()]; p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Origins returns every origin tag that still owns at least one file, sorted.
func (t *Tree) Origins() []string {
	out := make([]string, 0, len(t.byOrigin))
	for o := range t.byOrigin {
		out = append(out, o)
	}
	sort.Strings(out)
	return out
}
