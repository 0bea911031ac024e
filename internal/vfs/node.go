package vfs

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
)

var (
	ErrNotFound      = errors.New("node not found")
	ErrPathCollision = errors.New("path collision")
	ErrNotDirectory  = errors.New("not a directory")
	ErrIsDirectory   = errors.New("is a directory")
	ErrInvalidPath   = errors.New("invalid path")
)

const (
	dirMode  = fs.ModeDir | 0o755
	fileMode = fs.FileMode(0o644)
	execMode = fs.FileMode(0o755)
)

// CollisionError is returned when a non-mergeable file is written twice.
type CollisionError struct {
	Path     string
	Existing string // origin of the file already in the tree
	Incoming string // origin of the rejected write
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("%s: %s (written by %q, rewritten by %q)", ErrPathCollision, e.Path, e.Existing, e.Incoming)
}

func (e *CollisionError) Unwrap() error { return ErrPathCollision }

// node is one entry of the tree. Directories keep child paths in
// insertion order; files keep their payload inline.
type node struct {
	path     string
	mode     fs.FileMode
	data     []byte
	binary   bool
	template bool
	origin   string
	children []string
}

func (n *node) isDir() bool { return n.mode.IsDir() }

// Info is a read-only view of a node.
type Info struct {
	Path       string
	Name       string
	Mode       fs.FileMode
	Size       int64
	Binary     bool
	Template   bool
	Executable bool
	Origin     string
}

// IsDir reports whether the node is a directory.
func (i Info) IsDir() bool { return i.Mode.IsDir() }

func (n *node) info() Info {
	return Info{
		Path:       n.path,
		Name:       path.Base("/" + n.path),
		Mode:       n.mode,
		Size:       int64(len(n.data)),
		Binary:     n.binary,
		Template:   n.template,
		Executable: !n.isDir() && n.mode&0o111 != 0,
		Origin:     n.origin,
	}
}

// CleanPath normalizes p to the tree's canonical form: slash-separated,
// relative to the root, no "." or ".." segments. The root is "".
func CleanPath(p string) (string, error) {
	p = strings.ReplaceAll(p, "\\", "/")
	cleaned := path.Clean("/" + p)
	if strings.Contains(p, "..") {
		for _, seg := range strings.Split(p, "/") {
			if seg == ".." {
				return "", fmt.Errorf("%w: %q escapes the project root", ErrInvalidPath, p)
			}
		}
	}
	return strings.TrimPrefix(cleaned, "/"), nil
}

func parentOf(p string) string {
	i := strings.LastIndex(p, "/")
	if i < 0 {
		return ""
	}
	return p[:i]
}
