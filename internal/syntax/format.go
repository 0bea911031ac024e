// Package syntax post-processes and checks generated source files:
// gofumpt formatting for Go and tree-sitter syntax checks for the other
// languages a stack can emit.
package syntax

import (
	"strings"

	"mvdan.cc/gofumpt/format"
)

// FormatGo formats Go source with gofumpt as a file of module modulePath
// targeting goVersion ("1.24").
func FormatGo(src []byte, goVersion, modulePath string) ([]byte, error) {
	return format.Source(src, format.Options{
		LangVersion: "go" + strings.TrimPrefix(goVersion, "go"),
		ModulePath:  modulePath,
	})
}

// IsGo reports whether p names a Go source file.
func IsGo(p string) bool { return strings.HasSuffix(p, ".go") }
