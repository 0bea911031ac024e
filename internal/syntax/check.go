package syntax

import (
	"context"
	"fmt"
	"path"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	sqllang "github.com/smacker/go-tree-sitter/sql"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/agentic-research/stackgen/internal/vfs"
)

// Diagnostic locates one syntax error in a generated file.
type Diagnostic struct {
	Path    string `json:"path"`
	Line    uint32 `json:"line"`   // 0-indexed
	Column  uint32 `json:"column"` // 0-indexed
	Message string `json:"message"`
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", d.Path, d.Line+1, d.Column+1, d.Message)
}

// Supported reports whether Check knows a grammar for p.
func Supported(p string) bool { return languageFor(p) != nil }

// Check parses content as the language implied by p and returns the
// first syntax error as a *Diagnostic. Unknown languages pass.
func Check(content []byte, p string) error {
	diags, err := parse(content, p, true)
	if err != nil {
		return err
	}
	if len(diags) > 0 {
		return &diags[0]
	}
	return nil
}

// Diagnostics returns every syntax error in content.
func Diagnostics(content []byte, p string) []Diagnostic {
	diags, _ := parse(content, p, false)
	return diags
}

// CheckTree checks every text file of tree with a known grammar and
// returns the first error of each failing file, in walk order.
func CheckTree(tree *vfs.Tree) []Diagnostic {
	var out []Diagnostic
	_ = tree.Walk(func(info vfs.Info, data []byte) error {
		if info.IsDir() || info.Binary || !Supported(info.Path) {
			return nil
		}
		if diags, err := parse(data, info.Path, true); err != nil {
			out = append(out, Diagnostic{Path: info.Path, Message: err.Error()})
		} else if len(diags) > 0 {
			out = append(out, diags[0])
		}
		return nil
	})
	return out
}

func parse(content []byte, p string, firstOnly bool) ([]Diagnostic, error) {
	lang := languageFor(p)
	if lang == nil {
		return nil, nil
	}
	parser := sitter.NewParser()
	parser.SetLanguage(lang)

	tree, err := parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse failed for %s: %w", p, err)
	}
	root := tree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("tree-sitter returned nil root for %s", p)
	}
	if !root.HasError() {
		return nil, nil
	}
	var diags []Diagnostic
	collect(root, p, firstOnly, &diags)
	if len(diags) == 0 {
		diags = append(diags, Diagnostic{Path: p, Message: "AST contains errors"})
	}
	return diags, nil
}

// collect gathers ERROR and MISSING nodes depth-first.
func collect(node *sitter.Node, p string, firstOnly bool, diags *[]Diagnostic) {
	if node.IsError() || node.IsMissing() {
		msg := "syntax error"
		if node.IsMissing() {
			msg = "missing " + node.Type()
		}
		*diags = append(*diags, Diagnostic{
			Path:    p,
			Line:    node.StartPoint().Row,
			Column:  node.StartPoint().Column,
			Message: msg,
		})
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		if firstOnly && len(*diags) > 0 {
			return
		}
		child := node.Child(i)
		if child.HasError() || child.IsError() || child.IsMissing() {
			collect(child, p, firstOnly, diags)
		}
	}
}

func languageFor(p string) *sitter.Language {
	switch strings.ToLower(path.Ext(p)) {
	case ".go":
		return golang.GetLanguage()
	case ".py":
		return python.GetLanguage()
	case ".js", ".mjs", ".jsx":
		return javascript.GetLanguage()
	case ".ts", ".mts":
		return typescript.GetLanguage()
	case ".tsx":
		return tsx.GetLanguage()
	case ".rs":
		return rust.GetLanguage()
	case ".sql":
		return sqllang.GetLanguage()
	}
	return nil
}
