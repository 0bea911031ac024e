package merge

import (
	"bytes"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

// Workspace is the pnpm-workspace.yaml table.
type Workspace struct {
	Packages              []string          `yaml:"packages,omitempty"`
	Catalog               map[string]string `yaml:"catalog,omitempty"`
	OnlyBuiltDependencies []string          `yaml:"onlyBuiltDependencies,omitempty"`
	Extra                 map[string]any    `yaml:",inline"`
}

// ParseWorkspace decodes a pnpm-workspace.yaml document.
func ParseWorkspace(data []byte) (*Workspace, error) {
	var w Workspace
	if err := yaml.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

// Encode renders the workspace with two-space indentation. Catalog keys
// come out sorted.
func (w *Workspace) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(w); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MergeWorkspace is the workspace table policy: package globs and built
// dependency lists union; catalog entries merge by package name using
// catalog precedence, a mismatch being a warning. Two different explicit
// pins for one package conflict.
func MergeWorkspace(c *Context, existing, incoming []byte) ([]byte, error) {
	dst, err := ParseWorkspace(existing)
	if err != nil {
		return nil, fmt.Errorf("parse existing %s: %w", c.Path, err)
	}
	src, err := ParseWorkspace(incoming)
	if err != nil {
		return nil, fmt.Errorf("parse incoming %s: %w", c.Path, err)
	}

	dst.Packages = unionStrings(dst.Packages, src.Packages)
	dst.OnlyBuiltDependencies = unionStrings(dst.OnlyBuiltDependencies, src.OnlyBuiltDependencies)

	if len(src.Catalog) > 0 && dst.Catalog == nil {
		dst.Catalog = make(map[string]string, len(src.Catalog))
	}
	for _, name := range sortedKeys(src.Catalog) {
		in := src.Catalog[name]
		cur, ok := dst.Catalog[name]
		if !ok {
			dst.Catalog[name] = in
			continue
		}
		if c.Options.Authoritative {
			dst.Catalog[name] = in
			continue
		}
		if Classify(cur) == IntentPin && Classify(in) == IntentPin && cur != in {
			return nil, c.Conflict("catalog."+name, cur, in, "ambiguous dependency")
		}
		winner, mismatch := Resolve(cur, in)
		if mismatch {
			c.Warn("catalog."+name, "version mismatch %q vs %q, using %q", cur, in, winner)
		}
		dst.Catalog[name] = winner
	}

	for k, v := range src.Extra {
		if _, ok := dst.Extra[k]; !ok {
			if dst.Extra == nil {
				dst.Extra = make(map[string]any)
			}
			dst.Extra[k] = v
		}
	}
	return dst.Encode()
}

func unionStrings(existing, incoming []string) []string {
	out := slices.Clone(existing)
	for _, s := range incoming {
		if !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
