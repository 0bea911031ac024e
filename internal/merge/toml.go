package merge

import (
	"bytes"
	"fmt"
	"path"
	"reflect"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// tableOrder is the preferred order of top-level tables per manifest kind.
// Tables not listed follow in sorted order.
var tableOrder = map[string][]string{
	"Cargo.toml": {
		"package", "workspace", "lib", "bin", "features",
		"dependencies", "dev-dependencies", "build-dependencies", "profile",
	},
	"pyproject.toml": {"project", "dependency-groups", "build-system", "tool"},
}

// tomlDependencyTables merge entry by entry with dependency semantics.
var tomlDependencyTables = map[string]bool{
	"dependencies":           true,
	"dev-dependencies":       true,
	"build-dependencies":     true,
	"workspace.dependencies": true,
}

// requirementLists hold PEP 508 requirement strings, merged by package name.
var requirementLists = map[string]bool{
	"project.dependencies": true,
	"build-system.requires": true,
}

// MergeTOML is the Cargo.toml / pyproject.toml policy: tables deep-merge,
// dependency tables and requirement lists merge by package name keeping
// the existing version, other arrays union.
func MergeTOML(c *Context, existing, incoming []byte) ([]byte, error) {
	dst := map[string]any{}
	if err := toml.Unmarshal(existing, &dst); err != nil {
		return nil, fmt.Errorf("parse existing %s: %w", c.Path, err)
	}
	src := map[string]any{}
	if err := toml.Unmarshal(incoming, &src); err != nil {
		return nil, fmt.Errorf("parse incoming %s: %w", c.Path, err)
	}
	mergeTable(c, "", dst, src)
	return EncodeTOML(path.Base(c.Path), dst)
}

func mergeTable(c *Context, prefix string, dst, src map[string]any) {
	for _, k := range sortedKeys(src) {
		in := src[k]
		key := joinKey(prefix, k)
		cur, ok := dst[k]
		if !ok {
			dst[k] = in
			continue
		}
		ct, curTable := cur.(map[string]any)
		it, inTable := in.(map[string]any)
		switch {
		case curTable && inTable && tomlDependencyTables[key]:
			mergeDependencyTable(c, key, ct, it)
		case curTable && inTable:
			mergeTable(c, key, ct, it)
		case requirementLists[key] || strings.HasPrefix(key, "dependency-groups.") || strings.HasPrefix(key, "project.optional-dependencies."):
			dst[k] = mergeRequirements(c, key, cur, in)
		default:
			ca, curArr := cur.([]any)
			ia, inArr := in.([]any)
			if curArr && inArr {
				dst[k] = unionArray(ca, ia)
				continue
			}
			if reflect.DeepEqual(cur, in) {
				continue
			}
			if c.Options.Authoritative {
				dst[k] = in
				continue
			}
			c.Warn(key, "keeping %v over %v", cur, in)
		}
	}
}

func mergeDependencyTable(c *Context, key string, dst, src map[string]any) {
	for _, name := range sortedKeys(src) {
		in := src[name]
		cur, ok := dst[name]
		if ok {
			if ct, isTable := cur.(map[string]any); isTable {
				if it, inTable := in.(map[string]any); inTable {
					mergeTable(c, joinKey(key, name), ct, it)
					continue
				}
			}
			if reflect.DeepEqual(cur, in) {
				continue
			}
		}
		if !ok || c.Options.Authoritative {
			dst[name] = in
			continue
		}
		if ci, ii := fmt.Sprint(cur), fmt.Sprint(in); ci != ii {
			c.Warn(joinKey(key, name), "keeping %s over %s", ci, ii)
		}
	}
}

func mergeRequirements(c *Context, key string, existing, incoming any) any {
	ca, ok1 := existing.([]any)
	ia, ok2 := incoming.([]any)
	if !ok1 || !ok2 {
		return existing
	}
	out := slices.Clone(ca)
	index := make(map[string]int, len(out))
	for i, v := range out {
		if s, ok := v.(string); ok {
			index[RequirementName(s)] = i
		}
	}
	for _, v := range ia {
		s, ok := v.(string)
		if !ok {
			continue
		}
		name := RequirementName(s)
		i, seen := index[name]
		if !seen {
			index[name] = len(out)
			out = append(out, s)
			continue
		}
		if cur, _ := out[i].(string); cur != s {
			if c.Options.Authoritative {
				out[i] = s
			} else {
				c.Warn(joinKey(key, name), "keeping %q over %q", cur, s)
			}
		}
	}
	return out
}

// RequirementName returns the normalized package name of a PEP 508
// requirement such as "fastapi[standard]>=0.115".
func RequirementName(req string) string {
	req = strings.TrimSpace(req)
	end := strings.IndexFunc(req, func(r rune) bool {
		return !(r == '-' || r == '_' || r == '.' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z')
	})
	if end >= 0 {
		req = req[:end]
	}
	return strings.ReplaceAll(strings.ReplaceAll(strings.ToLower(req), "_", "-"), ".", "-")
}

// EncodeTOML writes doc with top-level scalars first, then tables in the
// preferred order for kind (a file base name), then the rest sorted.
func EncodeTOML(kind string, doc map[string]any) ([]byte, error) {
	var (
		buf     bytes.Buffer
		scalars = map[string]any{}
		tables  []string
	)
	for _, k := range sortedKeys(doc) {
		if _, ok := doc[k].(map[string]any); ok {
			tables = append(tables, k)
		} else {
			scalars[k] = doc[k]
		}
	}
	if len(scalars) > 0 {
		b, err := toml.Marshal(scalars)
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	order := tableOrder[kind]
	slices.SortStableFunc(tables, func(a, b string) int {
		ai, bi := slices.Index(order, a), slices.Index(order, b)
		switch {
		case ai >= 0 && bi >= 0:
			return ai - bi
		case ai >= 0:
			return -1
		case bi >= 0:
			return 1
		}
		return strings.Compare(a, b)
	})
	for _, k := range tables {
		b, err := toml.Marshal(map[string]any{k: doc[k]})
		if err != nil {
			return nil, fmt.Errorf("encode table %s: %w", k, err)
		}
		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.Write(b)
	}
	return buf.Bytes(), nil
}
