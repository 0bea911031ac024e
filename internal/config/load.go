// Package config reads stack configurations from disk, applies overrides
// and fills defaults. It also holds the tool settings read through viper.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/ohler55/ojg/sen"
	"github.com/pelletier/go-toml/v2"
	ctyjson "github.com/zclconf/go-cty/cty/json"
	"gopkg.in/yaml.v3"

	"github.com/agentic-research/stackgen/api"
)

// Extensions lists the stack file formats Load understands.
var Extensions = []string{".json", ".jsonc", ".yaml", ".yml", ".toml", ".hcl"}

// Load reads a stack file. The format is chosen by extension. Category
// values are not checked here; that is the validator's job.
func Load(path string) (*api.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data, filepath.Ext(path))
}

// Parse decodes a stack file body in the format named by ext.
func Parse(data []byte, ext string) (*api.Config, error) {
	doc, err := parseDocument(data, strings.ToLower(ext))
	if err != nil {
		return nil, err
	}
	return decode(doc)
}

func parseDocument(data []byte, ext string) (map[string]any, error) {
	switch ext {
	case ".json", ".jsonc":
		// SEN accepts JSON plus comments and trailing commas.
		v, err := sen.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
		m, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("parse json: top level is %T, want an object", v)
		}
		return m, nil
	case ".yaml", ".yml":
		var m map[string]any
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
		return m, nil
	case ".toml":
		var m map[string]any
		if err := toml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parse toml: %w", err)
		}
		return m, nil
	case ".hcl":
		return parseHCL(data)
	}
	return nil, fmt.Errorf("unsupported config format %q (want one of %s)", ext, strings.Join(Extensions, ", "))
}

// parseHCL reads top-level attributes only: `backend = "hono"`.
func parseHCL(data []byte) (map[string]any, error) {
	f, diags := hclparse.NewParser().ParseHCL(data, "stack.hcl")
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse hcl: %w", diags)
	}
	attrs, diags := f.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse hcl: %w", diags)
	}
	out := make(map[string]any, len(attrs))
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("evaluate hcl attribute %s: %w", name, diags)
		}
		raw, err := ctyjson.SimpleJSONValue{Value: val}.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("convert hcl attribute %s: %w", name, err)
		}
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("convert hcl attribute %s: %w", name, err)
		}
		out[name] = v
	}
	return out, nil
}

// decode maps a generic document onto api.Config. A multi-select
// category given as a bare string is read as a one-element list.
// Unknown keys are rejected so typos do not silently fall back to
// defaults.
func decode(doc map[string]any) (*api.Config, error) {
	for _, cat := range api.Categories {
		if s, ok := doc[cat.Name].(string); ok && cat.Multi {
			doc[cat.Name] = []any{s}
		}
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	var cfg api.Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// Set assigns values to the named category of cfg, as a command-line
// flag would. Scalar categories take exactly one value.
func Set(cfg *api.Config, category string, values ...string) error {
	cat, ok := api.LookupCategory(category)
	if !ok && category != "projectName" {
		return fmt.Errorf("unknown category %q", category)
	}
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	switch {
	case cat.Multi:
		list := make([]any, len(values))
		for i, v := range values {
			list[i] = v
		}
		doc[category] = list
	case len(values) != 1:
		return fmt.Errorf("category %s takes one value, got %d", category, len(values))
	default:
		doc[category] = values[0]
	}
	out, err := decode(doc)
	if err != nil {
		return err
	}
	*cfg = *out
	return nil
}
