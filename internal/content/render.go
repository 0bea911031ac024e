package content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"text/template"
)

var tmplFuncs = template.FuncMap{
	"json": func(v any) string {
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("<json error: %v>", err)
		}
		return string(b)
	},
	"first": func(v any) any {
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Slice && rv.Len() > 0 {
			return rv.Index(0).Interface()
		}
		return nil
	},
	// has reports whether a string slice (of any named string type)
	// contains s.
	"has": func(list any, s string) bool {
		rv := reflect.ValueOf(list)
		if rv.Kind() != reflect.Slice {
			return false
		}
		for i := range rv.Len() {
			if e := rv.Index(i); e.Kind() == reflect.String && e.String() == s {
				return true
			}
		}
		return false
	},
	"join": func(sep string, list any) string {
		rv := reflect.ValueOf(list)
		if rv.Kind() != reflect.Slice {
			return ""
		}
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = fmt.Sprint(rv.Index(i).Interface())
		}
		return strings.Join(parts, sep)
	},
	"upper": func(s any) string { return strings.ToUpper(fmt.Sprint(s)) },
	"lower": func(s any) string { return strings.ToLower(fmt.Sprint(s)) },
	// default returns def when v is empty or "none".
	"default": func(def, v any) any {
		if v == nil {
			return def
		}
		if s := fmt.Sprint(v); s == "" || s == "none" {
			return def
		}
		return v
	},
	// selected reports whether a single-select category is in use.
	"selected": func(v any) bool {
		s := fmt.Sprint(v)
		return v != nil && s != "" && s != "none"
	},
	"snake": func(s string) string {
		return strings.NewReplacer("-", "_", ".", "_").Replace(s)
	},
}

// Render executes t against data. Leading blank lines left by conditional
// imports are dropped. Non-render templates are returned as is.
func Render(t *Template, data any) ([]byte, error) {
	if !t.Render {
		return t.Data, nil
	}
	tmpl, err := template.New(t.ID).Funcs(tmplFuncs).Option("missingkey=error").Parse(string(t.Data))
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", t.ID, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render template %s: %w", t.ID, err)
	}
	return bytes.TrimLeft(buf.Bytes(), "\n"), nil
}
