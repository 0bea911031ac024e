package merge

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Object is an insertion-ordered JSON object.
type Object = orderedmap.OrderedMap[string, any]

// NewObject returns an empty Object.
func NewObject() *Object { return orderedmap.New[string, any]() }

// dependencyKeys are the manifest maps merged with dependency semantics.
var dependencyKeys = map[string]bool{
	"dependencies":         true,
	"devDependencies":      true,
	"peerDependencies":     true,
	"optionalDependencies": true,
}

// MergeManifest is the package.json policy: dependency maps union (the
// existing version wins unless the write is authoritative; two different
// exact pins are an ambiguous dependency), scripts union (a different
// value for an existing script is a conflict unless Override is set),
// nested objects deep-merge, arrays union.
func MergeManifest(c *Context, existing, incoming []byte) ([]byte, error) {
	dst, err := ParseObject(existing)
	if err != nil {
		return nil, fmt.Errorf("parse existing %s: %w", c.Path, err)
	}
	src, err := ParseObject(incoming)
	if err != nil {
		return nil, fmt.Errorf("parse incoming %s: %w", c.Path, err)
	}
	if err := mergeObject(c, "", dst, src); err != nil {
		return nil, err
	}
	return EncodeJSON(dst)
}

func mergeObject(c *Context, prefix string, dst, src *Object) error {
	for pair := src.Oldest(); pair != nil; pair = pair.Next() {
		key := joinKey(prefix, pair.Key)
		ev, ok := dst.Get(pair.Key)
		if !ok {
			if obj, isObj := pair.Value.(*Object); isObj && dependencyKeys[pair.Key] {
				pair.Value = sortObject(obj)
			}
			dst.Set(pair.Key, pair.Value)
			continue
		}
		switch {
		case dependencyKeys[pair.Key] || key == "workspaces.catalog" || key == "catalog":
			merged, err := mergeDependencies(c, key, ev, pair.Value)
			if err != nil {
				return err
			}
			dst.Set(pair.Key, merged)
		case key == "scripts":
			if err := mergeScripts(c, ev, pair.Value); err != nil {
				return err
			}
		default:
			merged, err := mergeValue(c, key, ev, pair.Value)
			if err != nil {
				return err
			}
			dst.Set(pair.Key, merged)
		}
	}
	return nil
}

func mergeValue(c *Context, key string, existing, incoming any) (any, error) {
	switch ev := existing.(type) {
	case *Object:
		if iv, ok := incoming.(*Object); ok {
			if err := mergeObject(c, key, ev, iv); err != nil {
				return nil, err
			}
			return ev, nil
		}
	case []any:
		if iv, ok := incoming.([]any); ok {
			return unionArray(ev, iv), nil
		}
	}
	if reflect.DeepEqual(existing, incoming) {
		return existing, nil
	}
	if c.Options.Authoritative {
		return incoming, nil
	}
	c.Warn(key, "keeping %s over %s", render(existing), render(incoming))
	return existing, nil
}

func mergeDependencies(c *Context, key string, existing, incoming any) (any, error) {
	dst, ok1 := existing.(*Object)
	src, ok2 := incoming.(*Object)
	if !ok1 || !ok2 {
		return nil, c.Conflict(key, render(existing), render(incoming), "dependency map is not an object")
	}
	for pair := src.Oldest(); pair != nil; pair = pair.Next() {
		name := pair.Key
		in, _ := pair.Value.(string)
		cur, ok := dst.Get(name)
		if !ok {
			dst.Set(name, pair.Value)
			continue
		}
		ex, _ := cur.(string)
		if ex == in {
			continue
		}
		switch {
		case c.Options.Authoritative:
			dst.Set(name, in)
		case isPin(ex) && isPin(in):
			return nil, c.Conflict(joinKey(key, name), ex, in, "ambiguous dependency")
		default:
			c.Warn(joinKey(key, name), "keeping %q over %q", ex, in)
		}
	}
	return sortObject(dst), nil
}

func mergeScripts(c *Context, existing, incoming any) error {
	dst, ok1 := existing.(*Object)
	src, ok2 := incoming.(*Object)
	if !ok1 || !ok2 {
		return c.Conflict("scripts", render(existing), render(incoming), "scripts is not an object")
	}
	for pair := src.Oldest(); pair != nil; pair = pair.Next() {
		cur, ok := dst.Get(pair.Key)
		if !ok || reflect.DeepEqual(cur, pair.Value) {
			dst.Set(pair.Key, pair.Value)
			continue
		}
		if !c.Options.Override {
			return c.Conflict(joinKey("scripts", pair.Key), render(cur), render(pair.Value), "script defined twice")
		}
		dst.Set(pair.Key, pair.Value)
	}
	return nil
}

func unionArray(existing, incoming []any) []any {
	out := append([]any(nil), existing...)
	for _, v := range incoming {
		found := false
		for _, e := range out {
			if reflect.DeepEqual(e, v) {
				found = true
				break
			}
		}
		if !found {
			out = append(out, v)
		}
	}
	return out
}

func sortObject(o *Object) *Object {
	keys := make([]string, 0, o.Len())
	for pair := o.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	sort.Strings(keys)
	out := NewObject()
	for _, k := range keys {
		v, _ := o.Get(k)
		out.Set(k, v)
	}
	return out
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func render(v any) string {
	b, err := EncodeJSON(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return strings.TrimSpace(string(b))
}

// ParseObject decodes a JSON object, keeping key order at every level.
// Empty input yields an empty object.
func ParseObject(data []byte) (*Object, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return NewObject(), nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(*Object)
	if !ok {
		return nil, fmt.Errorf("expected a JSON object")
	}
	return obj, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := NewObject()
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := kt.(string)
				if !ok {
					return nil, fmt.Errorf("object key is %T", kt)
				}
				v, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				obj.Set(key, v)
			}
			_, err := dec.Token() // '}'
			return obj, err
		case '[':
			arr := []any{}
			for dec.More() {
				v, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				arr = append(arr, v)
			}
			_, err := dec.Token() // ']'
			return arr, err
		}
		return nil, fmt.Errorf("unexpected delimiter %q", t)
	default:
		return t, nil
	}
}

// EncodeJSON writes v with two-space indentation, no HTML escaping and a
// trailing newline. Objects keep their key order.
func EncodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return unescapeHTML(buf.Bytes()), nil
}

// htmlEscapes are the sequences json.Marshal emits for <, > and & inside
// nested values regardless of the encoder setting.
var htmlEscapes = map[string]byte{`u003c`: '<', `u003e`: '>', `u0026`: '&'}

func unescapeHTML(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		if b[i] != '\\' || i+1 >= len(b) {
			out = append(out, b[i])
			continue
		}
		if i+6 <= len(b) {
			if c, ok := htmlEscapes[string(b[i+1:i+6])]; ok {
				out = append(out, c)
				i += 5
				continue
			}
		}
		out = append(out, b[i], b[i+1])
		i++
	}
	return out
}
