package merge

import (
	"fmt"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
)

// Query evaluates a JSONPath selector against a JSON document.
func Query(data []byte, selector string) ([]any, error) {
	x, err := jp.ParseString(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid jsonpath '%s': %w", selector, err)
	}
	root, err := oj.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	return x.Get(root), nil
}

// QueryStrings is Query for selectors that address a string-valued map,
// such as "$.scripts". Non-string values are skipped.
func QueryStrings(data []byte, selector string) (map[string]string, error) {
	results, err := Query(data, selector)
	if err != nil {
		return nil, err
	}
	out := map[string]string{}
	for _, r := range results {
		m, ok := r.(map[string]any)
		if !ok {
			continue
		}
		for k, v := range m {
			if s, ok := v.(string); ok {
				out[k] = s
			}
		}
	}
	return out, nil
}
