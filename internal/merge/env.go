package merge

import (
	"bufio"
	"bytes"
	"strconv"
	"strings"
)

const requiredMarker = "(required)"

// EnvVar is one declaration in an environment file.
type EnvVar struct {
	Name     string
	Value    string
	Comment  string
	Required bool
}

// ParseEnv reads KEY=value lines. A comment directly above a variable
// becomes its Comment; a trailing "(required)" in it sets Required.
func ParseEnv(data []byte) []EnvVar {
	var (
		vars    []EnvVar
		comment []string
	)
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "":
			comment = nil
		case strings.HasPrefix(line, "#"):
			comment = append(comment, strings.TrimSpace(strings.TrimPrefix(line, "#")))
		default:
			name, value, ok := strings.Cut(line, "=")
			if !ok {
				comment = nil
				continue
			}
			v := EnvVar{Name: strings.TrimSpace(strings.TrimPrefix(name, "export ")), Value: unquote(strings.TrimSpace(value))}
			text := strings.Join(comment, " ")
			if strings.HasSuffix(text, requiredMarker) {
				v.Required = true
				text = strings.TrimSpace(strings.TrimSuffix(text, requiredMarker))
			}
			v.Comment = text
			vars = append(vars, v)
			comment = nil
		}
	}
	return vars
}

// FormatEnv renders vars, one blank line between declarations.
func FormatEnv(vars []EnvVar) []byte {
	var buf bytes.Buffer
	for i, v := range vars {
		if i > 0 {
			buf.WriteByte('\n')
		}
		comment := v.Comment
		if v.Required {
			comment = strings.TrimSpace(comment + " " + requiredMarker)
		}
		if comment != "" {
			buf.WriteString("# " + comment + "\n")
		}
		buf.WriteString(v.Name + "=" + quote(v.Value) + "\n")
	}
	return buf.Bytes()
}

// MergeEnv is the environment file policy: variables merge by name, the
// required flag is sticky, a later declaration may fill an empty value or
// comment, and a differing non-empty value keeps the first with a warning.
func MergeEnv(c *Context, existing, incoming []byte) ([]byte, error) {
	vars := ParseEnv(existing)
	index := make(map[string]int, len(vars))
	for i, v := range vars {
		index[v.Name] = i
	}
	for _, in := range ParseEnv(incoming) {
		i, ok := index[in.Name]
		if !ok {
			index[in.Name] = len(vars)
			vars = append(vars, in)
			continue
		}
		cur := &vars[i]
		cur.Required = cur.Required || in.Required
		if cur.Comment == "" {
			cur.Comment = in.Comment
		}
		switch {
		case cur.Value == "":
			cur.Value = in.Value
		case in.Value != "" && in.Value != cur.Value:
			if c.Options.Authoritative {
				cur.Value = in.Value
			} else {
				c.Warn(in.Name, "keeping value %q over %q", cur.Value, in.Value)
			}
		}
	}
	return FormatEnv(vars), nil
}

func quote(v string) string {
	if v == "" || !strings.ContainsAny(v, " \t#\"'") {
		return v
	}
	return strconv.Quote(v)
}

func unquote(v string) string {
	if len(v) >= 2 && (v[0] == '"' && v[len(v)-1] == '"') {
		if s, err := strconv.Unquote(v); err == nil {
			return s
		}
	}
	if len(v) >= 2 && v[0] == '\'' && v[len(v)-1] == '\'' {
		return v[1 : len(v)-1]
	}
	return v
}
