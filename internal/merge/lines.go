package merge

import (
	"bytes"
	"strings"
)

// MergeLines is the line-list policy used for ignore files: lines of
// incoming not already present are appended, blank lines and comments
// are carried through.
func MergeLines(_ *Context, existing, incoming []byte) ([]byte, error) {
	seen := map[string]bool{}
	var out []string
	for _, l := range splitLines(existing) {
		if t := strings.TrimSpace(l); t != "" && !strings.HasPrefix(t, "#") {
			seen[t] = true
		}
		out = append(out, l)
	}
	var added []string
	for _, l := range splitLines(incoming) {
		t := strings.TrimSpace(l)
		if t == "" {
			continue
		}
		if strings.HasPrefix(t, "#") {
			added = append(added, l)
			continue
		}
		if seen[t] {
			continue
		}
		seen[t] = true
		added = append(added, l)
	}
	// drop comments that no longer precede anything
	for len(added) > 0 && strings.HasPrefix(strings.TrimSpace(added[len(added)-1]), "#") {
		added = added[:len(added)-1]
	}
	if len(added) > 0 {
		if len(out) > 0 {
			out = append(out, "")
		}
		out = append(out, added...)
	}
	var buf bytes.Buffer
	for _, l := range out {
		buf.WriteString(l)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

func splitLines(b []byte) []string {
	s := strings.TrimRight(string(b), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
