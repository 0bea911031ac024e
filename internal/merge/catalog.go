package merge

import (
	"strings"

	"golang.org/x/mod/semver"
)

// Intent classifies a version specifier for catalog precedence.
type Intent int

const (
	IntentTag   Intent = iota // "latest", "next", "*", dist-tags
	IntentRange               // "^1.2.0", "~1.2", ">=1 <2"
	IntentPin                 // "1.2.3"
)

func (i Intent) String() string {
	switch i {
	case IntentPin:
		return "pin"
	case IntentRange:
		return "range"
	default:
		return "tag"
	}
}

// Classify returns the intent of a version specifier.
func Classify(spec string) Intent {
	spec = strings.TrimSpace(spec)
	if isPin(spec) {
		return IntentPin
	}
	if baseVersion(spec) != "" {
		return IntentRange
	}
	return IntentTag
}

// isPin reports whether spec names one concrete version.
func isPin(spec string) bool {
	v := "v" + strings.TrimPrefix(spec, "=")
	if !semver.IsValid(v) {
		return false
	}
	core := strings.SplitN(strings.SplitN(v, "-", 2)[0], "+", 2)[0]
	return strings.Count(core, ".") == 2
}

// baseVersion extracts the lowest version a specifier admits, as a
// canonical semver string ("v1.2.0"), or "" when there is none.
func baseVersion(spec string) string {
	s := strings.TrimLeft(strings.TrimSpace(spec), "^~=><v ")
	if i := strings.IndexAny(s, " ,|"); i >= 0 {
		s = s[:i]
	}
	s = strings.ReplaceAll(strings.ReplaceAll(s, ".x", ""), ".*", "")
	v := "v" + s
	if !semver.IsValid(v) {
		return ""
	}
	return semver.Canonical(v)
}

// Resolve picks the winning specifier of two writes for the same package:
// explicit pin > range > tag, then the higher base version. On a full tie
// the existing value wins. mismatch reports whether the inputs differed.
func Resolve(existing, incoming string) (winner string, mismatch bool) {
	if existing == incoming {
		return existing, false
	}
	ei, ii := Classify(existing), Classify(incoming)
	if ei != ii {
		if ii > ei {
			return incoming, true
		}
		return existing, true
	}
	if c := semver.Compare(baseVersion(incoming), baseVersion(existing)); c > 0 {
		return incoming, true
	}
	return existing, true
}
