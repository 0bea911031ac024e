// Package validate checks a configuration against the compatibility rules
// before any generation step runs.
//
// Rules are independent predicates evaluated in table order. Every rule
// runs, so a configuration that breaks N rules yields a report with N
// issues.
package validate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agentic-research/stackgen/api"
)

// ErrInvalid is matched by every non-empty *Report.
var ErrInvalid = errors.New("configuration invalid")

// Family groups related rules.
type Family string

const (
	FamilyMembership      Family = "membership"
	FamilyNoneExclusive   Family = "none-exclusivity"
	FamilyEcosystem       Family = "ecosystem"
	FamilyRuntime         Family = "runtime-backend"
	FamilyBackendDatabase Family = "backend-database"
	FamilyORMDatabase     Family = "orm-database"
	FamilyDBSetup         Family = "db-setup"
	FamilyEdge            Family = "edge-runtime"
	FamilyFrontend        Family = "frontend-backend"
	FamilyPrerequisite    Family = "prerequisite"
)

// Issue is one rule violation.
type Issue struct {
	Rule    string `json:"rule"`
	Family  Family `json:"family"`
	Message string `json:"message"`
}

func (i Issue) String() string { return i.Message }

// Rule is a single compatibility predicate. Check returns nil when the
// configuration satisfies the rule.
type Rule struct {
	ID     string
	Family Family
	Check  func(*api.Config) *Issue
}

func fail(format string, args ...any) *Issue {
	return &Issue{Message: fmt.Sprintf(format, args...)}
}

// Report collects the issues of one validation run, in rule order.
type Report struct {
	Issues []Issue `json:"issues"`
}

// OK reports whether no rule was violated.
func (r *Report) OK() bool { return len(r.Issues) == 0 }

// Messages returns the issue messages in order.
func (r *Report) Messages() []string {
	out := make([]string, len(r.Issues))
	for i, is := range r.Issues {
		out[i] = is.Message
	}
	return out
}

func (r *Report) Error() string {
	switch len(r.Issues) {
	case 0:
		return "configuration valid"
	case 1:
		return "configuration invalid: " + r.Issues[0].Message
	}
	return fmt.Sprintf("configuration invalid: %d issues: %s", len(r.Issues), strings.Join(r.Messages(), "; "))
}

func (r *Report) Unwrap() error {
	if r.OK() {
		return nil
	}
	return ErrInvalid
}

// Err returns r as an error, or nil when r holds no issues.
func (r *Report) Err() error {
	if r.OK() {
		return nil
	}
	return r
}

// Validator evaluates a fixed rule list. It holds no state between runs
// and is safe for concurrent use.
type Validator struct {
	rules []Rule
}

// New returns a Validator over rules. With no rules it uses DefaultRules.
func New(rules ...Rule) *Validator {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Validator{rules: rules}
}

// Rules returns the rule list in evaluation order.
func (v *Validator) Rules() []Rule { return v.rules }

// Validate runs every rule against cfg.
func (v *Validator) Validate(cfg *api.Config) *Report {
	rep := &Report{}
	for _, r := range v.rules {
		is := r.Check(cfg)
		if is == nil {
			continue
		}
		if is.Rule == "" {
			is.Rule = r.ID
		}
		if is.Family == "" {
			is.Family = r.Family
		}
		rep.Issues = append(rep.Issues, *is)
	}
	return rep
}

var defaultValidator = New()

// Validate runs the default rules against cfg.
func Validate(cfg *api.Config) *Report {
	return defaultValidator.Validate(cfg)
}
