package ruleset

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/leapmd/pkg/node"
	"github.com/leapstack-labs/leapmd/pkg/rule"
)

// RuleSet is an ordered, de-duplicated collection of rules bucketed by the
// node kinds they accept.
type RuleSet struct {
	Name        string
	Description string
	FileName    string

	strict   bool
	buckets  map[node.Kind][]rule.Rule
	reporter rule.Reporter
}

// New creates an empty rule-set.
func New(name string) *RuleSet {
	return &RuleSet{
		Name:    name,
		buckets: make(map[node.Kind][]rule.Rule),
	}
}

// AddRule appends r to the bucket of every kind it is capable of. A
// multi-kind rule is shared between buckets, not copied.
func (rs *RuleSet) AddRule(r rule.Rule) {
	for _, k := range r.Capabilities().Split() {
		rs.buckets[k] = append(rs.buckets[k], r)
	}
}

// Rules returns every rule once, walking buckets in the fixed kind order
// and keeping the first occurrence.
func (rs *RuleSet) Rules() []rule.Rule {
	seen := make(map[rule.Rule]bool)
	var out []rule.Rule
	for _, k := range node.Kinds() {
		for _, r := range rs.buckets[k] {
			if seen[r] {
				continue
			}
			seen[r] = true
			out = append(out, r)
		}
	}
	return out
}

// RulesFor returns the rules dispatched for nodes of kind k.
func (rs *RuleSet) RulesFor(k node.Kind) []rule.Rule {
	return append([]rule.Rule(nil), rs.buckets[k]...)
}

// RuleByName returns the first rule with the exact given name.
func (rs *RuleSet) RuleByName(name string) (rule.Rule, bool) {
	for _, r := range rs.Rules() {
		if rule.Name(r) == name {
			return r, true
		}
	}
	return nil, false
}

// Len returns the number of distinct rules.
func (rs *RuleSet) Len() int {
	return len(rs.Rules())
}

// SetStrict toggles strict mode. Strict rule-sets ignore suppression
// annotations.
func (rs *RuleSet) SetStrict(strict bool) { rs.strict = strict }

// IsStrict reports whether the rule-set is strict.
func (rs *RuleSet) IsStrict() bool { return rs.strict }

// SetReport binds the reporter that receives violations from Apply.
func (rs *RuleSet) SetReport(r rule.Reporter) { rs.reporter = r }

// Apply dispatches n to every rule in the bucket of its kind.
//
// A rule that returns an error or panics does not stop dispatch: its
// failure is wrapped in a *RuleError and the remaining rules still run.
// The returned error joins all such failures.
func (rs *RuleSet) Apply(n node.Node) error {
	bucket, ok := rs.buckets[n.Kind()]
	if !ok {
		return nil
	}

	var errs []error
	for _, r := range bucket {
		if !rs.strict && n.HasSuppressWarningsFor(rule.Name(r)) {
			continue
		}
		if err := rs.applyRule(r, n); err != nil {
			errs = append(errs, &RuleError{
				Rule: rule.Name(r),
				File: n.FileName(),
				Line: n.BeginLine(),
				Err:  err,
			})
		}
	}
	return errors.Join(errs...)
}

func (rs *RuleSet) applyRule(r rule.Rule, n node.Node) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return r.Apply(rule.NewContext(rs.reporter, r, rs.strict), n)
}
