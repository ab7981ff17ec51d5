// Package ruletest runs a single registered rule against a node in tests.
package ruletest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapmd/pkg/node"
	"github.com/leapstack-labs/leapmd/pkg/rule"
)

type collector struct {
	violations []*rule.Violation
}

func (c *collector) AddRuleViolation(v *rule.Violation) {
	c.violations = append(c.violations, v)
}

// New constructs class from rule.DefaultRegistry with the given message and
// properties.
func New(t *testing.T, class, message string, props rule.Properties) rule.Rule {
	t.Helper()
	r, err := rule.DefaultRegistry.New(class)
	require.NoError(t, err)
	r.Definition().Name = class
	r.Definition().Message = message
	r.Definition().Properties = props
	return r
}

// Apply runs r against n when n's kind is among its capabilities and
// returns the violations it reported.
func Apply(t *testing.T, r rule.Rule, n node.Node) ([]*rule.Violation, error) {
	t.Helper()
	if !r.Capabilities().Has(n.Kind()) {
		return nil, nil
	}
	c := &collector{}
	err := r.Apply(rule.NewContext(c, r, false), n)
	return c.violations, err
}

// Run is New followed by Apply, failing the test on an apply error.
func Run(t *testing.T, class string, props rule.Properties, n node.Node) []*rule.Violation {
	t.Helper()
	r := New(t, class, "", props)
	vs, err := Apply(t, r, n)
	require.NoError(t, err)
	return vs
}
