package rule

import "github.com/leapstack-labs/leapmd/pkg/node"

// Reporter receives violations. Implemented by report.Report.
type Reporter interface {
	AddRuleViolation(v *Violation)
}

// Context binds a report and the rule-set's strict flag to the rule being
// applied.
type Context struct {
	reporter Reporter
	rule     Rule
	strict   bool
}

// NewContext creates a context for applying r. A nil reporter discards
// violations.
func NewContext(reporter Reporter, r Rule, strict bool) *Context {
	return &Context{reporter: reporter, rule: r, strict: strict}
}

// Rule returns the rule being applied.
func (c *Context) Rule() Rule { return c.rule }

// Strict reports whether the owning rule-set runs in strict mode.
func (c *Context) Strict() bool { return c.strict }

// Properties returns the applied rule's property bag.
func (c *Context) Properties() Properties {
	return c.rule.Definition().Properties
}

// AddViolation reports n with the given message arguments.
func (c *Context) AddViolation(n node.Node, args ...string) {
	c.add(NewViolation(c.rule, n, args, nil))
}

// AddViolationWithMetric reports n together with the metric value that
// triggered it.
func (c *Context) AddViolationWithMetric(n node.Node, metric float64, args ...string) {
	c.add(NewViolation(c.rule, n, args, &metric))
}

func (c *Context) add(v *Violation) {
	if c.reporter == nil {
		return
	}
	c.reporter.AddRuleViolation(v)
}
