package rule

import "github.com/leapstack-labs/leapmd/pkg/node"

// Rule is a single check bound to one or more node kinds.
type Rule interface {
	// Definition returns the rule's mutable metadata. The factory fills it
	// while resolving a rule-set; it is treated as read-only afterwards.
	Definition() *Definition

	// Capabilities names the node kinds this rule receives.
	Capabilities() node.Kind

	// Apply inspects n and reports violations through ctx.
	Apply(ctx *Context, n node.Node) error
}

// Configurable is implemented by rule classes that back many distinct
// rules, each defined entirely by its rule-set configuration. Violations of
// such rules are identified by class and rule name.
type Configurable interface {
	Rule
	Configurable()
}

// Base carries the Definition for rule implementations to embed.
type Base struct {
	def Definition
}

// Definition implements Rule.
func (b *Base) Definition() *Definition {
	return &b.def
}

// Name is a shorthand for r.Definition().Name.
func Name(r Rule) string {
	return r.Definition().Name
}
