package design

import (
	"strconv"

	"github.com/leapstack-labs/leapmd/pkg/node"
	"github.com/leapstack-labs/leapmd/pkg/rule"
	"github.com/leapstack-labs/leapmd/pkg/rules/internal/ruleutil"
)

func init() {
	rule.MustRegister("design.CouplingBetweenObjects", func() rule.Rule {
		return &CouplingBetweenObjects{}
	})
	rule.MustRegister("design.DepthOfInheritance", func() rule.Rule {
		return &DepthOfInheritance{}
	})
	rule.MustRegister("design.NumberOfChildren", func() rule.Rule {
		return &NumberOfChildren{}
	})
}

// CouplingBetweenObjects reports classes depending on more than maximum
// other types.
type CouplingBetweenObjects struct {
	rule.Base
}

func (*CouplingBetweenObjects) Capabilities() node.Kind {
	return node.KindClass | node.KindEnum
}

func (r *CouplingBetweenObjects) Apply(ctx *rule.Context, n node.Node) error {
	threshold := ctx.Properties().Int("maximum", 13)
	cbo, ok := n.Metric("cbo")
	if !ok || cbo <= float64(threshold) {
		return nil
	}
	ctx.AddViolationWithMetric(n, cbo, n.Name(), ruleutil.Num(cbo), strconv.Itoa(threshold))
	return nil
}

// DepthOfInheritance reports classes with at least minimum ancestors.
type DepthOfInheritance struct {
	rule.Base
}

func (*DepthOfInheritance) Capabilities() node.Kind {
	return node.KindClass
}

func (r *DepthOfInheritance) Apply(ctx *rule.Context, n node.Node) error {
	threshold := ctx.Properties().Int("minimum", 6)
	dit, ok := n.Metric("dit")
	if !ok || dit < float64(threshold) {
		return nil
	}
	ctx.AddViolationWithMetric(n, dit, n.Name(), ruleutil.Num(dit), strconv.Itoa(threshold))
	return nil
}

// NumberOfChildren reports classes with at least minimum direct
// subclasses.
type NumberOfChildren struct {
	rule.Base
}

func (*NumberOfChildren) Capabilities() node.Kind {
	return node.KindClass
}

func (r *NumberOfChildren) Apply(ctx *rule.Context, n node.Node) error {
	threshold := ctx.Properties().Int("minimum", 15)
	nocc, ok := n.Metric("nocc")
	if !ok || nocc < float64(threshold) {
		return nil
	}
	ctx.AddViolationWithMetric(n, nocc, n.Name(), ruleutil.Num(nocc), strconv.Itoa(threshold))
	return nil
}
