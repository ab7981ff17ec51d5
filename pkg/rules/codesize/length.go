package codesize

import (
	"strconv"

	"github.com/leapstack-labs/leapmd/pkg/node"
	"github.com/leapstack-labs/leapmd/pkg/rule"
	"github.com/leapstack-labs/leapmd/pkg/rules/internal/ruleutil"
)

func init() {
	rule.MustRegister("codesize.ExcessiveMethodLength", func() rule.Rule {
		return &ExcessiveMethodLength{}
	})
	rule.MustRegister("codesize.ExcessiveClassLength", func() rule.Rule {
		return &ExcessiveClassLength{}
	})
}

// linesMetric is eloc when ignore-whitespace is set, loc otherwise.
func linesMetric(p rule.Properties) string {
	if p.Bool("ignore-whitespace", false) {
		return "eloc"
	}
	return "loc"
}

// ExcessiveMethodLength reports methods and functions with at least
// minimum lines of code.
type ExcessiveMethodLength struct {
	rule.Base
}

func (*ExcessiveMethodLength) Capabilities() node.Kind {
	return node.KindMethod | node.KindFunction
}

func (r *ExcessiveMethodLength) Apply(ctx *rule.Context, n node.Node) error {
	props := ctx.Properties()
	threshold := props.Int("minimum", 100)
	loc, ok := n.Metric(linesMetric(props))
	if !ok || loc < float64(threshold) {
		return nil
	}
	ctx.AddViolationWithMetric(n, loc, n.Kind().String(), n.Name(), ruleutil.Num(loc), strconv.Itoa(threshold))
	return nil
}

// ExcessiveClassLength reports classes, traits and enums with at least
// minimum lines of code.
type ExcessiveClassLength struct {
	rule.Base
}

func (*ExcessiveClassLength) Capabilities() node.Kind {
	return node.KindClass | node.KindTrait | node.KindEnum
}

func (r *ExcessiveClassLength) Apply(ctx *rule.Context, n node.Node) error {
	props := ctx.Properties()
	threshold := props.Int("minimum", 1000)
	loc, ok := n.Metric(linesMetric(props))
	if !ok || loc < float64(threshold) {
		return nil
	}
	ctx.AddViolationWithMetric(n, loc, n.Name(), ruleutil.Num(loc), strconv.Itoa(threshold))
	return nil
}
