package codesize

import (
	"strconv"

	"github.com/leapstack-labs/leapmd/pkg/node"
	"github.com/leapstack-labs/leapmd/pkg/rule"
	"github.com/leapstack-labs/leapmd/pkg/rules/internal/ruleutil"
)

func init() {
	rule.MustRegister("codesize.CyclomaticComplexity", func() rule.Rule {
		return &CyclomaticComplexity{}
	})
}

// CyclomaticComplexity reports methods and functions whose extended
// cyclomatic complexity reaches reportLevel.
type CyclomaticComplexity struct {
	rule.Base
}

func (*CyclomaticComplexity) Capabilities() node.Kind {
	return node.KindMethod | node.KindFunction
}

func (r *CyclomaticComplexity) Apply(ctx *rule.Context, n node.Node) error {
	threshold := ctx.Properties().Int("reportLevel", 10)
	ccn, ok := n.Metric("ccn2")
	if !ok || ccn < float64(threshold) {
		return nil
	}
	ctx.AddViolationWithMetric(n, ccn, n.Kind().String(), n.Name(), ruleutil.Num(ccn), strconv.Itoa(threshold))
	return nil
}
