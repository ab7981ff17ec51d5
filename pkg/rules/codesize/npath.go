package codesize

import (
	"strconv"

	"github.com/leapstack-labs/leapmd/pkg/node"
	"github.com/leapstack-labs/leapmd/pkg/rule"
	"github.com/leapstack-labs/leapmd/pkg/rules/internal/ruleutil"
)

func init() {
	rule.MustRegister("codesize.NPathComplexity", func() rule.Rule {
		return &NPathComplexity{}
	})
}

// NPathComplexity reports methods and functions with at least minimum
// acyclic execution paths.
type NPathComplexity struct {
	rule.Base
}

func (*NPathComplexity) Capabilities() node.Kind {
	return node.KindMethod | node.KindFunction
}

func (r *NPathComplexity) Apply(ctx *rule.Context, n node.Node) error {
	threshold := ctx.Properties().Int("minimum", 200)
	npath, ok := n.Metric("npath")
	if !ok || npath < float64(threshold) {
		return nil
	}
	ctx.AddViolationWithMetric(n, npath, n.Kind().String(), n.Name(), ruleutil.Num(npath), strconv.Itoa(threshold))
	return nil
}
