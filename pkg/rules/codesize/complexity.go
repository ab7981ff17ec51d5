package codesize

import (
	"strconv"

	"github.com/leapstack-labs/leapmd/pkg/node"
	"github.com/leapstack-labs/leapmd/pkg/rule"
	"github.com/leapstack-labs/leapmd/pkg/rules/internal/ruleutil"
)

func init() {
	rule.MustRegister("codesize.ExcessiveClassComplexity", func() rule.Rule {
		return &ExcessiveClassComplexity{}
	})
}

// ExcessiveClassComplexity reports types whose weighted method count
// reaches maximum.
type ExcessiveClassComplexity struct {
	rule.Base
}

func (*ExcessiveClassComplexity) Capabilities() node.Kind {
	return node.KindClass | node.KindTrait | node.KindEnum
}

func (r *ExcessiveClassComplexity) Apply(ctx *rule.Context, n node.Node) error {
	threshold := ctx.Properties().Int("maximum", 50)
	wmc, ok := n.Metric("wmc")
	if !ok || wmc < float64(threshold) {
		return nil
	}
	ctx.AddViolationWithMetric(n, wmc, n.Name(), ruleutil.Num(wmc), strconv.Itoa(threshold))
	return nil
}
