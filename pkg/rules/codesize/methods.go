package codesize

import (
	"fmt"
	"strconv"

	"github.com/leapstack-labs/leapmd/pkg/node"
	"github.com/leapstack-labs/leapmd/pkg/rule"
	"github.com/leapstack-labs/leapmd/pkg/rules/internal/ruleutil"
)

func init() {
	rule.MustRegister("codesize.TooManyMethods", func() rule.Rule {
		return &TooManyMethods{}
	})
}

const defaultIgnorePattern = "(^(set|get|is|has|with))i"

// TooManyMethods reports types declaring more than maxmethods methods,
// not counting those whose name matches ignorepattern.
type TooManyMethods struct {
	rule.Base
}

func (*TooManyMethods) Capabilities() node.Kind {
	return node.TypeKinds
}

func (r *TooManyMethods) Apply(ctx *rule.Context, n node.Node) error {
	props := ctx.Properties()
	threshold := props.Int("maxmethods", 25)

	ignore, err := ruleutil.CompileDelimited(props.String("ignorepattern", defaultIgnorePattern))
	if err != nil {
		return fmt.Errorf("invalid ignorepattern: %w", err)
	}

	count := 0
	for _, child := range n.Children() {
		if child.Kind() != node.KindMethod || ignore.MatchString(child.Name()) {
			continue
		}
		count++
	}
	if count <= threshold {
		return nil
	}
	ctx.AddViolationWithMetric(n, float64(count), n.Kind().String(), n.Name(), strconv.Itoa(count), strconv.Itoa(threshold))
	return nil
}
