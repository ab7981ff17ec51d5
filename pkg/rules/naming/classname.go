package naming

import (
	"strconv"
	"strings"

	"github.com/leapstack-labs/leapmd/pkg/node"
	"github.com/leapstack-labs/leapmd/pkg/rule"
	"github.com/leapstack-labs/leapmd/pkg/rules/internal/ruleutil"
)

func init() {
	rule.MustRegister("naming.ShortClassName", func() rule.Rule {
		return &ShortClassName{}
	})
	rule.MustRegister("naming.LongClassName", func() rule.Rule {
		return &LongClassName{}
	})
}

// ShortClassName reports type names shorter than minimum unless listed in
// exceptions.
type ShortClassName struct {
	rule.Base
}

func (*ShortClassName) Capabilities() node.Kind {
	return node.TypeKinds
}

func (r *ShortClassName) Apply(ctx *rule.Context, n node.Node) error {
	props := ctx.Properties()
	threshold := props.Int("minimum", 3)
	name := n.Name()
	if len(name) >= threshold || ruleutil.Contains(props.List("exceptions", nil), name) {
		return nil
	}
	ctx.AddViolation(n, name, strconv.Itoa(threshold))
	return nil
}

// LongClassName reports type names longer than maximum. The first
// matching entry of subtract-suffixes is not counted.
type LongClassName struct {
	rule.Base
}

func (*LongClassName) Capabilities() node.Kind {
	return node.TypeKinds
}

func (r *LongClassName) Apply(ctx *rule.Context, n node.Node) error {
	props := ctx.Properties()
	threshold := props.Int("maximum", 40)
	name := n.Name()

	length := len(name)
	for _, suffix := range props.List("subtract-suffixes", nil) {
		if strings.HasSuffix(name, suffix) {
			length -= len(suffix)
			break
		}
	}
	if length <= threshold {
		return nil
	}
	ctx.AddViolation(n, name, strconv.Itoa(threshold))
	return nil
}
