package naming

import (
	"strconv"
	"strings"

	"github.com/leapstack-labs/leapmd/pkg/node"
	"github.com/leapstack-labs/leapmd/pkg/rule"
	"github.com/leapstack-labs/leapmd/pkg/rules/internal/ruleutil"
)

func init() {
	rule.MustRegister("naming.ShortMethodName", func() rule.Rule {
		return &ShortMethodName{}
	})
	rule.MustRegister("naming.ConstructorWithNameAsEnclosingClass", func() rule.Rule {
		return &ConstructorWithNameAsEnclosingClass{}
	})
}

// ShortMethodName reports method and function names shorter than minimum
// unless listed in exceptions.
type ShortMethodName struct {
	rule.Base
}

func (*ShortMethodName) Capabilities() node.Kind {
	return node.KindMethod | node.KindFunction
}

func (r *ShortMethodName) Apply(ctx *rule.Context, n node.Node) error {
	props := ctx.Properties()
	threshold := props.Int("minimum", 3)
	name := n.Name()
	if len(name) >= threshold || ruleutil.Contains(props.List("exceptions", nil), name) {
		return nil
	}
	ctx.AddViolation(n, n.ClassName(), name, strconv.Itoa(threshold))
	return nil
}

// ConstructorWithNameAsEnclosingClass reports class methods named like the
// class itself.
type ConstructorWithNameAsEnclosingClass struct {
	rule.Base
}

func (*ConstructorWithNameAsEnclosingClass) Capabilities() node.Kind {
	return node.KindMethod
}

func (r *ConstructorWithNameAsEnclosingClass) Apply(ctx *rule.Context, n node.Node) error {
	parent := n.Parent()
	if parent == nil || parent.Kind() != node.KindClass {
		return nil
	}
	if !strings.EqualFold(n.Name(), parent.Name()) {
		return nil
	}
	ctx.AddViolation(n)
	return nil
}
