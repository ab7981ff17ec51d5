// Package expression provides a rule whose condition is a CEL expression
// configured in the rule-set, so simple checks need no Go code:
//
//	<rule name="NoManagers" class="expression.Expression"
//	      message="{0} looks like a manager class">
//	    <properties>
//	        <property name="kinds" value="class"/>
//	        <property name="expression" value="name.endsWith('Manager')"/>
//	    </properties>
//	</rule>
//
// The expression sees name, fqn, kind, namespace, class, method, function,
// file, lines (end minus begin line plus one) and metrics (map of string to
// double). A lookup of a metric the node does not carry evaluates to no
// violation.
package expression

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/cel-go/cel"

	"github.com/leapstack-labs/leapmd/pkg/node"
	"github.com/leapstack-labs/leapmd/pkg/rule"
	"github.com/leapstack-labs/leapmd/pkg/rules/internal/ruleutil"
)

func init() {
	rule.MustRegister("expression.Expression", func() rule.Rule {
		return &Expression{}
	})
}

// ErrNoExpression is returned when the expression property is unset.
var ErrNoExpression = errors.New("expression property is required")

// Expression reports nodes for which a CEL expression is true.
//
// Properties:
//   - expression: boolean CEL expression (required)
//   - kinds: comma separated node kinds to check, default all
//   - metric: metric to attach to violations and pass as argument {1}
type Expression struct {
	rule.Base

	compiled string
	program  cel.Program
}

var _ rule.Configurable = (*Expression)(nil)

// Configurable marks every Expression as a distinct rule.
func (*Expression) Configurable() {}

var env = mustEnv()

func mustEnv() *cel.Env {
	e, err := cel.NewEnv(
		cel.Variable("name", cel.StringType),
		cel.Variable("fqn", cel.StringType),
		cel.Variable("kind", cel.StringType),
		cel.Variable("namespace", cel.StringType),
		cel.Variable("class", cel.StringType),
		cel.Variable("method", cel.StringType),
		cel.Variable("function", cel.StringType),
		cel.Variable("file", cel.StringType),
		cel.Variable("lines", cel.IntType),
		cel.Variable("metrics", cel.MapType(cel.StringType, cel.DoubleType)),
	)
	if err != nil {
		panic(fmt.Sprintf("expression: building CEL environment: %v", err))
	}
	return e
}

// Capabilities returns the kinds named by the kinds property, or all kinds.
func (r *Expression) Capabilities() node.Kind {
	names := r.Definition().Properties.List("kinds", nil)
	if len(names) == 0 {
		return node.AllKinds
	}
	kinds, err := node.ParseKinds(names)
	if err != nil || kinds == 0 {
		return node.AllKinds
	}
	return kinds
}

func (r *Expression) Apply(ctx *rule.Context, n node.Node) error {
	props := ctx.Properties()
	if _, err := node.ParseKinds(props.List("kinds", nil)); err != nil {
		return err
	}

	prg, err := r.compile(props.String("expression", ""))
	if err != nil {
		return err
	}

	out, _, err := prg.Eval(map[string]any{
		"name":      n.Name(),
		"fqn":       n.FullQualifiedName(),
		"kind":      n.Kind().String(),
		"namespace": n.Namespace(),
		"class":     n.ClassName(),
		"method":    n.MethodName(),
		"function":  n.FunctionName(),
		"file":      n.FileName(),
		"lines":     int64(n.EndLine() - n.BeginLine() + 1),
		"metrics":   n.Metrics(),
	})
	if err != nil {
		if strings.Contains(err.Error(), "no such key") {
			return nil
		}
		return fmt.Errorf("failed to evaluate expression: %w", err)
	}

	matched, ok := out.Value().(bool)
	if !ok || !matched {
		return nil
	}

	metricName := props.String("metric", "")
	if metricName == "" {
		ctx.AddViolation(n, n.Name(), "", n.FullQualifiedName())
		return nil
	}
	value, _ := n.Metric(metricName)
	ctx.AddViolationWithMetric(n, value, n.Name(), ruleutil.Num(value), n.FullQualifiedName())
	return nil
}

// compile returns the program for expr, reusing the last compilation when
// the expression is unchanged.
func (r *Expression) compile(expr string) (cel.Program, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, ErrNoExpression
	}
	if r.program != nil && r.compiled == expr {
		return r.program, nil
	}

	ast, iss := env.Compile(expr)
	if iss.Err() != nil {
		return nil, fmt.Errorf("failed to compile expression %q: %w", expr, iss.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("expression %q must be boolean, got %s", expr, ast.OutputType())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to build program for %q: %w", expr, err)
	}

	r.compiled = expr
	r.program = prg
	return prg, nil
}
