package plugin

import (
	"errors"
	"fmt"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"

	"github.com/leapstack-labs/leapmd/pkg/node"
	"github.com/leapstack-labs/leapmd/pkg/rule"
)

// scriptRule is a rule whose Apply calls a Starlark function.
type scriptRule struct {
	rule.Base
	decl      *declaration
	newThread func(name string) *starlark.Thread
}

func (r *scriptRule) Capabilities() node.Kind {
	return r.decl.kinds
}

func (r *scriptRule) Apply(ctx *rule.Context, n node.Node) error {
	thread := r.newThread("apply:" + r.decl.class)
	_, err := starlark.Call(thread, r.decl.apply, starlark.Tuple{nodeValue(n, ctx.Properties()), contextValue(ctx, n)}, nil)
	if err != nil {
		var evalErr *starlark.EvalError
		if errors.As(err, &evalErr) {
			return fmt.Errorf("%s: %s", r.decl.class, evalErr.Backtrace())
		}
		return fmt.Errorf("%s: %w", r.decl.class, err)
	}
	return nil
}

// nodeValue exposes n as a struct. Parent and children are built lazily.
func nodeValue(n node.Node, props rule.Properties) starlark.Value {
	return starlarkstruct.FromStringDict(starlark.String("node"), starlark.StringDict{
		"name":          starlark.String(n.Name()),
		"fqn":           starlark.String(n.FullQualifiedName()),
		"kind":          starlark.String(n.Kind().String()),
		"file":          starlark.String(n.FileName()),
		"begin_line":    starlark.MakeInt(n.BeginLine()),
		"end_line":      starlark.MakeInt(n.EndLine()),
		"namespace":     starlark.String(n.Namespace()),
		"class_name":    starlark.String(n.ClassName()),
		"method_name":   starlark.String(n.MethodName()),
		"function_name": starlark.String(n.FunctionName()),
		"metric": starlark.NewBuiltin("metric", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var key string
			var dflt starlark.Value = starlark.None
			if err := starlark.UnpackArgs(b.Name(), args, kwargs, "key", &key, "default?", &dflt); err != nil {
				return nil, err
			}
			if v, ok := n.Metric(key); ok {
				return starlark.Float(v), nil
			}
			return dflt, nil
		}),
		"property": propertyBuiltin(props),
		"parent": starlark.NewBuiltin("parent", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			if err := starlark.UnpackArgs(b.Name(), args, kwargs); err != nil {
				return nil, err
			}
			if p := n.Parent(); p != nil {
				return nodeValue(p, props), nil
			}
			return starlark.None, nil
		}),
		"children": starlark.NewBuiltin("children", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			if err := starlark.UnpackArgs(b.Name(), args, kwargs); err != nil {
				return nil, err
			}
			kids := n.Children()
			out := make([]starlark.Value, len(kids))
			for i, k := range kids {
				out[i] = nodeValue(k, props)
			}
			return starlark.NewList(out), nil
		}),
	})
}

// contextValue exposes violation reporting for n.
func contextValue(ctx *rule.Context, n node.Node) starlark.Value {
	return starlarkstruct.FromStringDict(starlark.String("ctx"), starlark.StringDict{
		"strict":   starlark.Bool(ctx.Strict()),
		"property": propertyBuiltin(ctx.Properties()),
		"violation": starlark.NewBuiltin("violation", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			if len(kwargs) > 0 {
				return nil, fmt.Errorf("%s: unexpected keyword arguments", b.Name())
			}
			ctx.AddViolation(n, toStrings(args)...)
			return starlark.None, nil
		}),
		"violation_with_metric": starlark.NewBuiltin("violation_with_metric", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			if len(kwargs) > 0 {
				return nil, fmt.Errorf("%s: unexpected keyword arguments", b.Name())
			}
			if len(args) == 0 {
				return nil, fmt.Errorf("%s: missing metric argument", b.Name())
			}
			metric, ok := starlark.AsFloat(args[0])
			if !ok {
				return nil, fmt.Errorf("%s: metric must be a number, got %s", b.Name(), args[0].Type())
			}
			ctx.AddViolationWithMetric(n, metric, toStrings(args[1:])...)
			return starlark.None, nil
		}),
	})
}

func propertyBuiltin(props rule.Properties) *starlark.Builtin {
	return starlark.NewBuiltin("property", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var key string
		var dflt starlark.Value = starlark.None
		if err := starlark.UnpackArgs(b.Name(), args, kwargs, "key", &key, "default?", &dflt); err != nil {
			return nil, err
		}
		if v, ok := props[key]; ok {
			return starlark.String(v), nil
		}
		return dflt, nil
	})
}

func toStrings(args starlark.Tuple) []string {
	out := make([]string, len(args))
	for i, a := range args {
		if s, ok := starlark.AsString(a); ok {
			out[i] = s
			continue
		}
		out[i] = a.String()
	}
	return out
}
