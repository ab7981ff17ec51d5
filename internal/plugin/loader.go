// Package plugin loads rule classes written in Starlark.
//
// A plugin script registers classes with the predeclared rule builtin:
//
//	def _apply(node, ctx):
//	    if node.name.startswith("tmp"):
//	        ctx.violation(node.name)
//
//	rule(class_name = "custom.NoTmpNames", kinds = ["method", "function"], apply = _apply)
//
// Loaded classes are referenced from rule-sets like built-in ones, through
// the class attribute of an inline rule.
package plugin

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"go.starlark.net/starlark"

	"github.com/leapstack-labs/leapmd/pkg/node"
	"github.com/leapstack-labs/leapmd/pkg/rule"
)

// LoadError is a failure to read or execute a plugin script.
type LoadError struct {
	File    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("plugin %s: %s", filepath.Base(e.File), e.Message)
}

// Loader executes plugin scripts. It implements ruleset.ClassLoader.
type Loader struct {
	logger *slog.Logger
	loaded map[string]bool
}

// NewLoader creates a loader. Script print output goes to logger at debug
// level.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loader{logger: logger, loaded: make(map[string]bool)}
}

// LoadAll loads every script in paths, in order.
func (l *Loader) LoadAll(paths []string, reg *rule.Registry) error {
	for _, p := range paths {
		if err := l.LoadFile(p, reg); err != nil {
			return err
		}
	}
	return nil
}

// LoadFile executes the script at path and registers the classes it
// declares on reg. Loading the same file twice is a no-op.
func (l *Loader) LoadFile(path string, reg *rule.Registry) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	if l.loaded[abs] {
		return nil
	}

	content, err := os.ReadFile(abs) //nolint:gosec // G304: plugin paths come from configuration
	if err != nil {
		return &LoadError{File: abs, Message: fmt.Sprintf("failed to read file: %v", err)}
	}

	var decls []*declaration
	thread := l.newThread("load:" + filepath.Base(abs))
	predeclared := starlark.StringDict{
		"rule": starlark.NewBuiltin("rule", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			d, err := parseDeclaration(b, args, kwargs)
			if err != nil {
				return nil, err
			}
			decls = append(decls, d)
			return starlark.None, nil
		}),
	}

	if _, err := starlark.ExecFile(thread, abs, content, predeclared); err != nil { //nolint:staticcheck // SA1019: ExecFileOptions migration pending
		return &LoadError{File: abs, Message: fmt.Sprintf("Starlark execution error: %v", err)}
	}
	if len(decls) == 0 {
		l.logger.Warn("plugin declares no rules", "file", abs)
	}

	for _, d := range decls {
		d := d
		err := reg.Register(d.class, func() rule.Rule {
			return &scriptRule{decl: d, newThread: l.newThread}
		})
		if err != nil {
			return &LoadError{File: abs, Message: err.Error()}
		}
		l.logger.Debug("registered plugin rule", "class", d.class, "kinds", d.kinds.String(), "file", abs)
	}

	l.loaded[abs] = true
	return nil
}

func (l *Loader) newThread(name string) *starlark.Thread {
	return &starlark.Thread{
		Name: name,
		Print: func(t *starlark.Thread, msg string) {
			l.logger.Debug(msg, "thread", t.Name)
		},
	}
}

// declaration is one call of the rule builtin.
type declaration struct {
	class string
	kinds node.Kind
	apply starlark.Callable
}

func parseDeclaration(b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (*declaration, error) {
	var (
		class string
		kinds starlark.Value
		apply starlark.Callable
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "class_name", &class, "kinds", &kinds, "apply", &apply); err != nil {
		return nil, err
	}
	if class == "" {
		return nil, fmt.Errorf("%s: class_name must not be empty", b.Name())
	}

	var names []string
	switch v := kinds.(type) {
	case starlark.String:
		names = []string{string(v)}
	case starlark.Iterable:
		iter := v.Iterate()
		defer iter.Done()
		var item starlark.Value
		for iter.Next(&item) {
			s, ok := starlark.AsString(item)
			if !ok {
				return nil, fmt.Errorf("%s: kinds must contain strings, got %s", b.Name(), item.Type())
			}
			names = append(names, s)
		}
	default:
		return nil, fmt.Errorf("%s: kinds must be a string or list, got %s", b.Name(), kinds.Type())
	}

	k, err := node.ParseKinds(names)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}
	if k == 0 {
		return nil, fmt.Errorf("%s: kinds must not be empty", b.Name())
	}
	return &declaration{class: class, kinds: k, apply: apply}, nil
}
