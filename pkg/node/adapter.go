package node

// Foreign is the contract an AST backend implements for each node it
// produces. Adapters never reach past this interface.
type Foreign interface {
	Kind() Kind
	Name() string
	// Namespace may be empty; adapters then inherit the parent namespace.
	Namespace() string
	// File may be empty; adapters then inherit the parent file.
	File() string
	BeginLine() int
	EndLine() int
	// UserDefined is false for builtin or vendored declarations.
	UserDefined() bool
	Annotations() []Annotation
	Children() []Foreign
}

// Node is the read-only view rules get of one AST node.
type Node interface {
	Kind() Kind
	Name() string
	FullQualifiedName() string
	FileName() string
	BeginLine() int
	EndLine() int
	Namespace() string
	// ClassName is the node's own name for type-like nodes and the
	// enclosing type's name for methods.
	ClassName() string
	MethodName() string
	FunctionName() string
	Parent() Node
	Children() []Node
	UserDefined() bool
	Metric(key string) (float64, bool)
	Metrics() map[string]float64
	// SetMetrics stores the metric map. Only the first call has effect.
	SetMetrics(metrics map[string]float64)
	Annotations() []Annotation
	HasSuppressWarningsFor(ruleName string) bool
}

// Adapter wraps one Foreign node.
type Adapter struct {
	foreign  Foreign
	parent   *Adapter
	children []*Adapter

	metrics    map[string]float64
	metricsSet bool
}

var _ Node = (*Adapter)(nil)

// Wrap builds the adapter tree rooted at f.
func Wrap(f Foreign) *Adapter {
	return wrap(f, nil)
}

func wrap(f Foreign, parent *Adapter) *Adapter {
	a := &Adapter{foreign: f, parent: parent}
	for _, child := range f.Children() {
		if child == nil {
			continue
		}
		a.children = append(a.children, wrap(child, a))
	}
	return a
}

// Foreign returns the wrapped backend node.
func (a *Adapter) Foreign() Foreign { return a.foreign }

func (a *Adapter) Kind() Kind        { return a.foreign.Kind() }
func (a *Adapter) Name() string      { return a.foreign.Name() }
func (a *Adapter) BeginLine() int    { return a.foreign.BeginLine() }
func (a *Adapter) EndLine() int      { return a.foreign.EndLine() }
func (a *Adapter) UserDefined() bool { return a.foreign.UserDefined() }

func (a *Adapter) Annotations() []Annotation {
	return a.foreign.Annotations()
}

// FileName returns the node's file, falling back to the nearest ancestor
// that declares one.
func (a *Adapter) FileName() string {
	for cur := a; cur != nil; cur = cur.parent {
		if f := cur.foreign.File(); f != "" {
			return f
		}
	}
	return ""
}

// Namespace returns the node's namespace, falling back to its ancestors.
func (a *Adapter) Namespace() string {
	for cur := a; cur != nil; cur = cur.parent {
		if ns := cur.foreign.Namespace(); ns != "" {
			return ns
		}
	}
	return ""
}

func (a *Adapter) ClassName() string {
	if t := a.enclosingType(); t != nil {
		return t.Name()
	}
	return ""
}

func (a *Adapter) MethodName() string {
	if a.Kind() == KindMethod {
		return a.Name()
	}
	return ""
}

func (a *Adapter) FunctionName() string {
	if a.Kind() == KindFunction {
		return a.Name()
	}
	return ""
}

// FullQualifiedName renders Namespace\Type, Namespace\Type::method or
// Namespace\function.
func (a *Adapter) FullQualifiedName() string {
	switch {
	case a.Kind() == KindMethod:
		if t := a.enclosingType(); t != nil {
			return t.FullQualifiedName() + "::" + a.Name()
		}
		return a.Name()
	default:
		if ns := a.Namespace(); ns != "" {
			return ns + `\` + a.Name()
		}
		return a.Name()
	}
}

func (a *Adapter) enclosingType() *Adapter {
	for cur := a; cur != nil; cur = cur.parent {
		if cur.Kind().IsType() {
			return cur
		}
	}
	return nil
}

func (a *Adapter) Parent() Node {
	if a.parent == nil {
		return nil
	}
	return a.parent
}

func (a *Adapter) Children() []Node {
	out := make([]Node, len(a.children))
	for i, c := range a.children {
		out[i] = c
	}
	return out
}

// Metric looks up one metric value.
func (a *Adapter) Metric(key string) (float64, bool) {
	v, ok := a.metrics[key]
	return v, ok
}

// Metrics returns a copy of the metric map.
func (a *Adapter) Metrics() map[string]float64 {
	out := make(map[string]float64, len(a.metrics))
	for k, v := range a.metrics {
		out[k] = v
	}
	return out
}

func (a *Adapter) SetMetrics(metrics map[string]float64) {
	if a.metricsSet {
		return
	}
	a.metricsSet = true
	a.metrics = make(map[string]float64, len(metrics))
	for k, v := range metrics {
		a.metrics[k] = v
	}
}

// HasSuppressWarningsFor checks the node's own annotations and those of
// its ancestors, so a class-level annotation also covers its methods.
func (a *Adapter) HasSuppressWarningsFor(ruleName string) bool {
	for cur := a; cur != nil; cur = cur.parent {
		for _, ann := range cur.foreign.Annotations() {
			if ann.Suppresses(ruleName) {
				return true
			}
		}
	}
	return false
}

// Walk visits n and its descendants depth-first, parents before children.
// Returning false from fn skips the node's children.
func Walk(n Node, fn func(Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, child := range n.Children() {
		Walk(child, fn)
	}
}
