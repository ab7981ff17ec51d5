// Package nodetest provides an in-memory node.Foreign for tests.
package nodetest

import "github.com/leapstack-labs/leapmd/pkg/node"

// Fake is a hand-built foreign node.
type Fake struct {
	K       node.Kind
	N       string
	NS      string
	F       string
	Begin   int
	End     int
	Builtin bool
	Annots  []node.Annotation
	Kids    []*Fake
}

var _ node.Foreign = (*Fake)(nil)

func (f *Fake) Kind() node.Kind                { return f.K }
func (f *Fake) Name() string                   { return f.N }
func (f *Fake) Namespace() string              { return f.NS }
func (f *Fake) File() string                   { return f.F }
func (f *Fake) BeginLine() int                 { return f.Begin }
func (f *Fake) EndLine() int                   { return f.End }
func (f *Fake) UserDefined() bool              { return !f.Builtin }
func (f *Fake) Annotations() []node.Annotation { return f.Annots }

func (f *Fake) Children() []node.Foreign {
	out := make([]node.Foreign, len(f.Kids))
	for i, k := range f.Kids {
		out[i] = k
	}
	return out
}

// Class returns a class node in file with the given methods as children.
func Class(file, name string, begin, end int, methods ...*Fake) *Fake {
	return &Fake{K: node.KindClass, N: name, F: file, Begin: begin, End: end, Kids: methods}
}

// Method returns a method node.
func Method(name string, begin, end int) *Fake {
	return &Fake{K: node.KindMethod, N: name, Begin: begin, End: end}
}

// Function returns a top-level function node in file.
func Function(file, name string, begin, end int) *Fake {
	return &Fake{K: node.KindFunction, N: name, F: file, Begin: begin, End: end}
}

// Suppress appends a SuppressWarnings annotation and returns f.
func (f *Fake) Suppress(value string) *Fake {
	f.Annots = append(f.Annots, node.Annotation{Name: node.SuppressWarnings, Value: value})
	return f
}

// Wrap wraps f and sets metrics on the resulting adapter.
func Wrap(f *Fake, metrics map[string]float64) *node.Adapter {
	a := node.Wrap(f)
	a.SetMetrics(metrics)
	return a
}

// Find returns the first adapter in the tree with the given name.
func Find(root node.Node, name string) node.Node {
	var found node.Node
	node.Walk(root, func(n node.Node) bool {
		if found != nil {
			return false
		}
		if n.Name() == name {
			found = n
			return false
		}
		return true
	})
	return found
}
