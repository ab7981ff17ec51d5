// Package loader reads the AST dumps produced by an external parser and
// metrics backend, one dump file per compilation unit.
//
// A dump is YAML (or JSON) of the form:
//
//	file: src/Service/UserManager.php
//	errors: []
//	nodes:
//	  - kind: class
//	    name: UserManager
//	    namespace: App\Service
//	    begin_line: 12
//	    end_line: 240
//	    annotations:
//	      - name: SuppressWarnings
//	        value: leapmd.TooManyMethods
//	    metrics: {loc: 229, wmc: 31, cbo: 9}
//	    children:
//	      - kind: method
//	        name: findActive
//	        begin_line: 20
//	        end_line: 64
//	        metrics: {ccn2: 12, npath: 480, loc: 45}
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/leapmd/pkg/node"
)

// DumpParseError is returned when a dump file cannot be decoded.
type DumpParseError struct {
	File    string
	Message string
}

func (e *DumpParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.File, e.Message)
}

// RawNode is one decoded node. It implements node.Foreign.
type RawNode struct {
	NodeKind      node.Kind          `yaml:"kind"`
	NodeName      string             `yaml:"name"`
	NodeNamespace string             `yaml:"namespace"`
	NodeFile      string             `yaml:"file"`
	Begin         int                `yaml:"begin_line"`
	End           int                `yaml:"end_line"`
	Defined       *bool              `yaml:"user_defined"`
	Annots        []node.Annotation  `yaml:"annotations"`
	NodeMetrics   map[string]float64 `yaml:"metrics"`
	Kids          []*RawNode         `yaml:"children"`
}

var _ node.Foreign = (*RawNode)(nil)

func (n *RawNode) Kind() node.Kind                { return n.NodeKind }
func (n *RawNode) Name() string                   { return n.NodeName }
func (n *RawNode) Namespace() string              { return n.NodeNamespace }
func (n *RawNode) File() string                   { return n.NodeFile }
func (n *RawNode) BeginLine() int                 { return n.Begin }
func (n *RawNode) EndLine() int                   { return n.End }
func (n *RawNode) Annotations() []node.Annotation { return n.Annots }

// UserDefined defaults to true when the dump omits it.
func (n *RawNode) UserDefined() bool {
	return n.Defined == nil || *n.Defined
}

func (n *RawNode) Children() []node.Foreign {
	out := make([]node.Foreign, len(n.Kids))
	for i, k := range n.Kids {
		out[i] = k
	}
	return out
}

// Unit is one decoded compilation unit.
type Unit struct {
	// Path is the dump file the unit was read from.
	Path   string     `yaml:"-"`
	File   string     `yaml:"file"`
	Errors []string   `yaml:"errors"`
	Nodes  []*RawNode `yaml:"nodes"`
}

// Decode reads one unit. Unknown fields are rejected.
func Decode(r io.Reader, path string) (*Unit, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var u Unit
	if err := dec.Decode(&u); err != nil {
		if errors.Is(err, io.EOF) {
			return &Unit{Path: path}, nil
		}
		return nil, &DumpParseError{File: path, Message: err.Error()}
	}
	u.Path = path
	if err := u.validate(); err != nil {
		return nil, &DumpParseError{File: path, Message: err.Error()}
	}
	return &u, nil
}

// LoadFile reads and decodes the dump at path.
func LoadFile(path string) (*Unit, error) {
	content, err := os.ReadFile(path) //nolint:gosec // G304: path comes from Discover
	if err != nil {
		return nil, fmt.Errorf("failed to read dump: %w", err)
	}
	return Decode(bytes.NewReader(content), path)
}

func (u *Unit) validate() error {
	var check func(nodes []*RawNode) error
	check = func(nodes []*RawNode) error {
		for _, n := range nodes {
			if n == nil {
				continue
			}
			if n.NodeKind == 0 || len(n.NodeKind.Split()) != 1 {
				return fmt.Errorf("node %q: kind must name exactly one category", n.NodeName)
			}
			if err := check(n.Kids); err != nil {
				return err
			}
		}
		return nil
	}
	return check(u.Nodes)
}

// Roots wraps the unit's analyzable top-level nodes in adapters with their
// metrics set. Type nodes that are not user defined are dropped with their
// members, as are functions and methods without a source file.
func (u *Unit) Roots() []node.Node {
	var out []node.Node
	for _, raw := range prune(u.Nodes, u.File) {
		if raw.NodeFile == "" {
			raw.NodeFile = u.File
		}
		root := node.Wrap(raw)
		node.Walk(root, func(n node.Node) bool {
			if a, ok := n.(*node.Adapter); ok {
				if rn, ok := a.Foreign().(*RawNode); ok {
					a.SetMetrics(rn.NodeMetrics)
				}
			}
			return true
		})
		out = append(out, root)
	}
	return out
}

func prune(nodes []*RawNode, inheritedFile string) []*RawNode {
	var kept []*RawNode
	for _, n := range nodes {
		if n == nil {
			continue
		}
		file := n.NodeFile
		if file == "" {
			file = inheritedFile
		}
		if n.NodeKind.IsType() && !n.UserDefined() {
			continue
		}
		if n.NodeKind.Has(node.KindMethod|node.KindFunction) && file == "" {
			continue
		}
		n.Kids = prune(n.Kids, file)
		kept = append(kept, n)
	}
	return kept
}
