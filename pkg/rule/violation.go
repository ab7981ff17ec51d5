package rule

import (
	"strconv"
	"strings"

	"github.com/leapstack-labs/leapmd/pkg/node"
)

// Location is a snapshot of where a violation was found.
type Location struct {
	File         string
	BeginLine    int
	EndLine      int
	Namespace    string
	ClassName    string
	MethodName   string
	FunctionName string
}

// LocationOf captures n's location.
func LocationOf(n node.Node) Location {
	return Location{
		File:         n.FileName(),
		BeginLine:    n.BeginLine(),
		EndLine:      n.EndLine(),
		Namespace:    n.Namespace(),
		ClassName:    n.ClassName(),
		MethodName:   n.MethodName(),
		FunctionName: n.FunctionName(),
	}
}

// Violation is one firing of a rule against a node.
type Violation struct {
	Rule        Rule
	Location    Location
	Description string
	Args        []string
	Metric      *float64
}

// NewViolation builds a violation, interpolating the rule message with args.
func NewViolation(r Rule, n node.Node, args []string, metric *float64) *Violation {
	return &Violation{
		Rule:        r,
		Location:    LocationOf(n),
		Description: Interpolate(r.Definition().Message, args),
		Args:        args,
		Metric:      metric,
	}
}

// RuleName returns the violated rule's name.
func (v *Violation) RuleName() string { return v.Rule.Definition().Name }

// RuleClass returns the violated rule's registry identifier.
func (v *Violation) RuleClass() string { return v.Rule.Definition().Class }

// RuleID identifies the violated rule across runs. It is the registry class,
// qualified with the rule name when the class is Configurable.
func (v *Violation) RuleID() string {
	def := v.Rule.Definition()
	if _, ok := v.Rule.(Configurable); ok && def.Name != "" {
		return def.Class + "/" + def.Name
	}
	return def.Class
}

// Priority returns the violated rule's priority.
func (v *Violation) Priority() Priority { return v.Rule.Definition().Priority }

// Signature identifies the violating member within its file: the method
// name, else the function name, else the namespace qualified type name.
// It is empty only when the node has none of these.
func (v *Violation) Signature() string {
	loc := v.Location
	switch {
	case loc.MethodName != "":
		return loc.MethodName
	case loc.FunctionName != "":
		return loc.FunctionName
	case loc.ClassName != "" && loc.Namespace != "":
		return loc.Namespace + `\` + loc.ClassName
	default:
		return loc.ClassName
	}
}

// Interpolate replaces {0}, {1}, ... in message with the matching argument.
// Placeholders without an argument are left as is.
func Interpolate(message string, args []string) string {
	for i, arg := range args {
		message = strings.ReplaceAll(message, "{"+strconv.Itoa(i)+"}", arg)
	}
	return message
}
