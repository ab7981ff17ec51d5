package node

import "strings"

// SuppressWarnings is the annotation name that opts a node out of rules.
const SuppressWarnings = "SuppressWarnings"

// suppressAllValues silence every rule on the annotated node.
var suppressAllValues = []string{"leapmd", "PHPMD", "PMD"}

// Annotation is an in-source marker attached to a node, such as
// @SuppressWarnings("leapmd.TooManyMethods").
type Annotation struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// Suppresses reports whether the annotation opts its node out of the
// named rule.
//
// Recognized values: a bare tool marker ("leapmd", "PHPMD", "PMD")
// suppresses everything; "<marker>.<RuleName>" suppresses that rule; any
// other value suppresses rules whose name contains it, case-insensitively.
func (a Annotation) Suppresses(ruleName string) bool {
	if !strings.EqualFold(strings.TrimPrefix(strings.TrimSpace(a.Name), "@"), SuppressWarnings) {
		return false
	}

	value := strings.Trim(strings.TrimSpace(a.Value), `"'`)
	if value == "" {
		return false
	}

	for _, marker := range suppressAllValues {
		if value == marker {
			return true
		}
		if strings.HasPrefix(value, marker+"."+ruleName) {
			return true
		}
	}

	return strings.Contains(strings.ToLower(ruleName), strings.ToLower(value))
}
