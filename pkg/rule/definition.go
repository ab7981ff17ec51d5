package rule

import (
	"strconv"
	"strings"
)

// Definition holds a rule's metadata.
type Definition struct {
	// Class is the registry identifier of the concrete rule type.
	Class           string
	Name            string
	Message         string // {0}, {1}, ... are replaced by violation arguments
	Priority        Priority
	Since           string
	ExternalInfoURL string
	Description     string
	Examples        []string
	RuleSetName     string
	Properties      Properties
}

// Clone returns a deep copy.
func (d Definition) Clone() Definition {
	out := d
	if d.Examples != nil {
		out.Examples = append([]string(nil), d.Examples...)
	}
	out.Properties = d.Properties.Clone()
	return out
}

// Properties is a rule's string property bag.
type Properties map[string]string

// Clone returns a copy, or nil for a nil bag.
func (p Properties) Clone() Properties {
	if p == nil {
		return nil
	}
	out := make(Properties, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// String returns the property or defaultVal when unset.
func (p Properties) String(key, defaultVal string) string {
	if v, ok := p[key]; ok {
		return v
	}
	return defaultVal
}

// Int parses an integer property, returning defaultVal when unset or
// unparsable.
func (p Properties) Int(key string, defaultVal int) int {
	v, ok := p[key]
	if !ok {
		return defaultVal
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return defaultVal
	}
	return n
}

// Float parses a numeric property.
func (p Properties) Float(key string, defaultVal float64) float64 {
	v, ok := p[key]
	if !ok {
		return defaultVal
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return defaultVal
	}
	return f
}

// Bool treats "true", "on" and "1" as true.
func (p Properties) Bool(key string, defaultVal bool) bool {
	v, ok := p[key]
	if !ok {
		return defaultVal
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "on", "1":
		return true
	default:
		return false
	}
}

// List splits a comma separated property, dropping empty items.
func (p Properties) List(key string, defaultVal []string) []string {
	v, ok := p[key]
	if !ok {
		return defaultVal
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
