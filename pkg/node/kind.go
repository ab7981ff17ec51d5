package node

import (
	"fmt"
	"strings"
)

// Kind is a bit set of node categories. A single node has exactly one bit
// set; rule capabilities may combine several.
type Kind uint8

// Node categories.
const (
	KindClass Kind = 1 << iota
	KindTrait
	KindEnum
	KindInterface
	KindMethod
	KindFunction
)

// AllKinds has every category bit set.
const AllKinds = KindClass | KindTrait | KindEnum | KindInterface | KindMethod | KindFunction

// TypeKinds covers the type-like categories.
const TypeKinds = KindClass | KindTrait | KindEnum | KindInterface

// orderedKinds is the fixed enumeration order used wherever buckets are
// walked.
var orderedKinds = []Kind{KindClass, KindTrait, KindEnum, KindInterface, KindMethod, KindFunction}

var kindNames = map[Kind]string{
	KindClass:     "class",
	KindTrait:     "trait",
	KindEnum:      "enum",
	KindInterface: "interface",
	KindMethod:    "method",
	KindFunction:  "function",
}

// Kinds returns every single-bit kind in enumeration order.
func Kinds() []Kind {
	out := make([]Kind, len(orderedKinds))
	copy(out, orderedKinds)
	return out
}

// Has reports whether k shares any bit with other.
func (k Kind) Has(other Kind) bool {
	return k&other != 0
}

// IsType reports whether k is one of the type-like categories.
func (k Kind) IsType() bool {
	return k != 0 && k&^TypeKinds == 0
}

// Split returns the single kinds contained in k, in enumeration order.
func (k Kind) Split() []Kind {
	var out []Kind
	for _, single := range orderedKinds {
		if k.Has(single) {
			out = append(out, single)
		}
	}
	return out
}

// String returns "class", "method", ... or a "|" joined list for sets.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	parts := k.Split()
	if len(parts) == 0 {
		return "none"
	}
	names := make([]string, len(parts))
	for i, p := range parts {
		names[i] = kindNames[p]
	}
	return strings.Join(names, "|")
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Accepts a single name
// or a comma/pipe separated list.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKinds(strings.FieldsFunc(string(text), func(r rune) bool {
		return r == ',' || r == '|'
	}))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind converts a category name to a Kind.
func ParseKind(s string) (Kind, bool) {
	name := strings.ToLower(strings.TrimSpace(s))
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}

// ParseKinds combines several category names into one set.
func ParseKinds(names []string) (Kind, error) {
	var out Kind
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		k, ok := ParseKind(name)
		if !ok {
			return 0, fmt.Errorf("unknown node kind %q", name)
		}
		out |= k
	}
	return out, nil
}
