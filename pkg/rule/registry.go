package rule

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrNotRegistered is returned when a rule class has no constructor.
var ErrNotRegistered = errors.New("rule class not registered")

// DuplicateRuleError is returned when a class is registered twice.
type DuplicateRuleError struct {
	Class string
}

func (e *DuplicateRuleError) Error() string {
	return fmt.Sprintf("rule class %q is already registered", e.Class)
}

// Constructor returns a fresh rule instance with default metadata.
type Constructor func() Rule

// DefaultRegistry holds the built-in rules. Rule packages register on it
// from init().
var DefaultRegistry = NewRegistry()

// Registry maps rule class identifiers to constructors.
type Registry struct {
	mu    sync.RWMutex
	ctors map[string]Constructor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{ctors: make(map[string]Constructor)}
}

// MustRegister adds a constructor to DefaultRegistry and panics on a
// duplicate class. Call this from init() functions in rule packages.
func MustRegister(class string, ctor Constructor) {
	if err := DefaultRegistry.Register(class, ctor); err != nil {
		panic(err)
	}
}

// Register adds a constructor for class.
func (r *Registry) Register(class string, ctor Constructor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.ctors[class]; ok {
		return &DuplicateRuleError{Class: class}
	}
	r.ctors[class] = ctor
	return nil
}

// Has reports whether class is registered.
func (r *Registry) Has(class string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.ctors[class]
	return ok
}

// New constructs a rule of the given class. The returned rule's Class is
// set, and a zero priority defaults to LowestPriority.
func (r *Registry) New(class string) (Rule, error) {
	r.mu.RLock()
	ctor, ok := r.ctors[class]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotRegistered, class)
	}

	rl := ctor()
	def := rl.Definition()
	def.Class = class
	if def.Priority == 0 {
		def.Priority = LowestPriority
	}
	return rl, nil
}

// Copy builds a fresh instance of src's class carrying a deep copy of its
// definition.
func (r *Registry) Copy(src Rule) (Rule, error) {
	dst, err := r.New(src.Definition().Class)
	if err != nil {
		return nil, err
	}
	*dst.Definition() = src.Definition().Clone()
	return dst, nil
}

// Classes returns all registered class identifiers, sorted.
func (r *Registry) Classes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.ctors))
	for class := range r.ctors {
		out = append(out, class)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of registered classes.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ctors)
}

// Clone returns an independent registry with the same constructors, so
// plugins can register without touching the original.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := NewRegistry()
	for class, ctor := range r.ctors {
		out.ctors[class] = ctor
	}
	return out
}
