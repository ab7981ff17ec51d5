package baseline

import (
	"path/filepath"

	"github.com/leapstack-labs/leapmd/pkg/rule"
)

// Entry is one known violation.
type Entry struct {
	// Rule is the violated rule's RuleID: its registry class, qualified
	// with the rule name for configurable classes.
	Rule string
	File string
	// Signature narrows the entry to one method, function or type. Empty
	// matches any violation of the rule in the file; only hand-written
	// entries omit it.
	Signature string
}

type key struct {
	rule string
	file string
}

// Set is an indexed collection of entries.
type Set struct {
	entries []Entry
	index   map[key][]int
}

// NewSet creates a set holding entries.
func NewSet(entries ...Entry) *Set {
	s := &Set{index: make(map[key][]int)}
	for _, e := range entries {
		s.Add(e)
	}
	return s
}

// FromViolations builds a set with one entry per violation, skipping exact
// duplicates.
func FromViolations(violations []*rule.Violation) *Set {
	s := NewSet()
	for _, v := range violations {
		e := EntryFor(v)
		if s.containsExact(e) {
			continue
		}
		s.Add(e)
	}
	return s
}

// EntryFor returns the entry describing v.
func EntryFor(v *rule.Violation) Entry {
	return Entry{Rule: v.RuleID(), File: v.Location.File, Signature: v.Signature()}
}

// Add appends e.
func (s *Set) Add(e Entry) {
	k := key{rule: e.Rule, file: normalizePath(e.File)}
	s.index[k] = append(s.index[k], len(s.entries))
	s.entries = append(s.entries, e)
}

// Contains reports whether an entry for ruleClass and file matches
// signature.
func (s *Set) Contains(ruleClass, file, signature string) bool {
	for _, i := range s.index[key{rule: ruleClass, file: normalizePath(file)}] {
		if sig := s.entries[i].Signature; sig == "" || sig == signature {
			return true
		}
	}
	return false
}

// ContainsViolation reports whether v is covered by an entry.
func (s *Set) ContainsViolation(v *rule.Violation) bool {
	return s.Contains(v.RuleID(), v.Location.File, v.Signature())
}

func (s *Set) containsExact(e Entry) bool {
	for _, i := range s.index[key{rule: e.Rule, file: normalizePath(e.File)}] {
		if s.entries[i].Signature == e.Signature {
			return true
		}
	}
	return false
}

// Entries returns the entries in insertion order.
func (s *Set) Entries() []Entry {
	return append([]Entry(nil), s.entries...)
}

// Len returns the number of entries.
func (s *Set) Len() int { return len(s.entries) }

func normalizePath(p string) string {
	if p == "" {
		return ""
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}
