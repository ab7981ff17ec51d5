package ruleset

import (
	"fmt"
	"strings"
)

// RuleSetNotFoundError is returned when no candidate file exists for a
// rule-set identifier.
type RuleSetNotFoundError struct {
	Token string
	Tried []string
}

func (e *RuleSetNotFoundError) Error() string {
	return fmt.Sprintf("cannot find rule-set %q", e.Token)
}

// RuleClassFileNotFoundError is returned when an inline rule names a file
// that cannot be read.
type RuleClassFileNotFoundError struct {
	Class string
	File  string
	Err   error
}

func (e *RuleClassFileNotFoundError) Error() string {
	return fmt.Sprintf("cannot load source file %q for rule class %q", e.File, e.Class)
}

func (e *RuleClassFileNotFoundError) Unwrap() error { return e.Err }

// RuleClassNotFoundError is returned when a rule class is not registered,
// either up front or after loading its declared file.
type RuleClassNotFoundError struct {
	Class string
	File  string
}

func (e *RuleClassNotFoundError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("rule class %q not defined by %q", e.Class, e.File)
	}
	return fmt.Sprintf("rule class %q not registered", e.Class)
}

// MalformedRuleSetError wraps a parse failure of a rule-set document.
type MalformedRuleSetError struct {
	File string
	Err  error
}

func (e *MalformedRuleSetError) Error() string {
	return fmt.Sprintf("malformed rule-set %s: %v", e.File, e.Err)
}

func (e *MalformedRuleSetError) Unwrap() error { return e.Err }

// RuleNotFoundError is returned when a single-rule reference names a rule
// the referenced rule-set does not contain.
type RuleNotFoundError struct {
	RuleSet string
	Name    string
}

func (e *RuleNotFoundError) Error() string {
	return fmt.Sprintf("rule %q not found in rule-set %s", e.Name, e.RuleSet)
}

// CircularReferenceError is returned when a rule-set references itself,
// directly or transitively. Chain lists the files from the outermost
// rule-set to the repeated one.
type CircularReferenceError struct {
	Chain []string
}

func (e *CircularReferenceError) Error() string {
	return "circular rule-set reference: " + strings.Join(e.Chain, " -> ")
}

// RuleError is a single rule's failure while being applied to a node.
type RuleError struct {
	Rule string
	File string
	Line int
	Err  error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("rule %s failed at %s:%d: %v", e.Rule, e.File, e.Line, e.Err)
}

func (e *RuleError) Unwrap() error { return e.Err }
