package baseline

import "github.com/leapstack-labs/leapmd/pkg/rule"

// Validator classifies violations against a Set. It implements
// report.BaselineValidator.
type Validator struct {
	mode       Mode
	set        *Set
	suppressed []*rule.Violation
}

// NewValidator creates a validator. A nil set behaves as an empty one.
func NewValidator(mode Mode, set *Set) *Validator {
	if set == nil {
		set = NewSet()
	}
	return &Validator{mode: mode, set: set}
}

// Mode returns the validator's mode.
func (v *Validator) Mode() Mode { return v.mode }

// Set returns the baseline the validator checks against.
func (v *Validator) Set() *Set { return v.set }

// IsBaselined reports whether the report should drop violation.
//
// ModeNone keeps everything, ModeValidate drops known violations and
// ModeUpdate drops new ones. Dropped violations in ModeUpdate are kept
// and returned by Suppressed.
func (v *Validator) IsBaselined(violation *rule.Violation) bool {
	switch v.mode {
	case ModeValidate:
		return v.set.ContainsViolation(violation)
	case ModeUpdate:
		if v.set.ContainsViolation(violation) {
			return false
		}
		v.suppressed = append(v.suppressed, violation)
		return true
	default:
		return false
	}
}

// Suppressed returns the new violations hidden in ModeUpdate.
func (v *Validator) Suppressed() []*rule.Violation {
	return append([]*rule.Violation(nil), v.suppressed...)
}
