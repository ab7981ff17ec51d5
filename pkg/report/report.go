// Package report collects rule violations and processing errors for one
// analysis run.
package report

import (
	"sort"
	"time"

	"github.com/leapstack-labs/leapmd/pkg/rule"
)

// BaselineValidator decides whether a violation is already known and
// should be kept out of the report.
type BaselineValidator interface {
	IsBaselined(v *rule.Violation) bool
}

// Report is the result of one run. It is not safe for concurrent writers.
type Report struct {
	violations map[string]map[int][]*rule.Violation
	count      int
	errors     []*ProcessingError
	validator  BaselineValidator

	startTime time.Time
	endTime   time.Time
}

var _ rule.Reporter = (*Report)(nil)

// New creates an empty report.
func New() *Report {
	return &Report{violations: make(map[string]map[int][]*rule.Violation)}
}

// SetBaselineValidator attaches v. Violations added afterwards are
// filtered through it.
func (r *Report) SetBaselineValidator(v BaselineValidator) {
	r.validator = v
}

// AddRuleViolation stores v unless the baseline validator claims it.
func (r *Report) AddRuleViolation(v *rule.Violation) {
	if r.validator != nil && r.validator.IsBaselined(v) {
		return
	}

	file := v.Location.File
	lines, ok := r.violations[file]
	if !ok {
		lines = make(map[int][]*rule.Violation)
		r.violations[file] = lines
	}
	lines[v.Location.BeginLine] = append(lines[v.Location.BeginLine], v)
	r.count++
}

// RuleViolations returns all violations ordered by file, then begin line.
// Violations on the same line keep their insertion order.
func (r *Report) RuleViolations() []*rule.Violation {
	files := make([]string, 0, len(r.violations))
	for file := range r.violations {
		files = append(files, file)
	}
	sort.Strings(files)

	out := make([]*rule.Violation, 0, r.count)
	for _, file := range files {
		byLine := r.violations[file]
		lineNumbers := make([]int, 0, len(byLine))
		for line := range byLine {
			lineNumbers = append(lineNumbers, line)
		}
		sort.Ints(lineNumbers)
		for _, line := range lineNumbers {
			out = append(out, byLine[line]...)
		}
	}
	return out
}

// AddError records a processing error. Errors bypass the baseline.
func (r *Report) AddError(e *ProcessingError) {
	r.errors = append(r.errors, e)
}

// Errors returns the processing errors in insertion order.
func (r *Report) Errors() []*ProcessingError {
	return append([]*ProcessingError(nil), r.errors...)
}

// Start marks the beginning of the run.
func (r *Report) Start() { r.startTime = time.Now() }

// End marks the end of the run.
func (r *Report) End() { r.endTime = time.Now() }

// ElapsedTimeInMillis returns the rounded duration between Start and End,
// or 0 if either has not been called.
func (r *Report) ElapsedTimeInMillis() int64 {
	if r.startTime.IsZero() || r.endTime.IsZero() {
		return 0
	}
	return r.endTime.Sub(r.startTime).Round(time.Millisecond).Milliseconds()
}

// StartTime returns the time recorded by Start.
func (r *Report) StartTime() time.Time { return r.startTime }

// IsEmpty reports whether no violation is stored. Errors do not count.
func (r *Report) IsEmpty() bool { return r.count == 0 }

// Len returns the number of stored violations.
func (r *Report) Len() int { return r.count }

// HasErrors reports whether at least one processing error was recorded.
func (r *Report) HasErrors() bool { return len(r.errors) > 0 }
