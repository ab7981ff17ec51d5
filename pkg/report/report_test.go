package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapmd/pkg/node"
	"github.com/leapstack-labs/leapmd/pkg/rule"
)

type stubRule struct {
	rule.Base
}

func (stubRule) Capabilities() node.Kind              { return node.KindClass }
func (stubRule) Apply(*rule.Context, node.Node) error { return nil }

func newStubRule(name string) *stubRule {
	r := &stubRule{}
	r.Definition().Name = name
	r.Definition().Class = "test." + name
	return r
}

func violationAt(r rule.Rule, file string, line int) *rule.Violation {
	return &rule.Violation{
		Rule:     r,
		Location: rule.Location{File: file, BeginLine: line, EndLine: line},
	}
}

type location struct {
	file string
	line int
}

func locations(vs []*rule.Violation) []location {
	out := make([]location, len(vs))
	for i, v := range vs {
		out[i] = location{v.Location.File, v.Location.BeginLine}
	}
	return out
}

func TestReport_RuleViolationsOrderedByFileThenLine(t *testing.T) {
	r := New()
	rl := newStubRule("Any")
	r.AddRuleViolation(violationAt(rl, "foo.txt", 4))
	r.AddRuleViolation(violationAt(rl, "foo.txt", 1))
	r.AddRuleViolation(violationAt(rl, "bar.txt", 2))
	r.AddRuleViolation(violationAt(rl, "bar.txt", 1))

	want := []location{{"bar.txt", 1}, {"bar.txt", 2}, {"foo.txt", 1}, {"foo.txt", 4}}
	assert.Equal(t, want, locations(r.RuleViolations()))
	assert.Equal(t, want, locations(r.RuleViolations()), "repeated calls return the same order")
	assert.Equal(t, 4, r.Len())
}

func TestReport_SameLineKeepsInsertionOrder(t *testing.T) {
	r := New()
	first, second, third := newStubRule("First"), newStubRule("Second"), newStubRule("Third")
	r.AddRuleViolation(violationAt(second, "a.php", 3))
	r.AddRuleViolation(violationAt(first, "a.php", 3))
	r.AddRuleViolation(violationAt(third, "a.php", 1))

	var names []string
	for _, v := range r.RuleViolations() {
		names = append(names, v.RuleName())
	}
	assert.Equal(t, []string{"Third", "Second", "First"}, names)
}

func TestReport_EmptyAndErrorsAreIndependent(t *testing.T) {
	r := New()
	assert.True(t, r.IsEmpty())
	assert.False(t, r.HasErrors())

	r.AddError(NewProcessingError("Unexpected token"))
	assert.True(t, r.IsEmpty())
	assert.True(t, r.HasErrors())

	r.AddRuleViolation(violationAt(newStubRule("Any"), "a.php", 1))
	assert.False(t, r.IsEmpty())
	assert.True(t, r.HasErrors())
}

type rejectAll struct{}

func (rejectAll) IsBaselined(*rule.Violation) bool { return true }

type rejectRule struct{ name string }

func (b rejectRule) IsBaselined(v *rule.Violation) bool { return v.RuleName() == b.name }

func TestReport_BaselineValidatorFilters(t *testing.T) {
	t.Run("everything baselined", func(t *testing.T) {
		r := New()
		r.SetBaselineValidator(rejectAll{})
		r.AddRuleViolation(violationAt(newStubRule("Any"), "a.php", 1))
		r.AddError(NewProcessingError("still recorded"))

		assert.True(t, r.IsEmpty())
		assert.Empty(t, r.RuleViolations())
		assert.Equal(t, 0, r.Len())
		assert.Len(t, r.Errors(), 1, "errors bypass the baseline")
	})

	t.Run("partial", func(t *testing.T) {
		r := New()
		r.SetBaselineValidator(rejectRule{name: "Known"})
		r.AddRuleViolation(violationAt(newStubRule("Known"), "a.php", 1))
		r.AddRuleViolation(violationAt(newStubRule("New"), "a.php", 1))

		vs := r.RuleViolations()
		require.Len(t, vs, 1)
		assert.Equal(t, "New", vs[0].RuleName())
	})
}

func TestReport_ErrorsKeepInsertionOrder(t *testing.T) {
	r := New()
	r.AddError(NewProcessingError("b"))
	r.AddError(NewProcessingError("a"))

	errs := r.Errors()
	require.Len(t, errs, 2)
	assert.Equal(t, "b", errs[0].Message)
	assert.Equal(t, "a", errs[1].Message)

	errs[0] = nil
	assert.NotNil(t, r.Errors()[0], "Errors returns a copy")
}

func TestReport_ElapsedTime(t *testing.T) {
	r := New()
	assert.Equal(t, int64(0), r.ElapsedTimeInMillis(), "zero before start")

	before := time.Now()
	r.Start()
	assert.Equal(t, int64(0), r.ElapsedTimeInMillis(), "zero before end")
	time.Sleep(50 * time.Millisecond)
	r.End()
	wall := time.Since(before)

	elapsed := r.ElapsedTimeInMillis()
	assert.GreaterOrEqual(t, elapsed, int64(50))
	assert.LessOrEqual(t, elapsed, wall.Round(time.Millisecond).Milliseconds())
}

func TestNewProcessingError_ExtractsFile(t *testing.T) {
	tests := []struct {
		message string
		file    string
	}{
		{message: "Unexpected token: ), line: 7, col: 3, file: /src/foo.php.", file: "/src/foo.php"},
		{message: `Cannot parse file "/src/bar.php" at line 3`, file: "/src/bar.php"},
		{message: "Out of memory", file: ""},
		{message: "file: missing trailing dot", file: ""},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			e := NewProcessingError(tt.message)
			assert.Equal(t, tt.file, e.File)
			assert.Equal(t, tt.message, e.Error())
		})
	}

	assert.Equal(t, "x.php", NewFileError("x.php", "boom").File)
}
