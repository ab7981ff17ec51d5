package ruleset

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapmd/pkg/node"
	"github.com/leapstack-labs/leapmd/pkg/node/nodetest"
	"github.com/leapstack-labs/leapmd/pkg/rule"
)

// recordingRule records every node it is applied to.
type recordingRule struct {
	rule.Base
	kinds  node.Kind
	calls  *[]string
	err    error
	panics bool
}

func (r *recordingRule) Capabilities() node.Kind { return r.kinds }

func (r *recordingRule) Apply(ctx *rule.Context, n node.Node) error {
	if r.calls != nil {
		*r.calls = append(*r.calls, rule.Name(r)+":"+n.Name())
	}
	if r.panics {
		panic("boom")
	}
	if r.err != nil {
		return r.err
	}
	ctx.AddViolation(n, n.Name())
	return nil
}

func newRecordingRule(name string, kinds node.Kind, calls *[]string) *recordingRule {
	r := &recordingRule{kinds: kinds, calls: calls}
	r.Definition().Name = name
	r.Definition().Priority = rule.LowestPriority
	return r
}

type sink struct {
	violations []*rule.Violation
}

func (s *sink) AddRuleViolation(v *rule.Violation) {
	s.violations = append(s.violations, v)
}

func TestRuleSet_RulesDeduplicatedInKindOrder(t *testing.T) {
	rs := New("test")
	fn := newRecordingRule("Fn", node.KindFunction, nil)
	both := newRecordingRule("Both", node.KindClass|node.KindMethod, nil)
	cls := newRecordingRule("Cls", node.KindClass, nil)
	rs.AddRule(fn)
	rs.AddRule(both)
	rs.AddRule(cls)

	var names []string
	for _, r := range rs.Rules() {
		names = append(names, rule.Name(r))
	}
	assert.Equal(t, []string{"Both", "Cls", "Fn"}, names)
	assert.Equal(t, 3, rs.Len())

	require.Len(t, rs.RulesFor(node.KindMethod), 1)
	assert.Same(t, both, rs.RulesFor(node.KindMethod)[0])
	assert.Same(t, both, rs.RulesFor(node.KindClass)[0])
}

func TestRuleSet_ApplyDispatchesByKind(t *testing.T) {
	var calls []string
	rs := New("test")
	rs.AddRule(newRecordingRule("ClassRule", node.KindClass, &calls))
	rs.AddRule(newRecordingRule("MethodRule", node.KindMethod, &calls))
	rs.AddRule(newRecordingRule("FunctionRule", node.KindFunction, &calls))
	out := &sink{}
	rs.SetReport(out)

	cls := nodetest.Wrap(nodetest.Class("a.php", "Foo", 1, 10, nodetest.Method("bar", 2, 3)), nil)
	require.NoError(t, rs.Apply(cls))

	assert.Equal(t, []string{"ClassRule:Foo"}, calls)
	require.Len(t, out.violations, 1)
	assert.Equal(t, "ClassRule", out.violations[0].RuleName())
}

func TestRuleSet_ApplyNoBucketIsNoop(t *testing.T) {
	var calls []string
	rs := New("test")
	rs.AddRule(newRecordingRule("MethodRule", node.KindMethod, &calls))

	require.NoError(t, rs.Apply(nodetest.Wrap(nodetest.Function("a.php", "f", 1, 2), nil)))
	assert.Empty(t, calls)
}

func TestRuleSet_SuppressionHonoredUnlessStrict(t *testing.T) {
	tests := []struct {
		name   string
		strict bool
		want   []string
	}{
		{name: "lenient", strict: false, want: []string{"Other:Foo"}},
		{name: "strict", strict: true, want: []string{"Quiet:Foo", "Other:Foo"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls []string
			rs := New("test")
			rs.SetStrict(tt.strict)
			rs.AddRule(newRecordingRule("Quiet", node.KindClass, &calls))
			rs.AddRule(newRecordingRule("Other", node.KindClass, &calls))

			cls := nodetest.Class("a.php", "Foo", 1, 10).Suppress("leapmd.Quiet")
			require.NoError(t, rs.Apply(nodetest.Wrap(cls, nil)))
			assert.Equal(t, tt.want, calls)
		})
	}
}

func TestRuleSet_FailingRuleDoesNotStopDispatch(t *testing.T) {
	var calls []string
	rs := New("test")
	first := newRecordingRule("First", node.KindMethod, &calls)
	broken := newRecordingRule("Broken", node.KindMethod, &calls)
	broken.panics = true
	erring := newRecordingRule("Erring", node.KindMethod, &calls)
	erring.err = errors.New("bad metric")
	last := newRecordingRule("Last", node.KindMethod, &calls)
	for _, r := range []rule.Rule{first, broken, erring, last} {
		rs.AddRule(r)
	}
	out := &sink{}
	rs.SetReport(out)

	method := nodetest.Find(nodetest.Wrap(nodetest.Class("a.php", "Foo", 1, 10, nodetest.Method("bar", 4, 6)), nil), "bar")
	err := rs.Apply(method)
	require.Error(t, err)

	assert.Equal(t, []string{"First:bar", "Broken:bar", "Erring:bar", "Last:bar"}, calls)
	require.Len(t, out.violations, 2)
	assert.Equal(t, "First", out.violations[0].RuleName())
	assert.Equal(t, "Last", out.violations[1].RuleName())

	var ruleErr *RuleError
	require.ErrorAs(t, err, &ruleErr)
	assert.Equal(t, "Broken", ruleErr.Rule)
	assert.Equal(t, "a.php", ruleErr.File)
	assert.Equal(t, 4, ruleErr.Line)
	assert.Contains(t, err.Error(), "panic: boom")
	assert.Contains(t, err.Error(), "bad metric")
}

func TestRuleSet_RuleByName(t *testing.T) {
	rs := New("test")
	rs.AddRule(newRecordingRule("A", node.KindClass, nil))

	r, ok := rs.RuleByName("A")
	require.True(t, ok)
	assert.Equal(t, "A", rule.Name(r))

	_, ok = rs.RuleByName("a")
	assert.False(t, ok, "names match exactly")
}
