package rule

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapmd/pkg/node"
	"github.com/leapstack-labs/leapmd/pkg/node/nodetest"
)

// mockRule reports every node it receives.
type mockRule struct {
	Base
	kinds node.Kind
}

func (m *mockRule) Capabilities() node.Kind { return m.kinds }

func (m *mockRule) Apply(ctx *Context, n node.Node) error {
	ctx.AddViolation(n, n.Name())
	return nil
}

type collector struct {
	violations []*Violation
}

func (c *collector) AddRuleViolation(v *Violation) {
	c.violations = append(c.violations, v)
}

func newMockRegistry(t *testing.T) *Registry {
	t.Helper()
	reg := NewRegistry()
	require.NoError(t, reg.Register("test.Mock", func() Rule {
		r := &mockRule{kinds: node.KindMethod}
		r.Definition().Name = "Mock"
		r.Definition().Message = "{0} is bad"
		return r
	}))
	return reg
}

func TestRegistry_New(t *testing.T) {
	reg := newMockRegistry(t)

	r, err := reg.New("test.Mock")
	require.NoError(t, err)

	assert.Equal(t, "test.Mock", r.Definition().Class)
	assert.Equal(t, LowestPriority, r.Definition().Priority, "zero priority defaults to lowest")
	assert.Equal(t, "Mock", Name(r))
}

func TestRegistry_NewUnknown(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.New("nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotRegistered))
}

func TestRegistry_Duplicate(t *testing.T) {
	reg := newMockRegistry(t)
	err := reg.Register("test.Mock", func() Rule { return &mockRule{} })

	var dup *DuplicateRuleError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "test.Mock", dup.Class)
}

func TestRegistry_CopyIsDeep(t *testing.T) {
	reg := newMockRegistry(t)
	src, err := reg.New("test.Mock")
	require.NoError(t, err)
	src.Definition().Properties = Properties{"minimum": "3"}
	src.Definition().Examples = []string{"a"}

	dst, err := reg.Copy(src)
	require.NoError(t, err)
	dst.Definition().Properties["minimum"] = "10"
	dst.Definition().Examples[0] = "b"
	dst.Definition().Name = "Renamed"

	assert.Equal(t, "3", src.Definition().Properties["minimum"])
	assert.Equal(t, []string{"a"}, src.Definition().Examples)
	assert.Equal(t, "Mock", src.Definition().Name)
	assert.NotSame(t, src, dst)
}

func TestRegistry_CloneIsIndependent(t *testing.T) {
	reg := newMockRegistry(t)
	clone := reg.Clone()
	require.NoError(t, clone.Register("test.Other", func() Rule { return &mockRule{} }))

	assert.True(t, clone.Has("test.Mock"))
	assert.True(t, clone.Has("test.Other"))
	assert.False(t, reg.Has("test.Other"))
	assert.Equal(t, []string{"test.Mock", "test.Other"}, clone.Classes())
	assert.Equal(t, 1, reg.Len())
}

func TestContext_AddViolation(t *testing.T) {
	reg := newMockRegistry(t)
	r, err := reg.New("test.Mock")
	require.NoError(t, err)

	cls := nodetest.Class("src/Foo.php", "Foo", 1, 30, nodetest.Method("bar", 5, 9))
	method := nodetest.Find(nodetest.Wrap(cls, nil), "bar")

	sink := &collector{}
	ctx := NewContext(sink, r, true)
	require.NoError(t, r.Apply(ctx, method))
	ctx.AddViolationWithMetric(method, 42, "x")

	require.Len(t, sink.violations, 2)
	v := sink.violations[0]
	assert.Equal(t, "bar is bad", v.Description)
	assert.Equal(t, Location{File: "src/Foo.php", BeginLine: 5, EndLine: 9, ClassName: "Foo", MethodName: "bar"}, v.Location)
	assert.Nil(t, v.Metric)
	assert.Equal(t, "bar", v.Signature())
	assert.Equal(t, "test.Mock", v.RuleClass())
	assert.True(t, ctx.Strict())

	require.NotNil(t, sink.violations[1].Metric)
	assert.InDelta(t, 42.0, *sink.violations[1].Metric, 0)
}

func TestContext_NilReporterDiscards(t *testing.T) {
	r := &mockRule{kinds: node.KindFunction}
	ctx := NewContext(nil, r, false)
	assert.NotPanics(t, func() {
		ctx.AddViolation(nodetest.Wrap(nodetest.Function("a.php", "f", 1, 2), nil))
	})
}

func TestInterpolate(t *testing.T) {
	assert.Equal(t, "The method foo() has 12 lines, limit 10.",
		Interpolate("The method {0}() has {1} lines, limit {2}.", []string{"foo", "12", "10"}))
	assert.Equal(t, "missing {1}", Interpolate("missing {1}", []string{"a"}))
	assert.Equal(t, "{0} {0}", Interpolate("{0} {0}", nil))
	assert.Equal(t, "x x", Interpolate("{0} {0}", []string{"x"}))
}

func TestProperties(t *testing.T) {
	p := Properties{
		"minimum":    "10",
		"bad":        "ten",
		"ratio":      "0.5",
		"on":         "on",
		"off":        "no",
		"exceptions": "id, db ,,x",
	}

	assert.Equal(t, 10, p.Int("minimum", 3))
	assert.Equal(t, 3, p.Int("bad", 3))
	assert.Equal(t, 3, p.Int("missing", 3))
	assert.InDelta(t, 0.5, p.Float("ratio", 1), 0)
	assert.True(t, p.Bool("on", false))
	assert.False(t, p.Bool("off", true))
	assert.True(t, p.Bool("missing", true))
	assert.Equal(t, []string{"id", "db", "x"}, p.List("exceptions", nil))
	assert.Equal(t, "dflt", p.String("missing", "dflt"))

	var nilBag Properties
	assert.Equal(t, 7, nilBag.Int("minimum", 7))
	assert.Nil(t, nilBag.Clone())
}

func TestParsePriority(t *testing.T) {
	p, err := ParsePriority(" 2 ")
	require.NoError(t, err)
	assert.Equal(t, Priority(2), p)
	assert.True(t, p.Valid())
	assert.False(t, Priority(0).Valid())
	assert.False(t, Priority(6).Valid())

	_, err = ParsePriority("high")
	require.Error(t, err)

	for _, out := range []string{"0", "6", "9", "-1"} {
		_, err = ParsePriority(out)
		assert.ErrorContains(t, err, "out of range", "priority %s", out)
	}
}

func TestViolation_Signature(t *testing.T) {
	tests := []struct {
		name     string
		location Location
		want     string
	}{
		{name: "method", location: Location{ClassName: "Foo", MethodName: "bar"}, want: "bar"},
		{name: "function", location: Location{Namespace: `App`, FunctionName: "helper"}, want: "helper"},
		{name: "namespaced type", location: Location{Namespace: `App\Service`, ClassName: "Foo"}, want: `App\Service\Foo`},
		{name: "global type", location: Location{ClassName: "Foo"}, want: "Foo"},
		{name: "nothing", location: Location{File: "a.php"}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &Violation{Rule: &mockRule{}, Location: tt.location}
			assert.Equal(t, tt.want, v.Signature())
		})
	}
}

// configurableRule backs many rules under one class.
type configurableRule struct {
	mockRule
}

func (*configurableRule) Configurable() {}

func TestViolation_RuleID(t *testing.T) {
	plain := &mockRule{}
	plain.Definition().Class = "test.Mock"
	plain.Definition().Name = "Mock"
	assert.Equal(t, "test.Mock", (&Violation{Rule: plain}).RuleID())

	managers := &configurableRule{}
	managers.Definition().Class = "test.Configurable"
	managers.Definition().Name = "NoManagers"
	helpers := &configurableRule{}
	helpers.Definition().Class = "test.Configurable"
	helpers.Definition().Name = "NoHelpers"

	assert.Equal(t, "test.Configurable/NoManagers", (&Violation{Rule: managers}).RuleID())
	assert.Equal(t, "test.Configurable/NoHelpers", (&Violation{Rule: helpers}).RuleID())

	unnamed := &configurableRule{}
	unnamed.Definition().Class = "test.Configurable"
	assert.Equal(t, "test.Configurable", (&Violation{Rule: unnamed}).RuleID())
}
