package plugin

import (
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapmd/internal/testutil"
	"github.com/leapstack-labs/leapmd/pkg/node"
	"github.com/leapstack-labs/leapmd/pkg/node/nodetest"
	"github.com/leapstack-labs/leapmd/pkg/rule"
	"github.com/leapstack-labs/leapmd/pkg/ruleset"
)

const tmpNamesScript = `
def _apply(node, ctx):
    print("checking", node.fqn)
    if node.name.startswith(ctx.property("prefix", "tmp")):
        ctx.violation(node.name, node.class_name, node.begin_line)

rule(class_name = "custom.NoTmpNames", kinds = ["method", "function"], apply = _apply)
`

const metricScript = `
def _apply(node, ctx):
    loc = node.metric("loc", 0)
    if loc > 10:
        ctx.violation_with_metric(loc, node.name, len(node.children()))
    if ctx.strict:
        ctx.violation("strict", node.parent() == None)

rule("custom.BigClass", "class", _apply)
`

type collector struct {
	violations []*rule.Violation
}

func (c *collector) AddRuleViolation(v *rule.Violation) {
	c.violations = append(c.violations, v)
}

func apply(t *testing.T, r rule.Rule, n node.Node, strict bool) []*rule.Violation {
	t.Helper()
	c := &collector{}
	require.NoError(t, r.Apply(rule.NewContext(c, r, strict), n))
	return c.violations
}

func TestLoader_RegistersAndApplies(t *testing.T) {
	dir := t.TempDir()
	script := testutil.WriteFile(t, dir, "tmp.star", tmpNamesScript)
	logger, logs := testutil.NewCaptureLogger(slog.LevelDebug)

	reg := rule.NewRegistry()
	l := NewLoader(logger)
	require.NoError(t, l.LoadFile(script, reg))
	require.True(t, reg.Has("custom.NoTmpNames"))

	r, err := reg.New("custom.NoTmpNames")
	require.NoError(t, err)
	r.Definition().Name = "NoTmpNames"
	r.Definition().Message = "{0} in {1} at {2}"
	assert.Equal(t, node.KindMethod|node.KindFunction, r.Capabilities())

	root := nodetest.Wrap(nodetest.Class("a.php", "Foo", 1, 20,
		nodetest.Method("tmpValue", 3, 5),
		nodetest.Method("value", 6, 8),
	), nil)

	vs := apply(t, r, nodetest.Find(root, "tmpValue"), false)
	require.Len(t, vs, 1)
	assert.Equal(t, "tmpValue in Foo at 3", vs[0].Description)
	assert.Empty(t, apply(t, r, nodetest.Find(root, "value"), false))
	assert.Contains(t, logs.String(), "checking Foo::value")

	r.Definition().Properties = rule.Properties{"prefix": "val"}
	assert.Len(t, apply(t, r, nodetest.Find(root, "value"), false), 1)
}

func TestLoader_MetricsAndNavigation(t *testing.T) {
	dir := t.TempDir()
	script := testutil.WriteFile(t, dir, "big.star", metricScript)

	reg := rule.NewRegistry()
	require.NoError(t, NewLoader(testutil.NewTestLogger(t)).LoadFile(script, reg))
	r, err := reg.New("custom.BigClass")
	require.NoError(t, err)
	r.Definition().Message = "{0}:{1}"

	cls := nodetest.Wrap(nodetest.Class("a.php", "Foo", 1, 20, nodetest.Method("a", 2, 3)), map[string]float64{"loc": 20})

	vs := apply(t, r, cls, false)
	require.Len(t, vs, 1)
	assert.Equal(t, "Foo:1", vs[0].Description)
	require.NotNil(t, vs[0].Metric)
	assert.InDelta(t, 20.0, *vs[0].Metric, 0)

	vs = apply(t, r, cls, true)
	require.Len(t, vs, 2)
	assert.Equal(t, "strict:True", vs[1].Description)
}

func TestLoader_LoadsOnce(t *testing.T) {
	dir := t.TempDir()
	script := testutil.WriteFile(t, dir, "tmp.star", tmpNamesScript)

	reg := rule.NewRegistry()
	l := NewLoader(nil)
	require.NoError(t, l.LoadAll([]string{script, script}, reg))
	assert.Equal(t, []string{"custom.NoTmpNames"}, reg.Classes())

	// A second loader registering the same class on the same registry fails.
	err := NewLoader(nil).LoadFile(script, reg)
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Contains(t, loadErr.Message, "already registered")
}

func TestLoader_Errors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		script  string
		wantMsg string
	}{
		{name: "syntax", script: "def broken(:\n", wantMsg: "Starlark execution error"},
		{name: "unknown kind", script: `rule("x.Y", ["module"], lambda n, c: None)`, wantMsg: "unknown node kind"},
		{name: "empty kinds", script: `rule("x.Y", [], lambda n, c: None)`, wantMsg: "kinds must not be empty"},
		{name: "empty class", script: `rule("", "class", lambda n, c: None)`, wantMsg: "class_name must not be empty"},
		{name: "not callable", script: `rule("x.Y", "class", 3)`, wantMsg: "apply"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := testutil.WriteFile(t, dir, tt.name+".star", tt.script)
			err := NewLoader(nil).LoadFile(path, rule.NewRegistry())
			var loadErr *LoadError
			require.ErrorAs(t, err, &loadErr)
			assert.Contains(t, loadErr.Message, tt.wantMsg)
		})
	}

	err := NewLoader(nil).LoadFile(filepath.Join(dir, "missing.star"), rule.NewRegistry())
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Contains(t, loadErr.Message, "failed to read file")
}

func TestScriptRule_ApplyError(t *testing.T) {
	dir := t.TempDir()
	script := testutil.WriteFile(t, dir, "fail.star", `
def _apply(node, ctx):
    fail("cannot check " + node.name)

rule("custom.Fails", "function", _apply)
`)
	reg := rule.NewRegistry()
	require.NoError(t, NewLoader(nil).LoadFile(script, reg))
	r, err := reg.New("custom.Fails")
	require.NoError(t, err)

	fn := nodetest.Wrap(nodetest.Function("f.php", "f", 1, 2), nil)
	err = r.Apply(rule.NewContext(nil, r, false), fn)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot check f")
}

func TestLoader_AsFactoryClassLoader(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "plugins/tmp.star", tmpNamesScript)
	file := testutil.WriteFile(t, dir, "project.xml", `<?xml version="1.0"?>
<ruleset name="project">
    <rule name="NoTmpNames" class="custom.NoTmpNames" file="plugins/tmp.star" message="{0}">
        <priority>2</priority>
    </rule>
</ruleset>`)

	reg := rule.NewRegistry()
	f := ruleset.NewFactory(ruleset.FactoryConfig{
		Registry:    reg,
		ClassLoader: NewLoader(testutil.NewTestLogger(t)),
		Logger:      testutil.NewTestLogger(t),
	})
	rs, err := f.CreateSingleRuleSet(file)
	require.NoError(t, err)

	r, ok := rs.RuleByName("NoTmpNames")
	require.True(t, ok)
	assert.Equal(t, "custom.NoTmpNames", r.Definition().Class)
	assert.Equal(t, rule.Priority(2), r.Definition().Priority)
}
