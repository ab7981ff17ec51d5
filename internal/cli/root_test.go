package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapmd/internal/cli/commands"
	"github.com/leapstack-labs/leapmd/internal/cli/testutil"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmd()
	out, errOut := new(bytes.Buffer), new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRootCmd_Subcommands(t *testing.T) {
	cmd := NewRootCmd()
	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.Subset(t, names, []string{"analyze", "completion", "rules", "rulesets", "version"})

	for _, flag := range []string{"config", "verbose", "output"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), "flag %s", flag)
	}
}

func TestRootCmd_Version(t *testing.T) {
	stdout, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "leapmd v"+Version)

	stdout, _, err = run(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "leapmd "+Version)
}

func TestRootCmd_Completion(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			stdout, _, err := run(t, "completion", shell)
			require.NoError(t, err)
			assert.Contains(t, stdout, "leapmd")
		})
	}

	_, _, err := run(t, "completion", "tcsh")
	assert.Error(t, err)
}

func TestRootCmd_AnalyzeWithConfigFile(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	testutil.Chdir(t, t.TempDir())

	stdout, _, err := run(t, "--config", dir+"/leapmd.yaml", "-o", "json", "analyze", dir+"/ast")
	assert.Equal(t, commands.ExitViolations, commands.ExitCode(err))
	assert.Contains(t, stdout, `"rule": "CyclomaticComplexity"`)
}

func TestRootCmd_VerboseLogsToStderr(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	testutil.Chdir(t, dir)

	_, stderr, err := run(t, "-v", "rules", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, stderr, "using config file")
}

func TestRootCmd_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	testutil.Chdir(t, dir)

	_, _, err := run(t, "--config", dir+"/missing.yaml", "rules")
	require.Error(t, err)
	assert.Equal(t, commands.ExitFatal, commands.ExitCode(err))
}
