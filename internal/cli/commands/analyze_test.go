package commands

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapmd/internal/cli/config"
	"github.com/leapstack-labs/leapmd/internal/cli/testutil"
	"github.com/leapstack-labs/leapmd/pkg/baseline"
)

type reportJSON struct {
	Files []struct {
		File       string `json:"file"`
		Violations []struct {
			Rule     string `json:"rule"`
			Method   string `json:"method"`
			Priority int    `json:"priority"`
		} `json:"violations"`
	} `json:"files"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func TestAnalyzeCommand_Flags(t *testing.T) {
	cmd := NewAnalyzeCommand("test")
	assert.Equal(t, "analyze", cmd.Name())
	for _, name := range []string{
		"ruleset", "minimum-priority", "maximum-priority", "include-path", "plugin",
		"strict", "exclude", "suffixes", "baseline-file", "baseline-mode", "format",
		"generate-baseline", "report-file", "ignore-violations-on-exit", "ignore-errors-on-exit",
	} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "flag %s", name)
	}
	assert.Equal(t, "r", cmd.Flags().Lookup("ruleset").Shorthand)
	assert.Equal(t, "f", cmd.Flags().Lookup("format").Shorthand)
}

func TestAnalyzeCommand_ReportsViolations(t *testing.T) {
	testutil.Chdir(t, testutil.SetupTestProject(t))

	stdout, _, err := execute(context.Background(), NewAnalyzeCommand("test"), "ast", "-f", "json")
	require.Error(t, err)
	assert.Equal(t, ExitViolations, ExitCode(err))

	var rep reportJSON
	require.NoError(t, json.Unmarshal([]byte(stdout), &rep))
	require.Len(t, rep.Files, 1)
	require.Len(t, rep.Files[0].Violations, 1)
	v := rep.Files[0].Violations[0]
	assert.Equal(t, "CyclomaticComplexity", v.Rule)
	assert.Equal(t, "findActive", v.Method)
	assert.Equal(t, 3, v.Priority)
	assert.Empty(t, rep.Errors)
}

func TestAnalyzeCommand_TextReport(t *testing.T) {
	testutil.Chdir(t, testutil.SetupTestProject(t))

	stdout, _, err := execute(context.Background(), NewAnalyzeCommand("test"), "ast", "-f", "text", "--ignore-violations-on-exit")
	require.NoError(t, err)
	testutil.AssertNoANSI(t, stdout)
	assert.Contains(t, stdout, "UserManager.php")
	assert.Contains(t, stdout, "cyclomatic complexity of 12")
}

func TestAnalyzeCommand_Baseline(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	testutil.Chdir(t, dir)

	stdout, _, err := execute(context.Background(), NewAnalyzeCommand("test"), "ast", "--generate-baseline")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Baseline with 1 violations written")

	file := filepath.Join(dir, config.DefaultBaselineFile)
	v, err := baseline.Load(file, baseline.ModeValidate)
	require.NoError(t, err)
	assert.Equal(t, 1, v.Set().Len())

	_, _, err = execute(context.Background(), NewAnalyzeCommand("test"), "ast", "--baseline-mode", "validate", "-f", "json")
	require.NoError(t, err, "baselined violations do not fail the run")
}

func TestAnalyzeCommand_ReportFile(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	testutil.Chdir(t, dir)
	reportFile := filepath.Join(dir, "report.xml")

	stdout, _, err := execute(context.Background(), NewAnalyzeCommand("test"), "ast", "-f", "xml", "--report-file", reportFile)
	assert.Equal(t, ExitViolations, ExitCode(err))
	assert.Empty(t, stdout)

	data, err := os.ReadFile(reportFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<leapmd")
	assert.Contains(t, string(data), `rule="CyclomaticComplexity"`)
}

func TestAnalyzeCommand_ProcessingErrors(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	testutil.Chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ast", "Broken.ast.yaml"), []byte("nodes: [\n"), 0o644))

	stdout, _, err := execute(context.Background(), NewAnalyzeCommand("test"), "ast", "-f", "json")
	assert.Equal(t, ExitErrors, ExitCode(err), "errors take precedence over violations")

	var rep reportJSON
	require.NoError(t, json.Unmarshal([]byte(stdout), &rep))
	assert.Len(t, rep.Errors, 1)
	assert.Len(t, rep.Files, 1)

	_, _, err = execute(context.Background(), NewAnalyzeCommand("test"), "ast", "-f", "json",
		"--ignore-errors-on-exit", "--ignore-violations-on-exit")
	assert.NoError(t, err)
}

func TestAnalyzeCommand_ConfigurationErrors(t *testing.T) {
	testutil.Chdir(t, testutil.SetupTestProject(t))

	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown rule-set", args: []string{"ast", "-r", "missing"}},
		{name: "priority out of range", args: []string{"ast", "--minimum-priority", "9"}},
		{name: "unknown format", args: []string{"ast", "-f", "yaml"}},
		{name: "missing input", args: []string{"does-not-exist"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(context.Background(), NewAnalyzeCommand("test"), tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitFatal, ExitCode(err))
		})
	}
}
