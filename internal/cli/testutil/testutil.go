// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/leapstack-labs/leapmd/internal/cli/output"
)

// UserManagerDump is a dump with one class and two methods. findActive
// exceeds the default cyclomatic complexity threshold.
const UserManagerDump = `file: src/UserManager.php
nodes:
  - kind: class
    name: UserManager
    namespace: App\Service
    begin_line: 3
    end_line: 80
    metrics: {loc: 78, wmc: 14, cbo: 2, dit: 1, nocc: 0}
    children:
      - kind: method
        name: findActive
        begin_line: 10
        end_line: 40
        metrics: {ccn2: 12, npath: 150, loc: 31}
      - kind: method
        name: count
        begin_line: 42
        end_line: 45
        metrics: {ccn2: 1, npath: 1, loc: 4}
`

// SetupTestProject creates a temporary project with a leapmd.yaml and one
// dump under ast/. It returns the project directory.
func SetupTestProject(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(tmpDir, "ast"), 0o755); err != nil {
		t.Fatalf("failed to create ast directory: %v", err)
	}

	config := "rulesets: codesize\nbaseline:\n  file: leapmd.baseline.xml\n"
	if err := os.WriteFile(filepath.Join(tmpDir, "leapmd.yaml"), []byte(config), 0o644); err != nil {
		t.Fatalf("failed to create leapmd.yaml: %v", err)
	}

	dump := filepath.Join(tmpDir, "ast", "UserManager.ast.yaml")
	if err := os.WriteFile(dump, []byte(UserManagerDump), 0o644); err != nil {
		t.Fatalf("failed to create dump: %v", err)
	}

	return tmpDir
}

// Chdir switches into dir for the duration of the test.
func Chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("failed to change directory: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(old) })
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a new test renderer with the specified mode and TTY state.
// Output is captured in buffers for inspection.
func NewTestRenderer(mode output.OutputMode, isTTY bool) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(out, errOut, isTTY, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}

// Output returns the stdout output as a string.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns the stderr output as a string.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}
