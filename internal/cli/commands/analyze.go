package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapmd/internal/cli/config"
	"github.com/leapstack-labs/leapmd/internal/cli/output"
	"github.com/leapstack-labs/leapmd/internal/engine"
	"github.com/leapstack-labs/leapmd/pkg/baseline"
)

// AnalyzeOptions holds options for the analyze command that are not part
// of the persistent configuration.
type AnalyzeOptions struct {
	GenerateBaseline       bool   // Write all violations to the baseline file
	ReportFile             string // Write the report here instead of stdout
	IgnoreViolationsOnExit bool   // Exit 0 even when violations were found
	IgnoreErrorsOnExit     bool   // Exit 0 even when processing errors occurred
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand(version string) *cobra.Command {
	opts := &AnalyzeOptions{}
	cmd := &cobra.Command{
		Use:   "analyze [paths...]",
		Short: "Apply rule-sets to AST dumps",
		Long: `Analyze AST dump files against one or more rule-sets.

Paths may be dump files or directories; directories are searched for files
ending in one of the configured suffixes. Rule-sets are bundled names
(codesize, design, naming, cleancode) or paths to rule-set XML files.

Exit codes:
  0  no violations
  1  configuration or runtime failure
  2  violations found
  3  processing errors occurred`,
		Example: `  # Analyze the current directory with the default rule-sets
  leapmd analyze

  # Use selected rule-sets and only priority 1-3 rules
  leapmd analyze ./build/ast -r codesize,naming --minimum-priority 3

  # Record current violations, then report only new ones
  leapmd analyze --generate-baseline
  leapmd analyze --baseline-mode validate

  # Machine-readable report
  leapmd analyze -f json --report-file leapmd.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"."}
			}
			return runAnalyze(cmd, args, opts, version)
		},
	}

	addRuleSetFlags(cmd)
	cmd.Flags().Bool("strict", false, "Ignore suppression annotations")
	cmd.Flags().StringSlice("exclude", nil, "Exclude paths matching these patterns (* and ? wildcards)")
	cmd.Flags().StringSlice("suffixes", nil, "Dump file suffixes searched in directories")
	cmd.Flags().String("baseline-file", "", "Baseline file (default: "+config.DefaultBaselineFile+" with --generate-baseline)")
	cmd.Flags().String("baseline-mode", "", "Baseline mode: none, validate, update")
	cmd.Flags().StringP("format", "f", "", "Report format: text, markdown, json, xml")
	cmd.Flags().BoolVar(&opts.GenerateBaseline, "generate-baseline", false, "Write all current violations to the baseline file")
	cmd.Flags().StringVar(&opts.ReportFile, "report-file", "", "Write the report to a file")
	cmd.Flags().BoolVar(&opts.IgnoreViolationsOnExit, "ignore-violations-on-exit", false, "Exit 0 even when violations were found")
	cmd.Flags().BoolVar(&opts.IgnoreErrorsOnExit, "ignore-errors-on-exit", false, "Exit 0 even when processing errors occurred")

	_ = cmd.RegisterFlagCompletionFunc("baseline-mode", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"none", "validate", "update"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "markdown", "json", "xml"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runAnalyze(cmd *cobra.Command, paths []string, opts *AnalyzeOptions, version string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return &ExitError{Code: ExitFatal, Err: err}
	}
	cfg := *cmdCtx.Cfg
	logger := cmdCtx.Logger

	if opts.GenerateBaseline {
		if cfg.Baseline.File == "" {
			cfg.Baseline.File = filepath.Join(cfg.ProjectRoot, config.DefaultBaselineFile)
		}
		cfg.Baseline.Mode = baseline.ModeNone
	}

	eng, err := createEngine(&cfg, logger)
	if err != nil {
		return err
	}

	result, err := eng.Run(cmd.Context(), paths)
	if err != nil {
		return &ExitError{Code: ExitFatal, Err: err}
	}

	if opts.GenerateBaseline {
		set := result.Baseline()
		if err := baseline.Save(cfg.Baseline.File, set); err != nil {
			return &ExitError{Code: ExitFatal, Err: err}
		}
		cmdCtx.Renderer.Success(fmt.Sprintf("Baseline with %d violations written to %s", set.Len(), cfg.Baseline.File))
		return nil
	}

	if err := writeReport(cmdCtx.Renderer, opts.ReportFile, result, version); err != nil {
		return &ExitError{Code: ExitFatal, Err: err}
	}

	rep := result.Report
	switch {
	case rep.HasErrors() && !opts.IgnoreErrorsOnExit:
		return &ExitError{Code: ExitErrors, Err: fmt.Errorf("%d processing errors", len(rep.Errors()))}
	case !rep.IsEmpty() && !opts.IgnoreViolationsOnExit:
		return &ExitError{Code: ExitViolations, Err: fmt.Errorf("%d violations found", rep.Len())}
	}
	return nil
}

func writeReport(r *output.Renderer, reportFile string, result *engine.Result, version string) (err error) {
	info := output.ReportInfo{Version: version, RunID: result.ID.String()}
	if reportFile == "" {
		return r.RenderReport(result.Report, info)
	}

	f, err := os.Create(reportFile) //nolint:gosec // G304: path comes from the user
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	mode := r.Mode()
	if mode == output.ModeAuto {
		mode = output.ModeText
	}
	return output.NewRendererWithTTY(f, r.ErrWriter(), false, mode).RenderReport(result.Report, info)
}

// ExitCode returns the exit code for err: 0 for nil, the ExitError code
// when err wraps one, and ExitFatal otherwise.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFatal
}
