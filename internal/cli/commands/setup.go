package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapmd/internal/cli/config"
	"github.com/leapstack-labs/leapmd/internal/cli/output"
	"github.com/leapstack-labs/leapmd/internal/engine"
	"github.com/leapstack-labs/leapmd/pkg/rule"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext collects the config, logger and renderer for cmd.
// Commands run without the root command load the config from their own
// flags.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cfg := config.GetConfig(cmd.Context())
	if cfg == nil {
		var err error
		cfg, err = config.Load("", cmd.Flags())
		if err != nil {
			return nil, err
		}
	}

	mode, err := output.ParseMode(cfg.OutputFormat)
	if err != nil {
		return nil, err
	}

	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(cmd.Context()),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode),
	}, nil
}

// Engine creates an engine from the context's configuration.
func (c *CommandContext) Engine() (*engine.Engine, error) {
	return createEngine(c.Cfg, c.Logger)
}

func createEngine(cfg *config.Config, logger *slog.Logger) (*engine.Engine, error) {
	eng, err := engine.New(engine.Config{
		RuleSets:        cfg.RuleSets,
		MinimumPriority: rule.Priority(cfg.MinimumPriority),
		MaximumPriority: rule.Priority(cfg.MaximumPriority),
		Strict:          cfg.Strict,
		IncludePaths:    cfg.IncludePaths,
		Plugins:         cfg.Plugins,
		Exclude:         cfg.Exclude,
		Suffixes:        cfg.Suffixes,
		BaselineFile:    cfg.Baseline.File,
		BaselineMode:    cfg.Baseline.Mode,
		Logger:          logger,
	})
	if err != nil {
		return nil, &ExitError{Code: ExitFatal, Err: err}
	}
	return eng, nil
}

// addRuleSetFlags registers the flags that select and filter rules.
func addRuleSetFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("ruleset", "r", "", "Comma separated rule-set names or files (e.g. codesize,naming)")
	cmd.Flags().Int("minimum-priority", config.DefaultMinimumPriority, "Lowest rule priority to apply (1-5)")
	cmd.Flags().Int("maximum-priority", config.DefaultMaximumPriority, "Highest rule priority to apply (1-5)")
	cmd.Flags().StringSlice("include-path", nil, "Additional directories searched for rule-sets")
	cmd.Flags().StringSlice("plugin", nil, "Starlark rule plugins to load")
}

// Exit codes.
const (
	ExitOK         = 0
	ExitFatal      = 1
	ExitViolations = 2
	ExitErrors     = 3
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }
