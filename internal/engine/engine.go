// Package engine wires rule-set resolution, dump discovery, baseline
// handling and rule dispatch into one analysis run.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/leapmd/internal/plugin"
	"github.com/leapstack-labs/leapmd/pkg/baseline"
	"github.com/leapstack-labs/leapmd/pkg/rule"
	"github.com/leapstack-labs/leapmd/pkg/ruleset"

	// Built-in rule classes.
	_ "github.com/leapstack-labs/leapmd/pkg/rules"
)

// Engine analyzes AST dumps against a resolved list of rule-sets.
type Engine struct {
	logger   *slog.Logger
	registry *rule.Registry
	factory  *ruleset.Factory
	ruleSets []*ruleset.RuleSet

	exclude      []string
	suffixes     []string
	baselineFile string
	baselineMode baseline.Mode
}

// Config holds engine configuration.
type Config struct {
	// RuleSets is the comma separated rule-set spec, e.g. "codesize,naming".
	RuleSets string
	// MinimumPriority and MaximumPriority bound the admitted rule
	// priorities. Zero selects the full range.
	MinimumPriority rule.Priority
	MaximumPriority rule.Priority
	// Strict ignores suppression annotations.
	Strict bool
	// IncludePaths seed the rule-set search path.
	IncludePaths []string
	// Plugins are Starlark scripts loaded before resolution.
	Plugins []string
	// Exclude adds to the exclude patterns of the first rule-set.
	Exclude []string
	// Suffixes selects dump files inside directories.
	Suffixes     []string
	BaselineFile string
	BaselineMode baseline.Mode
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// New loads plugins and resolves the configured rule-sets. Any
// configuration failure is returned before analysis starts.
func New(cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	logger.Debug("initializing engine", "rulesets", cfg.RuleSets, "strict", cfg.Strict)

	if cfg.BaselineMode != baseline.ModeNone && cfg.BaselineFile == "" {
		return nil, fmt.Errorf("baseline mode %s requires a baseline file", cfg.BaselineMode)
	}

	registry := rule.DefaultRegistry.Clone()
	loader := plugin.NewLoader(logger)
	if err := loader.LoadAll(cfg.Plugins, registry); err != nil {
		return nil, fmt.Errorf("failed to load plugins: %w", err)
	}

	factory := ruleset.NewFactory(ruleset.FactoryConfig{
		Registry:        registry,
		SearchPath:      ruleset.NewSearchPath(cfg.IncludePaths...),
		MinimumPriority: cfg.MinimumPriority,
		MaximumPriority: cfg.MaximumPriority,
		Strict:          cfg.Strict,
		ClassLoader:     loader,
		Logger:          logger,
	})

	ruleSets, err := factory.CreateRuleSets(cfg.RuleSets)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve rule-sets: %w", err)
	}
	if len(ruleSets) == 0 {
		return nil, fmt.Errorf("no rule-sets to apply: %q", cfg.RuleSets)
	}

	ignore, err := factory.IgnorePatterns(cfg.RuleSets)
	if err != nil {
		return nil, fmt.Errorf("failed to read exclude patterns: %w", err)
	}

	return &Engine{
		logger:       logger,
		registry:     registry,
		factory:      factory,
		ruleSets:     ruleSets,
		exclude:      append(ignore, cfg.Exclude...),
		suffixes:     cfg.Suffixes,
		baselineFile: cfg.BaselineFile,
		baselineMode: cfg.BaselineMode,
	}, nil
}

// RuleSets returns the resolved rule-sets in spec order.
func (e *Engine) RuleSets() []*ruleset.RuleSet {
	return e.ruleSets
}

// Rules returns the distinct rules of every rule-set, in rule-set order.
// A rule name appearing in several rule-sets is listed once.
func (e *Engine) Rules() []rule.Rule {
	seen := make(map[string]bool)
	var out []rule.Rule
	for _, rs := range e.ruleSets {
		for _, r := range rs.Rules() {
			name := rule.Name(r)
			if seen[name] {
				continue
			}
			seen[name] = true
			out = append(out, r)
		}
	}
	return out
}

// Registry returns the class registry including plugin classes.
func (e *Engine) Registry() *rule.Registry {
	return e.registry
}

// Factory returns the factory the rule-sets were resolved with.
func (e *Engine) Factory() *ruleset.Factory {
	return e.factory
}

// Exclude returns the effective exclude patterns.
func (e *Engine) Exclude() []string {
	return append([]string(nil), e.exclude...)
}
