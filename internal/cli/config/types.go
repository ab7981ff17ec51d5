// Package config provides configuration management for the leapmd CLI.
package config

import (
	"fmt"

	"github.com/leapstack-labs/leapmd/internal/cli/output"
	"github.com/leapstack-labs/leapmd/internal/loader"
	"github.com/leapstack-labs/leapmd/pkg/baseline"
	"github.com/leapstack-labs/leapmd/pkg/rule"
)

// Config holds all CLI configuration options.
type Config struct {
	RuleSets        string         `koanf:"rulesets"`
	MinimumPriority int            `koanf:"minimum_priority"`
	MaximumPriority int            `koanf:"maximum_priority"`
	Strict          bool           `koanf:"strict"`
	IncludePaths    []string       `koanf:"include_paths"`
	Plugins         []string       `koanf:"plugins"`
	Exclude         []string       `koanf:"exclude"`
	Suffixes        []string       `koanf:"suffixes"`
	Baseline        BaselineConfig `koanf:"baseline"`
	OutputFormat    string         `koanf:"output"`
	Verbose         bool           `koanf:"verbose"`

	// ProjectRoot is the directory relative paths were resolved against.
	ProjectRoot string `koanf:"-"`
	// ConfigFile is the file that was loaded, if any.
	ConfigFile string `koanf:"-"`
}

// BaselineConfig locates the baseline file and selects how it is used.
type BaselineConfig struct {
	File string        `koanf:"file"`
	Mode baseline.Mode `koanf:"mode"`
}

// Default configuration values.
const (
	DefaultRuleSets        = "codesize,design,naming"
	DefaultMinimumPriority = int(rule.LowestPriority)
	DefaultMaximumPriority = int(rule.HighestPriority)
	DefaultBaselineFile    = "leapmd.baseline.xml"
	DefaultOutput          = "auto" // Auto-detect: TTY=text, non-TTY=markdown
)

// ConfigFileNames are searched, in order, in each candidate directory.
var ConfigFileNames = []string{"leapmd.yaml", "leapmd.yml"}

func defaults() map[string]any {
	return map[string]any{
		"rulesets":         DefaultRuleSets,
		"minimum_priority": DefaultMinimumPriority,
		"maximum_priority": DefaultMaximumPriority,
		"strict":           false,
		"include_paths":    []string{},
		"plugins":          []string{},
		"exclude":          []string{},
		"suffixes":         loader.DefaultSuffixes,
		"baseline.file":    "",
		"baseline.mode":    baseline.ModeNone.String(),
		"output":           DefaultOutput,
		"verbose":          false,
	}
}

// Validate checks value ranges that decoding cannot.
func (c *Config) Validate() error {
	minimum, maximum := rule.Priority(c.MinimumPriority), rule.Priority(c.MaximumPriority)
	if !minimum.Valid() {
		return fmt.Errorf("minimum_priority must be between %d and %d, got %d", int(rule.HighestPriority), int(rule.LowestPriority), c.MinimumPriority)
	}
	if !maximum.Valid() {
		return fmt.Errorf("maximum_priority must be between %d and %d, got %d", int(rule.HighestPriority), int(rule.LowestPriority), c.MaximumPriority)
	}
	if maximum > minimum {
		return fmt.Errorf("maximum_priority %d is lower than minimum_priority %d", c.MaximumPriority, c.MinimumPriority)
	}
	if _, err := output.ParseMode(c.OutputFormat); err != nil {
		return err
	}
	if c.Baseline.Mode != baseline.ModeNone && c.Baseline.File == "" {
		return fmt.Errorf("baseline mode %s requires baseline.file", c.Baseline.Mode)
	}
	return nil
}
