package engine

// run.go - Analysis pass over discovered dump files

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/leapstack-labs/leapmd/internal/loader"
	"github.com/leapstack-labs/leapmd/pkg/baseline"
	"github.com/leapstack-labs/leapmd/pkg/node"
	"github.com/leapstack-labs/leapmd/pkg/report"
	"github.com/leapstack-labs/leapmd/pkg/ruleset"
)

// Result is the outcome of one Run.
type Result struct {
	ID        uuid.UUID
	Report    *report.Report
	Validator *baseline.Validator
	// Files lists the analyzed dump files.
	Files []string
}

// Baseline returns the set a regenerated baseline file would hold: every
// violation the report kept.
func (r *Result) Baseline() *baseline.Set {
	return baseline.FromViolations(r.Report.RuleViolations())
}

// Run discovers dump files under paths and applies every rule-set to each
// of their nodes. Backend and rule failures are collected on the report as
// processing errors; only discovery and baseline failures abort the run.
// In update mode the regenerated baseline is written back to the baseline
// file.
func (e *Engine) Run(ctx context.Context, paths []string) (*Result, error) {
	id := uuid.New()
	e.logger.Info("starting analysis", "run_id", id.String(), "paths", paths)

	files, err := loader.Discover(paths, loader.DiscoverOptions{
		Suffixes: e.suffixes,
		Exclude:  e.exclude,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to discover dump files: %w", err)
	}

	validator, err := baseline.Load(e.baselineFile, e.baselineMode)
	if err != nil {
		return nil, fmt.Errorf("failed to load baseline: %w", err)
	}

	rep := report.New()
	rep.SetBaselineValidator(validator)
	for _, rs := range e.ruleSets {
		rs.SetReport(rep)
	}

	result := &Result{ID: id, Report: rep, Validator: validator, Files: files}

	rep.Start()
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			rep.End()
			return result, fmt.Errorf("analysis cancelled: %w", err)
		}
		e.analyzeFile(rep, file)
	}
	rep.End()

	e.logger.Info("analysis completed",
		"run_id", id.String(),
		"files", len(files),
		"violations", rep.Len(),
		"errors", len(rep.Errors()),
		"duration", time.Duration(rep.ElapsedTimeInMillis())*time.Millisecond)

	if e.baselineMode == baseline.ModeUpdate {
		if err := baseline.Save(e.baselineFile, result.Baseline()); err != nil {
			return result, fmt.Errorf("failed to update baseline: %w", err)
		}
		e.logger.Debug("baseline updated", "file", e.baselineFile, "suppressed", len(validator.Suppressed()))
	}

	return result, nil
}

func (e *Engine) analyzeFile(rep *report.Report, file string) {
	unit, err := loader.LoadFile(file)
	if err != nil {
		e.logger.Warn("failed to load dump", "file", file, "error", err)
		rep.AddError(report.NewFileError(file, err.Error()))
		return
	}

	for _, msg := range unit.Errors {
		pe := report.NewProcessingError(msg)
		if pe.File == "" {
			pe.File = fileOf(unit)
		}
		rep.AddError(pe)
	}

	for _, root := range unit.Roots() {
		node.Walk(root, func(n node.Node) bool {
			for _, rs := range e.ruleSets {
				e.apply(rep, rs, n)
			}
			return true
		})
	}
}

func (e *Engine) apply(rep *report.Report, rs *ruleset.RuleSet, n node.Node) {
	err := rs.Apply(n)
	if err == nil {
		return
	}
	for _, failure := range unjoin(err) {
		e.logger.Warn("rule failed", "ruleset", rs.Name, "node", n.FullQualifiedName(), "error", failure)
		file := n.FileName()
		var ruleErr *ruleset.RuleError
		if errors.As(failure, &ruleErr) && ruleErr.File != "" {
			file = ruleErr.File
		}
		rep.AddError(report.NewFileError(file, failure.Error()))
	}
}

func fileOf(u *loader.Unit) string {
	if u.File != "" {
		return u.File
	}
	return u.Path
}

func unjoin(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}
