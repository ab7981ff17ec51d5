package output

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/leapstack-labs/leapmd/pkg/report"
	"github.com/leapstack-labs/leapmd/pkg/rule"
)

// ReportInfo carries run metadata printed alongside a report.
type ReportInfo struct {
	Version string
	RunID   string
}

type fileGroup struct {
	file       string
	violations []*rule.Violation
}

// groupByFile splits ordered violations into consecutive per-file runs.
func groupByFile(violations []*rule.Violation) []fileGroup {
	var groups []fileGroup
	for _, v := range violations {
		if n := len(groups); n > 0 && groups[n-1].file == v.Location.File {
			groups[n-1].violations = append(groups[n-1].violations, v)
			continue
		}
		groups = append(groups, fileGroup{file: v.Location.File, violations: []*rule.Violation{v}})
	}
	return groups
}

// RenderReport writes rep in the renderer's effective mode.
func (r *Renderer) RenderReport(rep *report.Report, info ReportInfo) error {
	switch r.EffectiveMode() {
	case ModeJSON:
		return WriteJSONReport(r.out, rep, info)
	case ModeXML:
		return WriteXMLReport(r.out, rep, info)
	case ModeMarkdown:
		r.renderReportMarkdown(rep)
		return nil
	default:
		r.renderReportText(rep)
		return nil
	}
}

func (r *Renderer) renderReportText(rep *report.Report) {
	styles := r.styles
	violations := rep.RuleViolations()

	for _, group := range groupByFile(violations) {
		r.Println("")
		r.Println(styles.Path.Render(group.file))
		for _, v := range group.violations {
			r.Printf("  %5d  %s  %s  %s\n",
				v.Location.BeginLine,
				styles.Priority(v.Priority()).Render("P"+v.Priority().String()),
				styles.Bold.Render(v.RuleName()),
				v.Description)
		}
	}

	if errs := rep.Errors(); len(errs) > 0 {
		r.Println("")
		r.Println(styles.Header2.Render(Title("processing errors")))
		for _, e := range errs {
			r.Printf("  %s  %s\n", styles.Error.Render(e.File), e.Message)
		}
	}

	r.Println("")
	summary := fmt.Sprintf("%d violations, %d errors in %dms", len(violations), len(rep.Errors()), rep.ElapsedTimeInMillis())
	switch {
	case rep.HasErrors():
		r.Println(styles.Error.Render(summary))
	case len(violations) > 0:
		r.Println(styles.Warning.Render(summary))
	default:
		r.Println(styles.Success.Render("✓ No violations found (" + summary + ")"))
	}
}

func (r *Renderer) renderReportMarkdown(rep *report.Report) {
	violations := rep.RuleViolations()

	r.Println(FormatHeader(1, "leapmd report"))
	r.Println("")
	r.Println(FormatKeyValue("Violations", strconv.Itoa(len(violations))))
	r.Println(FormatKeyValue("Errors", strconv.Itoa(len(rep.Errors()))))
	r.Println(FormatKeyValue("Duration", fmt.Sprintf("%dms", rep.ElapsedTimeInMillis())))

	for _, group := range groupByFile(violations) {
		r.Println("")
		r.Println(FormatHeader(2, "`"+group.file+"`"))
		r.Println("")
		r.Println("| Line | Priority | Rule | Description |")
		r.Println("|-----:|:--------:|------|-------------|")
		for _, v := range group.violations {
			name := v.RuleName()
			if url := v.Rule.Definition().ExternalInfoURL; url != "" {
				name = "[" + name + "](" + url + ")"
			}
			r.Printf("| %d | %d | %s | %s |\n", v.Location.BeginLine, int(v.Priority()), name, EscapeMarkdownCell(v.Description))
		}
	}

	if errs := rep.Errors(); len(errs) > 0 {
		r.Println("")
		r.Println(FormatHeader(2, Title("processing errors")))
		r.Println("")
		for _, e := range errs {
			r.Println(FormatKeyValue(e.File, e.Message))
		}
	}
}

type jsonReport struct {
	Version   string      `json:"version"`
	Package   string      `json:"package"`
	RunID     string      `json:"runId,omitempty"`
	Timestamp string      `json:"timestamp"`
	Duration  int64       `json:"durationMs"`
	Files     []jsonFile  `json:"files"`
	Errors    []jsonError `json:"errors"`
}

type jsonFile struct {
	File       string          `json:"file"`
	Violations []jsonViolation `json:"violations"`
}

type jsonViolation struct {
	BeginLine       int      `json:"beginLine"`
	EndLine         int      `json:"endLine"`
	Package         string   `json:"package,omitempty"`
	Class           string   `json:"class,omitempty"`
	Method          string   `json:"method,omitempty"`
	Function        string   `json:"function,omitempty"`
	Description     string   `json:"description"`
	Rule            string   `json:"rule"`
	RuleSet         string   `json:"ruleSet"`
	ExternalInfoURL string   `json:"externalInfoUrl,omitempty"`
	Priority        int      `json:"priority"`
	Metric          *float64 `json:"metric,omitempty"`
}

type jsonError struct {
	File    string `json:"fileName"`
	Message string `json:"message"`
}

// WriteJSONReport writes rep as indented JSON.
func WriteJSONReport(w io.Writer, rep *report.Report, info ReportInfo) error {
	out := jsonReport{
		Version:   info.Version,
		Package:   "leapmd",
		RunID:     info.RunID,
		Timestamp: timestamp(rep),
		Duration:  rep.ElapsedTimeInMillis(),
		Files:     []jsonFile{},
		Errors:    []jsonError{},
	}

	for _, group := range groupByFile(rep.RuleViolations()) {
		f := jsonFile{File: group.file}
		for _, v := range group.violations {
			def := v.Rule.Definition()
			f.Violations = append(f.Violations, jsonViolation{
				BeginLine:       v.Location.BeginLine,
				EndLine:         v.Location.EndLine,
				Package:         v.Location.Namespace,
				Class:           v.Location.ClassName,
				Method:          v.Location.MethodName,
				Function:        v.Location.FunctionName,
				Description:     v.Description,
				Rule:            def.Name,
				RuleSet:         def.RuleSetName,
				ExternalInfoURL: def.ExternalInfoURL,
				Priority:        int(def.Priority),
				Metric:          v.Metric,
			})
		}
		out.Files = append(out.Files, f)
	}
	for _, e := range rep.Errors() {
		out.Errors = append(out.Errors, jsonError{File: e.File, Message: e.Message})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

type xmlReport struct {
	XMLName   xml.Name   `xml:"leapmd"`
	Version   string     `xml:"version,attr"`
	Timestamp string     `xml:"timestamp,attr"`
	Duration  string     `xml:"duration,attr"`
	Files     []xmlFile  `xml:"file"`
	Errors    []xmlError `xml:"error"`
}

type xmlFile struct {
	Name       string         `xml:"name,attr"`
	Violations []xmlViolation `xml:"violation"`
}

type xmlViolation struct {
	BeginLine       int    `xml:"beginline,attr"`
	EndLine         int    `xml:"endline,attr"`
	Rule            string `xml:"rule,attr"`
	RuleSet         string `xml:"ruleset,attr"`
	Package         string `xml:"package,attr,omitempty"`
	Class           string `xml:"class,attr,omitempty"`
	Method          string `xml:"method,attr,omitempty"`
	Function        string `xml:"function,attr,omitempty"`
	ExternalInfoURL string `xml:"externalInfoUrl,attr,omitempty"`
	Priority        int    `xml:"priority,attr"`
	Description     string `xml:",chardata"`
}

type xmlError struct {
	Filename string `xml:"filename,attr"`
	Message  string `xml:"msg,attr"`
}

// WriteXMLReport writes rep in the PMD-style XML report format.
func WriteXMLReport(w io.Writer, rep *report.Report, info ReportInfo) error {
	out := xmlReport{
		Version:   info.Version,
		Timestamp: timestamp(rep),
		Duration:  strconv.FormatInt(rep.ElapsedTimeInMillis(), 10),
	}

	for _, group := range groupByFile(rep.RuleViolations()) {
		f := xmlFile{Name: group.file}
		for _, v := range group.violations {
			def := v.Rule.Definition()
			f.Violations = append(f.Violations, xmlViolation{
				BeginLine:       v.Location.BeginLine,
				EndLine:         v.Location.EndLine,
				Rule:            def.Name,
				RuleSet:         def.RuleSetName,
				Package:         v.Location.Namespace,
				Class:           v.Location.ClassName,
				Method:          v.Location.MethodName,
				Function:        v.Location.FunctionName,
				ExternalInfoURL: def.ExternalInfoURL,
				Priority:        int(def.Priority),
				Description:     v.Description,
			})
		}
		out.Files = append(out.Files, f)
	}
	for _, e := range rep.Errors() {
		out.Errors = append(out.Errors, xmlError{Filename: e.File, Message: e.Message})
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to encode xml report: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func timestamp(rep *report.Report) string {
	start := rep.StartTime()
	if start.IsZero() {
		start = time.Now()
	}
	return start.Format(time.RFC3339)
}
