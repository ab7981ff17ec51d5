package commands

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapmd/internal/cli/output"
	"github.com/leapstack-labs/leapmd/pkg/rule"
	"github.com/leapstack-labs/leapmd/pkg/ruleset"
)

// RulesOptions holds options for the rules command.
type RulesOptions struct {
	Details bool // Show descriptions and examples
}

// NewRulesCommand creates the rules command.
func NewRulesCommand() *cobra.Command {
	opts := &RulesOptions{}
	cmd := &cobra.Command{
		Use:   "rules [rule-name]",
		Short: "List the rules of the selected rule-sets",
		Long: `List every rule the selected rule-sets resolve to, after references,
overrides and the priority window have been applied.

Output adapts to environment:
  - Terminal: Table
  - Piped/Scripted: Markdown table
  - JSON: Machine-readable format`,
		Example: `  # List the default rules
  leapmd rules

  # Show one rule with its properties
  leapmd rules CyclomaticComplexity

  # Rules of a custom rule-set as JSON
  leapmd rules -r ./config/project.xml -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return showRule(cmd, args[0], opts)
			}
			return listRules(cmd, opts)
		},
	}

	addRuleSetFlags(cmd)
	cmd.Flags().BoolVarP(&opts.Details, "details", "d", false, "Show full documentation")

	return cmd
}

type ruleInfo struct {
	Name            string            `json:"name"`
	Class           string            `json:"class"`
	RuleSet         string            `json:"ruleSet"`
	Priority        int               `json:"priority"`
	AppliesTo       []string          `json:"appliesTo"`
	Since           string            `json:"since,omitempty"`
	Message         string            `json:"message"`
	Description     string            `json:"description,omitempty"`
	ExternalInfoURL string            `json:"externalInfoUrl,omitempty"`
	Properties      map[string]string `json:"properties,omitempty"`
	Examples        []string          `json:"examples,omitempty"`
}

func newRuleInfo(r rule.Rule) ruleInfo {
	def := r.Definition()
	var kinds []string
	for _, k := range r.Capabilities().Split() {
		kinds = append(kinds, k.String())
	}
	return ruleInfo{
		Name:            def.Name,
		Class:           def.Class,
		RuleSet:         def.RuleSetName,
		Priority:        int(def.Priority),
		AppliesTo:       kinds,
		Since:           def.Since,
		Message:         def.Message,
		Description:     strings.TrimSpace(def.Description),
		ExternalInfoURL: def.ExternalInfoURL,
		Properties:      def.Properties,
		Examples:        def.Examples,
	}
}

func resolveRules(cmd *cobra.Command) (*CommandContext, []ruleInfo, error) {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return nil, nil, err
	}
	eng, err := cmdCtx.Engine()
	if err != nil {
		return nil, nil, err
	}

	var infos []ruleInfo
	for _, r := range eng.Rules() {
		infos = append(infos, newRuleInfo(r))
	}
	return cmdCtx, infos, nil
}

func listRules(cmd *cobra.Command, opts *RulesOptions) error {
	cmdCtx, infos, err := resolveRules(cmd)
	if err != nil {
		return err
	}
	r := cmdCtx.Renderer

	switch r.EffectiveMode() {
	case output.ModeJSON, output.ModeXML:
		return writeJSON(r, infos)
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.Writer())
	t.AppendHeader(table.Row{"Rule", "Priority", "Applies To", "Rule-set"})
	for _, info := range infos {
		t.AppendRow(table.Row{info.Name, info.Priority, output.Title(strings.Join(info.AppliesTo, ", ")), info.RuleSet})
	}

	if r.EffectiveMode() == output.ModeMarkdown {
		r.Println(output.FormatHeader(1, fmt.Sprintf("Rules (%d)", len(infos))))
		r.Println("")
		t.RenderMarkdown()
	} else {
		t.SetStyle(table.StyleLight)
		r.Header(1, fmt.Sprintf("Rules (%d)", len(infos)))
		t.Render()
	}

	if opts.Details {
		for _, info := range infos {
			r.Println("")
			renderRuleDetail(r, info)
		}
	}
	return nil
}

func showRule(cmd *cobra.Command, name string, _ *RulesOptions) error {
	cmdCtx, infos, err := resolveRules(cmd)
	if err != nil {
		return err
	}
	r := cmdCtx.Renderer

	for _, info := range infos {
		if info.Name != name {
			continue
		}
		if mode := r.EffectiveMode(); mode == output.ModeJSON || mode == output.ModeXML {
			return writeJSON(r, info)
		}
		renderRuleDetail(r, info)
		return nil
	}
	return &ruleset.RuleNotFoundError{RuleSet: cmdCtx.Cfg.RuleSets, Name: name}
}

func renderRuleDetail(r *output.Renderer, info ruleInfo) {
	markdown := r.EffectiveMode() == output.ModeMarkdown
	styles := r.Styles()

	if markdown {
		r.Println(output.FormatHeader(2, info.Name))
	} else {
		r.Println(styles.Header2.Render(info.Name))
	}
	kv := func(key, value string) {
		if value == "" {
			return
		}
		if markdown {
			r.Println(output.FormatKeyValue(key, value))
			return
		}
		r.Printf("  %s %s\n", styles.Bold.Render(key+":"), value)
	}

	kv("Class", info.Class)
	kv("Rule-set", info.RuleSet)
	kv("Priority", fmt.Sprint(info.Priority))
	kv("Applies to", strings.Join(info.AppliesTo, ", "))
	kv("Since", info.Since)
	kv("Message", info.Message)
	kv("More info", info.ExternalInfoURL)

	keys := make([]string, 0, len(info.Properties))
	for k := range info.Properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		kv("Property "+k, info.Properties[k])
	}

	if info.Description != "" {
		r.Println("")
		r.Println(info.Description)
	}
	for _, ex := range info.Examples {
		r.Println("")
		if markdown {
			r.Println("```")
			r.Println(strings.TrimSpace(ex))
			r.Println("```")
		} else {
			r.Println(styles.Muted.Render(strings.TrimSpace(ex)))
		}
	}
}

func writeJSON(r *output.Renderer, v any) error {
	enc := json.NewEncoder(r.Writer())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
