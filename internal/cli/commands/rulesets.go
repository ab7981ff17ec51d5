package commands

import (
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapmd/internal/cli/config"
	"github.com/leapstack-labs/leapmd/internal/cli/output"
	"github.com/leapstack-labs/leapmd/pkg/ruleset"
)

// NewRuleSetsCommand creates the rulesets command.
func NewRuleSetsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rulesets",
		Short: "List bundled rule-sets",
		Long: `List the identifiers of the rule-sets shipped with leapmd. Each can be
passed to --ruleset by name.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mode := output.ModeAuto
			if cfg := config.GetConfig(cmd.Context()); cfg != nil {
				mode = output.Mode(cfg.OutputFormat)
			}
			r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

			names := ruleset.NewFactory(ruleset.FactoryConfig{}).Available()
			switch r.EffectiveMode() {
			case output.ModeJSON, output.ModeXML:
				return writeJSON(r, names)
			case output.ModeMarkdown:
				r.Println(output.FormatHeader(1, "Bundled rule-sets"))
				r.Println("")
				for _, name := range names {
					r.Println("- " + name)
				}
			default:
				r.Header(1, "Bundled rule-sets")
				for _, name := range names {
					r.Println("  " + name)
				}
			}
			return nil
		},
	}
}
