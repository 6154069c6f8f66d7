package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/openkraft/kraftlint/internal/adapters/outbound/config"
	"github.com/openkraft/kraftlint/internal/adapters/outbound/tui"
	"github.com/openkraft/kraftlint/internal/domain/rules"
)

func newRulesCmd() *cobra.Command {
	var (
		configPath string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the rule catalog",
		Long:  "List every rule with its category and the severity and state it has in the active ruleset.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rs, err := loadRuleset(config.New(), configPath, os.Getenv(config.EnvVar))
			if err != nil {
				return &ExitError{Code: ExitFatal, Err: err}
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rs.Rules())
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderRules(rules.All(), rs))
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Ruleset file (default: ./"+config.DefaultFileName+")")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the active rules as JSON")

	return cmd
}
