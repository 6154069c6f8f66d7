package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/openkraft/kraftlint/internal/adapters/outbound/config"
)

const configHeader = `# kraftlint configuration
# Every rule is listed with its default severity and parameters.
# Remove entries to inherit defaults, or set "extends: none" to start empty.

`

func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Generate a " + config.DefaultFileName + " configuration file",
		Long:  "Create a " + config.DefaultFileName + " listing the default ruleset so it can be tuned.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}

			absPath, err := filepath.Abs(path)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			dest := filepath.Join(absPath, config.DefaultFileName)

			if !force {
				if _, err := os.Stat(dest); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", config.DefaultFileName)
				}
			}

			var buf bytes.Buffer
			buf.WriteString(configHeader)
			if err := config.WriteYAML(&buf, config.DefaultDocument()); err != nil {
				return fmt.Errorf("encoding config: %w", err)
			}

			if err := os.WriteFile(dest, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("writing config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", config.DefaultFileName)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing "+config.DefaultFileName)

	return cmd
}
