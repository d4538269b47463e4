package cli

import (
	"encoding/json"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/peerscan/pkg/deps/javascript"
	"github.com/matzehuels/peerscan/pkg/errors"
	"github.com/matzehuels/peerscan/pkg/suggest"
)

func (c *CLI) suggestCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "suggest <package>...",
		Short: "Find mutually compatible versions for packages and their peers",
		Example: `  peerscan suggest react-redux react
  peerscan suggest @mui/material @emotion/react --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range args {
				if err := errors.ValidatePackageName(name); err != nil {
					return err
				}
			}
			ctx, cancel := c.commandContext(cmd.Context())
			defer cancel()

			reg, backing, err := c.newRegistry(ctx)
			if err != nil {
				return err
			}
			defer backing.Close()

			res := suggest.NewEngine(reg, c.Logger).Check(ctx, args)
			if asJSON {
				return writeJSON(cmd, res)
			}
			printCompatibility(res)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

func (c *CLI) auditCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "audit [dir]",
		Short: "List declared dependencies a major version behind the registry",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.commandContext(cmd.Context())
			defer cancel()

			m, err := javascript.ReadManifest(filepath.Join(projectDir(args), javascript.ManifestFile))
			if err != nil {
				return err
			}
			reg, backing, err := c.newRegistry(ctx)
			if err != nil {
				return err
			}
			defer backing.Close()

			spin := newSpinner(ctx, "Checking "+m.Name+"...")
			if !asJSON {
				spin.Start()
			}
			res := suggest.NewEngine(reg, c.Logger).Audit(ctx, m.AllDependencies())
			spin.Stop()

			if asJSON {
				return writeJSON(cmd, res)
			}
			printAudit(res)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print findings as JSON")
	return cmd
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
