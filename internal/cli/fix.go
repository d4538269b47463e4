package cli

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/peerscan/pkg/conflict"
	pkgio "github.com/matzehuels/peerscan/pkg/io"
)

// fixOpts holds the command-line flags for the fix command.
type fixOpts struct {
	from        string // read conflicts from a saved JSON report
	apply       bool   // run npm instead of printing commands
	interactive bool   // choose solutions in a picker
	npm         string // npm binary
}

func (c *CLI) fixCommand() *cobra.Command {
	var opts fixOpts

	cmd := &cobra.Command{
		Use:   "fix [dir]",
		Short: "Apply the suggested solution of each conflict",
		Long: `fix takes the first solution of every conflict and turns it into an npm
install command. Without --apply the commands are only printed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runFix(cmd.Context(), projectDir(args), opts)
		},
	}

	cmd.Flags().StringVar(&opts.from, "from", "", "read conflicts from a report written by scan --output")
	cmd.Flags().BoolVar(&opts.apply, "apply", false, "run npm install for each fix")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "choose solutions interactively")
	cmd.Flags().StringVar(&opts.npm, "npm", "npm", "npm binary")
	return cmd
}

func (c *CLI) runFix(ctx context.Context, dir string, opts fixOpts) error {
	ctx, cancel := c.commandContext(ctx)
	defer cancel()

	conflicts, err := c.loadConflicts(ctx, dir, opts.from)
	if err != nil {
		return err
	}
	if len(conflicts) == 0 {
		printSuccess("No conflicts to fix")
		return nil
	}

	solutions := firstSolutions(conflicts)
	if opts.interactive {
		final, err := tea.NewProgram(NewSolutionPicker(conflicts)).Run()
		if err != nil {
			return fmt.Errorf("picker: %w", err)
		}
		picker := final.(SolutionPicker)
		if !picker.Confirmed {
			printInfo("Cancelled")
			return nil
		}
		solutions = picker.Selected()
	}

	fixes, skipped := remediations(solutions)
	for _, desc := range skipped {
		printWarning("Cannot apply %q", desc)
	}
	if len(fixes) == 0 {
		printInfo("Nothing to apply")
		return nil
	}

	var exec conflict.Executor = &conflict.DryRunExecutor{Out: out}
	if opts.apply {
		exec = &conflict.NPMExecutor{Dir: dir, Bin: opts.npm, Stdout: os.Stderr, Stderr: os.Stderr}
	} else {
		printInfo("Dry run; pass --apply to run:")
	}

	applied, err := applyAll(ctx, exec, fixes)
	if err != nil {
		printError("Applied %d of %d fixes", applied, len(fixes))
		return err
	}
	if opts.apply {
		printSuccess("Applied %d fixes", applied)
		printCommand("Verify with", "peerscan scan "+dir)
	}
	return nil
}

// loadConflicts reads conflicts from a saved report, or scans dir.
func (c *CLI) loadConflicts(ctx context.Context, dir, from string) ([]conflict.Conflict, error) {
	if from != "" {
		r, err := pkgio.ImportJSON(from)
		if err != nil {
			return nil, err
		}
		c.Logger.Debug("loaded report", "id", r.ID, "project", r.Project, "generated", r.GeneratedAt)
		return reportConflicts(r), nil
	}
	res, err := c.execute(ctx, c.scanOptions(dir), true)
	if err != nil {
		return nil, err
	}
	return res.Report.Conflicts, nil
}

// firstSolutions returns the top-ranked solution of each conflict.
func firstSolutions(conflicts []conflict.Conflict) []conflict.Solution {
	var out []conflict.Solution
	for _, c := range conflicts {
		if len(c.Solutions) > 0 {
			out = append(out, c.Solutions[0])
		}
	}
	return out
}

// remediations parses solution descriptions into remediations, dropping
// duplicate install specs. Unparseable descriptions are returned as skipped.
func remediations(solutions []conflict.Solution) (fixes []conflict.Remediation, skipped []string) {
	seen := make(map[string]bool)
	for _, s := range solutions {
		r, ok := conflict.ParseSolution(s.Description)
		if !ok {
			skipped = append(skipped, s.Description)
			continue
		}
		if seen[r.Spec()] {
			continue
		}
		seen[r.Spec()] = true
		fixes = append(fixes, *r)
	}
	return fixes, skipped
}

// applyAll applies fixes in order and stops at the first failure.
func applyAll(ctx context.Context, exec conflict.Executor, fixes []conflict.Remediation) (int, error) {
	for i, r := range fixes {
		if err := exec.Apply(ctx, r); err != nil {
			return i, err
		}
	}
	return len(fixes), nil
}
