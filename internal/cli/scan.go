package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/matzehuels/peerscan/pkg/conflict"
	"github.com/matzehuels/peerscan/pkg/graph"
	pkgio "github.com/matzehuels/peerscan/pkg/io"
	"github.com/matzehuels/peerscan/pkg/observability"
	"github.com/matzehuels/peerscan/pkg/observability/prom"
	"github.com/matzehuels/peerscan/pkg/pipeline"
)

// errConflictsFound is returned by scan --fail when conflicts exist.
var errConflictsFound = errors.New("conflicts found")

// scanOpts holds the command-line flags for the scan command.
type scanOpts struct {
	json       bool     // print the report as JSON instead of a table
	output     string   // also write the JSON report to this file
	metricsOut string   // write Prometheus metrics in textfile format
	singletons []string // override configured singletons
	fail       bool     // exit non-zero when conflicts are found
}

func (c *CLI) scanCommand() *cobra.Command {
	var opts scanOpts

	cmd := &cobra.Command{
		Use:   "scan [dir]",
		Short: "Report peer dependency and duplicate singleton conflicts",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runScan(cmd, projectDir(args), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.json, "json", false, "print the report as JSON")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the JSON report to a file")
	cmd.Flags().StringVar(&opts.metricsOut, "metrics-out", "", "write Prometheus metrics to a textfile")
	cmd.Flags().StringSliceVar(&opts.singletons, "singletons", nil, "singleton packages (overrides config)")
	cmd.Flags().BoolVar(&opts.fail, "fail", false, "exit with an error when conflicts are found")

	return cmd
}

func (c *CLI) runScan(cmd *cobra.Command, dir string, opts scanOpts) error {
	ctx, cancel := c.commandContext(cmd.Context())
	defer cancel()

	var metrics *prom.Metrics
	if opts.metricsOut != "" {
		metrics = prom.New(prometheus.NewRegistry())
		metrics.Register()
		defer observability.Reset()
	}

	popts := c.scanOptions(dir)
	if opts.singletons != nil {
		popts.Singletons = opts.singletons
	}
	if opts.json || opts.output != "" {
		popts.Formats = []string{pipeline.FormatJSON}
	}

	res, err := c.execute(ctx, popts, !opts.json)
	if err != nil {
		return err
	}

	if opts.output != "" {
		if err := os.WriteFile(opts.output, res.Artifacts[pipeline.FormatJSON], 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}
	if metrics != nil {
		if err := metrics.WriteTextfile(opts.metricsOut); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}

	if opts.json {
		_, err = cmd.OutOrStdout().Write(res.Artifacts[pipeline.FormatJSON])
		if err != nil {
			return err
		}
	} else {
		printInfo("%s: %d packages", res.Document.Project, res.Stats.TotalNodes)
		printReport(res.Report)
		if opts.output != "" {
			printFile(opts.output)
		}
		if len(res.Report.Conflicts) > 0 {
			printCommand("Apply fixes with", "peerscan fix "+dir)
		}
	}

	if opts.fail && len(res.Report.Conflicts) > 0 {
		return errConflictsFound
	}
	return nil
}

// execute runs the pipeline, with a spinner when interactive is set.
func (c *CLI) execute(ctx context.Context, opts pipeline.Options, interactive bool) (*pipeline.Result, error) {
	runner, backing, err := c.newRunner(ctx)
	if err != nil {
		return nil, err
	}
	defer backing.Close()

	var spin *Spinner
	if interactive {
		spin = newSpinner(ctx, "Scanning "+opts.Dir+"...")
		spin.Start()
	}
	prog := newProgress(c.Logger)
	res, err := runner.Execute(ctx, opts)
	if spin != nil {
		spin.Stop()
	}
	if err != nil {
		return nil, err
	}
	prog.done("scan complete", "conflicts", len(res.Report.Conflicts))
	return res, nil
}

// =============================================================================
// stats
// =============================================================================

func (c *CLI) statsCommand() *cobra.Command {
	var (
		asJSON bool
		export string
	)

	cmd := &cobra.Command{
		Use:   "stats [dir]",
		Short: "Summarize the installed package tree",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner := pipeline.NewRunner(nil, c.Logger)
			opts := c.scanOptions(projectDir(args))
			p, err := runner.Load(opts)
			if err != nil {
				return err
			}
			g, err := runner.Build(p, opts)
			if err != nil {
				return err
			}
			stats := g.Stats()
			if export != "" {
				if err := graph.WriteGraphFile(g, export); err != nil {
					return err
				}
				c.Logger.Info("Exported graph", "path", export, "nodes", stats.TotalNodes)
			}

			if asJSON {
				return writeJSON(cmd, stats)
			}
			fmt.Fprintln(out, StyleTitle.Render(p.Name()))
			printStats(stats)
			if n := len(g.Unresolved); n > 0 {
				printWarning("%d dependencies are declared but not installed", n)
				for _, m := range g.Unresolved {
					printDetail("%s → %s", displayPath(m.From), m.Name)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print statistics as JSON")
	cmd.Flags().StringVar(&export, "export", "", "also write the node-link graph JSON to this file")
	return cmd
}

// =============================================================================
// graph
// =============================================================================

// graphOpts holds the command-line flags for the graph command.
type graphOpts struct {
	output  string   // base path; the format is appended as extension
	formats []string // dot, svg, pdf, png
}

func (c *CLI) graphCommand() *cobra.Command {
	var formatsStr string
	opts := graphOpts{output: "peerscan-graph"}

	cmd := &cobra.Command{
		Use:   "graph [dir]",
		Short: "Render the installed package tree with conflicts highlighted",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			return c.runGraph(cmd.Context(), projectDir(args), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", opts.output, "output base path")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), dot, pdf, png, json (comma-separated)")
	return cmd
}

func (c *CLI) runGraph(ctx context.Context, dir string, opts graphOpts) error {
	ctx, cancel := c.commandContext(ctx)
	defer cancel()

	popts := c.scanOptions(dir)
	popts.Formats = opts.formats
	res, err := c.execute(ctx, popts, true)
	if err != nil {
		return err
	}

	highlighted := len(pipeline.Highlights(res.Report))
	printSuccess("Rendered %d packages (%d highlighted)", res.Stats.TotalNodes, highlighted)
	for _, format := range opts.formats {
		path := outputPath(opts.output, format)
		if err := os.WriteFile(path, res.Artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	return nil
}

// outputPath appends format as extension unless base already has it.
func outputPath(base, format string) string {
	if filepath.Ext(base) == "."+format {
		return base
	}
	return base + "." + format
}

// displayPath shows the root's empty path as "(root)".
func displayPath(p string) string {
	if p == "" {
		return "(root)"
	}
	return p
}

// reportConflicts converts a saved report back into conflicts for display.
func reportConflicts(r *pkgio.Report) []conflict.Conflict {
	out := make([]conflict.Conflict, len(r.Conflicts))
	for i, c := range r.Conflicts {
		out[i] = conflict.Conflict{
			Type:        c.Type,
			PackageName: c.PackageName,
			Message:     c.Message,
			Solutions:   c.Solutions,
		}
	}
	return out
}
