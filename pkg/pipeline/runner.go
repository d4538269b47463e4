package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/peerscan/pkg/buildinfo"
	"github.com/matzehuels/peerscan/pkg/conflict"
	"github.com/matzehuels/peerscan/pkg/deps/javascript"
	"github.com/matzehuels/peerscan/pkg/graph"
	pkgio "github.com/matzehuels/peerscan/pkg/io"
	"github.com/matzehuels/peerscan/pkg/observability"
	"github.com/matzehuels/peerscan/pkg/render/nodelink"
	"github.com/matzehuels/peerscan/pkg/suggest"
)

// Runner executes scans against a registry.
type Runner struct {
	Registry suggest.Registry
	Logger   *log.Logger
}

// NewRunner creates a runner. A nil logger uses log.Default().
func NewRunner(reg suggest.Registry, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Registry: reg, Logger: logger}
}

// Execute runs load → build → analyze → render.
func (r *Runner) Execute(ctx context.Context, opts Options) (result *Result, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result = &Result{Artifacts: make(map[string][]byte)}
	project := opts.Dir
	start := time.Now()
	observability.Scan().OnScanStart(ctx, project)
	defer func() {
		var res observability.ScanResult
		if result != nil && result.Report != nil {
			res = observability.ScanResult{
				Nodes:     len(result.Graph.Nodes),
				Conflicts: len(result.Report.Conflicts),
				Issues:    len(result.Report.Issues),
			}
		}
		observability.Scan().OnScanComplete(ctx, project, res, time.Since(start), err)
	}()

	// Stage 1: Load
	t := time.Now()
	p, err := r.Load(opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Project = p
	project = p.Name()
	result.Timing.Load = time.Since(t)

	// Stage 2: Build
	t = time.Now()
	g, err := r.Build(p, opts)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	result.Graph = g
	result.Stats = g.Stats()
	result.Timing.Build = time.Since(t)

	r.Logger.Info("built dependency graph",
		"nodes", result.Stats.TotalNodes,
		"direct", result.Stats.DirectDependencies,
		"depth", result.Stats.MaxDepth,
		"duration", result.Timing.Build)
	if len(g.Unresolved) > 0 {
		r.Logger.Warn("unresolved dependencies", "count", len(g.Unresolved))
	}

	// Stage 3: Analyze
	t = time.Now()
	result.Report = r.Analyze(ctx, g, opts)
	result.Timing.Analyze = time.Since(t)
	result.Document = pkgio.NewReport(project, buildinfo.Tool(), g, result.Report)

	r.Logger.Info("analyzed conflicts",
		"conflicts", len(result.Report.Conflicts),
		"issues", len(result.Report.Issues),
		"duration", result.Timing.Analyze)

	// Stage 4: Render
	t = time.Now()
	artifacts, err := Render(result, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Timing.Render = time.Since(t)

	if len(opts.Formats) > 0 {
		r.Logger.Info("rendered outputs", "formats", opts.Formats, "duration", result.Timing.Render)
	}
	return result, nil
}

// Load reads the manifest and lockfile named by opts.
func (r *Runner) Load(opts Options) (*javascript.Project, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if opts.Manifest == "" && opts.Lockfile == "" {
		return javascript.LoadProject(opts.Dir)
	}
	mp := opts.Manifest
	if mp == "" {
		mp = filepath.Join(opts.Dir, javascript.ManifestFile)
	}
	lp := opts.Lockfile
	if lp == "" {
		lp = filepath.Join(opts.Dir, javascript.LockfileName)
	}
	m, err := javascript.ReadManifest(mp)
	if err != nil {
		return nil, err
	}
	l, err := javascript.ReadLockfile(lp)
	if err != nil {
		return nil, err
	}
	return &javascript.Project{Dir: opts.Dir, Manifest: m, Lockfile: l}, nil
}

// Build constructs the dependency graph of p.
func (r *Runner) Build(p *javascript.Project, opts Options) (*graph.DependencyGraph, error) {
	r.applyLogger(&opts)
	return graph.Build(p.Manifest, p.Lockfile, graph.WithLogger(opts.Logger))
}

// Analyze finds conflicts in g.
func (r *Runner) Analyze(ctx context.Context, g *graph.DependencyGraph, opts Options) *conflict.Report {
	r.applyLogger(&opts)
	a := conflict.NewAnalyzer(r.Registry, conflict.Options{
		Singletons:  opts.Singletons,
		Logger:      opts.Logger,
		Concurrency: opts.Concurrency,
	})
	return a.Analyze(ctx, g)
}

// Render produces the artifacts listed in opts.Formats from a scan result.
// Graph artifacts highlight every node implicated in a conflict.
func Render(res *Result, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte)
	if len(opts.Formats) == 0 {
		return artifacts, nil
	}

	var dot string
	for _, format := range opts.Formats {
		if format != FormatJSON && dot == "" {
			dot = nodelink.ToDOT(res.Graph, nodelink.Options{Highlight: Highlights(res.Report)})
		}

		var data []byte
		var err error
		switch format {
		case FormatJSON:
			var buf bytes.Buffer
			err = pkgio.WriteJSON(res.Document, &buf)
			data = buf.Bytes()
		case FormatDOT:
			data = []byte(dot)
		case FormatSVG:
			data, err = nodelink.RenderSVG(dot)
		case FormatPDF:
			data, err = nodelink.RenderPDF(dot)
		case FormatPNG:
			data, err = nodelink.RenderPNG(dot, opts.PNGScale)
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// Highlights returns the paths of all nodes implicated in a conflict.
func Highlights(r *conflict.Report) map[string]bool {
	out := make(map[string]bool)
	if r == nil {
		return out
	}
	for _, c := range r.Conflicts {
		for _, n := range c.Nodes {
			out[n.Path] = true
		}
	}
	return out
}

func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
