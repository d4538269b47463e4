package conflict

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/peerscan/pkg/errors"
	"github.com/matzehuels/peerscan/pkg/graph"
	"github.com/matzehuels/peerscan/pkg/observability"
	"github.com/matzehuels/peerscan/pkg/semver"
	"github.com/matzehuels/peerscan/pkg/suggest"
)

// DefaultConcurrency bounds parallel solution lookups.
const DefaultConcurrency = 8

// DefaultSingletons are packages known to break when two majors load in
// the same runtime.
var DefaultSingletons = []string{
	"react",
	"react-dom",
	"vue",
	"@angular/core",
	"svelte",
	"preact",
	"styled-components",
	"@emotion/react",
	"graphql",
}

// Issue stages.
const (
	StagePeer      = "peer"
	StageSingleton = "singleton"
)

// Options configures an Analyzer.
type Options struct {
	// Singletons overrides DefaultSingletons when non-nil.
	Singletons  []string
	Logger      *log.Logger
	Concurrency int
}

// Analyzer finds peer dependency and singleton conflicts in a graph.
type Analyzer struct {
	engine      *suggest.Engine
	singletons  []string
	logger      *log.Logger
	concurrency int
}

// NewAnalyzer creates an analyzer that looks up solutions in reg.
func NewAnalyzer(reg suggest.Registry, opts Options) *Analyzer {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	singletons := opts.Singletons
	if singletons == nil {
		singletons = DefaultSingletons
	}
	conc := opts.Concurrency
	if conc <= 0 {
		conc = DefaultConcurrency
	}
	return &Analyzer{
		engine:      suggest.NewEngine(reg, logger),
		singletons:  singletons,
		logger:      logger,
		concurrency: conc,
	}
}

// finding is a detected conflict awaiting solutions.
type finding struct {
	conflict  Conflict
	requirer  *graph.PackageNode
	installed *graph.PackageNode
	rng       string
	highest   semver.Version
}

// Analyze returns every conflict in g. Peer conflicts come first, ordered
// by requiring node path then peer name; singleton conflicts follow in
// configured order. Registry failures cost solutions, never conflicts, and
// are reported as issues.
func (a *Analyzer) Analyze(ctx context.Context, g *graph.DependencyGraph) *Report {
	var issues []errors.Issue
	found := a.peerConflicts(g, &issues)
	found = append(found, a.singletonConflicts(g, &issues)...)

	for _, f := range found {
		observability.Scan().OnConflict(ctx, string(f.conflict.Type), f.conflict.PackageName)
		a.logger.Debug("conflict", "type", f.conflict.Type, "package", f.conflict.PackageName)
	}

	solveIssues := make([][]errors.Issue, len(found))
	eg, ectx := errgroup.WithContext(ctx)
	eg.SetLimit(a.concurrency)
	for i := range found {
		eg.Go(func() error {
			found[i].conflict.Solutions, solveIssues[i] = a.solve(ectx, &found[i])
			return nil
		})
	}
	_ = eg.Wait()

	report := &Report{Conflicts: make([]Conflict, len(found)), Issues: issues}
	for i, f := range found {
		report.Conflicts[i] = f.conflict
		report.Issues = append(report.Issues, solveIssues[i]...)
	}
	if report.Issues == nil {
		report.Issues = []errors.Issue{}
	}
	return report
}

// installedPeer prefers the top-level install, then the first install by
// path. It does not model which copy a given consumer would actually see.
func installedPeer(g *graph.DependencyGraph, name string) *graph.PackageNode {
	if n, ok := g.Node("node_modules/" + name); ok {
		return n
	}
	if all := g.ByName(name); len(all) > 0 {
		return all[0]
	}
	return nil
}

func (a *Analyzer) peerConflicts(g *graph.DependencyGraph, issues *[]errors.Issue) []finding {
	var out []finding
	for _, path := range g.Paths() {
		n := g.Nodes[path]
		if n.IsRoot() {
			continue
		}
		for _, peer := range slices.Sorted(maps.Keys(n.PeerDependencies)) {
			rng := n.PeerDependencies[peer]
			inst := installedPeer(g, peer)
			if inst == nil && n.OptionalPeers[peer] {
				continue
			}
			if inst == nil {
				out = append(out, finding{
					conflict: Conflict{
						Type:        PeerDependency,
						PackageName: peer,
						Message:     fmt.Sprintf("%s requires peer %s@%s, which is not installed", n.ID(), peer, rng),
						Nodes:       []*graph.PackageNode{n},
					},
					requirer: n,
					rng:      rng,
				})
				continue
			}
			ok, err := semver.Check(inst.Version, rng)
			if err != nil {
				a.logger.Debug("skipping peer check", "package", n.ID(), "peer", peer, "range", rng, "err", err)
				*issues = append(*issues, errors.Issue{Package: n.Name, Stage: StagePeer, Err: err})
				continue
			}
			if ok {
				continue
			}
			out = append(out, finding{
				conflict: Conflict{
					Type:        PeerDependency,
					PackageName: peer,
					Message: fmt.Sprintf("%s requires peer %s@%s, but %s is installed",
						n.ID(), peer, rng, inst.ID()),
					Nodes: []*graph.PackageNode{n, inst},
				},
				requirer:  n,
				installed: inst,
				rng:       rng,
			})
		}
	}
	return out
}

func (a *Analyzer) singletonConflicts(g *graph.DependencyGraph, issues *[]errors.Issue) []finding {
	var out []finding
	for _, name := range a.singletons {
		instances := g.ByName(name)
		if len(instances) < 2 {
			continue
		}
		majors := make(map[uint64]bool)
		var highest semver.Version
		var versions []string
		for _, n := range instances {
			versions = append(versions, n.Version)
			v, err := semver.ParseVersion(n.Version)
			if err != nil {
				*issues = append(*issues, errors.Issue{Package: name, Stage: StageSingleton, Err: err})
				continue
			}
			majors[v.Major()] = true
			if semver.Compare(v, highest) > 0 {
				highest = v
			}
		}
		if len(majors) < 2 {
			continue
		}
		out = append(out, finding{
			conflict: Conflict{
				Type:        DuplicateSingleton,
				PackageName: name,
				Message: fmt.Sprintf("%s is installed at %d major versions (%s); only one copy should be loaded",
					name, len(majors), strings.Join(versions, ", ")),
				Nodes: instances,
			},
			highest: highest,
		})
	}
	return out
}

func (a *Analyzer) solve(ctx context.Context, f *finding) ([]Solution, []errors.Issue) {
	switch {
	case f.conflict.Type == DuplicateSingleton:
		return a.solveSingleton(ctx, f)
	case f.installed == nil:
		return a.solveMissingPeer(ctx, f)
	default:
		return a.solveMismatchedPeer(ctx, f)
	}
}

func (a *Analyzer) solveMissingPeer(ctx context.Context, f *finding) ([]Solution, []errors.Issue) {
	peer := f.conflict.PackageName
	best, ok, err := a.engine.BestVersion(ctx, peer, f.rng)
	if err != nil {
		a.logger.Warn("no solution: registry lookup failed", "package", peer, "err", err)
		return nil, []errors.Issue{{Package: peer, Stage: StagePeer, Err: err}}
	}
	dev := f.requirer.IsDev
	if !ok {
		r := Remediation{Kind: Install, Package: peer, To: "latest", Dev: dev}
		return []Solution{newSolution(r, "(may require updates)")}, nil
	}
	r := Remediation{Kind: Install, Package: peer, To: best, Dev: dev}
	return []Solution{newSolution(r, fmt.Sprintf("to satisfy %s required by %s", f.rng, f.requirer.Name))}, nil
}

func (a *Analyzer) solveMismatchedPeer(ctx context.Context, f *finding) ([]Solution, []errors.Issue) {
	peer := f.conflict.PackageName
	best, ok, err := a.engine.BestVersion(ctx, peer, f.rng)
	if err != nil {
		a.logger.Warn("no solution: registry lookup failed", "package", peer, "err", err)
		return nil, []errors.Issue{{Package: peer, Stage: StagePeer, Err: err}}
	}
	if !ok {
		return nil, nil
	}
	installed, err := semver.ParseVersion(f.installed.Version)
	if err != nil {
		return nil, []errors.Issue{{Package: peer, Stage: StagePeer, Err: err}}
	}
	r := Remediation{Package: peer, From: f.installed.Version, To: best, Dev: f.installed.IsDev}
	switch semver.Compare(semver.MustParseVersion(best), installed) {
	case 1:
		r.Kind = Upgrade
	case -1:
		r.Kind = Downgrade
	default:
		return nil, nil
	}
	return []Solution{newSolution(r, "")}, nil
}

func (a *Analyzer) solveSingleton(ctx context.Context, f *finding) ([]Solution, []errors.Issue) {
	name := f.conflict.PackageName
	dev := false
	for _, n := range f.conflict.Nodes {
		if n.IsDev {
			dev = true
			break
		}
	}
	highest := f.highest.String()
	for _, n := range f.conflict.Nodes {
		if v, err := semver.ParseVersion(n.Version); err == nil && semver.Compare(v, f.highest) == 0 {
			highest = n.Version
			break
		}
	}

	solutions := []Solution{
		newSolution(Remediation{Kind: Install, Package: name, To: highest, Dev: dev}, "to consolidate all instances"),
	}
	latestRaw, err := a.engine.Latest(ctx, name)
	if err != nil {
		a.logger.Warn("no upgrade solution: registry lookup failed", "package", name, "err", err)
		return solutions, []errors.Issue{{Package: name, Stage: StageSingleton, Err: err}}
	}
	latest, err := semver.ParseVersion(latestRaw)
	if err != nil {
		return solutions, nil
	}
	if semver.Compare(latest, f.highest) > 0 {
		solutions = append(solutions,
			newSolution(Remediation{Kind: Install, Package: name, To: latestRaw, Dev: dev}, "to upgrade all instances"))
	}
	return solutions, nil
}
