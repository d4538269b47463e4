package suggest

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/peerscan/pkg/integrations/npm"
	"github.com/matzehuels/peerscan/pkg/semver"
)

// Reasons attached to suggestions.
const (
	ReasonRequested = "requested package"
	ReasonPeer      = "required peer dependency"
)

// fetchLimit bounds concurrent packument lookups in Check.
const fetchLimit = 8

// Registry is the subset of the npm client the engine needs.
type Registry interface {
	// Packument returns nil, nil for unknown packages.
	Packument(ctx context.Context, name string) (*npm.Packument, error)
	// Versions lists published versions newest first.
	Versions(ctx context.Context, name string) ([]string, error)
}

// Engine computes version assignments from registry metadata.
type Engine struct {
	reg    Registry
	logger *log.Logger
}

// NewEngine creates an engine. A nil logger discards output.
func NewEngine(reg Registry, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Engine{reg: reg, logger: logger}
}

// PackageSuggestion is one package to install.
type PackageSuggestion struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Reason  string `json:"reason"`
}

// Spec returns "name@version".
func (s PackageSuggestion) Spec() string { return s.Name + "@" + s.Version }

// CompatibilityResult is the outcome of [Engine.Check].
type CompatibilityResult struct {
	Compatible     bool                `json:"compatible"`
	Suggestions    []PackageSuggestion `json:"suggestions"`
	Conflicts      []string            `json:"conflicts"`
	InstallCommand string              `json:"installCommand"`
}

// peerRange is one requester's demand on a peer.
type peerRange struct {
	rng string
	by  []string
}

// peerDemand collects the distinct ranges requested for one peer, in the
// order they were first seen.
type peerDemand struct {
	name   string
	ranges []*peerRange
}

func (d *peerDemand) add(rng, by string) {
	for _, r := range d.ranges {
		if r.rng == rng {
			r.by = append(r.by, by)
			return
		}
	}
	d.ranges = append(d.ranges, &peerRange{rng: rng, by: []string{by}})
}

func (d *peerDemand) raw() []string {
	out := make([]string, len(d.ranges))
	for i, r := range d.ranges {
		out[i] = r.rng
	}
	return out
}

func (d *peerDemand) describe() string {
	parts := make([]string, len(d.ranges))
	for i, r := range d.ranges {
		parts[i] = fmt.Sprintf("%s (from %s)", r.rng, strings.Join(r.by, ", "))
	}
	return strings.Join(parts, ", ")
}

// Check resolves a set of packages to install together. Each requested
// package is suggested at its latest version; the peer dependencies those
// versions declare are resolved to a single version satisfying every
// requester. Lookup failures and unsatisfiable peer ranges become
// conflict messages rather than errors.
func (e *Engine) Check(ctx context.Context, names []string) *CompatibilityResult {
	names = dedupe(names)
	docs := make([]*npm.Packument, len(names))
	errs := make([]error, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchLimit)
	for i, name := range names {
		g.Go(func() error {
			docs[i], errs[i] = e.reg.Packument(gctx, name)
			return nil
		})
	}
	_ = g.Wait()

	res := &CompatibilityResult{Suggestions: []PackageSuggestion{}, Conflicts: []string{}}
	requested := make(map[string]int)
	var order []*peerDemand
	demands := make(map[string]*peerDemand)

	for i, name := range names {
		p := docs[i]
		switch {
		case errs[i] != nil:
			e.logger.Debug("package lookup failed", "package", name, "err", errs[i])
			res.Conflicts = append(res.Conflicts, fmt.Sprintf("Could not fetch %s: %v", name, errs[i]))
			continue
		case p == nil:
			res.Conflicts = append(res.Conflicts, fmt.Sprintf("Package %s not found in registry", name))
			continue
		case p.Latest() == "":
			res.Conflicts = append(res.Conflicts, fmt.Sprintf("No latest version published for %s", name))
			continue
		}
		latest := p.Latest()
		requested[name] = len(res.Suggestions)
		res.Suggestions = append(res.Suggestions, PackageSuggestion{Name: name, Version: latest, Reason: ReasonRequested})

		info, _ := p.Version(latest)
		for _, peer := range sortedKeys(info.RequiredPeers()) {
			d, ok := demands[peer]
			if !ok {
				d = &peerDemand{name: peer}
				demands[peer] = d
				order = append(order, d)
			}
			d.add(info.PeerDependencies[peer], name+"@"+latest)
		}
	}

	for _, d := range order {
		idx, isRequested := requested[d.name]
		if isRequested {
			ok, err := satisfiesAll(res.Suggestions[idx].Version, d.raw())
			if err == nil && ok {
				continue
			}
		}

		best, found, err := e.BestVersion(ctx, d.name, d.raw()...)
		switch {
		case err != nil:
			e.logger.Debug("peer resolution failed", "peer", d.name, "err", err)
			res.Conflicts = append(res.Conflicts, fmt.Sprintf("Could not resolve peer %s: %v", d.name, err))
		case !found && len(d.ranges) > 1:
			res.Conflicts = append(res.Conflicts,
				fmt.Sprintf("No version of %s satisfies all required ranges: %s", d.name, d.describe()))
		case !found:
			res.Conflicts = append(res.Conflicts,
				fmt.Sprintf("No published version of %s satisfies %s", d.name, d.describe()))
		case isRequested:
			res.Suggestions[idx].Version = best
			res.Suggestions[idx].Reason = ReasonPeer
		default:
			res.Suggestions = append(res.Suggestions, PackageSuggestion{Name: d.name, Version: best, Reason: ReasonPeer})
		}
	}

	res.Compatible = len(res.Conflicts) == 0
	res.InstallCommand = InstallCommand(res.Suggestions)
	return res
}

// InstallCommand renders suggestions as a single npm install command, or ""
// when there is nothing to install.
func InstallCommand(suggestions []PackageSuggestion) string {
	if len(suggestions) == 0 {
		return ""
	}
	specs := make([]string, len(suggestions))
	for i, s := range suggestions {
		specs[i] = s.Spec()
	}
	return "npm install " + strings.Join(specs, " ")
}

// BestVersion returns the newest published version of name satisfying every
// range. found is false when no version does, including when the package
// is unknown. Unparseable ranges and registry failures are errors.
func (e *Engine) BestVersion(ctx context.Context, name string, ranges ...string) (string, bool, error) {
	cs := make([]semver.Constraint, len(ranges))
	for i, r := range ranges {
		c, err := semver.ParseConstraint(r)
		if err != nil {
			return "", false, err
		}
		cs[i] = c
	}
	versions, err := e.reg.Versions(ctx, name)
	if err != nil {
		return "", false, err
	}
	for _, raw := range versions {
		v, err := semver.ParseVersion(raw)
		if err != nil {
			continue
		}
		if semver.SatisfiesAll(v, cs) {
			return raw, true, nil
		}
	}
	return "", false, nil
}

// Latest returns the "latest" dist-tag of name, or "" if the package or tag
// does not exist.
func (e *Engine) Latest(ctx context.Context, name string) (string, error) {
	p, err := e.reg.Packument(ctx, name)
	if err != nil {
		return "", err
	}
	return p.Latest(), nil
}

func satisfiesAll(version string, ranges []string) (bool, error) {
	for _, r := range ranges {
		ok, err := semver.Check(version, r)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
