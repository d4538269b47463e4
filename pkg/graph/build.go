package graph

import (
	"io"
	"maps"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/peerscan/pkg/deps/javascript"
	"github.com/matzehuels/peerscan/pkg/errors"
)

// MinLockfileVersion is the oldest lockfile format with a flat packages map.
const MinLockfileVersion = 2

// Option configures Build.
type Option func(*builder)

// WithLogger reports dropped dependencies at debug level.
func WithLogger(l *log.Logger) Option {
	return func(b *builder) { b.logger = l }
}

type builder struct {
	logger *log.Logger
}

// Build turns a manifest and its lockfile into a DependencyGraph.
//
// It fails with UNSUPPORTED_FORMAT for lockfiles older than version 2 and
// with MISSING_ROOT when the packages map has no "" entry. Every other
// oddity (dangling dependencies, unknown entries) is tolerated.
func Build(m *javascript.Manifest, l *javascript.Lockfile, opts ...Option) (*DependencyGraph, error) {
	b := builder{logger: log.New(io.Discard)}
	for _, opt := range opts {
		opt(&b)
	}
	if l == nil {
		return nil, errors.New(errors.ErrCodeMissingRoot, "no lockfile")
	}
	if l.Version < MinLockfileVersion {
		return nil, errors.New(errors.ErrCodeUnsupportedFormat,
			"lockfileVersion %d is not supported; regenerate %s with npm 7 or later", l.Version, javascript.LockfileName)
	}
	rootEntry, ok := l.Packages[RootPath]
	if !ok {
		return nil, errors.New(errors.ErrCodeMissingRoot, "%s has no root package entry", javascript.LockfileName)
	}
	if m == nil {
		m = &javascript.Manifest{
			Name:                 rootEntry.Name,
			Version:              rootEntry.Version,
			Dependencies:         rootEntry.Dependencies,
			DevDependencies:      rootEntry.DevDependencies,
			OptionalDependencies: rootEntry.OptionalDependencies,
			PeerDependencies:     rootEntry.PeerDependencies,
		}
	}

	g := &DependencyGraph{Nodes: make(map[string]*PackageNode, len(l.Packages))}
	paths := slices.Sorted(maps.Keys(l.Packages))

	// Pass 1: one node per entry.
	for _, path := range paths {
		if path == RootPath {
			g.Root = &PackageNode{
				Name:                 m.Name,
				Version:              m.Version,
				Path:                 RootPath,
				Dependencies:         m.AllDependencies(),
				OptionalDependencies: m.OptionalDependencies,
				PeerDependencies:     m.PeerDependencies,
			}
			g.Nodes[RootPath] = g.Root
			continue
		}
		e := l.Packages[path]
		if e.Link {
			if target, ok := l.Packages[e.Resolved]; ok {
				e = linkTarget(e, target)
			}
		}
		name := e.Name
		if name == "" {
			name = javascript.NameFromPath(path)
		}
		if name == "" {
			b.logger.Debug("skipping lockfile entry without a name", "path", path)
			continue
		}
		g.Nodes[path] = &PackageNode{
			Name:                 name,
			Version:              e.Version,
			Path:                 path,
			Resolved:             e.Resolved,
			Integrity:            e.Integrity,
			IsDev:                javascript.IsDirect(path) && m.IsDev(name),
			Dependencies:         e.Dependencies,
			OptionalDependencies: e.OptionalDependencies,
			PeerDependencies:     e.PeerDependencies,
			OptionalPeers:        optionalPeers(e),
		}
	}

	// Pass 2: link each dependency to the install npm's resolver would pick.
	for _, path := range paths {
		n, ok := g.Nodes[path]
		if !ok {
			continue
		}
		base := path
		if e := l.Packages[path]; e.Link && e.Resolved != "" {
			base = e.Resolved
		}
		b.link(g, n, base, n.Dependencies, false)
		b.link(g, n, base, n.OptionalDependencies, true)
	}
	return g, nil
}

func (b *builder) link(g *DependencyGraph, n *PackageNode, base string, deps map[string]string, optional bool) {
	for _, dep := range slices.Sorted(maps.Keys(deps)) {
		child := Resolve(g, base, dep)
		if child == nil {
			if !optional {
				g.Unresolved = append(g.Unresolved, Missing{From: n.Path, Name: dep})
			}
			b.logger.Debug("dependency not installed", "from", n.ID(), "dependency", dep, "optional", optional)
			continue
		}
		if !slices.Contains(n.Children, child) {
			n.Children = append(n.Children, child)
		}
	}
}

// Resolve finds the install of dep visible from the package at parentPath,
// following node_modules lookup: the parent's own node_modules first, then
// each ancestor's, ending at the top level. It returns nil when dep is not
// installed anywhere on that chain.
func Resolve(g *DependencyGraph, parentPath, dep string) *PackageNode {
	cur := parentPath
	for {
		if n, ok := g.Nodes[javascript.InstallPath(cur, dep)]; ok {
			return n
		}
		if cur == RootPath {
			return nil
		}
		parent, ok := javascript.ParentPath(cur)
		if !ok {
			// A workspace folder outside node_modules falls back to the
			// project's top level.
			parent = RootPath
		}
		cur = parent
	}
}

// linkTarget merges a workspace link entry with the folder it points at.
// Peer requirements stay on the target folder only, so each workspace
// package is checked once.
func linkTarget(link, target javascript.Entry) javascript.Entry {
	target.Resolved = link.Resolved
	target.PeerDependencies = nil
	target.PeerDependenciesMeta = nil
	if target.Name == "" {
		target.Name = link.Name
	}
	return target
}

func optionalPeers(e javascript.Entry) map[string]bool {
	var out map[string]bool
	for name, meta := range e.PeerDependenciesMeta {
		if !meta.Optional {
			continue
		}
		if out == nil {
			out = make(map[string]bool)
		}
		out[name] = true
	}
	return out
}
