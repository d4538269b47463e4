package graph

import (
	"slices"
	"strings"
)

// RootPath is the install path of the project itself.
const RootPath = ""

// =============================================================================
// PackageNode - One Installed Package
// =============================================================================

// PackageNode is one installed copy of a package. The same name may appear
// at several paths with different versions; Path is the identity.
type PackageNode struct {
	Name      string
	Version   string
	Path      string
	Resolved  string
	Integrity string

	// IsDev is set only for direct installs listed in the manifest's
	// devDependencies. Packages reached only through dev dependencies are
	// not marked.
	IsDev bool

	Dependencies         map[string]string
	OptionalDependencies map[string]string
	PeerDependencies     map[string]string
	OptionalPeers        map[string]bool

	// Children are the nodes this package's dependencies resolved to. They
	// point into DependencyGraph.Nodes and may be shared with other parents.
	Children []*PackageNode
}

// IsRoot reports whether n is the project node.
func (n *PackageNode) IsRoot() bool { return n.Path == RootPath }

// ID returns "name@version".
func (n *PackageNode) ID() string { return n.Name + "@" + n.Version }

// Child returns the child named name, if any.
func (n *PackageNode) Child(name string) *PackageNode {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// =============================================================================
// DependencyGraph - Installed Tree
// =============================================================================

// DependencyGraph is the installed package tree of one project. Nodes owns
// every node, keyed by install path; Nodes[""] is Root.
type DependencyGraph struct {
	Root  *PackageNode
	Nodes map[string]*PackageNode

	// Unresolved lists dependencies that no install path satisfied.
	Unresolved []Missing
}

// Missing is a declared dependency that is not installed anywhere visible
// from the declaring package.
type Missing struct {
	From string `json:"from"` // path of the declaring node
	Name string `json:"name"`
}

// Node returns the node installed at path.
func (g *DependencyGraph) Node(path string) (*PackageNode, bool) {
	n, ok := g.Nodes[path]
	return n, ok
}

// Paths returns every install path in sorted order. The root path sorts
// first.
func (g *DependencyGraph) Paths() []string {
	paths := make([]string, 0, len(g.Nodes))
	for p := range g.Nodes {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return paths
}

// ByName returns every installed copy of name, ordered by path.
func (g *DependencyGraph) ByName(name string) []*PackageNode {
	var out []*PackageNode
	for _, p := range g.Paths() {
		if n := g.Nodes[p]; n.Name == name && !n.IsRoot() {
			out = append(out, n)
		}
	}
	return out
}

// Walk visits every node reachable from the root once, depth first, in
// Children order. depth is the distance from the root along the first path
// that reached the node. Walk stops descending below a node when fn returns
// false.
func (g *DependencyGraph) Walk(fn func(n *PackageNode, depth int) bool) {
	if g.Root == nil {
		return
	}
	seen := make(map[*PackageNode]bool, len(g.Nodes))
	var visit func(n *PackageNode, depth int)
	visit = func(n *PackageNode, depth int) {
		if seen[n] {
			return
		}
		seen[n] = true
		if !fn(n, depth) {
			return
		}
		for _, c := range n.Children {
			visit(c, depth+1)
		}
	}
	visit(g.Root, 0)
}

// Depth returns the number of node_modules segments in path: 0 for the
// root, 1 for a hoisted install.
func Depth(path string) int {
	if path == RootPath {
		return 0
	}
	return strings.Count("/"+path, "/node_modules/")
}
