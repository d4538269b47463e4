package graph

// Stats summarizes a graph.
type Stats struct {
	TotalNodes         int `json:"totalNodes"`
	DirectDependencies int `json:"directDependencies"`
	DevDependencies    int `json:"devDependencies"`
	MaxDepth           int `json:"maxDepth"`
}

// Stats counts nodes and root children and measures the longest
// chain below the root. A leaf has depth 0. Cycles, which npm allows, are
// cut where they close.
func (g *DependencyGraph) Stats() Stats {
	s := Stats{TotalNodes: len(g.Nodes)}
	if g.Root == nil {
		return s
	}
	for _, c := range g.Root.Children {
		if c.IsDev {
			s.DevDependencies++
		} else {
			s.DirectDependencies++
		}
	}
	s.MaxDepth = maxDepth(g.Root, make(map[*PackageNode]bool), make(map[*PackageNode]int))
	return s
}

func maxDepth(n *PackageNode, onPath map[*PackageNode]bool, memo map[*PackageNode]int) int {
	if d, ok := memo[n]; ok {
		return d
	}
	onPath[n] = true
	best := 0
	for _, c := range n.Children {
		if onPath[c] {
			continue
		}
		best = max(best, 1+maxDepth(c, onPath, memo))
	}
	onPath[n] = false
	memo[n] = best
	return best
}
