package conflict

import (
	"github.com/matzehuels/peerscan/pkg/errors"
	"github.com/matzehuels/peerscan/pkg/graph"
)

// Type classifies a conflict.
type Type string

const (
	// PeerDependency is a peer requirement that is missing or unsatisfied.
	PeerDependency Type = "peer-dependency"
	// DuplicateSingleton is a singleton package installed at two or more
	// major versions.
	DuplicateSingleton Type = "duplicate-singleton"
)

// Conflict is one detected problem and the ways to fix it.
type Conflict struct {
	Type        Type
	PackageName string
	Message     string
	// Nodes are the implicated installs: the requiring node and the
	// installed peer (if any) for peer conflicts, every instance for
	// singleton conflicts.
	Nodes     []*graph.PackageNode
	Solutions []Solution
}

// Solution is one ranked remediation. Description follows a fixed template
// that [ParseSolution] turns back into Action.
type Solution struct {
	Description string      `json:"description"`
	Action      Remediation `json:"action"`
}

// Report is the result of an analysis. Issues are registry or parse
// failures that cost a solution or skipped a check; they never stop
// detection.
type Report struct {
	Conflicts []Conflict
	Issues    []errors.Issue
}

// Count returns the number of conflicts of type t.
func (r *Report) Count(t Type) int {
	n := 0
	for _, c := range r.Conflicts {
		if c.Type == t {
			n++
		}
	}
	return n
}

// Involves reports whether the node at path is implicated in any conflict.
func (r *Report) Involves(path string) bool {
	for _, c := range r.Conflicts {
		for _, n := range c.Nodes {
			if n.Path == path {
				return true
			}
		}
	}
	return false
}
