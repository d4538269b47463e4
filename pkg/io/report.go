package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/peerscan/pkg/conflict"
	"github.com/matzehuels/peerscan/pkg/errors"
	"github.com/matzehuels/peerscan/pkg/graph"
)

// Report is the serialized result of a scan.
type Report struct {
	ID          string          `json:"id"`
	GeneratedAt time.Time       `json:"generatedAt"`
	Tool        string          `json:"tool,omitempty"`
	Project     string          `json:"project"`
	Stats       graph.Stats     `json:"stats"`
	Conflicts   []Conflict      `json:"conflicts"`
	Issues      []errors.Issue  `json:"issues"`
	Unresolved  []graph.Missing `json:"unresolved"`
}

// Conflict is the serialized form of a conflict.
type Conflict struct {
	Type        conflict.Type       `json:"type"`
	PackageName string              `json:"packageName"`
	Message     string              `json:"message"`
	Nodes       []NodeRef           `json:"nodes"`
	Solutions   []conflict.Solution `json:"solutions"`
}

// NodeRef identifies an installed package.
type NodeRef struct {
	Path    string `json:"path"`
	Name    string `json:"name"`
	Version string `json:"version"`
	Dev     bool   `json:"dev,omitempty"`
}

// NewReport assembles a report for project from a built graph and its
// analysis. r may be nil for a graph-only report.
func NewReport(project, tool string, g *graph.DependencyGraph, r *conflict.Report) *Report {
	out := &Report{
		ID:          uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Tool:        tool,
		Project:     project,
		Stats:       g.Stats(),
		Conflicts:   []Conflict{},
		Issues:      []errors.Issue{},
		Unresolved:  append([]graph.Missing{}, g.Unresolved...),
	}
	if r == nil {
		return out
	}
	for _, c := range r.Conflicts {
		rc := Conflict{
			Type:        c.Type,
			PackageName: c.PackageName,
			Message:     c.Message,
			Nodes:       make([]NodeRef, len(c.Nodes)),
			Solutions:   c.Solutions,
		}
		if rc.Solutions == nil {
			rc.Solutions = []conflict.Solution{}
		}
		for i, n := range c.Nodes {
			rc.Nodes[i] = NodeRef{Path: n.Path, Name: n.Name, Version: n.Version, Dev: n.IsDev}
		}
		out.Conflicts = append(out.Conflicts, rc)
	}
	out.Issues = append(out.Issues, r.Issues...)
	return out
}

// Remediations returns the first solution's action of every conflict that
// has one, in conflict order.
func (r *Report) Remediations() []conflict.Remediation {
	var out []conflict.Remediation
	for _, c := range r.Conflicts {
		if len(c.Solutions) > 0 {
			out = append(out, c.Solutions[0].Action)
		}
	}
	return out
}

// WriteJSON encodes r as indented JSON.
func WriteJSON(r *Report, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes r to a JSON file at path.
func ExportJSON(r *Report, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(r, f)
}

// ReadJSON decodes a report. Issues are not restored because their causes
// were flattened to strings.
func ReadJSON(r io.Reader) (*Report, error) {
	var raw struct {
		Report
		Issues json.RawMessage `json:"issues"`
	}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	rep := raw.Report
	if rep.ID == "" {
		return nil, fmt.Errorf("not a peerscan report: missing id")
	}
	if _, err := uuid.Parse(rep.ID); err != nil {
		return nil, fmt.Errorf("invalid report id %q: %w", rep.ID, err)
	}
	// Validate solution descriptions against their actions.
	for _, c := range rep.Conflicts {
		for _, s := range c.Solutions {
			if _, ok := conflict.ParseSolution(s.Description); !ok {
				return nil, fmt.Errorf("conflict %s: unrecognized solution %q", c.PackageName, s.Description)
			}
		}
	}
	rep.Issues = nil
	return &rep, nil
}

// ImportJSON reads a report from path.
func ImportJSON(path string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
