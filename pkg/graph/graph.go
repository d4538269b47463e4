package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// =============================================================================
// Document - Serialized Graph
// =============================================================================

// Document is the node-link JSON form of a DependencyGraph. Nodes are
// sorted by path and edges by (from, to) so output is stable across runs.
type Document struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node is the serialized form of a PackageNode.
type Node struct {
	Path      string            `json:"path"`
	Name      string            `json:"name"`
	Version   string            `json:"version"`
	Resolved  string            `json:"resolved,omitempty"`
	Integrity string            `json:"integrity,omitempty"`
	Dev       bool              `json:"dev,omitempty"`
	Peers     map[string]string `json:"peerDependencies,omitempty"`
}

// Edge is a parent→child link between install paths.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Export converts g to its serialized form.
func Export(g *DependencyGraph) Document {
	doc := Document{Nodes: []Node{}, Edges: []Edge{}}
	for _, p := range g.Paths() {
		n := g.Nodes[p]
		doc.Nodes = append(doc.Nodes, Node{
			Path:      n.Path,
			Name:      n.Name,
			Version:   n.Version,
			Resolved:  n.Resolved,
			Integrity: n.Integrity,
			Dev:       n.IsDev,
			Peers:     n.PeerDependencies,
		})
		for _, c := range n.Children {
			doc.Edges = append(doc.Edges, Edge{From: n.Path, To: c.Path})
		}
	}
	return doc
}

// Import rebuilds a DependencyGraph from its serialized form. Dependency
// ranges are not part of the document, so each edge is recorded as a
// dependency on the child's exact version.
func Import(doc Document) (*DependencyGraph, error) {
	g := &DependencyGraph{Nodes: make(map[string]*PackageNode, len(doc.Nodes))}
	for _, n := range doc.Nodes {
		if _, dup := g.Nodes[n.Path]; dup {
			return nil, fmt.Errorf("duplicate node path %q", n.Path)
		}
		g.Nodes[n.Path] = &PackageNode{
			Name:             n.Name,
			Version:          n.Version,
			Path:             n.Path,
			Resolved:         n.Resolved,
			Integrity:        n.Integrity,
			IsDev:            n.Dev,
			PeerDependencies: n.Peers,
			Dependencies:     map[string]string{},
		}
	}
	root, ok := g.Nodes[RootPath]
	if !ok {
		return nil, fmt.Errorf("document has no root node")
	}
	g.Root = root
	for _, e := range doc.Edges {
		from, ok := g.Nodes[e.From]
		if !ok {
			return nil, fmt.Errorf("edge from unknown node %q", e.From)
		}
		to, ok := g.Nodes[e.To]
		if !ok {
			return nil, fmt.Errorf("edge to unknown node %q", e.To)
		}
		from.Children = append(from.Children, to)
		from.Dependencies[to.Name] = to.Version
	}
	return g, nil
}

// =============================================================================
// Graph Serialization API
// =============================================================================

// MarshalGraph converts g to indented JSON bytes.
func MarshalGraph(g *DependencyGraph) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteGraph(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteGraph writes g as JSON to w.
func WriteGraph(g *DependencyGraph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Export(g)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteGraphFile writes g to a JSON file.
func WriteGraphFile(g *DependencyGraph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteGraph(g, f)
}

// ReadGraph decodes a JSON document from r.
func ReadGraph(r io.Reader) (*DependencyGraph, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return Import(doc)
}

// ReadGraphFile reads a JSON document from path.
func ReadGraphFile(path string) (*DependencyGraph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadGraph(f)
}
