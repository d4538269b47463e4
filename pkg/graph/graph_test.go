package graph

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func TestGraphRoundTrip(t *testing.T) {
	g, err := Build(sampleProject())
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	path := filepath.Join(t.TempDir(), "graph.json")
	if err := WriteGraphFile(g, path); err != nil {
		t.Fatalf("WriteGraphFile() error: %v", err)
	}
	back, err := ReadGraphFile(path)
	if err != nil {
		t.Fatalf("ReadGraphFile() error: %v", err)
	}

	if len(back.Nodes) != len(g.Nodes) {
		t.Errorf("nodes = %d, want %d", len(back.Nodes), len(g.Nodes))
	}
	for p, n := range g.Nodes {
		m, ok := back.Node(p)
		if !ok {
			t.Errorf("node %q lost", p)
			continue
		}
		if m.Name != n.Name || m.Version != n.Version || len(m.Children) != len(n.Children) {
			t.Errorf("node %q = %s (%d children), want %s (%d children)",
				p, m.ID(), len(m.Children), n.ID(), len(n.Children))
		}
	}
	if back.Stats() != g.Stats() {
		t.Errorf("Stats() = %+v, want %+v", back.Stats(), g.Stats())
	}
}

func TestMarshalGraphDeterministic(t *testing.T) {
	g, err := Build(sampleProject())
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	a, err := MarshalGraph(g)
	if err != nil {
		t.Fatalf("MarshalGraph() error: %v", err)
	}
	b, _ := MarshalGraph(g)
	if !bytes.Equal(a, b) {
		t.Error("MarshalGraph() output differs between calls")
	}
}

func TestReadGraphErrors(t *testing.T) {
	tests := []struct {
		name string
		json string
		want string
	}{
		{"NoRoot", `{"nodes":[{"path":"node_modules/a"}],"edges":[]}`, "no root"},
		{"DuplicatePath", `{"nodes":[{"path":""},{"path":""}],"edges":[]}`, "duplicate"},
		{"DanglingEdge", `{"nodes":[{"path":""}],"edges":[{"from":"","to":"x"}]}`, "unknown node"},
		{"BadJSON", `{`, "decode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadGraph(strings.NewReader(tt.json))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("ReadGraph() error = %v, want containing %q", err, tt.want)
			}
		})
	}
}
