package nodelink

import (
	"strings"
	"testing"

	"github.com/matzehuels/peerscan/pkg/deps/javascript"
	"github.com/matzehuels/peerscan/pkg/graph"
)

func testGraph(t *testing.T) *graph.DependencyGraph {
	t.Helper()
	m := &javascript.Manifest{
		Name:            "app",
		Version:         "1.0.0",
		Dependencies:    map[string]string{"a": "*"},
		DevDependencies: map[string]string{"jest": "*"},
	}
	l := &javascript.Lockfile{Version: 3, Packages: map[string]javascript.Entry{
		"":                                  {},
		"node_modules/a":                    {Version: "1.0.0", Dependencies: map[string]string{"react": "*"}},
		"node_modules/a/node_modules/react": {Version: "17.0.2"},
		"node_modules/jest":                 {Version: "29.7.0"},
		"node_modules/orphan":               {Version: "0.0.1"},
	}}
	g, err := graph.Build(m, l)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	return g
}

func TestToDOT_Basic(t *testing.T) {
	dot := ToDOT(testGraph(t), Options{})

	for _, want := range []string{
		"digraph G",
		`"(root)" [label="app@1.0.0"`,
		`"node_modules/a" [label="a@1.0.0"]`,
		`"(root)" -> "node_modules/a"`,
		`"node_modules/a" -> "node_modules/a/node_modules/react"`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %q\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "orphan") {
		t.Error("unreachable node should be omitted")
	}
}

func TestToDOT_Highlight(t *testing.T) {
	dot := ToDOT(testGraph(t), Options{Highlight: map[string]bool{"node_modules/a/node_modules/react": true}})
	line := lineFor(dot, `"node_modules/a/node_modules/react" [`)
	if !strings.Contains(line, "#c62828") {
		t.Errorf("highlighted node not colored: %q", line)
	}
}

func TestToDOT_DevDashed(t *testing.T) {
	dot := ToDOT(testGraph(t), Options{Detailed: true})
	line := lineFor(dot, `"node_modules/jest" [`)
	if !strings.Contains(line, "dashed") {
		t.Errorf("dev node not dashed: %q", line)
	}
	if !strings.Contains(line, `\ndev`) {
		t.Errorf("detailed label missing dev flag: %q", line)
	}
}

func TestToDOT_MaxDepth(t *testing.T) {
	dot := ToDOT(testGraph(t), Options{MaxDepth: 1})
	if strings.Contains(dot, "react") {
		t.Error("depth-2 node should be cut at MaxDepth 1")
	}
	if !strings.Contains(dot, `"node_modules/a"`) {
		t.Error("depth-1 node missing")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `width="100" height="50"`) {
		t.Errorf("normalizeViewBox() = %s", out)
	}
	if got := normalizeViewBox([]byte("<svg></svg>")); string(got) != "<svg></svg>" {
		t.Errorf("svg without viewBox changed: %s", got)
	}
}

func lineFor(dot, prefix string) string {
	for _, line := range strings.Split(dot, "\n") {
		if strings.Contains(line, prefix) {
			return line
		}
	}
	return ""
}
