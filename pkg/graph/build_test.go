package graph

import (
	"slices"
	"testing"

	"github.com/matzehuels/peerscan/pkg/deps/javascript"
	"github.com/matzehuels/peerscan/pkg/errors"
)

func lockfile(version int, packages map[string]javascript.Entry) *javascript.Lockfile {
	return &javascript.Lockfile{Version: version, Packages: packages}
}

func sampleProject() (*javascript.Manifest, *javascript.Lockfile) {
	m := &javascript.Manifest{
		Name:            "app",
		Version:         "1.0.0",
		Dependencies:    map[string]string{"react": "^18.2.0", "react-redux": "^8.0.0"},
		DevDependencies: map[string]string{"@testing-library/react": "^14.0.0"},
	}
	l := lockfile(3, map[string]javascript.Entry{
		"": {Name: "app", Version: "1.0.0"},
		"node_modules/react": {
			Version:      "18.2.0",
			Dependencies: map[string]string{"loose-envify": "^1.1.0"},
		},
		"node_modules/loose-envify": {Version: "1.4.0"},
		"node_modules/react-redux": {
			Version:          "8.1.3",
			Dependencies:     map[string]string{"hoist-non-react-statics": "^3.3.2", "react-is": "^18.0.0"},
			PeerDependencies: map[string]string{"react": "^16.8 || ^17.0 || ^18.0"},
		},
		"node_modules/hoist-non-react-statics": {
			Version:      "3.3.2",
			Dependencies: map[string]string{"react-is": "^16.7.0"},
		},
		"node_modules/react-is":                                      {Version: "18.2.0"},
		"node_modules/hoist-non-react-statics/node_modules/react-is": {Version: "16.13.1"},
		"node_modules/@testing-library/react": {
			Version:      "14.1.2",
			Dev:          true,
			Dependencies: map[string]string{"@testing-library/dom": "^9.0.0"},
		},
		"node_modules/@testing-library/dom": {Version: "9.3.3", Dev: true},
	})
	return m, l
}

func TestBuild(t *testing.T) {
	g, err := Build(sampleProject())
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	if g.Nodes[RootPath] != g.Root {
		t.Fatal("Nodes[\"\"] should be the root")
	}
	if g.Root.Name != "app" || g.Root.Version != "1.0.0" {
		t.Errorf("root = %s", g.Root.ID())
	}
	if len(g.Nodes) != 9 {
		t.Errorf("len(Nodes) = %d, want 9", len(g.Nodes))
	}

	var names []string
	for _, c := range g.Root.Children {
		names = append(names, c.Name)
	}
	want := []string{"@testing-library/react", "react", "react-redux"}
	if !slices.Equal(names, want) {
		t.Errorf("root children = %v, want %v", names, want)
	}
	if len(g.Unresolved) != 0 {
		t.Errorf("Unresolved = %v, want none", g.Unresolved)
	}
}

func TestBuildReachableNodesAreOwned(t *testing.T) {
	g, err := Build(sampleProject())
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	g.Walk(func(n *PackageNode, _ int) bool {
		if owned, ok := g.Nodes[n.Path]; !ok || owned != n {
			t.Errorf("node %q reachable but not owned under its path", n.Path)
		}
		return true
	})
}

func TestBuildPrefersNestedInstall(t *testing.T) {
	g, err := Build(sampleProject())
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	hoist, _ := g.Node("node_modules/hoist-non-react-statics")
	reactIs := hoist.Child("react-is")
	if reactIs == nil {
		t.Fatal("react-is not linked")
	}
	if reactIs.Version != "16.13.1" {
		t.Errorf("react-is = %s, want nested 16.13.1", reactIs.Version)
	}
}

func TestBuildHoisting(t *testing.T) {
	tests := []struct {
		name     string
		packages map[string]javascript.Entry
		from     string
		wantPath string
	}{
		{
			name: "AncestorInstall",
			packages: map[string]javascript.Entry{
				"":                              {},
				"node_modules/a":                {Version: "1.0.0"},
				"node_modules/a/node_modules/b": {Version: "1.0.0", Dependencies: map[string]string{"c": "*"}},
				"node_modules/a/node_modules/c": {Version: "2.0.0"},
				"node_modules/c":                {Version: "1.0.0"},
			},
			from:     "node_modules/a/node_modules/b",
			wantPath: "node_modules/a/node_modules/c",
		},
		{
			name: "OwnNodeModulesFirst",
			packages: map[string]javascript.Entry{
				"":                                             {},
				"node_modules/a":                               {Version: "1.0.0"},
				"node_modules/a/node_modules/b":                {Version: "1.0.0", Dependencies: map[string]string{"c": "*"}},
				"node_modules/a/node_modules/b/node_modules/c": {Version: "3.0.0"},
				"node_modules/a/node_modules/c":                {Version: "2.0.0"},
			},
			from:     "node_modules/a/node_modules/b",
			wantPath: "node_modules/a/node_modules/b/node_modules/c",
		},
		{
			name: "TopLevelFallback",
			packages: map[string]javascript.Entry{
				"":                              {},
				"node_modules/a":                {Version: "1.0.0"},
				"node_modules/a/node_modules/b": {Version: "1.0.0", Dependencies: map[string]string{"c": "*"}},
				"node_modules/c":                {Version: "1.0.0"},
			},
			from:     "node_modules/a/node_modules/b",
			wantPath: "node_modules/c",
		},
		{
			name: "ScopedAncestor",
			packages: map[string]javascript.Entry{
				"":                                    {},
				"node_modules/@s/a":                   {Version: "1.0.0"},
				"node_modules/@s/a/node_modules/b":    {Version: "1.0.0", Dependencies: map[string]string{"@s/c": "*"}},
				"node_modules/@s/a/node_modules/@s/c": {Version: "2.0.0"},
				"node_modules/@s/c":                   {Version: "1.0.0"},
			},
			from:     "node_modules/@s/a/node_modules/b",
			wantPath: "node_modules/@s/a/node_modules/@s/c",
		},
		{
			name: "BareAncestor",
			packages: map[string]javascript.Entry{
				"":                 {},
				"a":                {Name: "a", Version: "1.0.0"},
				"a/node_modules/b": {Version: "1.0.0", Dependencies: map[string]string{"c": "*"}},
				"a/node_modules/c": {Version: "2.0.0"},
			},
			from:     "a/node_modules/b",
			wantPath: "a/node_modules/c",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Build(&javascript.Manifest{Name: "root"}, lockfile(2, tt.packages))
			if err != nil {
				t.Fatalf("Build() error: %v", err)
			}
			from, ok := g.Node(tt.from)
			if !ok {
				t.Fatalf("node %q missing", tt.from)
			}
			if len(from.Children) != 1 {
				t.Fatalf("children = %d, want 1", len(from.Children))
			}
			if got := from.Children[0].Path; got != tt.wantPath {
				t.Errorf("resolved to %q, want %q", got, tt.wantPath)
			}
		})
	}
}

func TestBuildUnsupportedFormat(t *testing.T) {
	for _, v := range []int{0, 1} {
		l := lockfile(v, map[string]javascript.Entry{"": {}})
		g, err := Build(&javascript.Manifest{}, l)
		if !errors.Is(err, errors.ErrCodeUnsupportedFormat) {
			t.Errorf("lockfileVersion %d: error = %v, want UNSUPPORTED_FORMAT", v, err)
		}
		if g != nil {
			t.Errorf("lockfileVersion %d: partial graph returned", v)
		}
	}
}

func TestBuildMissingRoot(t *testing.T) {
	l := lockfile(3, map[string]javascript.Entry{"node_modules/react": {Version: "18.2.0"}})
	_, err := Build(&javascript.Manifest{}, l)
	if !errors.Is(err, errors.ErrCodeMissingRoot) {
		t.Errorf("error = %v, want MISSING_ROOT", err)
	}
}

func TestBuildDevFlag(t *testing.T) {
	g, err := Build(sampleProject())
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	tests := map[string]bool{
		"":                                    false,
		"node_modules/@testing-library/react": true,
		"node_modules/@testing-library/dom":   false, // transitive, never flagged
		"node_modules/react":                  false,
	}
	for path, want := range tests {
		n, _ := g.Node(path)
		if n.IsDev != want {
			t.Errorf("%q IsDev = %v, want %v", path, n.IsDev, want)
		}
	}
}

func TestBuildUnresolved(t *testing.T) {
	l := lockfile(3, map[string]javascript.Entry{
		"": {},
		"node_modules/a": {
			Version:              "1.0.0",
			Dependencies:         map[string]string{"missing": "^1.0.0"},
			OptionalDependencies: map[string]string{"fsevents": "^2.3.2"},
		},
	})
	m := &javascript.Manifest{Dependencies: map[string]string{"a": "^1.0.0"}}
	g, err := Build(m, l)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	want := []Missing{{From: "node_modules/a", Name: "missing"}}
	if !slices.Equal(g.Unresolved, want) {
		t.Errorf("Unresolved = %v, want %v", g.Unresolved, want)
	}
	a, _ := g.Node("node_modules/a")
	if len(a.Children) != 0 {
		t.Errorf("children = %d, want 0", len(a.Children))
	}
}

func TestBuildAliasName(t *testing.T) {
	l := lockfile(3, map[string]javascript.Entry{
		"":                              {},
		"node_modules/string-width-cjs": {Name: "string-width", Version: "4.2.3"},
	})
	g, err := Build(&javascript.Manifest{}, l)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	n, _ := g.Node("node_modules/string-width-cjs")
	if n.Name != "string-width" {
		t.Errorf("Name = %q, want string-width", n.Name)
	}
}

func TestBuildWorkspaceLink(t *testing.T) {
	l := lockfile(3, map[string]javascript.Entry{
		"":                   {},
		"packages/ui":        {Name: "ui", Version: "0.1.0", Dependencies: map[string]string{"react": "^18"}, PeerDependencies: map[string]string{"react-dom": "^18"}},
		"node_modules/ui":    {Link: true, Resolved: "packages/ui"},
		"node_modules/react": {Version: "18.2.0"},
	})
	m := &javascript.Manifest{Dependencies: map[string]string{"ui": "*"}}
	g, err := Build(m, l)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	link, _ := g.Node("node_modules/ui")
	if link.Version != "0.1.0" {
		t.Errorf("link version = %q, want target version", link.Version)
	}
	if link.Child("react") == nil {
		t.Error("link should inherit the target's dependencies")
	}
	if len(link.PeerDependencies) != 0 {
		t.Errorf("link peers = %v, want none", link.PeerDependencies)
	}
	if target, _ := g.Node("packages/ui"); target.PeerDependencies["react-dom"] != "^18" {
		t.Errorf("target peers = %v", target.PeerDependencies)
	}
}

func TestBuildSharedChild(t *testing.T) {
	l := lockfile(3, map[string]javascript.Entry{
		"":                    {},
		"node_modules/a":      {Version: "1.0.0", Dependencies: map[string]string{"shared": "*"}},
		"node_modules/b":      {Version: "1.0.0", Dependencies: map[string]string{"shared": "*"}},
		"node_modules/shared": {Version: "1.0.0"},
	})
	m := &javascript.Manifest{Dependencies: map[string]string{"a": "*", "b": "*"}}
	g, err := Build(m, l)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	a, _ := g.Node("node_modules/a")
	b, _ := g.Node("node_modules/b")
	if a.Children[0] != b.Children[0] {
		t.Error("hoisted package should be one shared node")
	}
}

func TestBuildWithoutManifest(t *testing.T) {
	l := lockfile(3, map[string]javascript.Entry{
		"":               {Name: "from-lock", Version: "2.0.0", Dependencies: map[string]string{"a": "*"}},
		"node_modules/a": {Version: "1.0.0"},
	})
	g, err := Build(nil, l)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if g.Root.Name != "from-lock" || len(g.Root.Children) != 1 {
		t.Errorf("root = %s with %d children", g.Root.ID(), len(g.Root.Children))
	}
}
