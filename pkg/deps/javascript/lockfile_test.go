package javascript

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/peerscan/pkg/errors"
)

func TestNameFromPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"", ""},
		{"node_modules/react", "react"},
		{"node_modules/@babel/core", "@babel/core"},
		{"node_modules/a/node_modules/react", "react"},
		{"node_modules/a/node_modules/@types/react", "@types/react"},
		{"node_modules/@s/a/node_modules/b", "b"},
		{"node_modules/@x-node_modules/pkg", "@x-node_modules/pkg"},
		{"packages/app", ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := NameFromPath(tt.path); got != tt.want {
				t.Errorf("NameFromPath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestParentPath(t *testing.T) {
	tests := []struct {
		path   string
		want   string
		wantOK bool
	}{
		{"", "", false},
		{"node_modules/react", "", true},
		{"node_modules/@babel/core", "", true},
		{"node_modules/a/node_modules/b", "node_modules/a", true},
		{"node_modules/@s/a/node_modules/b/node_modules/c", "node_modules/@s/a/node_modules/b", true},
		{"packages/app/node_modules/x", "packages/app", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := ParentPath(tt.path)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParentPath(%q) = %q, %v; want %q, %v", tt.path, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestIsDirect(t *testing.T) {
	tests := map[string]bool{
		"":                              false,
		"node_modules/react":            true,
		"node_modules/@babel/core":      true,
		"node_modules/a/node_modules/b": false,
	}
	for path, want := range tests {
		if got := IsDirect(path); got != want {
			t.Errorf("IsDirect(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestInstallPath(t *testing.T) {
	if got := InstallPath("", "react"); got != "node_modules/react" {
		t.Errorf("InstallPath(root) = %q", got)
	}
	if got := InstallPath("node_modules/a", "@s/b"); got != "node_modules/a/node_modules/@s/b" {
		t.Errorf("InstallPath(nested) = %q", got)
	}
}

func TestParseLockfile(t *testing.T) {
	data := []byte(`{
  "name": "app",
  "lockfileVersion": 3,
  "packages": {
    "": {"name": "app", "version": "1.0.0", "dependencies": {"react-redux": "^8.0.0"}},
    "node_modules/react-redux": {
      "version": "8.1.3",
      "resolved": "https://registry.npmjs.org/react-redux/-/react-redux-8.1.3.tgz",
      "integrity": "sha512-abc",
      "peerDependencies": {"react": "^18", "redux": "^4"},
      "peerDependenciesMeta": {"redux": {"optional": true}}
    },
    "node_modules/string-width-cjs": {"name": "string-width", "version": "4.2.3", "dev": true}
  }
}`)
	l, err := ParseLockfile(data)
	if err != nil {
		t.Fatalf("ParseLockfile() error: %v", err)
	}
	if l.Version != 3 {
		t.Errorf("Version = %d, want 3", l.Version)
	}
	if len(l.Packages) != 3 {
		t.Fatalf("len(Packages) = %d, want 3", len(l.Packages))
	}
	rr := l.Packages["node_modules/react-redux"]
	if rr.Integrity != "sha512-abc" {
		t.Errorf("Integrity = %q", rr.Integrity)
	}
	peers := rr.RequiredPeers()
	if len(peers) != 1 || peers["react"] != "^18" {
		t.Errorf("RequiredPeers() = %v, want only react", peers)
	}
	if alias := l.Packages["node_modules/string-width-cjs"]; alias.Name != "string-width" || !alias.Dev {
		t.Errorf("alias entry = %+v", alias)
	}
}

func TestParseLockfileInvalid(t *testing.T) {
	_, err := ParseLockfile([]byte(`{"packages": [`))
	if !errors.Is(err, errors.ErrCodeInvalidManifest) {
		t.Errorf("error = %v, want INVALID_MANIFEST", err)
	}
}

func TestParseManifest(t *testing.T) {
	m, err := ParseManifest([]byte(`{
  "name": "my-app",
  "version": "1.0.0",
  "dependencies": {"react": "^18.2.0", "typescript": "^5.0.0"},
  "devDependencies": {"jest": "^29.0.0", "typescript": "^5.1.0"}
}`))
	if err != nil {
		t.Fatalf("ParseManifest() error: %v", err)
	}
	if m.Name != "my-app" || m.Version != "1.0.0" {
		t.Errorf("Manifest = %+v", m)
	}
	if !m.IsDev("jest") {
		t.Error("jest should be dev")
	}
	if !m.IsDev("typescript") {
		t.Error("typescript is listed in devDependencies")
	}
	if m.IsDev("react") {
		t.Error("react is a production dependency")
	}
	all := m.AllDependencies()
	if len(all) != 3 {
		t.Errorf("AllDependencies() = %v", all)
	}
	if all["typescript"] != "^5.0.0" {
		t.Errorf("typescript range = %q, want production range", all["typescript"])
	}
}

func TestLoadProject(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	if _, err := LoadProject(dir); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("LoadProject(empty) error = %v, want FILE_NOT_FOUND", err)
	}

	write(ManifestFile, `{"name": "demo", "version": "0.1.0"}`)
	write(LockfileName, `{"lockfileVersion": 2, "packages": {"": {"version": "0.1.0"}}}`)

	p, err := LoadProject(dir)
	if err != nil {
		t.Fatalf("LoadProject() error: %v", err)
	}
	if p.Name() != "demo" {
		t.Errorf("Name() = %q, want demo", p.Name())
	}
	if p.Lockfile.Version != 2 {
		t.Errorf("Lockfile.Version = %d, want 2", p.Lockfile.Version)
	}
}
