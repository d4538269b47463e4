package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/peerscan/pkg/graph"
	pkgio "github.com/matzehuels/peerscan/pkg/io"
)

// isolate points config and cache lookups at temporary directories.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
}

// runCLIErr executes the root command and returns everything it printed.
func runCLIErr(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	old := out
	out = &buf
	t.Cleanup(func() { out = old })

	root := New(io.Discard, LogInfo).RootCommand()
	root.SetOut(&buf)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func runCLI(t *testing.T, args ...string) string {
	t.Helper()
	got, err := runCLIErr(t, args...)
	if err != nil {
		t.Fatalf("peerscan %s: %v\n%s", strings.Join(args, " "), err, got)
	}
	return got
}

const (
	fixtureManifest = `{
  "name": "demo",
  "version": "1.0.0",
  "dependencies": {"lib": "^1.0.0", "react": "^18.0.0"}
}`
	fixtureLockfile = `{
  "name": "demo",
  "lockfileVersion": 3,
  "packages": {
    "": {"name": "demo", "version": "1.0.0", "dependencies": {"lib": "^1.0.0", "react": "^18.0.0"}},
    "node_modules/lib": {"version": "1.0.0", "peerDependencies": {"react": "^17.0.0"}},
    "node_modules/react": {"version": "18.2.0"}
  }
}`
)

func writeFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range map[string]string{"package.json": fixtureManifest, "package-lock.json": fixtureLockfile} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

// fakeRegistry serves abbreviated packuments for react and lib.
func fakeRegistry(t *testing.T) *httptest.Server {
	t.Helper()
	docs := map[string]string{
		"react": `{"name": "react", "dist-tags": {"latest": "18.2.0"}, "versions": {
			"17.0.2": {"version": "17.0.2"},
			"18.2.0": {"version": "18.2.0"}}}`,
		"lib": `{"name": "lib", "dist-tags": {"latest": "2.0.0"}, "versions": {
			"1.0.0": {"version": "1.0.0", "peerDependencies": {"react": "^17.0.0"}},
			"2.0.0": {"version": "2.0.0", "peerDependencies": {"react": "^18.0.0"}}}}`,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		doc, ok := docs[strings.TrimPrefix(r.URL.Path, "/")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, doc)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestScanJSON(t *testing.T) {
	isolate(t)
	srv := fakeRegistry(t)
	dir := writeFixture(t)

	got := runCLI(t, "scan", dir, "--registry", srv.URL, "--no-cache", "--json")

	r, err := pkgio.ReadJSON(strings.NewReader(got))
	if err != nil {
		t.Fatalf("output is not a report: %v\n%s", err, got)
	}
	if r.Project != "demo" || len(r.Conflicts) != 1 {
		t.Fatalf("report = %+v", r)
	}
	c := r.Conflicts[0]
	if c.PackageName != "react" || len(c.Solutions) == 0 {
		t.Errorf("conflict = %+v", c)
	}
}

func TestScanTable(t *testing.T) {
	isolate(t)
	srv := fakeRegistry(t)
	dir := writeFixture(t)

	got := runCLI(t, "scan", dir, "--registry", srv.URL, "--no-cache")
	for _, want := range []string{"1 conflict(s)", "react", "peer-dependency"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestScanFail(t *testing.T) {
	isolate(t)
	srv := fakeRegistry(t)
	dir := writeFixture(t)

	_, err := runCLIErr(t, "scan", dir, "--registry", srv.URL, "--no-cache", "--fail")
	if err != errConflictsFound {
		t.Errorf("error = %v, want %v", err, errConflictsFound)
	}
}

func TestScanWritesReportAndMetrics(t *testing.T) {
	isolate(t)
	srv := fakeRegistry(t)
	dir := writeFixture(t)
	report := filepath.Join(t.TempDir(), "report.json")
	metrics := filepath.Join(t.TempDir(), "peerscan.prom")

	runCLI(t, "scan", dir, "--registry", srv.URL, "--no-cache", "-o", report, "--metrics-out", metrics)

	if _, err := pkgio.ImportJSON(report); err != nil {
		t.Errorf("report unreadable: %v", err)
	}
	data, err := os.ReadFile(metrics)
	if err != nil {
		t.Fatalf("metrics not written: %v", err)
	}
	if !strings.Contains(string(data), "peerscan_") {
		t.Errorf("metrics file has no peerscan series:\n%s", data)
	}
}

func TestStatsJSON(t *testing.T) {
	isolate(t)
	dir := writeFixture(t)

	got := runCLI(t, "stats", dir, "--json")
	var stats map[string]int
	if err := json.Unmarshal([]byte(got), &stats); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, got)
	}
	if stats["totalNodes"] != 3 || stats["directDependencies"] != 2 {
		t.Errorf("stats = %v", stats)
	}
}

func TestStatsExport(t *testing.T) {
	isolate(t)
	dir := writeFixture(t)
	path := filepath.Join(t.TempDir(), "graph.json")

	runCLI(t, "stats", dir, "--json", "--export", path)

	g, err := graph.ReadGraphFile(path)
	if err != nil {
		t.Fatalf("ReadGraphFile() error: %v", err)
	}
	if got := g.Stats().TotalNodes; got != 3 {
		t.Errorf("exported TotalNodes = %d, want 3", got)
	}
}

func TestGraphDOT(t *testing.T) {
	isolate(t)
	srv := fakeRegistry(t)
	dir := writeFixture(t)
	base := filepath.Join(t.TempDir(), "tree")

	runCLI(t, "graph", dir, "--registry", srv.URL, "--no-cache", "-f", "dot", "-o", base)

	data, err := os.ReadFile(base + ".dot")
	if err != nil {
		t.Fatalf("dot file not written: %v", err)
	}
	if !strings.HasPrefix(string(data), "digraph G {") {
		t.Errorf("unexpected dot output:\n%s", data)
	}
}

func TestGraphInvalidFormat(t *testing.T) {
	isolate(t)
	if _, err := runCLIErr(t, "graph", writeFixture(t), "-f", "gif"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestSuggestJSON(t *testing.T) {
	isolate(t)
	srv := fakeRegistry(t)

	got := runCLI(t, "suggest", "lib", "--registry", srv.URL, "--no-cache", "--json")
	var res struct {
		Compatible     bool   `json:"compatible"`
		InstallCommand string `json:"installCommand"`
	}
	if err := json.Unmarshal([]byte(got), &res); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, got)
	}
	if !res.Compatible || res.InstallCommand != "npm install lib@2.0.0 react@18.2.0" {
		t.Errorf("result = %+v", res)
	}
}

func TestAudit(t *testing.T) {
	isolate(t)
	srv := fakeRegistry(t)
	dir := writeFixture(t)

	got := runCLI(t, "audit", dir, "--registry", srv.URL, "--no-cache")
	if !strings.Contains(got, "Upgrade lib from 1.0.0 to 2.0.0") {
		t.Errorf("output = %s", got)
	}
}

func TestInvalidConfig(t *testing.T) {
	isolate(t)
	cfg := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(cfg, []byte(`[cache]
backend = "s3"
`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := runCLIErr(t, "stats", writeFixture(t), "--config", cfg); err == nil {
		t.Error("expected error for invalid cache backend")
	}
}

func TestSuggestRejectsInvalidNames(t *testing.T) {
	isolate(t)
	if _, err := runCLIErr(t, "suggest", "../etc/passwd", "--no-cache"); err == nil {
		t.Error("expected error for invalid package name")
	}
}
