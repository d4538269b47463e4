// Package npmtest provides an in-memory npm registry for tests.
package npmtest

import (
	"context"
	"maps"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/matzehuels/peerscan/pkg/integrations/npm"
	"github.com/matzehuels/peerscan/pkg/semver"
)

// Registry serves packuments from memory. It satisfies the registry
// interfaces of the analyzer and the suggestion engine.
type Registry struct {
	mu    sync.RWMutex
	docs  map[string]*npm.Packument
	fails map[string]error
	calls atomic.Int64
}

// New creates a registry holding pkgs.
func New(pkgs ...*npm.Packument) *Registry {
	r := &Registry{docs: make(map[string]*npm.Packument), fails: make(map[string]error)}
	for _, p := range pkgs {
		r.docs[p.Name] = p
	}
	return r
}

// Fail makes lookups of name return err.
func (r *Registry) Fail(name string, err error) *Registry {
	r.mu.Lock()
	r.fails[name] = err
	r.mu.Unlock()
	return r
}

// Calls returns how many lookups were served.
func (r *Registry) Calls() int64 { return r.calls.Load() }

// Packument returns the stored document, nil for unknown names.
func (r *Registry) Packument(_ context.Context, name string) (*npm.Packument, error) {
	r.calls.Add(1)
	r.mu.RLock()
	defer r.mu.RUnlock()
	if err := r.fails[name]; err != nil {
		return nil, err
	}
	return r.docs[name], nil
}

// Versions lists the stored versions newest first.
func (r *Registry) Versions(ctx context.Context, name string) ([]string, error) {
	p, err := r.Packument(ctx, name)
	if err != nil || p == nil {
		return nil, err
	}
	return semver.SortDescending(slices.Collect(maps.Keys(p.Versions))), nil
}

// Package builds a packument whose "latest" tag is the last version given.
func Package(name string, versions ...string) *npm.Packument {
	p := &npm.Packument{
		Name:     name,
		DistTags: map[string]string{},
		Versions: make(map[string]npm.VersionInfo, len(versions)),
	}
	for _, v := range versions {
		p.Versions[v] = npm.VersionInfo{Version: v}
	}
	if len(versions) > 0 {
		p.DistTags["latest"] = versions[len(versions)-1]
	}
	return p
}

// WithPeers sets the peer dependencies of one version of p.
func WithPeers(p *npm.Packument, version string, peers map[string]string) *npm.Packument {
	info := p.Versions[version]
	info.Version = version
	info.PeerDependencies = peers
	p.Versions[version] = info
	return p
}
