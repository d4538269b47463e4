package npm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/peerscan/pkg/cache"
	"github.com/matzehuels/peerscan/pkg/httputil"
	"github.com/matzehuels/peerscan/pkg/integrations"
	"github.com/matzehuels/peerscan/pkg/observability"
	"github.com/matzehuels/peerscan/pkg/semver"
)

// DefaultRegistry is the public npm registry.
const DefaultRegistry = "https://registry.npmjs.org"

// abbreviated packuments carry everything an install needs and are a fraction
// of the size of the full document.
const acceptAbbreviated = "application/vnd.npm.install-v1+json; q=1.0, application/json; q=0.8"

// Packument is the registry document for one package name.
type Packument struct {
	Name     string                 `json:"name"`
	DistTags map[string]string      `json:"dist-tags"`
	Versions map[string]VersionInfo `json:"versions"`
}

// Latest returns the version tagged "latest", or "" if the tag is missing.
func (p *Packument) Latest() string {
	if p == nil {
		return ""
	}
	return p.DistTags["latest"]
}

// Version returns the metadata for version v.
func (p *Packument) Version(v string) (VersionInfo, bool) {
	if p == nil {
		return VersionInfo{}, false
	}
	info, ok := p.Versions[v]
	return info, ok
}

// VersionInfo is the per-version part of a packument.
type VersionInfo struct {
	Version              string              `json:"version"`
	Dependencies         map[string]string   `json:"dependencies,omitempty"`
	PeerDependencies     map[string]string   `json:"peerDependencies,omitempty"`
	PeerDependenciesMeta map[string]PeerMeta `json:"peerDependenciesMeta,omitempty"`
	Deprecated           Deprecation         `json:"deprecated,omitempty"`
}

// PeerMeta is an entry of peerDependenciesMeta.
type PeerMeta struct {
	Optional bool `json:"optional"`
}

// RequiredPeers returns the peer dependencies not marked optional.
func (v VersionInfo) RequiredPeers() map[string]string {
	out := make(map[string]string, len(v.PeerDependencies))
	for name, rng := range v.PeerDependencies {
		if v.PeerDependenciesMeta[name].Optional {
			continue
		}
		out[name] = rng
	}
	return out
}

// Deprecation holds a deprecation message. The registry publishes it as a
// string, but some old documents use a boolean.
type Deprecation string

func (d *Deprecation) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*d = Deprecation(s)
		return nil
	}
	var flag bool
	if err := json.Unmarshal(b, &flag); err != nil {
		return err
	}
	if flag {
		*d = "deprecated"
	} else {
		*d = ""
	}
	return nil
}

// Client fetches packuments from an npm registry. Lookups go through an
// in-process [Memo] first, then the backing cache, then HTTP.
type Client struct {
	*integrations.Client
	baseURL string
	memo    *Memo
	logger  *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different registry.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.SetHTTPClient(h) }
}

// WithRetryPolicy sets how transient registry failures are retried.
func WithRetryPolicy(p httputil.Policy) Option {
	return func(c *Client) { c.SetRetryPolicy(p) }
}

// WithMemo shares a memo between clients.
func WithMemo(m *Memo) Option {
	return func(c *Client) { c.memo = m }
}

// WithLogger sets the logger for soft failures.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a registry client. backing may be nil.
func NewClient(backing cache.Cache, ttl time.Duration, opts ...Option) *Client {
	c := &Client{
		Client:  integrations.NewClient(backing, "npm:", ttl, map[string]string{"Accept": acceptAbbreviated}),
		baseURL: DefaultRegistry,
		memo:    NewMemo(),
		logger:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Packument returns the registry document for name.
//
// A package the registry does not know yields (nil, nil) and is not
// memoized. Any other failure yields (nil, err) wrapping
// [integrations.ErrNetwork].
func (c *Client) Packument(ctx context.Context, name string) (*Packument, error) {
	name = strings.TrimSpace(name)
	if p, ok := c.memo.Get(name); ok {
		observability.Cache().OnCacheHit(ctx, "memo")
		return p, nil
	}
	observability.Cache().OnCacheMiss(ctx, "memo")

	var p Packument
	err := c.Cached(ctx, name, false, &p, func() error {
		return c.Get(ctx, c.baseURL+"/"+EscapeName(name), &p)
	})
	switch {
	case errors.Is(err, integrations.ErrNotFound):
		c.logger.Debug("package not in registry", "package", name)
		return nil, nil
	case err != nil:
		c.logger.Debug("registry lookup failed", "package", name, "err", err)
		if !errors.Is(err, integrations.ErrNetwork) {
			err = fmt.Errorf("%w: %s: %v", integrations.ErrNetwork, name, err)
		}
		return nil, err
	}
	if p.Name == "" {
		p.Name = name
	}
	c.memo.Put(name, &p)
	return &p, nil
}

// Versions returns the published versions of name, newest first. Version
// strings that are not valid semver are dropped. An unknown package yields
// (nil, nil).
func (c *Client) Versions(ctx context.Context, name string) ([]string, error) {
	p, err := c.Packument(ctx, name)
	if err != nil || p == nil {
		return nil, err
	}
	raw := make([]string, 0, len(p.Versions))
	for v := range p.Versions {
		raw = append(raw, v)
	}
	return semver.SortDescending(raw), nil
}

// CachedPackages lists the package names held in the memo.
func (c *Client) CachedPackages() []string {
	return c.memo.Keys()
}

// Memo returns the client's memo.
func (c *Client) Memo() *Memo {
	return c.memo
}

// EscapeName encodes a package name for use as a registry URL path segment.
// The slash of a scoped name is escaped; the leading "@" is kept.
func EscapeName(name string) string {
	if strings.HasPrefix(name, "@") {
		return strings.Replace(name, "/", "%2f", 1)
	}
	return name
}
