// Package npm provides an HTTP client for the npm registry API.
//
// # Overview
//
// This package fetches packuments (the per-name registry documents listing
// every published version) from https://registry.npmjs.org or a compatible
// mirror. The analyzer needs three things from them: the "latest" dist-tag,
// the set of published versions, and each version's peerDependencies.
//
// # Usage
//
//	client := npm.NewClient(cache.NewNullCache(), 24*time.Hour)
//
//	p, err := client.Packument(ctx, "react-redux")
//	if err != nil {
//	    // network failure; treat as "no information"
//	}
//	if p == nil {
//	    // the registry does not know this package
//	}
//	info, _ := p.Version(p.Latest())
//	fmt.Println(info.PeerDependencies)
//
// # Caching
//
// Lookups are layered. A [Memo] keeps every packument fetched during the
// process; it has no TTL and is never invalidated except by [Memo.Clear].
// Below it, the backing [cache.Cache] (file, redis or none) keeps JSON
// copies across runs for the configured TTL. Not-found results are never
// cached so a freshly published package shows up on the next lookup.
//
// # Scoped Packages
//
// Scoped names are requested as "@scope%2fname", which every registry
// implementation accepts. See [EscapeName].
package npm
