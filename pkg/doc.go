// Package pkg holds the peerscan libraries.
//
// # Overview
//
// peerscan rebuilds the installed package tree of an npm project from its
// lockfile, finds peer dependency and duplicate singleton conflicts, and
// asks the registry for versions that resolve them. The packages split
// along that flow:
//
//  1. [deps/javascript] - package.json and package-lock.json documents
//  2. [graph] - the installed tree with npm's hoisting rules
//  3. [conflict] - conflict detection, solutions, remediation executors
//  4. [suggest] - compatible version search and audit
//  5. [integrations/npm] - registry client with memo and backing cache
//  6. [pipeline] - load → build → analyze → render, as used by the CLI
//
// Supporting packages: [cache], [httputil], [semver], [errors],
// [observability], [io] (JSON reports), [render/nodelink] (Graphviz) and
// [buildinfo].
//
// # Data Flow
//
//	package.json + package-lock.json
//	         ↓
//	    [graph.Build] (hoisting-aware tree)
//	         ↓
//	    [conflict.Analyzer] ←→ [suggest.Engine] ←→ [npm.Client]
//	         ↓
//	    report / DOT / SVG
//
// # Quick Start
//
//	p, err := javascript.LoadProject(".")
//	if err != nil {
//	    return err
//	}
//	g, err := graph.Build(p.Manifest, p.Lockfile)
//	if err != nil {
//	    return err
//	}
//	reg := npm.NewClient(cache.NewNullCache(), time.Hour)
//	report := conflict.NewAnalyzer(reg, conflict.Options{}).Analyze(ctx, g)
//	for _, c := range report.Conflicts {
//	    fmt.Println(c.Message)
//	}
package pkg
