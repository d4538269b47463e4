// Package graph builds the installed package tree of an npm project.
//
// # Overview
//
// npm installs every package into a node_modules folder and lets Node's
// module resolution find it by walking up the directory tree. The lockfile
// records the result as a flat map of install paths. [Build] turns that map
// back into a tree where each package points at the exact copy its
// dependencies resolve to:
//
//	g, err := graph.Build(manifest, lockfile)
//	if err != nil {
//	    return err // UNSUPPORTED_FORMAT or MISSING_ROOT
//	}
//	for _, c := range g.Root.Children {
//	    fmt.Println(c.Name, c.Version)
//	}
//
// # Hoisting
//
// A dependency "dep" of the package at "node_modules/a/node_modules/b" is
// looked up at, in order:
//
//	node_modules/a/node_modules/b/node_modules/dep
//	node_modules/a/node_modules/dep
//	node_modules/dep
//
// The first install found wins. [Resolve] exposes the lookup.
//
// # Storage
//
// [DependencyGraph.Nodes] owns every node, keyed by install path. Children
// are plain pointers into that map; a hoisted package is typically the
// child of many parents. Node paths are unique, and the root lives at "".
//
// # Serialization
//
// [Export] and [Import] convert to a node-link [Document]:
//
//	{
//	  "nodes": [{"path": "", "name": "app"}, {"path": "node_modules/react", "name": "react"}],
//	  "edges": [{"from": "", "to": "node_modules/react"}]
//	}
//
// # Concurrency
//
// A built graph is safe for concurrent reads.
package graph
