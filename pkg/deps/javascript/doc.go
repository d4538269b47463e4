// Package javascript reads the two documents that describe an installed
// npm project: package.json (the [Manifest]) and package-lock.json (the
// [Lockfile]).
//
// # Lockfile Layout
//
// Lockfile versions 2 and 3 list every installed package in a flat map
// keyed by install path:
//
//	""                                   the project itself
//	"node_modules/react"                 a hoisted (top-level) install
//	"node_modules/a/node_modules/react"  a nested copy private to "a"
//	"node_modules/@scope/pkg"            scoped names span two segments
//
// Version 1 lockfiles use a nested "dependencies" tree instead and are
// rejected by the graph builder. [Lockfile.Version] is exposed so callers
// can report that before building.
//
// # Paths
//
// [NameFromPath], [ParentPath] and [IsDirect] interpret install paths. They
// understand scoped names, so "node_modules/@babel/core" has name
// "@babel/core" and parent "".
//
// # Projects
//
// [LoadProject] reads both documents from a directory:
//
//	p, err := javascript.LoadProject(".")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(p.Manifest.Name, p.Lockfile.Version)
package javascript
