// Package nodelink renders an installed package tree as a node-link diagram.
//
// # Usage
//
//	dot := nodelink.ToDOT(g, nodelink.Options{
//	    Highlight: map[string]bool{"node_modules/react": true},
//	})
//	svg, err := nodelink.RenderSVG(dot)
//
// Nodes are keyed by install path, so two copies of the same package
// appear as separate boxes. Highlighted nodes (typically those named in
// a conflict) are drawn in red; direct dev dependencies are dashed.
//
// # Dependencies
//
// SVG rendering runs Graphviz in-process through
// [github.com/goccy/go-graphviz]. PDF and PNG go through rsvg-convert; see
// the render package.
package nodelink
