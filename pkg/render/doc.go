// Package render turns dependency graphs into images.
//
// The [nodelink] subpackage produces Graphviz DOT and SVG output of the
// installed tree with conflicting packages highlighted. [ToPDF] and [ToPNG]
// convert that SVG with the external rsvg-convert tool (from librsvg):
//
//	svg, err := nodelink.RenderSVG(dot)
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)
//
// [nodelink]: github.com/matzehuels/peerscan/pkg/render/nodelink
package render
