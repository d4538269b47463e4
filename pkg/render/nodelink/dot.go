package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/peerscan/pkg/graph"
	"github.com/matzehuels/peerscan/pkg/render"
)

// rootID names the project node; the empty install path is not a usable
// DOT identifier.
const rootID = "(root)"

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the install path and dev flag to node labels.
	Detailed bool

	// Highlight marks install paths drawn in the conflict color.
	Highlight map[string]bool

	// MaxDepth omits nodes deeper than this many hops from the root.
	// Zero means no limit.
	MaxDepth int
}

// ToDOT converts g to Graphviz DOT. Nodes are emitted in walk order from
// the root, so unreachable lockfile entries are left out.
func ToDOT(g *graph.DependencyGraph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	included := make(map[*graph.PackageNode]bool)
	var order []*graph.PackageNode
	g.Walk(func(n *graph.PackageNode, depth int) bool {
		if opts.MaxDepth > 0 && depth > opts.MaxDepth {
			return false
		}
		included[n] = true
		order = append(order, n)
		return true
	})

	for _, n := range order {
		attrs := fmtAttrs(n, fmtLabel(n, opts.Detailed), opts.Highlight[n.Path])
		fmt.Fprintf(&buf, "  %q [%s];\n", nodeID(n), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, n := range order {
		for _, c := range n.Children {
			if included[c] {
				fmt.Fprintf(&buf, "  %q -> %q;\n", nodeID(n), nodeID(c))
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(n *graph.PackageNode) string {
	if n.IsRoot() {
		return rootID
	}
	return n.Path
}

func fmtLabel(n *graph.PackageNode, detailed bool) string {
	label := n.ID()
	if n.IsRoot() && n.Name == "" {
		label = rootID
	}
	if !detailed || n.IsRoot() {
		return label
	}
	parts := []string{n.Path}
	if n.IsDev {
		parts = append(parts, "dev")
	}
	return label + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(n *graph.PackageNode, label string, highlight bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch {
	case highlight:
		attrs = append(attrs, "fillcolor=\"#ffd6d6\"", "color=\"#c62828\"", "penwidth=2")
	case n.IsRoot():
		attrs = append(attrs, "fillcolor=\"#e3f2fd\"")
	case n.IsDev:
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-based svg header with one sized
// from the viewBox so the image scales in browsers.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
func RenderPDF(dot string) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
func RenderPNG(dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(svg, scale)
}
