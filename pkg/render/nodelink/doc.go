// Package nodelink draws a family tree graph as a Graphviz diagram.
//
// # Usage
//
// Convert a [graph.Graph] to DOT, then render to SVG:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{LinkPrefix: "/person/"})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output, pass the SVG to render.ToPDF or render.ToPNG.
//
// # Layout
//
// Generations run top to bottom (or left to right with Direction "LR").
// The root and its spouses share a rank; spouse links are undirected and
// dashed once the marriage has ended. Parent links point from parent to
// child. Node fill follows gender and the root is drawn with a heavier
// border.
//
// With [Options.LinkPrefix] set, every node carries a URL so the SVG is
// clickable in a browser.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering, so no Graphviz installation is needed.
//
// [graph.Graph]: github.com/matzehuels/familytree/pkg/graph.Graph
package nodelink
