package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/familytree/pkg/graph"
)

// Options configures diagram generation.
type Options struct {
	// Detailed adds the lifespan under each name.
	Detailed bool
	// Direction is the Graphviz rankdir: "TB" (default) or "LR".
	Direction string
	// LinkPrefix, when set, makes each node link to LinkPrefix+id.
	LinkPrefix string
}

var genderFill = map[string]string{
	"M": "#dbeafe",
	"F": "#fce7f3",
	"O": "#ecfccb",
}

// ToDOT converts a family graph to Graphviz DOT source.
func ToDOT(g graph.Graph, opts Options) string {
	dir := opts.Direction
	if dir != "LR" {
		dir = "TB"
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", dir)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"Helvetica\", fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [color=\"#6b7280\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.4;\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(fmtAttrs(n, opts), ", "))
	}

	if same := couple(g); len(same) > 1 {
		buf.WriteString("\n  { rank=same;")
		for _, id := range same {
			fmt.Fprintf(&buf, " %q;", id)
		}
		buf.WriteString(" }\n")
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		switch e.Kind {
		case graph.EdgeSpouse:
			style := "solid"
			if e.Ended {
				style = "dashed"
			}
			fmt.Fprintf(&buf, "  %q -> %q [dir=none, style=%s, color=\"#b91c1c\", constraint=false];\n", e.From, e.To, style)
		default:
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// couple returns the root followed by its spouses.
func couple(g graph.Graph) []string {
	if g.Root == "" {
		return nil
	}
	ids := []string{g.Root}
	for _, e := range g.Edges {
		if e.Kind == graph.EdgeSpouse && e.From == g.Root {
			ids = append(ids, e.To)
		}
	}
	return ids
}

func fmtLabel(n graph.Node, detailed bool) string {
	label := n.DisplayLabel()
	if detailed {
		if span := n.Lifespan(); span != "" {
			label += "\n" + span
		}
	}
	return label
}

func fmtAttrs(n graph.Node, opts Options) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, opts.Detailed))}
	if fill, ok := genderFill[n.Gender]; ok {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", fill))
	}
	if n.Kind == graph.KindRoot {
		attrs = append(attrs, "penwidth=2.5")
	}
	if opts.LinkPrefix != "" {
		attrs = append(attrs,
			fmt.Sprintf("URL=%q", opts.LinkPrefix+n.ID),
			fmt.Sprintf("tooltip=%q", n.DisplayLabel()),
			`target="_top"`,
		)
	}
	return attrs
}

// RenderSVG renders DOT source to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
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

// normalizeViewBox rewrites the root <svg> tag with a zero-origin viewBox and
// pixel dimensions so the diagram scales inside the page. The xlink namespace
// is kept for node links.
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

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
