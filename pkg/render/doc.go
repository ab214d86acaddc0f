// Package render converts rendered charts between output formats.
//
// Charts are first drawn as SVG by the [nodelink] subpackage. [ToPDF] and
// [ToPNG] convert that SVG with the external rsvg-convert tool (librsvg):
//
//	dot := nodelink.ToDOT(g, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0) // 2x scale
//
// Supported output formats are listed in [Formats].
//
// [nodelink]: github.com/matzehuels/familytree/pkg/render/nodelink
package render
