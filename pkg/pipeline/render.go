package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/matzehuels/familytree/pkg/chart"
	ferrors "github.com/matzehuels/familytree/pkg/errors"
	"github.com/matzehuels/familytree/pkg/graph"
	"github.com/matzehuels/familytree/pkg/observability"
	"github.com/matzehuels/familytree/pkg/render"
	"github.com/matzehuels/familytree/pkg/render/nodelink"
)

// Shape encodes members as one of the JSON data shapes.
func Shape(members []chart.Member, format string) ([]byte, error) {
	switch format {
	case FormatNodes:
		return json.Marshal(chart.ToNodes(members))
	case FormatRelations:
		return json.Marshal(chart.ToRelations(members))
	case FormatGraph:
		return graph.MarshalGraph(chart.ToGraph(members))
	default:
		return nil, fmt.Errorf("unsupported data shape: %s", format)
	}
}

// Render produces a render format from g. DOT needs no Graphviz; PDF and PNG
// are converted from the SVG.
func Render(ctx context.Context, g graph.Graph, format string, opts Options) ([]byte, error) {
	start := time.Now()
	data, err := renderFormat(ctx, g, format, opts)
	observability.Chart().OnRender(ctx, format, time.Since(start), err)
	if err != nil {
		return nil, ferrors.Wrap(ferrors.ErrCodeRender, err, "render %s", format)
	}
	return data, nil
}

func renderFormat(ctx context.Context, g graph.Graph, format string, opts Options) ([]byte, error) {
	dot := nodelink.ToDOT(g, nodelink.Options{
		Detailed:   opts.Detailed,
		Direction:  opts.Direction,
		LinkPrefix: opts.LinkPrefix,
	})
	if format == FormatDOT {
		return []byte(dot), nil
	}

	svg, err := nodelink.RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatSVG:
		return svg, nil
	case FormatPDF:
		return render.ToPDF(ctx, svg)
	case FormatPNG:
		return render.ToPNG(ctx, svg, opts.Scale)
	default:
		return nil, fmt.Errorf("unsupported render format: %s", format)
	}
}
