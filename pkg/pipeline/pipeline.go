// Package pipeline provides the fetch → build → render chart pipeline.
//
// Both the web UI and the CLI turn a person id into chart output the same
// way, so the logic lives here:
//
//  1. Fetch: load the person's family tree from the service
//  2. Build: walk the tree into chart members and a node-link graph
//  3. Render: produce the requested outputs
//
// Data shapes (nodes, relations, graph) are JSON for the browser chart
// widget. Render formats (dot, svg, pdf, png) go through Graphviz and are
// cached as artifacts keyed by the graph hash.
//
// # Usage
//
//	runner := pipeline.NewRunner(client, cache, nil, logger)
//	result, err := runner.Execute(ctx, id, pipeline.Options{
//	    Formats: []string{pipeline.FormatNodes, pipeline.FormatSVG},
//	})
//	if err != nil {
//	    return err
//	}
//	svg := result.Artifacts[pipeline.FormatSVG]
package pipeline

import (
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/familytree/pkg/cache"
	"github.com/matzehuels/familytree/pkg/chart"
	"github.com/matzehuels/familytree/pkg/graph"
	"github.com/matzehuels/familytree/pkg/render"
)

// Data shapes for the browser chart widget.
const (
	FormatNodes     = "nodes"
	FormatRelations = "relations"
	FormatGraph     = "graph"
)

// Render formats.
const (
	FormatDOT = render.FormatDOT
	FormatSVG = render.FormatSVG
	FormatPDF = render.FormatPDF
	FormatPNG = render.FormatPNG
)

// DefaultArtifactTTL is how long rendered charts stay cached.
const DefaultArtifactTTL = 24 * time.Hour

// Formats lists every output the pipeline can produce, data shapes first.
var Formats = []string{FormatNodes, FormatRelations, FormatGraph, FormatDOT, FormatSVG, FormatPDF, FormatPNG}

// IsShape reports whether f is a JSON data shape rather than a render format.
func IsShape(f string) bool {
	return f == FormatNodes || f == FormatRelations || f == FormatGraph
}

// ContentType returns the MIME type of an output.
func ContentType(format string) string {
	if IsShape(format) {
		return "application/json"
	}
	return render.ContentType(format)
}

// Options configures a pipeline run.
type Options struct {
	// Formats lists the outputs to produce. Defaults to [FormatNodes].
	Formats []string
	// Direction is the Graphviz rankdir, "TB" or "LR".
	Direction string
	// Detailed adds lifespans to rendered node labels.
	Detailed bool
	// LinkPrefix makes rendered nodes link to LinkPrefix+id.
	LinkPrefix string
	// Scale is the PNG resolution multiplier.
	Scale float64
	// Refresh bypasses cached responses and artifacts.
	Refresh bool

	Logger *log.Logger
}

// ValidateAndSetDefaults fills defaults and rejects unknown formats.
func (o *Options) ValidateAndSetDefaults() error {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatNodes}
	}
	for _, f := range o.Formats {
		if !slices.Contains(Formats, f) {
			return fmt.Errorf("unknown format %q (want one of %v)", f, Formats)
		}
	}
	switch o.Direction {
	case "":
		o.Direction = "TB"
	case "TB", "LR":
	default:
		return fmt.Errorf("direction must be TB or LR, got %q", o.Direction)
	}
	if o.Scale <= 0 {
		o.Scale = 2
	}
	return nil
}

// ArtifactKeyOpts returns the cache key options for a render format.
func (o Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	dir := o.Direction
	if o.Detailed {
		dir += "+detailed"
	}
	if o.LinkPrefix != "" {
		dir += "+link:" + o.LinkPrefix
	}
	return cache.ArtifactKeyOpts{Format: format, Direction: dir}
}

// Stats records timings and sizes of a run.
type Stats struct {
	FetchTime  time.Duration
	BuildTime  time.Duration
	RenderTime time.Duration
	NodeCount  int
	EdgeCount  int
}

// CacheInfo reports which stages were served from cache.
type CacheInfo struct {
	RenderHit bool
}

// Result is the output of [Runner.Execute].
type Result struct {
	Members   []chart.Member
	Graph     graph.Graph
	GraphHash string
	Artifacts map[string][]byte
	Stats     Stats
	CacheInfo CacheInfo
}
