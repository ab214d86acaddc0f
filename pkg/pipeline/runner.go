package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/familytree/pkg/cache"
	"github.com/matzehuels/familytree/pkg/chart"
	ferrors "github.com/matzehuels/familytree/pkg/errors"
	"github.com/matzehuels/familytree/pkg/family"
	"github.com/matzehuels/familytree/pkg/graph"
	"github.com/matzehuels/familytree/pkg/observability"
)

// RenderFunc produces one render format from a graph.
type RenderFunc func(ctx context.Context, g graph.Graph, format string, opts Options) ([]byte, error)

// Runner encapsulates pipeline execution with artifact caching.
// It holds no per-run state and is safe for concurrent use.
type Runner struct {
	Source TreeSource
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	TTL    time.Duration
	// Renderer defaults to [Render].
	Renderer RenderFunc
}

// NewRunner creates a runner. A nil cache disables artifact caching; a nil
// keyer uses [cache.DefaultKeyer].
func NewRunner(src TreeSource, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Source:   src,
		Cache:    c,
		Keyer:    keyer,
		Logger:   logger,
		TTL:      DefaultArtifactTTL,
		Renderer: Render,
	}
}

// Execute runs fetch → build → render for the tree rooted at id.
func (r *Runner) Execute(ctx context.Context, id string, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, ferrors.Wrap(ferrors.ErrCodeInvalidInput, err, "invalid options")
	}
	logger := r.logger(opts)

	fetchStart := time.Now()
	tree, err := r.Fetch(ctx, id, opts.Refresh)
	if err != nil {
		return nil, err
	}
	fetchTime := time.Since(fetchStart)

	result := r.Build(ctx, tree)
	result.Stats.FetchTime = fetchTime
	logger.Debug("built chart",
		"root", tree.FullName,
		"nodes", result.Stats.NodeCount,
		"edges", result.Stats.EdgeCount,
		"duration", result.Stats.BuildTime)

	renderStart := time.Now()
	artifacts, hit, err := r.Artifacts(ctx, result, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.CacheInfo.RenderHit = hit
	result.Stats.RenderTime = time.Since(renderStart)

	logger.Debug("rendered outputs",
		"formats", opts.Formats,
		"cached", hit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Build walks tree into members and a graph and reports the build to the
// chart hooks.
func (r *Runner) Build(ctx context.Context, tree *family.FamilyTreePerson) *Result {
	start := time.Now()
	members := chart.Walk(tree)
	g := chart.ToGraph(members)
	elapsed := time.Since(start)
	observability.Chart().OnChartBuilt(ctx, FormatGraph, len(members), elapsed)

	result := &Result{
		Members:   members,
		Graph:     g,
		Artifacts: map[string][]byte{},
		Stats: Stats{
			BuildTime: elapsed,
			NodeCount: len(g.Nodes),
			EdgeCount: len(g.Edges),
		},
	}
	if data, err := graph.MarshalGraph(g); err == nil {
		result.GraphHash = cache.Hash(data)
	}
	return result
}

// Artifacts produces every requested format for a built result. Render
// formats are read from and written to the cache; hit is true only when all
// of them came from the cache.
func (r *Runner) Artifacts(ctx context.Context, result *Result, opts Options) (map[string][]byte, bool, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	hit := true
	rendered := 0

	for _, format := range opts.Formats {
		if IsShape(format) {
			data, err := Shape(result.Members, format)
			if err != nil {
				return nil, false, err
			}
			artifacts[format] = data
			continue
		}

		rendered++
		key := r.Keyer.ArtifactKey(result.GraphHash, opts.ArtifactKeyOpts(format))
		if !opts.Refresh && result.GraphHash != "" {
			if data, ok, err := r.Cache.Get(ctx, key); err == nil && ok {
				observability.Cache().OnCacheHit(ctx, "artifact")
				artifacts[format] = data
				continue
			}
			observability.Cache().OnCacheMiss(ctx, "artifact")
		}
		hit = false

		render := r.Renderer
		if render == nil {
			render = Render
		}
		data, err := render(ctx, result.Graph, format, opts)
		if err != nil {
			return nil, false, err
		}
		artifacts[format] = data
		if result.GraphHash != "" {
			if err := r.Cache.Set(ctx, key, data, r.TTL); err == nil {
				observability.Cache().OnCacheSet(ctx, "artifact", len(data))
			}
		}
	}
	return artifacts, hit && rendered > 0, nil
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return r.Logger
}
