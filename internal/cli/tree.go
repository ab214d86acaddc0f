package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/familytree/pkg/pipeline"
)

// treeCommand renders a person's family tree.
func (c *CLI) treeCommand() *cobra.Command {
	var (
		opts   pipeline.Options
		output string
	)

	cmd := &cobra.Command{
		Use:   "tree <id>",
		Short: "Render a person's family tree",
		Long: `Render the family tree around a person: the person, their spouses with the
children of each marriage, other children, and parents.

Formats:
  nodes, relations, graph   JSON data for chart widgets
  dot                       Graphviz source
  svg, pdf, png             rendered drawings

Text formats are written to stdout unless -o is given. pdf and png default to
<id>.<format>. With several formats, -o names the base path and each output
gets its format as extension.`,
		Example: `  familytree tree 3f0c... -f svg -o schmidt.svg
  familytree tree 3f0c... -f nodes,svg,png -o out/schmidt --direction LR`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Logger = loggerFromContext(cmd.Context())
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}
			return c.runTree(cmd.Context(), args[0], opts, output)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.Formats, "format", "f", nil, "output formats: "+strings.Join(pipeline.Formats, ", ")+" (default nodes)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (or base path with several formats)")
	cmd.Flags().StringVar(&opts.Direction, "direction", "TB", "layout direction: TB or LR")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "add lifespans to node labels")
	cmd.Flags().Float64Var(&opts.Scale, "scale", 2, "PNG resolution multiplier")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "bypass cached responses and drawings")

	return cmd
}

func (c *CLI) runTree(ctx context.Context, id string, opts pipeline.Options, output string) error {
	s, err := c.newSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	prog := newProgress(c.Logger)
	res, err := withSpinner(ctx, "Building family tree...", func(ctx context.Context) (*pipeline.Result, error) {
		return s.runner.Execute(ctx, id, opts)
	})
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Built tree with %d members", len(res.Members)))
	c.Logger.Debug("tree stats",
		"fetch", res.Stats.FetchTime, "build", res.Stats.BuildTime, "render", res.Stats.RenderTime,
		"nodes", res.Stats.NodeCount, "edges", res.Stats.EdgeCount, "cached", res.CacheInfo.RenderHit)

	for _, format := range opts.Formats {
		data := res.Artifacts[format]
		path := outputPath(id, format, output, len(opts.Formats) > 1)
		if path == "" {
			if _, err := os.Stdout.Write(data); err != nil {
				return err
			}
			if !strings.HasSuffix(string(data), "\n") {
				fmt.Println()
			}
			continue
		}
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	return nil
}

// outputPath decides where one format goes. An empty result means stdout.
func outputPath(id, format, output string, multi bool) string {
	binary := format == pipeline.FormatPDF || format == pipeline.FormatPNG
	ext := format
	if pipeline.IsShape(format) {
		ext += ".json"
	}
	switch {
	case output == "" && !binary && !multi:
		return ""
	case output == "":
		return id + "." + ext
	case multi:
		return strings.TrimSuffix(output, filepath.Ext(output)) + "." + ext
	default:
		return output
	}
}
