package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/floorplan/pkg/capture"
	"github.com/matzehuels/floorplan/pkg/io"
	"github.com/matzehuels/floorplan/pkg/pipeline"
)

// renderCommand creates the render command for projecting a saved layout
// into output formats.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		backdrop   string
		noCache    bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "render [layout.json]",
		Short: "Render a saved layout to SVG, PNG, PDF, JSON, or DOT",
		Long: `Render a saved layout to one or more output formats.

The input is a layout JSON file: either the bare persisted room array or the
enriched document written by 'generate -f json'. Rendering is a pure
projection of the layout snapshot; it never changes geometry.

The dot format emits the room-relationship graph (shared walls and overlaps)
for Graphviz.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formatsStr)
			return c.runRender(cmd.Context(), args[0], opts, output, backdrop, noCache)
		},
	}

	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, json, dot (comma-separated)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVar(&backdrop, "backdrop", "", "image file composited beneath the rooms")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.ShowGrid, "grid", false, "draw the snap grid in SVG output")
	cmd.Flags().BoolVar(&opts.HandDrawn, "hand-drawn", false, "use the handwriting font for labels")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "include geometry in dot node labels")

	return cmd
}

// runRender loads the layout and renders it to the requested formats.
func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, output, backdrop string, noCache bool) error {
	layout, err := io.ImportJSON(input)
	if err != nil {
		return err
	}

	if backdrop != "" {
		data, err := os.ReadFile(backdrop)
		if err != nil {
			return fmt.Errorf("read backdrop %s: %w", backdrop, err)
		}
		b, err := capture.NewBackdrop(data)
		if err != nil {
			return err
		}
		opts.Backdrop = b.Data
		opts.BackdropMIME = b.MIME
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, "Rendering...")
	spinner.Start()

	artifacts, cacheHit, err := runner.RenderWithCacheInfo(ctx, layout, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	return writeArtifacts(artifactWriteParams{
		artifacts: artifacts,
		formats:   opts.Formats,
		input:     input,
		output:    output,
		cacheHit:  cacheHit,
		overlaps:  len(layout.Overlapping()),
		rooms:     len(layout),
	})
}

// artifactWriteParams bundles the inputs to writeArtifacts.
type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	input     string
	output    string
	cacheHit  bool
	rooms     int
	overlaps  int
}

// writeArtifacts writes each rendered format to its own file and prints a
// summary. File names derive from the output flag, falling back to the input
// base name.
func writeArtifacts(p artifactWriteParams) error {
	base := basePath(p.output, p.input)

	var paths []string
	for _, format := range p.formats {
		data, ok := p.artifacts[format]
		if !ok {
			continue
		}
		path := base + "." + format
		if len(p.formats) == 1 && p.output != "" && filepath.Ext(p.output) != "" {
			path = p.output
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}

	printSuccess("Render complete")
	for _, path := range paths {
		printFile(path)
	}
	printStats(p.rooms, p.overlaps, p.cacheHit)
	return nil
}

// basePath derives the base output path from the output and input paths. An
// empty output falls back to the input with its extension stripped; a known
// format extension on the output is stripped so multi-format runs do not
// produce "plan.svg.json".
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
