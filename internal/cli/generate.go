package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/floorplan/pkg/pipeline"
	"github.com/matzehuels/floorplan/pkg/plan"
)

// generateCommand creates the generate command for packing room selections
// into an initial layout.
func (c *CLI) generateCommand() *cobra.Command {
	var (
		roomsStr   string
		formatsStr string
		output     string
		save       string
		noCache    bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate an initial layout from room selections",
		Long: `Generate an initial layout from room selections.

Each selection is a room type and quantity ("bedroom:2"). Rooms are sized
from their catalog default areas and packed largest-first into rows on the
800x600 virtual canvas. Widths carry a small seeded jitter so plans do not
look machine-stamped; pass --no-jitter or a fixed --seed for reproducible
geometry.

The layout can be written to files (--format svg,json,...) and/or saved
straight onto a project record (--save).`,
		Example: `  floorplan generate --rooms bedroom:2,kitchen:1
  floorplan generate --rooms bedroom:2,bathroom:1 --seed 7 -f svg,json -o plan
  floorplan generate --rooms office:1 --save project-42`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			selections, err := parseSelections(roomsStr)
			if err != nil {
				return err
			}
			opts.Selections = selections
			opts.Formats = parseFormats(formatsStr)
			if opts.Seed == 0 {
				opts.Seed = c.Config.Seed
			}
			if !opts.NoJitter {
				opts.NoJitter = c.Config.NoJitter
			}
			return c.runGenerate(cmd.Context(), opts, output, save, noCache)
		},
	}

	cmd.Flags().StringVarP(&roomsStr, "rooms", "r", "", "room selections as type:quantity pairs (comma-separated)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), json, png, pdf, dot (comma-separated)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVar(&save, "save", "", "project ID to persist the layout under")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "jitter seed (default from config)")
	cmd.Flags().BoolVar(&opts.NoJitter, "no-jitter", false, "disable width jitter")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "bypass the cache and regenerate")
	cmd.Flags().BoolVar(&opts.ShowGrid, "grid", false, "draw the snap grid in SVG output")
	cmd.Flags().BoolVar(&opts.HandDrawn, "hand-drawn", false, "use the handwriting font for labels")

	return cmd
}

// runGenerate executes the generate → render pipeline and writes the result.
func (c *CLI) runGenerate(ctx context.Context, opts pipeline.Options, output, save string, noCache bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Packing %d selection(s)...", len(opts.Selections)))
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Generation failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if err := writeArtifacts(artifactWriteParams{
		artifacts: result.Artifacts,
		formats:   opts.Formats,
		input:     "layout",
		output:    output,
		cacheHit:  result.CacheInfo.RenderHit,
		overlaps:  len(result.Layout.Overlapping()),
		rooms:     len(result.Layout),
	}); err != nil {
		return err
	}

	if save != "" {
		if err := c.saveLayout(ctx, save, result.Layout); err != nil {
			return err
		}
		printSuccess("Saved layout to project %s", save)
	}

	printNewline()
	printNextStep("Edit", fmt.Sprintf("%s edit %s.json", appName, basePath(output, "layout")))
	return nil
}

// saveLayout persists a layout snapshot through the configured store.
func (c *CLI) saveLayout(ctx context.Context, projectID string, l plan.Layout) error {
	st, err := c.newStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close(ctx)
	return st.Save(ctx, projectID, l.Clone())
}
