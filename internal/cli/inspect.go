package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/floorplan/pkg/io"
	"github.com/matzehuels/floorplan/pkg/plan"
	"github.com/matzehuels/floorplan/pkg/render/adjacency"
)

// inspectCommand creates the inspect command for layout diagnostics.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		output   string
		detailed bool
		format   string
	)

	cmd := &cobra.Command{
		Use:   "inspect [layout.json]",
		Short: "Report a layout's selections, bounds, and overlaps",
		Long: `Report a layout's room selections, canvas usage, and overlapping pairs.

The engine never prevents rooms from overlapping, so downstream consumers
that sum areas need a way to check disjointness first. Inspect prints the
overlap pairs and can render the room-relationship graph (shared walls plain,
overlaps red and dashed) via Graphviz with -f dot, svg, or png.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			layout, err := io.ImportJSON(args[0])
			if err != nil {
				return err
			}

			printTitle(args[0])
			printSelections(layout)
			printOverlaps(layout)

			if format == "" {
				return nil
			}
			return c.renderAdjacency(layout, args[0], output, format, detailed)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "also render the relationship graph: dot, svg, png")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file for the rendered graph")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include geometry in node labels")

	return cmd
}

func printTitle(input string) {
	fmt.Println(StyleTitle.Render("Layout ") + StyleValue.Render(input))
	printNewline()
}

func printSelections(l plan.Layout) {
	selections := plan.GroupByType(l)
	printInfo("%d room(s), %d type(s)", len(l), len(selections))
	for _, s := range selections {
		printDetail("%-14s × %d", s.Type, s.Quantity)
	}
	printNewline()
}

func printOverlaps(l plan.Layout) {
	pairs := l.Overlapping()
	if len(pairs) == 0 {
		printSuccess("No overlapping rooms")
		return
	}
	printWarning("%d overlapping pair(s)", len(pairs))
	byID := make(map[string]string, len(l))
	for _, r := range l {
		byID[r.ID] = r.Label
	}
	for _, p := range pairs {
		printDetail("%s ↔ %s", byID[p[0]], byID[p[1]])
	}
}

func (c *CLI) renderAdjacency(l plan.Layout, input, output, format string, detailed bool) error {
	dot := adjacency.ToDOT(l, adjacency.Options{Detailed: detailed})

	var data []byte
	var err error
	switch format {
	case "dot":
		data = []byte(dot)
	case "svg":
		data, err = adjacency.RenderSVG(dot)
	case "png":
		data, err = adjacency.RenderPNG(dot, 2.0)
	default:
		return fmt.Errorf("invalid format: %s (must be 'dot', 'svg', or 'png')", format)
	}
	if err != nil {
		return err
	}

	if output == "" {
		output = basePath("", input) + ".relations." + format
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	printNewline()
	printFile(output)
	return nil
}
