// Package adjacency renders a layout's room-relationship graph: which rooms
// touch, and which illegally-looking pairs overlap. It exists as a
// diagnostic surface; overlap is permitted in the data model, so this is how
// a caller inspects a layout before trusting area sums.
package adjacency

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/floorplan/pkg/plan"
	"github.com/matzehuels/floorplan/pkg/render"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed includes room geometry in node labels. When false, only the
	// room label is shown.
	Detailed bool
}

// ToDOT converts a layout to Graphviz DOT format. Rooms become nodes styled
// with their catalog color; rooms that share a wall get a plain edge, and
// rooms whose interiors intersect get a red dashed edge so overlaps stand
// out at a glance. Render the result with [RenderSVG], [RenderPDF] or
// [RenderPNG].
func ToDOT(l plan.Layout, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("graph floorplan {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("\n")

	for _, room := range l {
		fmt.Fprintf(&buf, "  %q [label=%q, fillcolor=%q];\n",
			room.ID, fmtLabel(room, opts.Detailed), room.Color)
	}

	buf.WriteString("\n")
	for i := 0; i < len(l); i++ {
		for j := i + 1; j < len(l); j++ {
			switch {
			case l[i].Overlaps(l[j].Rect):
				fmt.Fprintf(&buf, "  %q -- %q [color=red, style=dashed, label=\"overlap\"];\n", l[i].ID, l[j].ID)
			case adjacent(l[i].Rect, l[j].Rect):
				fmt.Fprintf(&buf, "  %q -- %q;\n", l[i].ID, l[j].ID)
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(r plan.PlacedRoom, detailed bool) string {
	if !detailed {
		return r.Label
	}
	return fmt.Sprintf("%s\n%dx%d at (%d,%d)", r.Label, r.W, r.H, r.X, r.Y)
}

// adjacent reports whether two non-overlapping rectangles share a wall
// segment, not merely a corner point.
func adjacent(a, b plan.Rect) bool {
	vertical := a.Y < b.Bottom() && b.Y < a.Bottom()
	horizontal := a.X < b.Right() && b.X < a.Right()
	if (a.Right() == b.X || b.Right() == a.X) && vertical {
		return true
	}
	if (a.Bottom() == b.Y || b.Bottom() == a.Y) && horizontal {
		return true
	}
	return false
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
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

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(dot string) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion. A scale of 2.0
// produces a 2x resolution image suitable for high-DPI displays.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(svg, scale)
}
