package pipeline

import (
	"github.com/matzehuels/floorplan/pkg/errors"
	"github.com/matzehuels/floorplan/pkg/plan"
	"github.com/matzehuels/floorplan/pkg/render/adjacency"
	"github.com/matzehuels/floorplan/pkg/render/floorplan"
)

// Render generates output artifacts in the requested formats without
// caching. Most callers want [Runner.Render] instead.
func Render(l plan.Layout, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = floorplan.RenderSVG(l, svgOptions(opts)...)
		case FormatPNG:
			data, err = floorplan.RenderPNG(l, 2.0, svgOptions(opts)...)
		case FormatPDF:
			data, err = floorplan.RenderPDF(l, svgOptions(opts)...)
		case FormatJSON:
			jsonOpts := []floorplan.JSONOption{floorplan.WithJSONOverlaps()}
			if opts.Seed != 0 {
				jsonOpts = append(jsonOpts, floorplan.WithJSONSeed(opts.Seed))
			}
			data, err = floorplan.RenderJSON(l, jsonOpts...)
		case FormatDOT:
			data = []byte(adjacency.ToDOT(l, adjacency.Options{Detailed: opts.Detailed}))
		default:
			return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", format)
		}

		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "render %s", format)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

func svgOptions(opts Options) []floorplan.SVGOption {
	var svgOpts []floorplan.SVGOption
	if opts.ShowGrid {
		svgOpts = append(svgOpts, floorplan.WithGrid())
	}
	if opts.HandDrawn {
		svgOpts = append(svgOpts, floorplan.WithHandDrawn())
	}
	if len(opts.Backdrop) > 0 {
		svgOpts = append(svgOpts, floorplan.WithBackdrop(opts.Backdrop, opts.BackdropMIME))
	}
	return svgOpts
}
