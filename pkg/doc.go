// Package pkg provides the core libraries of the floorplan layout engine.
//
// # Overview
//
// Floorplan turns room selections into editable floor-plan layouts for the
// renovation marketplace. Every layout lives on a fixed 800x600 virtual
// canvas; rendering surfaces of any size map onto it through a pure
// coordinate transform. The pkg directory splits into four areas:
//
//  1. Domain model and geometry ([plan], [canvas], [catalog])
//  2. Workflows ([plan/generate], [editor], [capture], [notify])
//  3. Projections ([render/floorplan], [render/adjacency], [io])
//  4. Infrastructure ([pipeline], [cache], [store], [session], [httputil],
//     [errors], [observability])
//
// # Architecture
//
// The typical data flow:
//
//	Room selections (type + quantity)
//	         |
//	    [plan/generate] (row packing, seeded jitter)
//	         |
//	    [editor] / [capture] (gesture-driven mutation)
//	         |
//	    [notify] (debounced persistence notification)
//	         |
//	    [store] / [render] (persist verbatim, project to SVG/PNG/PDF/JSON)
//
// # Quick Start
//
// Generate a layout and render it:
//
//	import (
//	    "github.com/matzehuels/floorplan/pkg/plan"
//	    "github.com/matzehuels/floorplan/pkg/plan/generate"
//	    "github.com/matzehuels/floorplan/pkg/render/floorplan"
//	)
//
//	layout, _ := generate.Generate([]plan.RoomSelection{
//	    {Type: "bedroom", Quantity: 2},
//	    {Type: "kitchen", Quantity: 1},
//	}, generate.Options{Seed: 42, Jitter: true})
//
//	svg := floorplan.RenderSVG(layout, floorplan.WithGrid())
//
// # Main Packages
//
// ## Domain
//
// [plan] - The data model: rectangles, placed rooms, drafts, layouts, and
// the canvas/grid constants everything else is expressed in.
//
// [canvas] - Viewport-to-canvas coordinate transform plus grid snapping and
// bounds clamping. Pure functions; the same math serves any surface size.
//
// [catalog] - The room-type catalog (labels, icons, colors, default areas)
// and selection validation.
//
// ## Workflows
//
// [plan/generate] - Row-packing layout generation. Deterministic for a given
// seed: the same selections and seed always produce the same geometry.
//
// [editor] - The move/resize gesture state machine over a placed layout.
// Exactly one gesture at a time; moves preserve size, resizes pin the
// anchor corner; everything snaps to the grid and clamps to the canvas.
//
// [capture] - Free-draw and photo-trace workflows: draw drafts, adjust them,
// label them from the catalog, and finish into a placed layout. Photo-trace
// adds a validated backdrop image that never influences geometry.
//
// [notify] - Debounces mutation bursts into single persistence
// notifications after a quiet window, with flush-on-teardown guarantees.
//
// ## Projections
//
// [render/floorplan] - SVG/PNG/PDF/JSON sinks over an immutable layout
// snapshot. [render/adjacency] - Graphviz room-relationship diagrams.
// [io] - Layout JSON import/export, the persisted array verbatim.
//
// ## Infrastructure
//
// [pipeline] - Orchestration of generate-then-render with caching, used by
// the CLI and the HTTP API so both behave identically.
//
// [store] - Layout persistence keyed by project ID (memory, file, MongoDB).
// [session] - Resumable editing/capture sessions (memory, file, Redis).
// [cache] - Content-addressed artifact cache. [httputil] - Caching HTTP
// fetcher with retry, used to pull backdrop photos by URL.
//
// [errors] - Coded errors shared across the engine. [observability] - Hook
// points for metrics without coupling the domain to a metrics library.
//
// [plan]: https://pkg.go.dev/github.com/matzehuels/floorplan/pkg/plan
// [plan/generate]: https://pkg.go.dev/github.com/matzehuels/floorplan/pkg/plan/generate
// [canvas]: https://pkg.go.dev/github.com/matzehuels/floorplan/pkg/canvas
// [catalog]: https://pkg.go.dev/github.com/matzehuels/floorplan/pkg/catalog
// [editor]: https://pkg.go.dev/github.com/matzehuels/floorplan/pkg/editor
// [capture]: https://pkg.go.dev/github.com/matzehuels/floorplan/pkg/capture
// [notify]: https://pkg.go.dev/github.com/matzehuels/floorplan/pkg/notify
// [render/floorplan]: https://pkg.go.dev/github.com/matzehuels/floorplan/pkg/render/floorplan
// [render/adjacency]: https://pkg.go.dev/github.com/matzehuels/floorplan/pkg/render/adjacency
// [io]: https://pkg.go.dev/github.com/matzehuels/floorplan/pkg/io
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/floorplan/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/floorplan/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/floorplan/pkg/store
// [session]: https://pkg.go.dev/github.com/matzehuels/floorplan/pkg/session
// [httputil]: https://pkg.go.dev/github.com/matzehuels/floorplan/pkg/httputil
// [errors]: https://pkg.go.dev/github.com/matzehuels/floorplan/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/floorplan/pkg/observability
package pkg
