// Package io provides JSON import and export for layouts.
//
// # JSON Format
//
// The canonical persisted form is a bare array of placed rooms, exactly what
// the external persistence boundary stores verbatim on a project record:
//
//	[
//	  {"id": "...", "type": "bedroom", "label": "Bedroom 1",
//	   "icon": "🛏️", "color": "#bfdbfe", "x": 20, "y": 20, "w": 200, "h": 160}
//	]
//
// [ReadJSON] also accepts the enriched document produced by the floorplan
// JSON sink (an object whose "rooms" field holds the same array), so a
// rendered artifact can be fed straight back in as an initial layout.
//
// # Validation
//
// Import validates geometry against the canvas invariants: every room must
// lie inside the canvas and meet the minimum size. Room types are checked
// against the catalog so a stale persisted layout fails loudly instead of
// rendering unstyled.
//
// The returned layout is independent of the reader and safe to modify.
package io
