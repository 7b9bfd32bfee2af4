// Package render holds shared output-format conversion for the rendering
// sinks. Sub-packages project an immutable layout snapshot into concrete
// artifacts: floorplan renders the canvas itself, adjacency renders the
// room-relationship diagnostic graph.
//
// Rendering is strictly a projection. Nothing in this tree mutates a layout
// or feeds back into the gesture state machines.
package render
