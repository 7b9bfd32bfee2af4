// Package floorplan renders a layout snapshot to SVG, PNG, PDF and JSON.
package floorplan

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/matzehuels/floorplan/pkg/fonts"
	"github.com/matzehuels/floorplan/pkg/plan"
	"github.com/matzehuels/floorplan/pkg/render"
)

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	showGrid     bool
	handDrawn    bool
	drafts       []plan.DraftRoom
	backdrop     []byte
	backdropMIME string
}

// WithGrid draws the snap grid beneath the rooms.
func WithGrid() SVGOption { return func(r *svgRenderer) { r.showGrid = true } }

// WithHandDrawn embeds the handwriting font and uses it for room labels.
func WithHandDrawn() SVGOption { return func(r *svgRenderer) { r.handDrawn = true } }

// WithDrafts overlays unlabeled draft rectangles, drawn dashed, on top of
// the placed rooms. Used by the capture workflows.
func WithDrafts(drafts []plan.DraftRoom) SVGOption {
	return func(r *svgRenderer) { r.drafts = drafts }
}

// WithBackdrop composites an image beneath the rooms, embedded as a data
// URI so the SVG stays self-contained. The image is stretched to the canvas;
// it never affects geometry.
func WithBackdrop(data []byte, mime string) SVGOption {
	return func(r *svgRenderer) { r.backdrop = data; r.backdropMIME = mime }
}

// RenderSVG projects the layout onto a fixed-size SVG canvas. The output is
// deterministic for a given layout and option set.
func RenderSVG(l plan.Layout, opts ...SVGOption) []byte {
	r := svgRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d">`+"\n",
		plan.CanvasWidth, plan.CanvasHeight, plan.CanvasWidth, plan.CanvasHeight)

	renderDefs(&buf, &r)
	fmt.Fprintf(&buf, `  <rect width="%d" height="%d" fill="#ffffff"/>`+"\n", plan.CanvasWidth, plan.CanvasHeight)

	if r.backdrop != nil {
		fmt.Fprintf(&buf, `  <image href="data:%s;base64,%s" x="0" y="0" width="%d" height="%d" preserveAspectRatio="none" opacity="0.5"/>`+"\n",
			r.backdropMIME, base64.StdEncoding.EncodeToString(r.backdrop), plan.CanvasWidth, plan.CanvasHeight)
	}
	if r.showGrid {
		fmt.Fprintf(&buf, `  <rect width="%d" height="%d" fill="url(#grid)"/>`+"\n", plan.CanvasWidth, plan.CanvasHeight)
	}

	for _, room := range l {
		renderRoom(&buf, &r, room)
	}
	for _, d := range r.drafts {
		renderDraft(&buf, d)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderDefs(buf *bytes.Buffer, r *svgRenderer) {
	buf.WriteString("  <defs>\n")
	if r.showGrid {
		fmt.Fprintf(buf, `    <pattern id="grid" width="%d" height="%d" patternUnits="userSpaceOnUse">`+"\n", plan.Grid, plan.Grid)
		fmt.Fprintf(buf, `      <path d="M %d 0 L 0 0 0 %d" fill="none" stroke="#e0e0e0" stroke-width="0.5"/>`+"\n", plan.Grid, plan.Grid)
		buf.WriteString("    </pattern>\n")
	}
	buf.WriteString("  </defs>\n")
	// Embed the handwriting font only when one is registered; otherwise the
	// fallback font stack carries the hand-drawn style.
	if data := fonts.XKCDScriptWOFFBase64(); r.handDrawn && data != "" {
		fmt.Fprintf(buf, "  <style>@font-face { font-family: %q; src: url(data:font/woff;base64,%s) format('woff'); }</style>\n",
			fonts.FontFamily, data)
	}
}

func renderRoom(buf *bytes.Buffer, r *svgRenderer, room plan.PlacedRoom) {
	fmt.Fprintf(buf, `  <g id="room-%s">`+"\n", escape(room.ID))
	fmt.Fprintf(buf, `    <rect x="%d" y="%d" width="%d" height="%d" fill="%s" fill-opacity="0.65" stroke="#374151" stroke-width="2" rx="2"/>`+"\n",
		room.X, room.Y, room.W, room.H, escape(room.Color))

	cx := room.X + room.W/2
	cy := room.Y + room.H/2
	fontFamily := fonts.FallbackFontFamily
	if !r.handDrawn {
		fontFamily = "sans-serif"
	}
	// The icon sits above the label when the room is tall enough for two
	// lines of text; tiny rooms get the label alone.
	if room.H >= 2*plan.MinRoomSize {
		fmt.Fprintf(buf, `    <text x="%d" y="%d" text-anchor="middle" font-size="16">%s</text>`+"\n", cx, cy-4, escape(room.Icon))
		fmt.Fprintf(buf, `    <text x="%d" y="%d" text-anchor="middle" font-family=%q font-size="11" fill="#1f2937">%s</text>`+"\n",
			cx, cy+14, fontFamily, escape(room.Label))
	} else {
		fmt.Fprintf(buf, `    <text x="%d" y="%d" text-anchor="middle" font-family=%q font-size="10" fill="#1f2937">%s</text>`+"\n",
			cx, cy+4, fontFamily, escape(room.Label))
	}
	buf.WriteString("  </g>\n")
}

func renderDraft(buf *bytes.Buffer, d plan.DraftRoom) {
	fmt.Fprintf(buf, `  <rect x="%d" y="%d" width="%d" height="%d" fill="#93c5fd" fill-opacity="0.3" stroke="#2563eb" stroke-width="2" stroke-dasharray="6 3"/>`+"\n",
		d.X, d.Y, d.W, d.H)
}

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

func escape(s string) string { return escaper.Replace(s) }

// RenderPNG renders the layout as PNG via SVG conversion.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(l plan.Layout, scale float64, opts ...SVGOption) ([]byte, error) {
	return render.ToPNG(RenderSVG(l, opts...), scale)
}

// RenderPDF renders the layout as PDF via SVG conversion.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(l plan.Layout, opts ...SVGOption) ([]byte, error) {
	return render.ToPDF(RenderSVG(l, opts...))
}
