package render

import (
	"bytes"
	"fmt"
	"os/exec"
)

// ToPDF converts rendered SVG bytes to PDF. Used for print-quality exports
// of floor plans and relationship graphs alike.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func ToPDF(svg []byte) ([]byte, error) {
	return convertSVG(svg, "pdf")
}

// ToPNG converts rendered SVG bytes to PNG at the given scale factor.
// Scale 2.0 doubles the pixel dimensions of the virtual canvas.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func ToPNG(svg []byte, scale float64) ([]byte, error) {
	return convertSVG(svg, "png", "-z", fmt.Sprintf("%.2f", scale))
}

// convertSVG pipes SVG bytes through rsvg-convert into the target format.
func convertSVG(svg []byte, format string, extraArgs ...string) ([]byte, error) {
	if _, err := exec.LookPath("rsvg-convert"); err != nil {
		return nil, fmt.Errorf("%s export requires librsvg. Install with:\n  macOS:  brew install librsvg\n  Linux:  apt install librsvg2-bin", format)
	}

	cmd := exec.Command("rsvg-convert", append([]string{"-f", format}, extraArgs...)...)
	cmd.Stdin = bytes.NewReader(svg)

	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("rsvg-convert: %v: %s", err, stderr.String())
	}
	return out.Bytes(), nil
}
