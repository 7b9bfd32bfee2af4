// Package fonts carries the optional handwriting font used by the
// hand-drawn SVG style.
//
// The font data is not compiled in; a distribution that ships the xkcd-script
// font (https://github.com/ipython/xkcd-font) installs it with [Register] at
// startup. Without it the renderer falls back to system handwriting fonts
// via [FallbackFontFamily], so the hand-drawn style degrades gracefully.
package fonts

import (
	"encoding/base64"
	"sync"
)

// FontFamily is the CSS font-family name for the handwriting font.
const FontFamily = "xkcd Script"

// FallbackFontFamily lists system substitutes for hosts without the font.
const FallbackFontFamily = `'xkcd Script', 'Comic Sans MS', 'Bradley Hand', 'Segoe Script', sans-serif`

var (
	mu         sync.Mutex
	woff       []byte
	woffBase64 string
)

// Register installs WOFF font data for embedding into rendered SVGs.
func Register(data []byte) {
	mu.Lock()
	defer mu.Unlock()
	woff = data
	woffBase64 = ""
}

// XKCDScriptWOFFBase64 returns the registered WOFF data as a base64 string
// for a data: URL, or "" when no font is installed. The encoding is computed
// once and cached.
func XKCDScriptWOFFBase64() string {
	mu.Lock()
	defer mu.Unlock()
	if woffBase64 == "" && len(woff) > 0 {
		woffBase64 = base64.StdEncoding.EncodeToString(woff)
	}
	return woffBase64
}
