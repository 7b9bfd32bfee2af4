package capture

import (
	"bytes"
	"context"
	"image"
	"net/http"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/matzehuels/floorplan/pkg/errors"
	"github.com/matzehuels/floorplan/pkg/httputil"
)

// Backdrop is a decoded photo to trace rooms over. The engine only sniffs
// and measures it; compositing it beneath the rectangles is the renderer's
// job and never influences geometry.
type Backdrop struct {
	Data      []byte
	MIME      string
	Width     int
	Height    int
	SourceURL string
}

// NewBackdrop validates raw upload bytes as an image. Non-image content is
// rejected outright with a user-facing error and no state is created.
func NewBackdrop(data []byte) (*Backdrop, error) {
	if len(data) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidImage, "empty upload")
	}
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return nil, errors.New(errors.ErrCodeInvalidImage, "expected an image, got %s", mime)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidImage, err, "could not decode %s image", mime)
	}
	return &Backdrop{Data: data, MIME: mime, Width: cfg.Width, Height: cfg.Height}, nil
}

// FetchBackdrop downloads an image by URL through the caching fetcher and
// validates it like NewBackdrop.
func FetchBackdrop(ctx context.Context, f *httputil.Fetcher, url string) (*Backdrop, error) {
	if err := errors.ValidateURL(url); err != nil {
		return nil, err
	}
	data, _, err := f.Fetch(ctx, url)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidImage, err, "could not fetch backdrop from %s", url)
	}
	b, err := NewBackdrop(data)
	if err != nil {
		return nil, err
	}
	b.SourceURL = url
	return b, nil
}
