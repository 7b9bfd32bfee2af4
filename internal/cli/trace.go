package cli

import (
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/floorplan/pkg/capture"
	"github.com/matzehuels/floorplan/pkg/httputil"
)

// traceCommand creates the trace command: capture a plan drawn over a photo.
func (c *CLI) traceCommand() *cobra.Command {
	var (
		output string
		save   string
	)

	cmd := &cobra.Command{
		Use:   "trace [image]",
		Short: "Sketch a floor plan over a photo of an existing plan",
		Long: `Sketch a floor plan over a photo of an existing plan.

The image (a local file or an http(s) URL) is validated before drawing
starts; anything that is not an image is rejected outright. The photo is
only a visual backdrop: it never participates in geometry, and the capture
loop is the same as 'draw'. Exported SVGs composite the photo beneath the
rooms so the trace can be checked against the original.`,
		Example: `  floorplan trace scan.png
  floorplan trace https://example.com/plans/apartment.jpg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backdrop, err := c.loadBackdrop(cmd, args[0])
			if err != nil {
				return err
			}

			workflow := capture.NewPhotoTrace(cmd.Context())
			if err := workflow.SetBackdrop(backdrop); err != nil {
				return err
			}
			return c.runCapture(cmd.Context(), workflow, args[0], output, save)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "plan.json", "layout JSON output file")
	cmd.Flags().StringVar(&save, "save", "", "project ID to persist the layout under")

	return cmd
}

// loadBackdrop reads and validates the trace image from a file or URL. URL
// fetches go through the caching fetcher so retracing the same photo does
// not redownload it.
func (c *CLI) loadBackdrop(cmd *cobra.Command, source string) (*capture.Backdrop, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		cache, err := newCache(false)
		if err != nil {
			return nil, err
		}
		fetcher := httputil.NewFetcher(http.DefaultClient, cache, nil)
		return capture.FetchBackdrop(cmd.Context(), fetcher, source)
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return nil, err
	}
	return capture.NewBackdrop(data)
}
