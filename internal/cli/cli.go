// Package cli implements the floorplan command-line interface.
//
// The CLI drives the room-layout engine from the terminal: it can generate a
// packed layout from room quantities, edit an existing layout with a
// mouse-driven TUI, capture a plan by free-drawing or tracing over a photo,
// render layouts to SVG/PNG/PDF/JSON, and serve the HTTP API that the
// surrounding project CRUD talks to.
//
// # Commands
//
//   - generate: Pack room selections into an initial layout
//   - edit: Move and resize rooms interactively
//   - draw: Sketch a plan from scratch, then label rooms
//   - trace: Sketch over a photo of an existing plan
//   - render: Project a saved layout into output formats
//   - inspect: Report selections, bounds, and overlaps
//   - rooms: List the room-type catalog
//   - serve: Run the HTTP API
//   - cache: Manage the local artifact cache
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/floorplan/pkg/buildinfo"
	"github.com/matzehuels/floorplan/pkg/cache"
	"github.com/matzehuels/floorplan/pkg/errors"
	"github.com/matzehuels/floorplan/pkg/pipeline"
	"github.com/matzehuels/floorplan/pkg/plan"
)

// appName is the application name used for directories and display.
const appName = "floorplan"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config Config
}

// New creates a new CLI instance with a default logger and configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
		Config: DefaultConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          appName,
		Short:        "Floorplan generates and edits room layouts",
		Long:         `Floorplan is the room-layout engine behind the renovation marketplace: it packs room selections onto a virtual canvas, captures plans drawn by hand or traced from photos, and persists the result for the owning project.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(configPath)
			if err != nil {
				return err
			}
			c.Config = cfg
			ctx := withLogger(cmd.Context(), c.Logger)
			cmd.SetContext(ctx)
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: ~/.config/floorplan/config.toml)")

	root.AddCommand(c.generateCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.drawCommand())
	root.AddCommand(c.traceCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.roomsCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	cache, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, nil, c.Logger), nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// cacheDir returns the cache directory using XDG standard (~/.cache/floorplan/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// dataDir returns the directory for file-backed layout storage
// (~/.local/share/floorplan/).
func dataDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", appName), nil
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return strings.Split(s, ",")
}

// parseSelections parses the --rooms flag, a comma-separated list of
// type:quantity pairs ("bedroom:2,kitchen:1"). A bare type means quantity 1.
func parseSelections(s string) ([]plan.RoomSelection, error) {
	if strings.TrimSpace(s) == "" {
		return nil, errors.New(errors.ErrCodeInvalidSelection, "no rooms given (try --rooms bedroom:2,kitchen:1)")
	}

	var selections []plan.RoomSelection
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, count, found := strings.Cut(part, ":")
		quantity := 1
		if found {
			n, err := strconv.Atoi(strings.TrimSpace(count))
			if err != nil {
				return nil, errors.New(errors.ErrCodeInvalidSelection, "bad quantity in %q", part)
			}
			quantity = n
		}
		selections = append(selections, plan.RoomSelection{
			Type:     plan.RoomType(strings.TrimSpace(name)),
			Quantity: quantity,
		})
	}
	return selections, nil
}
