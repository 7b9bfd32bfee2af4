package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/floorplan/internal/server"
	"github.com/matzehuels/floorplan/pkg/errors"
	"github.com/matzehuels/floorplan/pkg/session"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve the layout engine over HTTP for the surrounding project CRUD:
generate layouts from selections, store and load per-project layouts, and
keep capture sessions resumable between requests.

The store and session backends come from the config file; --addr overrides
the configured listen address.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.Config.Server.Addr
			}
			return c.runServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8360)")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string) error {
	layouts, err := c.newStore(ctx)
	if err != nil {
		return err
	}
	defer layouts.Close(context.WithoutCancel(ctx)) //nolint:errcheck // best-effort close

	sessions, err := c.newSessionStore(ctx)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(false)
	if err != nil {
		return err
	}
	defer runner.Close() //nolint:errcheck // best-effort close

	srv := server.New(server.Config{
		Addr:     addr,
		Store:    layouts,
		Sessions: sessions,
		Runner:   runner,
		Logger:   c.Logger,
		Quiet:    c.Config.Debounce(),
	})

	c.Logger.Info("starting server",
		"addr", addr,
		"store", c.Config.Store.Backend,
		"sessions", c.Config.Server.Sessions)

	return srv.Run(ctx)
}

// newSessionStore opens the session backend named by the config. Memory is
// the default; redis is for deployments running more than one instance.
func (c *CLI) newSessionStore(ctx context.Context) (session.Store, error) {
	switch c.Config.Server.Sessions {
	case "", "memory":
		return session.NewMemoryStore(), nil
	case "redis":
		return session.NewRedisStore(ctx, session.RedisConfig{
			Addr:     c.Config.Server.Redis.Addr,
			Password: c.Config.Server.Redis.Password,
			DB:       c.Config.Server.Redis.DB,
		})
	case "file":
		dir, err := dataDir()
		if err != nil {
			return nil, err
		}
		return session.NewFileStore(dir)
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"unknown session backend %q (must be memory, file, or redis)", c.Config.Server.Sessions)
	}
}
