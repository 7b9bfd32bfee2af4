package cli

import (
	"context"

	"github.com/matzehuels/floorplan/pkg/errors"
	"github.com/matzehuels/floorplan/pkg/store"
)

// newStore opens the layout store selected by the config. The file backend
// is the CLI default; mongo is for deployments sharing the API's database.
func (c *CLI) newStore(ctx context.Context) (store.Store, error) {
	switch c.Config.Store.Backend {
	case "", "file":
		dir := c.Config.Store.Dir
		if dir == "" {
			var err error
			if dir, err = dataDir(); err != nil {
				return nil, errors.Wrap(errors.ErrCodeStore, err, "resolve data dir")
			}
		}
		return store.NewFileStore(dir)
	case "memory":
		return store.NewMemoryStore(), nil
	case "mongo":
		return store.NewMongoStore(ctx, store.MongoConfig{
			URI:        c.Config.Store.Mongo.URI,
			Database:   c.Config.Store.Mongo.Database,
			Collection: c.Config.Store.Mongo.Collection,
		})
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"unknown store backend %q (must be file, memory, or mongo)", c.Config.Store.Backend)
	}
}
