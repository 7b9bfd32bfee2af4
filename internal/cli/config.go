package cli

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/floorplan/pkg/errors"
	"github.com/matzehuels/floorplan/pkg/notify"
	"github.com/matzehuels/floorplan/pkg/plan/generate"
)

// Config is the TOML configuration shared by the CLI and the server. Flags
// override config values; config values override the defaults below.
type Config struct {
	// Seed drives the generator's width jitter. The same selections with
	// the same seed always produce the same geometry.
	Seed uint64 `toml:"seed"`

	// NoJitter disables width variation entirely.
	NoJitter bool `toml:"no_jitter"`

	// DebounceMS is the quiet window, in milliseconds, before edited
	// layouts are pushed to the store.
	DebounceMS int `toml:"debounce_ms"`

	Store  StoreConfig  `toml:"store"`
	Server ServerConfig `toml:"server"`
}

// StoreConfig selects the layout persistence backend.
type StoreConfig struct {
	// Backend is one of "file" (default), "memory", or "mongo".
	Backend string `toml:"backend"`

	// Dir overrides the data directory for the file backend.
	Dir string `toml:"dir"`

	Mongo MongoConfig `toml:"mongo"`
}

// MongoConfig configures the mongo layout store.
type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// ServerConfig configures the serve command.
type ServerConfig struct {
	Addr string `toml:"addr"`

	// Sessions is one of "memory" (default) or "redis".
	Sessions string      `toml:"sessions"`
	Redis    RedisConfig `toml:"redis"`
}

// RedisConfig configures the redis session store.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		Seed:       generate.DefaultSeed,
		DebounceMS: int(notify.DefaultQuiet / time.Millisecond),
		Store: StoreConfig{
			Backend: "file",
			Mongo: MongoConfig{
				URI:        "mongodb://localhost:27017",
				Database:   appName,
				Collection: "layouts",
			},
		},
		Server: ServerConfig{
			Addr:     ":8360",
			Sessions: "memory",
			Redis:    RedisConfig{Addr: "localhost:6379"},
		},
	}
}

// Debounce returns the configured quiet window as a duration.
func (c Config) Debounce() time.Duration {
	if c.DebounceMS <= 0 {
		return notify.DefaultQuiet
	}
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// LoadConfig reads the TOML config at path, or the default location when
// path is empty. A missing default file is not an error; an explicitly named
// file must exist.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		dir, err := configDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(dir, "config.toml")
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if explicit {
			return cfg, errors.New(errors.ErrCodeInvalidPath, "config file not found: %s", path)
		}
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config %s", path)
	}
	return cfg, nil
}

// configDir returns the config directory using XDG standard
// (~/.config/floorplan/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}
