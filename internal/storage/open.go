package storage

import (
	"context"
	"fmt"
	"log/slog"
)

// Drivers.
const (
	DriverJSON   = "json"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

// Options selects and configures a backend.
type Options struct {
	Driver     string
	Path       string
	SQLitePath string
	Redis      RedisOptions
}

// Open creates the Store named by opts.Driver. An empty driver means JSON.
func Open(ctx context.Context, opts Options, logger *slog.Logger) (Store, error) {
	switch opts.Driver {
	case "", DriverJSON:
		return NewJSONFile(opts.Path, logger)
	case DriverSQLite:
		return OpenSQLite(opts.SQLitePath)
	case DriverRedis:
		return OpenRedis(ctx, opts.Redis, logger)
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", opts.Driver)
	}
}
