package leaderboard

import (
	"context"
	"fmt"
)

// Backend names accepted by Open.
const (
	BackendMemory   = "memory"
	BackendCSV      = "csv"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Options selects and configures a backend.
type Options struct {
	Backend string // memory | csv | sqlite | postgres; default sqlite
	Path    string // file path for csv and sqlite
	DSN     string // connection string for postgres
}

// Open returns the Store described by opts.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendCSV:
		if opts.Path == "" {
			return nil, fmt.Errorf("leaderboard: csv backend needs a path")
		}
		return NewCSVStore(opts.Path), nil
	case "", BackendSQLite:
		if opts.Path == "" {
			return nil, fmt.Errorf("leaderboard: sqlite backend needs a path")
		}
		return OpenSQLite(ctx, opts.Path)
	case BackendPostgres:
		if opts.DSN == "" {
			return nil, fmt.Errorf("leaderboard: postgres backend needs a dsn")
		}
		return OpenPostgres(ctx, opts.DSN)
	}
	return nil, fmt.Errorf("leaderboard: unknown backend %q", opts.Backend)
}
