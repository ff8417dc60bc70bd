// Package factory builds the storage backend selected by configuration.
package factory

import (
	"context"
	"fmt"

	"github.com/recovera/timeline-service/internal/config"
	"github.com/recovera/timeline-service/internal/store"
	"github.com/recovera/timeline-service/internal/store/diskv"
	"github.com/recovera/timeline-service/internal/store/memory"
	"github.com/recovera/timeline-service/internal/store/postgres"
	"github.com/recovera/timeline-service/internal/store/sqlite"
)

// NewStore opens the configured backend and runs any schema migration it
// needs. The returned close function is a no-op for backends without a
// connection to release.
func NewStore(ctx context.Context, cfg *config.Config) (store.Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.StoreDriver {
	case "postgres":
		db, err := postgres.Open(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("postgres schema: %w", err)
		}
		return postgres.NewWithDB(db), db.Close, nil
	case "sqlite":
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite: %w", err)
		}
		if err := sqlite.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("sqlite schema: %w", err)
		}
		return sqlite.NewWithDB(db), db.Close, nil
	case "diskv":
		return diskv.New(cfg.DiskvPath), noop, nil
	case "memory":
		return memory.New(), noop, nil
	default:
		return nil, nil, fmt.Errorf("unsupported store driver: %s", cfg.StoreDriver)
	}
}
