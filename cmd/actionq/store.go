package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/bft-labs/actionq/internal/adapters/fs"
	"github.com/bft-labs/actionq/internal/adapters/memory"
	"github.com/bft-labs/actionq/internal/adapters/postgres"
	"github.com/bft-labs/actionq/internal/adapters/sqlite"
	"github.com/bft-labs/actionq/internal/cliconfig"
	"github.com/bft-labs/actionq/pkg/actionq"
)

// openStore returns the KV store selected by cfg.Store and a func that
// releases it.
func openStore(ctx context.Context, cfg cliconfig.Config) (actionq.KVStore, func(), error) {
	switch cfg.Store {
	case cliconfig.StoreFile:
		return fs.NewFileStore(cfg.StateDir), func() {}, nil
	case cliconfig.StoreMemory:
		return memory.NewStore(), func() {}, nil
	case cliconfig.StoreSQLite:
		s, err := sqlite.Open(ctx, filepath.Join(cfg.StateDir, sqlite.DefaultFileName))
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	case cliconfig.StorePostgres:
		s, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}
