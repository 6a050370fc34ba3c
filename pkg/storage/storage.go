// Package storage is the public entry point for opening a kbase Store.
// It selects an embedded engine from a Config while keeping the engines and
// the access layer internal.
package storage

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/kbase/internal/memdb"
	"github.com/mesh-intelligence/kbase/internal/sqlite"
	"github.com/mesh-intelligence/kbase/internal/storage"
	"github.com/mesh-intelligence/kbase/pkg/types"
)

// Open returns a Store over the engine named by cfg.Backend. The engine is
// not connected until the first operation. A nil logger discards output.
//
// Example:
//
//	store, err := storage.Open(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".kbase-db",
//	}, nil)
//	defer store.Close()
func Open(cfg types.Config, logger *zap.SugaredLogger) (types.Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var engine storage.Engine
	switch cfg.Backend {
	case types.BackendSQLite:
		engine = sqlite.NewEngine(cfg.DataDir)
	case types.BackendMemory:
		engine = memdb.NewEngine()
	default:
		return nil, types.ErrBackendUnknown
	}

	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return storage.New(engine, storage.WithLogger(logger.With("backend", cfg.Backend))), nil
}
