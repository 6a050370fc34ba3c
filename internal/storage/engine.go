package storage

import (
	"context"

	"github.com/mesh-intelligence/kbase/pkg/types"
)

// Engine is one connection to an embedded document engine. Implementations
// need not be safe for concurrent use; Storage serializes all calls.
// Documents are keyed by name within a table.
type Engine interface {
	// Connect performs the engine handshake. Storage calls it once, before
	// the first document operation.
	Connect(ctx context.Context) error

	// Select returns every document in table in engine order.
	Select(ctx context.Context, table string) ([]types.Document, error)

	// Create stores doc under key, overwriting an existing document.
	// Returns the stored document, or nil if nothing was written.
	Create(ctx context.Context, table, key string, doc types.Document) (*types.Document, error)

	// Update replaces the document under key. Returns the new document, or
	// nil if key did not exist.
	Update(ctx context.Context, table, key string, doc types.Document) (*types.Document, error)

	// Delete removes the document under key. Returns the removed document,
	// or nil if key did not exist.
	Delete(ctx context.Context, table, key string) (*types.Document, error)

	// Close releases the connection.
	Close() error
}
