package types

import "context"

// ObjectTypesTable is the collection that holds object type documents.
const ObjectTypesTable = "_object_type"

// Store persists object types, one document per object type name. Every
// method is safe for concurrent use. A nil object type with a nil error
// means the key did not exist.
type Store interface {
	// ListObjectTypes returns every stored object type in engine order.
	ListObjectTypes(ctx context.Context) ([]*ObjectType, error)

	// CreateObjectType stores ot under its name, overwriting any existing
	// document with that name. Returns the stored value.
	CreateObjectType(ctx context.Context, ot *ObjectType) (*ObjectType, error)

	// UpdateObjectType replaces the document stored under ot's name.
	// Returns the new value, or nil if no document had that name.
	UpdateObjectType(ctx context.Context, ot *ObjectType) (*ObjectType, error)

	// DeleteObjectType removes the document stored under ot's name.
	// Returns the removed value, or nil if no document had that name.
	DeleteObjectType(ctx context.Context, ot *ObjectType) (*ObjectType, error)

	// Close releases the engine connection. Operations after Close return
	// ErrStorageClosed.
	Close() error
}
