// Package memdb implements a storage.Engine on hashicorp/go-memdb. The data
// lives for the life of the connection only.
package memdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-memdb"

	"github.com/mesh-intelligence/kbase/pkg/types"
)

// idIndex is the primary index every memdb table must define.
const idIndex = "id"

// ErrNotConnected is returned by document operations before Connect.
var ErrNotConnected = errors.New("memdb engine is not connected")

// Engine is an in-memory document engine. Tables must be declared up front
// because go-memdb schemas are fixed at creation.
type Engine struct {
	tables []string
	db     *memdb.MemDB
}

// NewEngine returns an unconnected engine holding the given tables. With no
// tables it holds types.ObjectTypesTable.
func NewEngine(tables ...string) *Engine {
	if len(tables) == 0 {
		tables = []string{types.ObjectTypesTable}
	}
	return &Engine{tables: tables}
}

// Schema returns the memdb schema for the given tables: documents are
// indexed uniquely by Name.
func Schema(tables ...string) *memdb.DBSchema {
	schema := &memdb.DBSchema{Tables: make(map[string]*memdb.TableSchema, len(tables))}
	for _, name := range tables {
		schema.Tables[name] = &memdb.TableSchema{
			Name: name,
			Indexes: map[string]*memdb.IndexSchema{
				idIndex: {
					Name:    idIndex,
					Unique:  true,
					Indexer: &memdb.StringFieldIndex{Field: "Name"},
				},
			},
		}
	}
	return schema
}

// Connect creates the database.
func (e *Engine) Connect(ctx context.Context) error {
	if e.db != nil {
		return nil
	}
	db, err := memdb.NewMemDB(Schema(e.tables...))
	if err != nil {
		return fmt.Errorf("creating memdb: %w", err)
	}
	e.db = db
	return nil
}

// Select returns every document in table ordered by name.
func (e *Engine) Select(ctx context.Context, table string) ([]types.Document, error) {
	if e.db == nil {
		return nil, ErrNotConnected
	}
	txn := e.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(table, idIndex)
	if err != nil {
		return nil, fmt.Errorf("selecting %s: %w", table, err)
	}
	docs := []types.Document{}
	for obj := it.Next(); obj != nil; obj = it.Next() {
		docs = append(docs, obj.(*types.Document).Clone())
	}
	return docs, nil
}

// Create stores doc under key, replacing any existing document.
func (e *Engine) Create(ctx context.Context, table, key string, doc types.Document) (*types.Document, error) {
	if e.db == nil {
		return nil, ErrNotConnected
	}
	txn := e.db.Txn(true)
	defer txn.Abort()

	if err := insert(txn, table, key, doc); err != nil {
		return nil, err
	}
	txn.Commit()
	out := doc.Clone()
	return &out, nil
}

// Update replaces the document under key. Returns nil if key is absent.
func (e *Engine) Update(ctx context.Context, table, key string, doc types.Document) (*types.Document, error) {
	if e.db == nil {
		return nil, ErrNotConnected
	}
	txn := e.db.Txn(true)
	defer txn.Abort()

	existing, err := txn.First(table, idIndex, key)
	if err != nil {
		return nil, fmt.Errorf("looking up %s/%s: %w", table, key, err)
	}
	if existing == nil {
		return nil, nil
	}
	if err := insert(txn, table, key, doc); err != nil {
		return nil, err
	}
	txn.Commit()
	out := doc.Clone()
	return &out, nil
}

// Delete removes the document under key and returns it, or nil if key is
// absent.
func (e *Engine) Delete(ctx context.Context, table, key string) (*types.Document, error) {
	if e.db == nil {
		return nil, ErrNotConnected
	}
	txn := e.db.Txn(true)
	defer txn.Abort()

	existing, err := txn.First(table, idIndex, key)
	if err != nil {
		return nil, fmt.Errorf("looking up %s/%s: %w", table, key, err)
	}
	if existing == nil {
		return nil, nil
	}
	if err := txn.Delete(table, existing); err != nil {
		return nil, fmt.Errorf("deleting %s/%s: %w", table, key, err)
	}
	txn.Commit()
	out := existing.(*types.Document).Clone()
	return &out, nil
}

// Close drops the database.
func (e *Engine) Close() error {
	e.db = nil
	return nil
}

// insert stores a private copy of doc keyed by key.
func insert(txn *memdb.Txn, table, key string, doc types.Document) error {
	stored := doc.Clone()
	stored.Name = key
	if err := txn.Insert(table, &stored); err != nil {
		return fmt.Errorf("inserting %s/%s: %w", table, key, err)
	}
	return nil
}
