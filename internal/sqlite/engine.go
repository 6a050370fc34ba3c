// Package sqlite implements a storage.Engine on an embedded SQLite database
// (modernc.org/sqlite, no cgo). Documents are stored as BSON blobs, one row
// per document name.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/kbase/pkg/types"
)

// DatabaseFile is the file name of the database inside the data directory.
const DatabaseFile = "kbase.db"

// MemoryDSN keeps the database in memory for the life of the connection.
const MemoryDSN = ":memory:"

// ErrNotConnected is returned by document operations before Connect.
var ErrNotConnected = errors.New("sqlite engine is not connected")

// Engine is a single SQLite connection. It is not safe for concurrent use;
// storage.Storage serializes access.
type Engine struct {
	dsn    string
	db     *sql.DB
	tables map[string]bool // collections known to exist
	now    func() time.Time
}

// NewEngine returns an unconnected engine whose database lives in dataDir.
// An empty dataDir keeps the database in memory.
func NewEngine(dataDir string) *Engine {
	dsn := MemoryDSN
	if dataDir != "" {
		dsn = filepath.Join(dataDir, DatabaseFile)
	}
	return &Engine{
		dsn:    dsn,
		tables: make(map[string]bool),
		now:    time.Now,
	}
}

// DSN returns the database path, or MemoryDSN.
func (e *Engine) DSN() string { return e.dsn }

// Connect opens the database and applies connection pragmas. The pool is
// pinned to one connection so an in-memory database survives between calls.
func (e *Engine) Connect(ctx context.Context) error {
	if e.db != nil {
		return nil
	}
	if e.dsn != MemoryDSN {
		if err := os.MkdirAll(filepath.Dir(e.dsn), 0o755); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", e.dsn)
	if err != nil {
		return fmt.Errorf("opening %s: %w", e.dsn, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("pinging %s: %w", e.dsn, err)
	}
	for _, p := range connectPragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			db.Close()
			return fmt.Errorf("applying %q: %w", p, err)
		}
	}

	e.db = db
	return nil
}

// ensureTable creates the collection table on first use.
func (e *Engine) ensureTable(ctx context.Context, table string) error {
	if e.db == nil {
		return ErrNotConnected
	}
	if table == "" {
		return types.ErrInvalidName
	}
	if e.tables[table] {
		return nil
	}
	if _, err := e.db.ExecContext(ctx, stmt(createCollection, table)); err != nil {
		return fmt.Errorf("creating table %s: %w", table, err)
	}
	e.tables[table] = true
	return nil
}

// Select returns every document in table in insertion order.
func (e *Engine) Select(ctx context.Context, table string) ([]types.Document, error) {
	if err := e.ensureTable(ctx, table); err != nil {
		return nil, err
	}
	rows, err := e.db.QueryContext(ctx, stmt(selectDocuments, table))
	if err != nil {
		return nil, fmt.Errorf("selecting %s: %w", table, err)
	}
	defer rows.Close()

	docs := []types.Document{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		doc, err := decodeDocument(raw)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Create stores doc under key, replacing any existing row.
func (e *Engine) Create(ctx context.Context, table, key string, doc types.Document) (*types.Document, error) {
	if err := e.ensureTable(ctx, table); err != nil {
		return nil, err
	}
	raw, err := encodeDocument(doc)
	if err != nil {
		return nil, err
	}
	res, err := e.db.ExecContext(ctx, stmt(upsertDocument, table), key, raw, e.timestamp())
	if err != nil {
		return nil, fmt.Errorf("inserting %s/%s: %w", table, key, err)
	}
	return written(res, doc)
}

// Update replaces the row under key. Returns nil if no row matched.
func (e *Engine) Update(ctx context.Context, table, key string, doc types.Document) (*types.Document, error) {
	if err := e.ensureTable(ctx, table); err != nil {
		return nil, err
	}
	raw, err := encodeDocument(doc)
	if err != nil {
		return nil, err
	}
	res, err := e.db.ExecContext(ctx, stmt(updateDocument, table), raw, e.timestamp(), key)
	if err != nil {
		return nil, fmt.Errorf("updating %s/%s: %w", table, key, err)
	}
	return written(res, doc)
}

// Delete removes the row under key and returns its document, or nil if no
// row matched.
func (e *Engine) Delete(ctx context.Context, table, key string) (*types.Document, error) {
	if err := e.ensureTable(ctx, table); err != nil {
		return nil, err
	}
	var raw []byte
	err := e.db.QueryRowContext(ctx, stmt(deleteDocument, table), key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("deleting %s/%s: %w", table, key, err)
	}
	doc, err := decodeDocument(raw)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// Close closes the database. Close is idempotent.
func (e *Engine) Close() error {
	if e.db == nil {
		return nil
	}
	err := e.db.Close()
	e.db = nil
	e.tables = make(map[string]bool)
	return err
}

func (e *Engine) timestamp() string {
	return e.now().UTC().Format(time.RFC3339Nano)
}

// written returns a copy of doc when res reports an affected row.
func written(res sql.Result, doc types.Document) (*types.Document, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("reading rows affected: %w", err)
	}
	if n == 0 {
		return nil, nil
	}
	out := doc.Clone()
	return &out, nil
}
