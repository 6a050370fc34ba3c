package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/kbase/internal/storage"
	"github.com/mesh-intelligence/kbase/internal/storage/storagetest"
	"github.com/mesh-intelligence/kbase/pkg/types"
)

func TestEngineContract_Memory(t *testing.T) {
	storagetest.RunEngineContract(t, func(t *testing.T) storage.Engine {
		return NewEngine("")
	})
}

func TestEngineContract_File(t *testing.T) {
	storagetest.RunEngineContract(t, func(t *testing.T) storage.Engine {
		return NewEngine(t.TempDir())
	})
}

func TestEngine_DSN(t *testing.T) {
	assert.Equal(t, MemoryDSN, NewEngine("").DSN())
	assert.Equal(t, filepath.Join("data", DatabaseFile), NewEngine("data").DSN())
}

func TestEngine_NotConnected(t *testing.T) {
	e := NewEngine("")
	_, err := e.Select(context.Background(), storagetest.Table)
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.NoError(t, e.Close(), "Close before Connect is a no-op")
}

func TestEngine_ConnectCreatesDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	e := NewEngine(dir)
	require.NoError(t, e.Connect(context.Background()))
	defer e.Close()

	_, err := e.Select(context.Background(), storagetest.Table)
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, DatabaseFile))
	assert.NoError(t, err, "database file not created")
}

func TestEngine_PersistsAcrossConnections(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first := NewEngine(dir)
	require.NoError(t, first.Connect(ctx))
	_, err := first.Create(ctx, storagetest.Table, "Book", storagetest.Book().Document())
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second := NewEngine(dir)
	require.NoError(t, second.Connect(ctx))
	defer second.Close()
	docs, err := second.Select(ctx, storagetest.Table)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, storagetest.Book().Document(), docs[0])
}

func TestEngine_SelectOrderIsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	e := NewEngine("")
	require.NoError(t, e.Connect(ctx))
	defer e.Close()

	names := []string{"Zebra", "Apple", "Mango"}
	for _, n := range names {
		_, err := e.Create(ctx, storagetest.Table, n, types.NewObjectType(n).Document())
		require.NoError(t, err)
	}
	// Overwriting keeps the original position.
	_, err := e.Create(ctx, storagetest.Table, "Zebra", types.NewObjectType("Zebra").Document())
	require.NoError(t, err)

	docs, err := e.Select(ctx, storagetest.Table)
	require.NoError(t, err)
	got := make([]string, 0, len(docs))
	for _, d := range docs {
		got = append(got, d.Name)
	}
	assert.Equal(t, names, got)
}

func TestEngine_TablesAreIndependent(t *testing.T) {
	ctx := context.Background()
	e := NewEngine("")
	require.NoError(t, e.Connect(ctx))
	defer e.Close()

	_, err := e.Create(ctx, "first", "Book", storagetest.Book().Document())
	require.NoError(t, err)

	docs, err := e.Select(ctx, `second "quoted"`)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestEngine_UpdatedAt(t *testing.T) {
	ctx := context.Background()
	e := NewEngine("")
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return fixed }
	require.NoError(t, e.Connect(ctx))
	defer e.Close()

	_, err := e.Create(ctx, storagetest.Table, "Book", storagetest.Book().Document())
	require.NoError(t, err)

	var updatedAt string
	err = e.db.QueryRowContext(ctx, stmt(`SELECT updated_at FROM %s WHERE name = 'Book'`, storagetest.Table)).Scan(&updatedAt)
	require.NoError(t, err)
	assert.Equal(t, fixed.Format(time.RFC3339Nano), updatedAt)
}

func TestDecodeDocument_Corrupt(t *testing.T) {
	_, err := decodeDocument([]byte("not bson"))
	assert.Error(t, err)
}
