package memdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/kbase/internal/storage"
	"github.com/mesh-intelligence/kbase/internal/storage/storagetest"
	"github.com/mesh-intelligence/kbase/pkg/types"
)

func TestEngineContract(t *testing.T) {
	storagetest.RunEngineContract(t, func(t *testing.T) storage.Engine {
		return NewEngine()
	})
}

func TestEngine_NotConnected(t *testing.T) {
	e := NewEngine()
	ctx := context.Background()

	_, err := e.Select(ctx, storagetest.Table)
	assert.ErrorIs(t, err, ErrNotConnected)
	_, err = e.Create(ctx, storagetest.Table, "Book", storagetest.Book().Document())
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestEngine_UnknownTable(t *testing.T) {
	ctx := context.Background()
	e := NewEngine()
	require.NoError(t, e.Connect(ctx))

	_, err := e.Select(ctx, "missing")
	assert.Error(t, err)
}

func TestEngine_SelectOrderedByName(t *testing.T) {
	ctx := context.Background()
	e := NewEngine()
	require.NoError(t, e.Connect(ctx))

	for _, n := range []string{"Zebra", "Apple", "Mango"} {
		_, err := e.Create(ctx, storagetest.Table, n, types.NewObjectType(n).Document())
		require.NoError(t, err)
	}
	docs, err := e.Select(ctx, storagetest.Table)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "Apple", docs[0].Name)
	assert.Equal(t, "Mango", docs[1].Name)
	assert.Equal(t, "Zebra", docs[2].Name)
}

func TestEngine_StoredCopyIsPrivate(t *testing.T) {
	ctx := context.Background()
	e := NewEngine()
	require.NoError(t, e.Connect(ctx))

	doc := storagetest.Book().Document()
	_, err := e.Create(ctx, storagetest.Table, "Book", doc)
	require.NoError(t, err)
	doc.Attributes[0].Name = "mutated"

	docs, err := e.Select(ctx, storagetest.Table)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "isbn", docs[0].Attributes[0].Name)
}

func TestEngine_CloseDropsData(t *testing.T) {
	ctx := context.Background()
	e := NewEngine()
	require.NoError(t, e.Connect(ctx))
	_, err := e.Create(ctx, storagetest.Table, "Book", storagetest.Book().Document())
	require.NoError(t, err)
	require.NoError(t, e.Close())

	require.NoError(t, e.Connect(ctx))
	docs, err := e.Select(ctx, storagetest.Table)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestSchema(t *testing.T) {
	schema := Schema("a", "b")
	require.NoError(t, schema.Validate())
	assert.Len(t, schema.Tables, 2)
}
