// Package storagetest has fixtures and a contract suite that every
// storage.Engine implementation must pass.
package storagetest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/kbase/internal/storage"
	"github.com/mesh-intelligence/kbase/pkg/types"
)

// Table is the collection the suite writes to.
const Table = types.ObjectTypesTable

// Book returns the object type used in most fixtures.
func Book() *types.ObjectType {
	ot := types.NewObjectType("Book")
	mustAdd(ot, "isbn", types.String, true)
	mustAdd(ot, "title", types.String, false)
	mustAdd(ot, "pages", types.Int, false)
	mustAdd(ot, "price", types.Float, false)
	mustAdd(ot, "in_print", types.Bool, false)
	return ot
}

// Author returns an object type with a composite identity.
func Author() *types.ObjectType {
	ot := types.NewObjectType("Author")
	mustAdd(ot, "first", types.String, true)
	mustAdd(ot, "last", types.String, true)
	mustAdd(ot, "born", types.Int, false)
	return ot
}

func mustAdd(ot *types.ObjectType, name string, dt types.DataType, id bool) {
	if err := ot.AddAttribute(name, dt, id); err != nil {
		panic(err)
	}
}

// NewEngine returns a fresh, unconnected engine for one test.
type NewEngine func(t *testing.T) storage.Engine

// RunEngineContract exercises an Engine directly and through a Storage.
func RunEngineContract(t *testing.T, newEngine NewEngine) {
	t.Run("CreateSelect", func(t *testing.T) { testCreateSelect(t, newEngine(t)) })
	t.Run("CreateOverwrites", func(t *testing.T) { testCreateOverwrites(t, newEngine(t)) })
	t.Run("UpdateMissing", func(t *testing.T) { testUpdateMissing(t, newEngine(t)) })
	t.Run("UpdateReplaces", func(t *testing.T) { testUpdateReplaces(t, newEngine(t)) })
	t.Run("DeleteReturnsRemoved", func(t *testing.T) { testDelete(t, newEngine(t)) })
	t.Run("EmptyDocument", func(t *testing.T) { testEmptyDocument(t, newEngine(t)) })
	t.Run("StorageRoundTrip", func(t *testing.T) { testStorageRoundTrip(t, newEngine(t)) })
	t.Run("StorageConcurrentCreates", func(t *testing.T) { testStorageConcurrent(t, newEngine(t)) })
}

func connect(t *testing.T, e storage.Engine) context.Context {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, e.Connect(ctx))
	t.Cleanup(func() { _ = e.Close() })
	return ctx
}

func testCreateSelect(t *testing.T, e storage.Engine) {
	ctx := connect(t, e)

	docs, err := e.Select(ctx, Table)
	require.NoError(t, err)
	assert.Empty(t, docs)

	book := Book().Document()
	got, err := e.Create(ctx, Table, "Book", book)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, book, *got)

	author := Author().Document()
	_, err = e.Create(ctx, Table, "Author", author)
	require.NoError(t, err)

	docs, err = e.Select(ctx, Table)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.ElementsMatch(t, []types.Document{book, author}, docs)
}

func testCreateOverwrites(t *testing.T, e storage.Engine) {
	ctx := connect(t, e)

	_, err := e.Create(ctx, Table, "Book", Book().Document())
	require.NoError(t, err)

	replacement := types.NewObjectType("Book")
	mustAdd(replacement, "code", types.Int, true)
	got, err := e.Create(ctx, Table, "Book", replacement.Document())
	require.NoError(t, err)
	require.NotNil(t, got)

	docs, err := e.Select(ctx, Table)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, replacement.Document(), docs[0])
}

func testUpdateMissing(t *testing.T, e storage.Engine) {
	ctx := connect(t, e)

	got, err := e.Update(ctx, Table, "Book", Book().Document())
	require.NoError(t, err)
	assert.Nil(t, got)

	docs, err := e.Select(ctx, Table)
	require.NoError(t, err)
	assert.Empty(t, docs, "update must not create")
}

func testUpdateReplaces(t *testing.T, e storage.Engine) {
	ctx := connect(t, e)

	_, err := e.Create(ctx, Table, "Book", Book().Document())
	require.NoError(t, err)

	changed := Book()
	mustAdd(changed, "edition", types.Int, true)
	got, err := e.Update(ctx, Table, "Book", changed.Document())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, changed.Document(), *got)

	docs, err := e.Select(ctx, Table)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, changed.Document(), docs[0])
}

func testDelete(t *testing.T, e storage.Engine) {
	ctx := connect(t, e)

	got, err := e.Delete(ctx, Table, "Book")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = e.Create(ctx, Table, "Book", Book().Document())
	require.NoError(t, err)
	_, err = e.Create(ctx, Table, "Author", Author().Document())
	require.NoError(t, err)

	got, err = e.Delete(ctx, Table, "Book")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, Book().Document(), *got)

	docs, err := e.Select(ctx, Table)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Author", docs[0].Name)
}

func testEmptyDocument(t *testing.T, e storage.Engine) {
	ctx := connect(t, e)

	empty := types.NewObjectType("Empty")
	_, err := e.Create(ctx, Table, "Empty", empty.Document())
	require.NoError(t, err)

	docs, err := e.Select(ctx, Table)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	back, err := types.ObjectTypeFromDocument(docs[0])
	require.NoError(t, err)
	assert.True(t, back.Equal(empty))
}

func testStorageRoundTrip(t *testing.T, e storage.Engine) {
	ctx := context.Background()
	s := storage.New(e)
	t.Cleanup(func() { _ = s.Close() })

	book := Book()
	created, err := s.CreateObjectType(ctx, book)
	require.NoError(t, err)
	require.NotNil(t, created)

	list, err := s.ListObjectTypes(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Equal(book), "got %v, want %v", list[0].Document(), book.Document())
	assert.Equal(t, book.Attributes(), list[0].Attributes())
	assert.Equal(t, book.IDParts(), list[0].IDParts())

	deleted, err := s.DeleteObjectType(ctx, book)
	require.NoError(t, err)
	require.NotNil(t, deleted)

	list, err = s.ListObjectTypes(ctx)
	require.NoError(t, err)
	for _, ot := range list {
		assert.NotEqual(t, "Book", ot.Name())
	}
}

func testStorageConcurrent(t *testing.T, e storage.Engine) {
	ctx := context.Background()
	s := storage.New(e)
	t.Cleanup(func() { _ = s.Close() })

	const n = 24
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ot := types.NewObjectType(fmt.Sprintf("T%02d", i))
			mustAdd(ot, fmt.Sprintf("k%02d", i), types.String, true)
			mustAdd(ot, "v", types.Float, false)
			_, err := s.CreateObjectType(ctx, ot)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	list, err := s.ListObjectTypes(ctx)
	require.NoError(t, err)
	require.Len(t, list, n)
	seen := make(map[string]bool, n)
	for _, ot := range list {
		var i int
		_, err := fmt.Sscanf(ot.Name(), "T%02d", &i)
		require.NoError(t, err)
		assert.Equal(t, []string{fmt.Sprintf("k%02d", i)}, ot.IDParts())
		seen[ot.Name()] = true
	}
	assert.Len(t, seen, n)
}
