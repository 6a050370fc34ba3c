package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/kbase/pkg/types"
)

// fakeEngine is an in-memory Engine that counts handshakes and detects
// overlapping calls.
type fakeEngine struct {
	connects   atomic.Int32
	connectErr []error // returned by successive Connect calls
	opErr      error
	inFlight   atomic.Int32
	overlapped atomic.Bool
	closed     atomic.Bool
	delay      time.Duration

	order []string
	docs  map[string]types.Document
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{docs: make(map[string]types.Document)}
}

func (f *fakeEngine) enter() func() {
	if f.inFlight.Add(1) > 1 {
		f.overlapped.Store(true)
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return func() { f.inFlight.Add(-1) }
}

func (f *fakeEngine) Connect(ctx context.Context) error {
	defer f.enter()()
	n := int(f.connects.Add(1))
	if n <= len(f.connectErr) {
		return f.connectErr[n-1]
	}
	return nil
}

func (f *fakeEngine) Select(ctx context.Context, table string) ([]types.Document, error) {
	defer f.enter()()
	if f.opErr != nil {
		return nil, f.opErr
	}
	out := make([]types.Document, 0, len(f.order))
	for _, k := range f.order {
		out = append(out, f.docs[k].Clone())
	}
	return out, nil
}

func (f *fakeEngine) Create(ctx context.Context, table, key string, doc types.Document) (*types.Document, error) {
	defer f.enter()()
	if f.opErr != nil {
		return nil, f.opErr
	}
	if _, ok := f.docs[key]; !ok {
		f.order = append(f.order, key)
	}
	f.docs[key] = doc.Clone()
	out := doc.Clone()
	return &out, nil
}

func (f *fakeEngine) Update(ctx context.Context, table, key string, doc types.Document) (*types.Document, error) {
	defer f.enter()()
	if f.opErr != nil {
		return nil, f.opErr
	}
	if _, ok := f.docs[key]; !ok {
		return nil, nil
	}
	f.docs[key] = doc.Clone()
	out := doc.Clone()
	return &out, nil
}

func (f *fakeEngine) Delete(ctx context.Context, table, key string) (*types.Document, error) {
	defer f.enter()()
	if f.opErr != nil {
		return nil, f.opErr
	}
	doc, ok := f.docs[key]
	if !ok {
		return nil, nil
	}
	delete(f.docs, key)
	for i, k := range f.order {
		if k == key {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return &doc, nil
}

func (f *fakeEngine) Close() error {
	f.closed.Store(true)
	return nil
}

func book(t *testing.T) *types.ObjectType {
	t.Helper()
	ot := types.NewObjectType("Book")
	require.NoError(t, ot.AddAttribute("isbn", types.String, true))
	require.NoError(t, ot.AddAttribute("title", types.String, false))
	require.NoError(t, ot.AddAttribute("pages", types.Int, false))
	return ot
}

func TestStorage_ConnectOnce(t *testing.T) {
	ctx := context.Background()
	eng := newFakeEngine()
	s := New(eng)

	assert.False(t, s.Connected())
	assert.Empty(t, s.SessionID())
	assert.Equal(t, int32(0), eng.connects.Load(), "New must not connect")

	_, err := s.ListObjectTypes(ctx)
	require.NoError(t, err)
	session := s.SessionID()
	assert.NotEmpty(t, session)

	for i := 0; i < 5; i++ {
		_, err := s.CreateObjectType(ctx, book(t))
		require.NoError(t, err)
		_, err = s.ListObjectTypes(ctx)
		require.NoError(t, err)
	}

	assert.True(t, s.Connected())
	assert.Equal(t, int32(1), eng.connects.Load())
	assert.Equal(t, session, s.SessionID())
}

func TestStorage_ConnectFailureRetries(t *testing.T) {
	ctx := context.Background()
	eng := newFakeEngine()
	eng.connectErr = []error{errors.New("engine unavailable")}
	s := New(eng)

	_, err := s.ListObjectTypes(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrConnection)
	var connErr *types.ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, "connect", connErr.Op)
	assert.False(t, s.Connected())

	_, err = s.ListObjectTypes(ctx)
	require.NoError(t, err)
	assert.True(t, s.Connected())
	assert.Equal(t, int32(2), eng.connects.Load())
}

func TestStorage_CRUD(t *testing.T) {
	ctx := context.Background()
	s := New(newFakeEngine())
	ot := book(t)

	created, err := s.CreateObjectType(ctx, ot)
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.True(t, created.Equal(ot))

	list, err := s.ListObjectTypes(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Equal(ot), "round trip changed the object type")

	changed := book(t)
	require.NoError(t, changed.AddAttribute("price", types.Float, false))
	updated, err := s.UpdateObjectType(ctx, changed)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.True(t, updated.Equal(changed))

	deleted, err := s.DeleteObjectType(ctx, ot)
	require.NoError(t, err)
	require.NotNil(t, deleted)
	assert.True(t, deleted.Equal(changed), "delete returns the removed value")

	list, err = s.ListObjectTypes(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestStorage_MissingKeysReturnNil(t *testing.T) {
	ctx := context.Background()
	s := New(newFakeEngine())

	updated, err := s.UpdateObjectType(ctx, types.NewObjectType("Ghost"))
	require.NoError(t, err)
	assert.Nil(t, updated)

	deleted, err := s.DeleteObjectType(ctx, types.NewObjectType("Ghost"))
	require.NoError(t, err)
	assert.Nil(t, deleted)
}

func TestStorage_InvalidName(t *testing.T) {
	ctx := context.Background()
	eng := newFakeEngine()
	s := New(eng)

	_, err := s.CreateObjectType(ctx, nil)
	assert.ErrorIs(t, err, types.ErrInvalidName)
	_, err = s.UpdateObjectType(ctx, types.NewObjectType(""))
	assert.ErrorIs(t, err, types.ErrInvalidName)
	_, err = s.DeleteObjectType(ctx, types.NewObjectType(""))
	assert.ErrorIs(t, err, types.ErrInvalidName)
	assert.Equal(t, int32(0), eng.connects.Load(), "invalid input must not connect")
}

func TestStorage_EngineErrorsAreTyped(t *testing.T) {
	ctx := context.Background()
	eng := newFakeEngine()
	cause := errors.New("disk full")
	eng.opErr = cause
	s := New(eng)

	_, err := s.CreateObjectType(ctx, book(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrConnection)
	assert.ErrorIs(t, err, cause)
	var connErr *types.ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, "create", connErr.Op)
}

func TestStorage_RejectedWritesLeaveStoreUnchanged(t *testing.T) {
	bad := func(t *testing.T) *types.ObjectType {
		ot := types.NewObjectType("Bad")
		require.NoError(t, ot.AddAttribute("ok", types.Int, false))
		err := ot.AddAttribute("x", types.DataType(7), false)
		require.ErrorIs(t, err, types.ErrInvalidDataType)
		return ot
	}
	tests := []struct {
		name    string
		write   func(t *testing.T, ctx context.Context, s *Storage) (*types.ObjectType, error)
		wantErr error
		want    []string
	}{
		{
			name: "create after rejected attribute",
			write: func(t *testing.T, ctx context.Context, s *Storage) (*types.ObjectType, error) {
				return s.CreateObjectType(ctx, bad(t))
			},
			want: []string{"Book", "Bad"},
		},
		{
			name: "update after rejected attribute",
			write: func(t *testing.T, ctx context.Context, s *Storage) (*types.ObjectType, error) {
				ot := book(t)
				require.ErrorIs(t, ot.AddAttribute("x", types.String+1, false), types.ErrInvalidDataType)
				return s.UpdateObjectType(ctx, ot)
			},
			want: []string{"Book"},
		},
		{
			name: "nil object type",
			write: func(t *testing.T, ctx context.Context, s *Storage) (*types.ObjectType, error) {
				return s.CreateObjectType(ctx, nil)
			},
			wantErr: types.ErrInvalidName,
			want:    []string{"Book"},
		},
		{
			name: "engine failure",
			write: func(t *testing.T, ctx context.Context, s *Storage) (*types.ObjectType, error) {
				s.engine.(*fakeEngine).opErr = errors.New("disk full")
				defer func() { s.engine.(*fakeEngine).opErr = nil }()
				return s.CreateObjectType(ctx, bad(t))
			},
			wantErr: types.ErrConnection,
			want:    []string{"Book"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			eng := newFakeEngine()
			s := New(eng)
			_, err := s.CreateObjectType(ctx, book(t))
			require.NoError(t, err)

			_, err = tt.write(t, ctx, s)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}

			list, err := s.ListObjectTypes(ctx)
			require.NoError(t, err)
			names := make([]string, 0, len(list))
			for _, ot := range list {
				assert.False(t, ot.HasAttribute("x"), "%s stored a rejected attribute", ot.Name())
				names = append(names, ot.Name())
			}
			assert.Equal(t, tt.want, names)
			assert.True(t, list[0].Equal(book(t)))
		})
	}
}

func TestStorage_UndecodableWriteNeverReachesEngine(t *testing.T) {
	ctx := context.Background()
	eng := newFakeEngine()
	s := New(eng)

	var ot types.ObjectType
	err := ot.UnmarshalJSON([]byte(`{"name":"Bad","attributes":[{"name":"x","data_type":"DataType(7)"}],"id_parts":[]}`))
	require.ErrorIs(t, err, types.ErrInvalidDocument)

	_, err = s.CreateObjectType(ctx, &ot)
	assert.ErrorIs(t, err, types.ErrInvalidName)
	assert.Zero(t, eng.connects.Load())
	assert.Empty(t, eng.docs)
}

func TestStorage_CorruptDocument(t *testing.T) {
	ctx := context.Background()
	eng := newFakeEngine()
	eng.order = []string{"Bad"}
	eng.docs["Bad"] = types.Document{
		Name: "Bad",
		Attributes: []types.AttributeDocument{
			{Name: "a", DataType: "Int"},
			{Name: "a", DataType: "Int"},
		},
	}
	s := New(eng)

	_, err := s.ListObjectTypes(ctx)
	assert.ErrorIs(t, err, types.ErrInvalidDocument)
}

func TestStorage_UpdateIdempotent(t *testing.T) {
	ctx := context.Background()
	eng := newFakeEngine()
	s := New(eng)
	ot := book(t)
	_, err := s.CreateObjectType(ctx, ot)
	require.NoError(t, err)

	_, err = s.UpdateObjectType(ctx, ot)
	require.NoError(t, err)
	once, err := s.ListObjectTypes(ctx)
	require.NoError(t, err)

	_, err = s.UpdateObjectType(ctx, ot)
	require.NoError(t, err)
	twice, err := s.ListObjectTypes(ctx)
	require.NoError(t, err)

	assert.Equal(t, once, twice)
}

func TestStorage_Close(t *testing.T) {
	ctx := context.Background()
	eng := newFakeEngine()
	s := New(eng)

	_, err := s.ListObjectTypes(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Close())
	assert.True(t, eng.closed.Load())
	require.NoError(t, s.Close(), "Close is idempotent")

	_, err = s.ListObjectTypes(ctx)
	assert.ErrorIs(t, err, types.ErrStorageClosed)
	_, err = s.CreateObjectType(ctx, book(t))
	assert.ErrorIs(t, err, types.ErrStorageClosed)
}

func TestStorage_CloseBeforeConnect(t *testing.T) {
	eng := newFakeEngine()
	s := New(eng)
	require.NoError(t, s.Close())
	assert.False(t, eng.closed.Load(), "engine was never connected")
	assert.Equal(t, int32(0), eng.connects.Load())
}

func TestStorage_ConcurrentCreates(t *testing.T) {
	ctx := context.Background()
	eng := newFakeEngine()
	eng.delay = time.Millisecond
	s := New(eng)

	const n = 32
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ot := types.NewObjectType(fmt.Sprintf("Type%02d", i))
			if err := ot.AddAttribute(fmt.Sprintf("id%02d", i), types.Int, true); err != nil {
				errs <- err
				return
			}
			if _, err := s.CreateObjectType(ctx, ot); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent create: %v", err)
	}

	assert.False(t, eng.overlapped.Load(), "engine calls overlapped")
	assert.Equal(t, int32(1), eng.connects.Load())

	list, err := s.ListObjectTypes(ctx)
	require.NoError(t, err)
	require.Len(t, list, n)
	for _, ot := range list {
		var i int
		_, err := fmt.Sscanf(ot.Name(), "Type%02d", &i)
		require.NoError(t, err)
		assert.Equal(t, []string{fmt.Sprintf("id%02d", i)}, ot.IDParts())
	}
}

func TestStorage_NilLoggerKeepsDefault(t *testing.T) {
	s := New(newFakeEngine(), WithLogger(nil))
	assert.NotNil(t, s.logger)
	assert.Equal(t, types.ObjectTypesTable, s.table)
}
