package storage

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/kbase/pkg/types"
)

// Storage implements types.Store over a single Engine connection.
// The connection starts disconnected and is established lazily, exactly once
// on success, under the same lock that serializes operations. A failed
// connect leaves the Storage disconnected so the next call retries.
type Storage struct {
	mu        sync.Mutex
	engine    Engine
	connected bool
	closed    bool
	sessionID string
	table     string
	logger    *zap.SugaredLogger
}

// Option configures a Storage.
type Option func(*Storage)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(s *Storage) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New returns a disconnected Storage that owns engine.
func New(engine Engine, opts ...Option) *Storage {
	s := &Storage{
		engine: engine,
		table:  types.ObjectTypesTable,
		logger: zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ types.Store = (*Storage)(nil)

// Connected reports whether the engine handshake has completed.
func (s *Storage) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// SessionID returns the identifier minted when the connection was
// established, or "" while disconnected.
func (s *Storage) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

// connectLocked establishes the engine connection if needed.
// The caller must hold s.mu.
func (s *Storage) connectLocked(ctx context.Context) error {
	if s.closed {
		return types.ErrStorageClosed
	}
	if s.connected {
		return nil
	}
	if err := s.engine.Connect(ctx); err != nil {
		s.logger.Errorw("connect failed", "table", s.table, "error", err)
		return &types.ConnectionError{Op: "connect", Err: err}
	}
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	s.sessionID = id.String()
	s.connected = true
	s.logger.Infow("connected", "table", s.table, "session", s.sessionID)
	return nil
}

// ListObjectTypes returns every stored object type in engine order.
func (s *Storage) ListObjectTypes(ctx context.Context) ([]*types.ObjectType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.connectLocked(ctx); err != nil {
		return nil, err
	}
	docs, err := s.engine.Select(ctx, s.table)
	if err != nil {
		return nil, s.engineError("list", "", err)
	}
	result := make([]*types.ObjectType, 0, len(docs))
	for _, doc := range docs {
		ot, err := types.ObjectTypeFromDocument(doc)
		if err != nil {
			s.logger.Errorw("decode failed", "op", "list", "name", doc.Name, "error", err)
			return nil, err
		}
		result = append(result, ot)
	}
	s.logger.Debugw("listed object types", "count", len(result))
	return result, nil
}

// CreateObjectType stores ot under its name, overwriting any existing
// document. Returns the stored value, or nil if the engine wrote nothing.
func (s *Storage) CreateObjectType(ctx context.Context, ot *types.ObjectType) (*types.ObjectType, error) {
	return s.write(ctx, "create", ot, s.engine.Create)
}

// UpdateObjectType replaces the document stored under ot's name.
// Returns the new value, or nil if the name was not stored.
func (s *Storage) UpdateObjectType(ctx context.Context, ot *types.ObjectType) (*types.ObjectType, error) {
	return s.write(ctx, "update", ot, s.engine.Update)
}

// DeleteObjectType removes the document stored under ot's name.
// Returns the removed value, or nil if the name was not stored.
func (s *Storage) DeleteObjectType(ctx context.Context, ot *types.ObjectType) (*types.ObjectType, error) {
	if ot == nil || ot.Name() == "" {
		return nil, types.ErrInvalidName
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.connectLocked(ctx); err != nil {
		return nil, err
	}
	doc, err := s.engine.Delete(ctx, s.table, ot.Name())
	if err != nil {
		return nil, s.engineError("delete", ot.Name(), err)
	}
	return s.decode("delete", ot.Name(), doc)
}

type writeFunc func(ctx context.Context, table, key string, doc types.Document) (*types.Document, error)

func (s *Storage) write(ctx context.Context, op string, ot *types.ObjectType, fn writeFunc) (*types.ObjectType, error) {
	if ot == nil || ot.Name() == "" {
		return nil, types.ErrInvalidName
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	// Only documents that restore cleanly reach the engine.
	doc := ot.Document()
	if _, err := types.ObjectTypeFromDocument(doc); err != nil {
		s.logger.Errorw("rejected write", "op", op, "name", ot.Name(), "error", err)
		return nil, err
	}

	if err := s.connectLocked(ctx); err != nil {
		return nil, err
	}
	stored, err := fn(ctx, s.table, ot.Name(), doc)
	if err != nil {
		return nil, s.engineError(op, ot.Name(), err)
	}
	return s.decode(op, ot.Name(), stored)
}

// decode converts an engine result to an object type. A nil document is the
// not-found case and yields nil.
func (s *Storage) decode(op, name string, doc *types.Document) (*types.ObjectType, error) {
	if doc == nil {
		s.logger.Debugw("no document", "op", op, "name", name)
		return nil, nil
	}
	ot, err := types.ObjectTypeFromDocument(*doc)
	if err != nil {
		s.logger.Errorw("decode failed", "op", op, "name", name, "error", err)
		return nil, err
	}
	s.logger.Debugw("object type stored", "op", op, "name", name)
	return ot, nil
}

func (s *Storage) engineError(op, name string, err error) error {
	s.logger.Errorw("engine error", "op", op, "name", name, "error", err)
	return &types.ConnectionError{Op: op, Err: err}
}

// Close releases the engine connection. It is meant for process shutdown;
// every later operation returns ErrStorageClosed. Close is idempotent.
func (s *Storage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if !s.connected {
		return nil
	}
	s.connected = false
	s.logger.Infow("closing connection", "session", s.sessionID)
	return s.engine.Close()
}
