package store

import (
	"context"
	"sync"
)

// MemoryStore keeps blobs in process memory. It backs the client-local
// registration variant and the unit tests.
type MemoryStore struct {
	mu    sync.Mutex
	blobs map[Key]Blob
}

// NewMemoryStore creates an empty memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[Key]Blob)}
}

type memoryTxKey struct{}

func (s *MemoryStore) inAtomic(ctx context.Context) bool {
	owner, _ := ctx.Value(memoryTxKey{}).(*MemoryStore)
	return owner == s
}

// Get implements Store
func (s *MemoryStore) Get(ctx context.Context, key Key) (Blob, error) {
	if err := ctx.Err(); err != nil {
		return Blob{}, err
	}
	if !s.inAtomic(ctx) {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	b := s.blobs[key]
	return Blob{Data: append([]byte(nil), b.Data...), Version: b.Version}, nil
}

// Put implements Store
func (s *MemoryStore) Put(ctx context.Context, key Key, data []byte, expected int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if !s.inAtomic(ctx) {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	current := s.blobs[key]
	if current.Version != expected {
		return current.Version, ErrVersionConflict
	}
	next := Blob{Data: append([]byte(nil), data...), Version: expected + 1}
	s.blobs[key] = next
	return next.Version, nil
}

// Atomic holds the store lock for the duration of fn and restores the
// previous blobs if fn fails.
func (s *MemoryStore) Atomic(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inAtomic(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make(map[Key]Blob, len(s.blobs))
	for k, v := range s.blobs {
		snapshot[k] = v
	}

	if err := fn(context.WithValue(ctx, memoryTxKey{}, s)); err != nil {
		s.blobs = snapshot
		return err
	}
	return nil
}

// Close implements Store
func (s *MemoryStore) Close() error { return nil }
