package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_PutGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	b, err := s.Get(ctx, KeyEmployees)
	require.NoError(t, err)
	assert.Equal(t, int64(0), b.Version)
	assert.Empty(t, b.Data)

	v, err := s.Put(ctx, KeyEmployees, []byte(`[{"id":"EMP-001"}]`), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	b, err = s.Get(ctx, KeyEmployees)
	require.NoError(t, err)
	assert.Equal(t, int64(1), b.Version)
	assert.JSONEq(t, `[{"id":"EMP-001"}]`, string(b.Data))
}

func TestMemoryStore_VersionConflict(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Put(ctx, KeyPayroll, []byte(`[]`), 0)
	require.NoError(t, err)

	_, err = s.Put(ctx, KeyPayroll, []byte(`[1]`), 0)
	assert.ErrorIs(t, err, ErrVersionConflict)
}

func TestMemoryStore_AtomicRollback(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_, err := s.Put(ctx, KeyRegistrations, []byte(`["a"]`), 0)
	require.NoError(t, err)

	boom := errors.New("boom")
	err = s.Atomic(ctx, func(ctx context.Context) error {
		if _, err := s.Put(ctx, KeyRegistrations, []byte(`["b"]`), 1); err != nil {
			return err
		}
		if _, err := s.Put(ctx, KeyApprovedUsers, []byte(`["c"]`), 0); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	b, _ := s.Get(ctx, KeyRegistrations)
	assert.JSONEq(t, `["a"]`, string(b.Data))
	assert.Equal(t, int64(1), b.Version)

	b, _ = s.Get(ctx, KeyApprovedUsers)
	assert.Equal(t, int64(0), b.Version)
}

func TestMemoryStore_AtomicCommitAndNesting(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	err := s.Atomic(ctx, func(ctx context.Context) error {
		return s.Atomic(ctx, func(ctx context.Context) error {
			_, err := s.Put(ctx, KeyLeaveRequests, []byte(`[]`), 0)
			return err
		})
	})
	require.NoError(t, err)

	b, _ := s.Get(ctx, KeyLeaveRequests)
	assert.Equal(t, int64(1), b.Version)
}
