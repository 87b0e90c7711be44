package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dayflow/dayflow-backend/pkg/testutil"
)

func TestPostgresStore_Integration(t *testing.T) {
	testutil.SkipIfShort(t)

	suite := testutil.RequireIntegrationSuite(t)
	st := NewPostgresStore(suite.DB)
	require.NoError(t, st.Migrate())

	ctx := context.Background()
	key := Key("integration_" + t.Name())

	v, err := st.Put(ctx, key, []byte(`[{"id":"EMP-001"}]`), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	_, err = st.Put(ctx, key, []byte(`[]`), 0)
	assert.ErrorIs(t, err, ErrVersionConflict)

	boom := errors.New("boom")
	err = st.Atomic(ctx, func(ctx context.Context) error {
		if _, err := st.Put(ctx, key, []byte(`[{"id":"EMP-002"}]`), 1); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	b, err := st.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(1), b.Version)
	assert.JSONEq(t, `[{"id":"EMP-001"}]`, string(b.Data))
}
