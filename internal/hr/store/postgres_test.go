package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dayflow/dayflow-backend/pkg/database"
	"github.com/dayflow/dayflow-backend/pkg/testutil"
)

const (
	selectCollection = `SELECT body::text AS body, version FROM collections WHERE key = $1`
	insertCollection = `INSERT INTO collections (key, body, version, updated_at)`
	updateCollection = `UPDATE collections`
)

func newMockStore(t *testing.T) (*PostgresStore, *testutil.MockDB) {
	t.Helper()
	mockDB := testutil.NewMockDB(t)
	t.Cleanup(func() { mockDB.Close() })
	return NewPostgresStore(database.Wrap(mockDB.DB, testutil.NewTestLogger())), mockDB
}

// ============================================================================
// Get
// ============================================================================

func TestPostgresStore_Get(t *testing.T) {
	st, mockDB := newMockStore(t)

	mockDB.ExpectQuery(selectCollection).
		WithArgs("employees").
		WillReturnRows(testutil.MockRows("body", "version").AddRow(`[{"id":"EMP-001"}]`, 3))

	b, err := st.Get(context.Background(), KeyEmployees)
	require.NoError(t, err)
	assert.Equal(t, int64(3), b.Version)
	assert.JSONEq(t, `[{"id":"EMP-001"}]`, string(b.Data))
	mockDB.ExpectationsWereMet(t)
}

func TestPostgresStore_GetMissing(t *testing.T) {
	st, mockDB := newMockStore(t)

	mockDB.ExpectQuery(selectCollection).
		WithArgs("payroll").
		WillReturnError(sql.ErrNoRows)

	b, err := st.Get(context.Background(), KeyPayroll)
	require.NoError(t, err)
	assert.Equal(t, int64(0), b.Version)
	assert.Empty(t, b.Data)
	mockDB.ExpectationsWereMet(t)
}

func TestPostgresStore_GetError(t *testing.T) {
	st, mockDB := newMockStore(t)

	mockDB.ExpectQuery(selectCollection).
		WithArgs("payroll").
		WillReturnError(errors.New("connection reset"))

	_, err := st.Get(context.Background(), KeyPayroll)
	assert.Error(t, err)
}

// ============================================================================
// Put
// ============================================================================

func TestPostgresStore_PutInsert(t *testing.T) {
	st, mockDB := newMockStore(t)

	mockDB.ExpectExec(insertCollection).
		WithArgs("attendance", testutil.JSONArg{Expected: `[]`}).
		WillReturnResult(sqlmock.NewResult(0, 1))

	v, err := st.Put(context.Background(), KeyAttendance, []byte(`[]`), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
	mockDB.ExpectationsWereMet(t)
}

func TestPostgresStore_PutUpdate(t *testing.T) {
	st, mockDB := newMockStore(t)

	mockDB.ExpectExec(updateCollection).
		WithArgs("attendance", `[{"id":"ATT-1"}]`, int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	v, err := st.Put(context.Background(), KeyAttendance, []byte(`[{"id":"ATT-1"}]`), 4)
	require.NoError(t, err)
	assert.Equal(t, int64(5), v)
	mockDB.ExpectationsWereMet(t)
}

func TestPostgresStore_PutStaleVersion(t *testing.T) {
	st, mockDB := newMockStore(t)

	mockDB.ExpectExec(updateCollection).
		WithArgs("attendance", `[]`, int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := st.Put(context.Background(), KeyAttendance, []byte(`[]`), 2)
	assert.ErrorIs(t, err, ErrVersionConflict)
	mockDB.ExpectationsWereMet(t)
}

// ============================================================================
// Atomic
// ============================================================================

func TestPostgresStore_AtomicCommits(t *testing.T) {
	st, mockDB := newMockStore(t)

	mockDB.ExpectBegin()
	mockDB.ExpectExec(insertCollection).
		WithArgs("approved_users", `[]`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mockDB.ExpectExec(updateCollection).
		WithArgs("pending_registrations", `[]`, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mockDB.ExpectCommit()

	err := st.Atomic(context.Background(), func(ctx context.Context) error {
		if _, err := st.Put(ctx, KeyApprovedUsers, []byte(`[]`), 0); err != nil {
			return err
		}
		_, err := st.Put(ctx, KeyRegistrations, []byte(`[]`), 1)
		return err
	})
	require.NoError(t, err)
	mockDB.ExpectationsWereMet(t)
}

func TestPostgresStore_AtomicRollsBack(t *testing.T) {
	st, mockDB := newMockStore(t)

	mockDB.ExpectBegin()
	mockDB.ExpectExec(insertCollection).
		WithArgs("approved_users", `[]`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mockDB.ExpectExec(updateCollection).
		WithArgs("pending_registrations", `[]`, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mockDB.ExpectRollback()

	err := st.Atomic(context.Background(), func(ctx context.Context) error {
		if _, err := st.Put(ctx, KeyApprovedUsers, []byte(`[]`), 0); err != nil {
			return err
		}
		_, err := st.Put(ctx, KeyRegistrations, []byte(`[]`), 1)
		return err
	})
	assert.ErrorIs(t, err, ErrVersionConflict)
	mockDB.ExpectationsWereMet(t)
}
