package store

import (
	"context"
	"database/sql"
	"embed"
	stderrors "errors"
	"fmt"

	"github.com/dayflow/dayflow-backend/pkg/database"
)

//go:embed migrations/*.sql
var migrations embed.FS

// PostgresStore keeps each collection as a jsonb row of the collections table.
type PostgresStore struct {
	db *database.DB
}

// NewPostgresStore wraps an open database.
func NewPostgresStore(db *database.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the collections table.
func (s *PostgresStore) Migrate() error {
	return s.db.Migrate(migrations, "migrations")
}

// Get implements Store
func (s *PostgresStore) Get(ctx context.Context, key Key) (Blob, error) {
	var row struct {
		Body    string `db:"body"`
		Version int64  `db:"version"`
	}

	query := `SELECT body::text AS body, version FROM collections WHERE key = $1`
	err := s.db.Conn(ctx).GetContext(ctx, &row, query, string(key))
	if stderrors.Is(err, sql.ErrNoRows) {
		return Blob{}, nil
	}
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return Blob{}, appErr
		}
		return Blob{}, fmt.Errorf("failed to read collection %s: %w", key, err)
	}

	return Blob{Data: []byte(row.Body), Version: row.Version}, nil
}

// Put implements Store
func (s *PostgresStore) Put(ctx context.Context, key Key, data []byte, expected int64) (int64, error) {
	var (
		result sql.Result
		err    error
	)

	if expected == 0 {
		query := `
			INSERT INTO collections (key, body, version, updated_at)
			VALUES ($1, $2::jsonb, 1, NOW())
			ON CONFLICT (key) DO NOTHING
		`
		result, err = s.db.Conn(ctx).ExecContext(ctx, query, string(key), string(data))
	} else {
		query := `
			UPDATE collections
			SET body = $2::jsonb, version = version + 1, updated_at = NOW()
			WHERE key = $1 AND version = $3
		`
		result, err = s.db.Conn(ctx).ExecContext(ctx, query, string(key), string(data), expected)
	}
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return 0, appErr
		}
		return 0, fmt.Errorf("failed to write collection %s: %w", key, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to write collection %s: %w", key, err)
	}
	if rows == 0 {
		return 0, ErrVersionConflict
	}

	return expected + 1, nil
}

// Atomic runs fn in a database transaction.
func (s *PostgresStore) Atomic(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.db.WithTx(ctx, fn)
}

// Close implements Store
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
