// Package testutil holds the shared test harness: a throwaway PostgreSQL,
// sqlmock and publisher mocks, and HTTP request helpers.
package testutil

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/dayflow/dayflow-backend/pkg/database"
	"github.com/dayflow/dayflow-backend/pkg/logger"
)

// PostgresURLEnv names an existing database to test against instead of
// starting a container
const PostgresURLEnv = "DAYFLOW_TEST_DATABASE_URL"

const postgresImage = "postgres:15-alpine"

var (
	pgOnce sync.Once
	pgDSN  string
	pgErr  error
)

// IntegrationSuite is a live database connection for one test
type IntegrationSuite struct {
	DB     *database.DB
	Logger *logger.Logger
}

// postgresDSN starts the shared container on first use. The container is
// left for the testcontainers reaper to remove when the test binary exits.
func postgresDSN(ctx context.Context) (string, error) {
	pgOnce.Do(func() {
		if url := os.Getenv(PostgresURLEnv); url != "" {
			pgDSN = url
			return
		}

		container, err := postgres.RunContainer(ctx,
			testcontainers.WithImage(postgresImage),
			postgres.WithDatabase("dayflow_test"),
			postgres.WithUsername("test"),
			postgres.WithPassword("test"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second),
			),
		)
		if err != nil {
			pgErr = fmt.Errorf("failed to start postgres container: %w", err)
			return
		}

		pgDSN, pgErr = container.ConnectionString(ctx, "sslmode=disable")
	})
	return pgDSN, pgErr
}

// RequireIntegrationSuite connects to the test database or fails the test.
// The connection is closed when the test ends.
//
//	func TestPostgresStore_Integration(t *testing.T) {
//	    testutil.SkipIfShort(t)
//	    suite := testutil.RequireIntegrationSuite(t)
//	    st := store.NewPostgresStore(suite.DB)
//	    ...
//	}
func RequireIntegrationSuite(t *testing.T) *IntegrationSuite {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	dsn, err := postgresDSN(ctx)
	if err != nil {
		t.Fatalf("integration database unavailable: %v", err)
	}

	log := NewTestLogger()
	db, err := database.NewWithDSN(dsn, log)
	if err != nil {
		t.Fatalf("failed to connect to integration database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return &IntegrationSuite{DB: db, Logger: log}
}

// NewTestLogger returns a logger that discards its output
func NewTestLogger() *logger.Logger {
	return logger.New("test", "test")
}
