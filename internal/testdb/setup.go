package testdb

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/taskboard/taskboard-api/internal/platform/postgres"
	"github.com/taskboard/taskboard-api/internal/redact"
)

// TestTimeout bounds connection and migration steps.
const TestTimeout = 30 * time.Second

var (
	sharedOnce sync.Once
	sharedDB   *sql.DB
	sharedErr  error
)

// GetTestDB returns a connection pool to the migrated test database. The
// pool is shared by every test in the process. The test is skipped when no
// database URL is configured.
func GetTestDB(t *testing.T) *sql.DB {
	t.Helper()

	if ShouldSkipDatabaseTest() {
		t.Skip("no test database configured; set TASKBOARD_TEST_DB_URL or DATABASE_URL")
	}

	sharedOnce.Do(func() {
		sharedDB, sharedErr = openAndMigrate(GetTestDatabaseURL())
	})
	if sharedErr != nil {
		t.Fatalf("test database setup failed: %s", redact.Error(sharedErr))
	}
	return sharedDB
}

func openAndMigrate(dbURL string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open test database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping test database: %w", err)
	}

	quiet := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
	if err := postgres.Migrate(ctx, db, quiet, "up"); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
