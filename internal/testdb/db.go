package testdb

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/stretchr/testify/require"
	"github.com/techbyhenry/acode-api/internal/platform/postgres"
	"github.com/techbyhenry/acode-api/internal/redact"
)

// TestTimeout bounds connection and migration steps.
const TestTimeout = 10 * time.Second

// GetTestDatabaseURL returns DATABASE_URL, falling back to
// ACODE_DATABASE_URL.
func GetTestDatabaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	return os.Getenv("ACODE_DATABASE_URL")
}

// IsIntegrationTestEnvironment reports whether a test database is configured.
func IsIntegrationTestEnvironment() bool {
	return GetTestDatabaseURL() != ""
}

// MaskDatabaseURL hides credentials so the URL can appear in test output.
func MaskDatabaseURL(dbURL string) string {
	return redact.String(dbURL)
}

// GetTestDBWithT opens the test database, applies migrations and registers
// cleanup. The test is skipped when no database URL is configured.
func GetTestDBWithT(t *testing.T) *sql.DB {
	t.Helper()

	dbURL := GetTestDatabaseURL()
	if dbURL == "" {
		t.Skip("DATABASE_URL not set; skipping integration test")
	}

	db, err := sql.Open("pgx", dbURL)
	require.NoError(t, err, "failed to open %s", MaskDatabaseURL(dbURL))
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()
	require.NoError(t, db.PingContext(ctx), "failed to ping %s", MaskDatabaseURL(dbURL))

	require.NoError(t, postgres.Migrate(ctx, db, "up", nil), "failed to apply migrations")
	return db
}

// WithTx runs fn inside a transaction that is rolled back afterwards, so
// tests never observe each other's rows.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.Begin()
	require.NoError(t, err, "failed to begin transaction")

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Errorf("failed to roll back transaction: %v", err)
		}
	}()

	fn(t, tx)
}

// ResetTables truncates every application table. Tests that need committed
// rows visible to several connections (for example concurrency tests) use
// this instead of WithTx.
func ResetTables(t *testing.T, db *sql.DB) {
	t.Helper()
	_, err := db.Exec(`TRUNCATE saved_accounts, token_blacklist, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err, "failed to truncate tables")
}
