// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"context"
	"database/sql"
	"testing"

	"github.com/iliyamo/wayfind-ar/internal/database"
)

// NewTestDB returns an in-memory SQLite database configured the same way as
// the sqlite driver in production. The database is automatically closed when
// the test completes. The schema is not migrated.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

// NewMigratedDB is NewTestDB with all migrations applied.
func NewMigratedDB(t *testing.T) *sql.DB {
	t.Helper()

	db := NewTestDB(t)
	if err := database.Migrate(context.Background(), db, database.DialectSQLite); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return db
}
