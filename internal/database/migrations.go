package database

import (
	"context"
	"database/sql"
	"fmt"
)

// migrations holds, per dialect, an ordered list of SQL migration groups.
// Each group is executed in a single transaction (atomic on SQLite only, see
// Migrate) and recorded in schema_migrations; the version number is the
// 1-based index into the slice.
// Both dialects must keep the same number of groups.
var migrations = map[Dialect][][]string{
	DialectMySQL: {
		// Migration 1: users and AR buildings
		{
			`CREATE TABLE IF NOT EXISTS users (
				id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
				email VARCHAR(255) NOT NULL,
				password_hash VARCHAR(255) NOT NULL,
				full_name VARCHAR(200) NOT NULL DEFAULT '',
				role VARCHAR(32) NOT NULL DEFAULT 'USER',
				is_active TINYINT(1) NOT NULL DEFAULT 1,
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
				UNIQUE KEY uq_users_email (email)
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
			`CREATE TABLE IF NOT EXISTS ar_buildings (
				id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
				name VARCHAR(200) NOT NULL,
				description VARCHAR(1000) NOT NULL DEFAULT '',
				position VARCHAR(64) NOT NULL DEFAULT '0,0,0',
				model_type VARCHAR(64) NOT NULL DEFAULT '',
				category VARCHAR(100) NOT NULL DEFAULT '',
				floor_level VARCHAR(100) NOT NULL DEFAULT '',
				is_active TINYINT(1) NOT NULL DEFAULT 1,
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		},
		// Migration 2: natural key for buildings so concurrent seeders cannot double insert
		{
			`CREATE UNIQUE INDEX uq_ar_buildings_name ON ar_buildings (name)`,
			`CREATE INDEX idx_ar_buildings_category ON ar_buildings (category, is_active)`,
		},
	},
	DialectSQLite: {
		{
			`CREATE TABLE IF NOT EXISTS users (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				email TEXT NOT NULL UNIQUE,
				password_hash TEXT NOT NULL,
				full_name TEXT NOT NULL DEFAULT '',
				role TEXT NOT NULL DEFAULT 'USER',
				is_active BOOLEAN NOT NULL DEFAULT TRUE,
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE TABLE IF NOT EXISTS ar_buildings (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				position TEXT NOT NULL DEFAULT '0,0,0',
				model_type TEXT NOT NULL DEFAULT '',
				category TEXT NOT NULL DEFAULT '',
				floor_level TEXT NOT NULL DEFAULT '',
				is_active BOOLEAN NOT NULL DEFAULT TRUE,
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`,
		},
		{
			`CREATE UNIQUE INDEX IF NOT EXISTS uq_ar_buildings_name ON ar_buildings (name)`,
			`CREATE INDEX IF NOT EXISTS idx_ar_buildings_category ON ar_buildings (category, is_active)`,
		},
	},
}

// Migrate creates the schema if it is absent and runs all pending migrations.
// Migrations are tracked in the schema_migrations table by version number,
// so running it against an up-to-date schema is a no-op.  Failures are
// returned as *MigrationError.
//
// MySQL commits every DDL statement on its own, so a group interrupted
// half way is run again on the next start. Its statements must therefore
// tolerate objects that already exist; an index that is already there is
// skipped. Callers serialise concurrent Migrate calls with a lock.
func Migrate(ctx context.Context, db *sql.DB, dialect Dialect) error {
	groups, ok := migrations[dialect]
	if !ok {
		return &MigrationError{Err: fmt.Errorf("no migrations for dialect %q", dialect)}
	}

	// Ensure schema_migrations table exists (outside transaction so it's always
	// available for version checks).
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return &MigrationError{Err: fmt.Errorf("create schema_migrations: %w", err)}
	}

	for i, stmts := range groups {
		version := i + 1

		var exists int
		if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations WHERE version = ?", version).Scan(&exists); err != nil {
			return &MigrationError{Version: version, Err: fmt.Errorf("check: %w", err)}
		}
		if exists > 0 {
			continue
		}

		if err := applyGroup(ctx, db, version, stmts); err != nil {
			return &MigrationError{Version: version, Err: err}
		}
	}
	return nil
}

// Version returns the highest applied migration, or 0 on a fresh store.
func Version(ctx context.Context, db *sql.DB) (int, error) {
	var v sql.NullInt64
	if err := db.QueryRowContext(ctx, "SELECT MAX(version) FROM schema_migrations").Scan(&v); err != nil {
		return 0, err
	}
	return int(v.Int64), nil
}

// Latest returns the number of migration groups known for dialect.
func Latest(dialect Dialect) int { return len(migrations[dialect]) }

func applyGroup(ctx context.Context, db *sql.DB, version int, stmts []string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			if isDuplicateKeyName(err) {
				continue
			}
			_ = tx.Rollback()
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		_ = tx.Rollback()
		if IsDuplicateKey(err) {
			// recorded by another instance in the meantime
			return nil
		}
		return fmt.Errorf("record: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
