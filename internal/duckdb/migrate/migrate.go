// Package migrate creates the report schema from the SQL files embedded
// under migrations/. Files are applied once each, in name order, and
// recorded by name in schema_migrations.
package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
)

//go:embed migrations/*.sql
var schemaFS embed.FS

const createLedger = `CREATE TABLE IF NOT EXISTS schema_migrations (
	name       VARCHAR PRIMARY KEY,
	applied_at TIMESTAMP DEFAULT current_timestamp
)`

// Apply runs the schema files not yet recorded and returns their names.
func Apply(ctx context.Context, db *sql.DB) ([]string, error) {
	if _, err := db.ExecContext(ctx, createLedger); err != nil {
		return nil, fmt.Errorf("create schema_migrations: %w", err)
	}

	// Glob returns names sorted, and the NNN_ prefix fixes the order.
	files, err := fs.Glob(schemaFS, "migrations/*.sql")
	if err != nil {
		return nil, fmt.Errorf("list schema files: %w", err)
	}

	var applied []string
	for _, file := range files {
		name := path.Base(file)

		var seen int
		if err := db.QueryRowContext(ctx, "SELECT count(*) FROM schema_migrations WHERE name = ?", name).Scan(&seen); err != nil {
			return applied, fmt.Errorf("check %s: %w", name, err)
		}
		if seen > 0 {
			continue
		}

		ddl, err := schemaFS.ReadFile(file)
		if err != nil {
			return applied, fmt.Errorf("read %s: %w", name, err)
		}
		if err := applyFile(ctx, db, name, string(ddl)); err != nil {
			return applied, err
		}
		applied = append(applied, name)
	}
	return applied, nil
}

// applyFile executes ddl and records name in the same transaction.
func applyFile(ctx context.Context, db *sql.DB, name, ddl string) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin %s: %w", name, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("apply %s: %w", name, err)
	}
	if _, err = tx.ExecContext(ctx, "INSERT INTO schema_migrations (name) VALUES (?)", name); err != nil {
		return fmt.Errorf("record %s: %w", name, err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", name, err)
	}
	return nil
}
