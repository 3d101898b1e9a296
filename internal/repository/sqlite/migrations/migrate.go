// Package migrations applies the embedded schema for the SQLite task store.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"
)

//go:embed *.sql
var migrationsFS embed.FS

// Migration is one numbered schema step read from NNNNNN_name.up.sql
type Migration struct {
	Version int
	Name    string
	Up      string
}

const schemaTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version INTEGER PRIMARY KEY,
	name TEXT NOT NULL DEFAULT '',
	applied_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	dirty BOOLEAN NOT NULL DEFAULT FALSE
)`

// Up applies every migration newer than the current version. A dirty
// version left behind by a failed run stops it.
func Up(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaTable); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	dirty, err := dirtyVersions(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to check migration state: %w", err)
	}
	if len(dirty) > 0 {
		return fmt.Errorf("database is in a dirty state; failed migration(s): %v", dirty)
	}

	all, err := Load()
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	current, err := Current(ctx, db)
	if err != nil {
		return err
	}

	for _, m := range all {
		if m.Version <= current {
			continue
		}
		if err := apply(ctx, db, m); err != nil {
			return fmt.Errorf("failed to apply migration %d (%s): %w", m.Version, m.Name, err)
		}
	}
	return nil
}

// Current returns the highest applied version, 0 for a fresh database
func Current(ctx context.Context, db *sql.DB) (int, error) {
	var version sql.NullInt64
	err := db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_migrations WHERE dirty = FALSE`).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return int(version.Int64), nil
}

// Load returns the embedded migrations ordered by version
func Load() ([]Migration, error) {
	ups, err := fs.Glob(migrationsFS, "*.up.sql")
	if err != nil {
		return nil, err
	}

	migrations := make([]Migration, 0, len(ups))
	for _, upFile := range ups {
		version, name, ok := parseFilename(upFile)
		if !ok {
			continue
		}

		up, err := migrationsFS.ReadFile(upFile)
		if err != nil {
			return nil, err
		}

		migrations = append(migrations, Migration{Version: version, Name: name, Up: string(up)})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}

func dirtyVersions(ctx context.Context, db *sql.DB) ([]int, error) {
	rows, err := db.QueryContext(ctx, `SELECT version FROM schema_migrations WHERE dirty = TRUE ORDER BY version`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// apply runs the up script and records the version in one transaction; if the
// transaction cannot even be rolled back the version is left marked dirty.
func apply(ctx context.Context, db *sql.DB, m Migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, m.Up); err != nil {
		return rollback(ctx, db, tx, m.Version, err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version, name) VALUES (?, ?)`, m.Version, m.Name); err != nil {
		return rollback(ctx, db, tx, m.Version, err)
	}
	return tx.Commit()
}

func rollback(ctx context.Context, db *sql.DB, tx *sql.Tx, version int, cause error) error {
	if err := tx.Rollback(); err != nil {
		_, _ = db.ExecContext(ctx, `INSERT OR REPLACE INTO schema_migrations (version, dirty) VALUES (?, TRUE)`, version)
	}
	return cause
}

// parseFilename splits "000002_index_tasks_name.up.sql" into 2 and "index_tasks_name"
func parseFilename(filename string) (int, string, bool) {
	base := strings.TrimSuffix(filename, ".up.sql")
	prefix, name, found := strings.Cut(base, "_")
	if !found {
		return 0, "", false
	}
	version, err := strconv.Atoi(prefix)
	if err != nil || version <= 0 {
		return 0, "", false
	}
	return version, name, true
}
