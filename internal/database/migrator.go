package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/stwalsh4118/agricoop/api/internal/logger"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// Migrator applies the SQL files under migrations/ in lexical order and
// records each applied file in schema_migrations.
type Migrator struct {
	db    *Database
	files fs.FS
	log   *logger.Logger
}

// NewMigrator creates a migrator over the embedded migration files.
func NewMigrator(db *Database, log *logger.Logger) *Migrator {
	sub, err := fs.Sub(embeddedMigrations, "migrations")
	if err != nil {
		// The embed pattern guarantees the directory exists.
		panic(err)
	}
	return &Migrator{db: db, files: sub, log: log.WithComponent("migrator")}
}

// Run executes every migration that has not been applied yet. Each file runs
// in its own transaction together with its bookkeeping row.
func (m *Migrator) Run(ctx context.Context) (int, error) {
	if err := m.createMigrationsTable(ctx); err != nil {
		return 0, fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := m.appliedMigrations(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get applied migrations: %w", err)
	}

	files, err := migrationFiles(m.files)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, filename := range files {
		if applied[filename] {
			m.log.Debug("Migration already applied", map[string]interface{}{"file": filename})
			continue
		}

		content, err := fs.ReadFile(m.files, filename)
		if err != nil {
			return count, fmt.Errorf("failed to read migration %s: %w", filename, err)
		}

		err = m.db.WithTx(ctx, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, string(content)); err != nil {
				return err
			}
			_, err := tx.Exec(ctx,
				`INSERT INTO schema_migrations (filename) VALUES ($1) ON CONFLICT (filename) DO NOTHING`,
				filename,
			)
			return err
		})
		if err != nil {
			return count, fmt.Errorf("failed to run migration %s: %w", filename, err)
		}

		m.log.Info("Migration applied", map[string]interface{}{"file": filename})
		count++
	}

	if count == 0 {
		m.log.Info("Database schema is up to date", nil)
	}
	return count, nil
}

func (m *Migrator) createMigrationsTable(ctx context.Context) error {
	_, err := m.db.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			id SERIAL PRIMARY KEY,
			filename VARCHAR(255) UNIQUE NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	return err
}

func (m *Migrator) appliedMigrations(ctx context.Context) (map[string]bool, error) {
	rows, err := m.db.Pool.Query(ctx, "SELECT filename FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var filename string
		if err := rows.Scan(&filename); err != nil {
			return nil, err
		}
		applied[filename] = true
	}
	return applied, rows.Err()
}

// migrationFiles lists the .sql files at the root of fsys in lexical order.
func migrationFiles(fsys fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}
