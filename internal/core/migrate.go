// AngelaMos | 2026
// migrate.go

package core

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

type Migration struct {
	Version string
	SQL     string
}

// Migrations returns the embedded schema files ordered by version.
func Migrations() ([]Migration, error) {
	entries, err := fs.ReadDir(migrationFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	migrations := make([]Migration, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}

		body, err := fs.ReadFile(migrationFS, "migrations/"+e.Name())
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", e.Name(), err)
		}

		migrations = append(migrations, Migration{
			Version: strings.TrimSuffix(e.Name(), ".sql"),
			SQL:     string(body),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	return migrations, nil
}

// Migrate applies every embedded migration not yet recorded in
// schema_migrations. Each file runs in its own transaction.
func Migrate(ctx context.Context, db *sqlx.DB) ([]string, error) {
	const bootstrap = `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`

	if _, err := db.ExecContext(ctx, bootstrap); err != nil {
		return nil, fmt.Errorf("create schema_migrations: %w", err)
	}

	var applied []string
	if err := db.SelectContext(ctx, &applied, `SELECT version FROM schema_migrations`); err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}

	done := make(map[string]struct{}, len(applied))
	for _, v := range applied {
		done[v] = struct{}{}
	}

	migrations, err := Migrations()
	if err != nil {
		return nil, err
	}

	runner := &Database{DB: db}
	var ran []string
	for _, m := range migrations {
		if _, ok := done[m.Version]; ok {
			continue
		}

		err := runner.InTx(ctx, func(tx DBTX) error {
			if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
				return fmt.Errorf("apply %s: %w", m.Version, err)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO schema_migrations (version) VALUES ($1)`,
				m.Version,
			); err != nil {
				return fmt.Errorf("record %s: %w", m.Version, err)
			}
			return nil
		})
		if err != nil {
			return ran, err
		}

		slog.Info("migration applied", "version", m.Version)
		ran = append(ran, m.Version)
	}

	return ran, nil
}
