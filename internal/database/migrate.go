package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type migration struct {
	version  int
	filename string
}

func Migrate(ctx context.Context, database *sql.DB) error {
	if _, err := database.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}

	pending, err := pendingMigrations(ctx, database)
	if err != nil {
		return err
	}

	for _, next := range pending {
		if err := apply(ctx, database, next); err != nil {
			return err
		}
		slog.Info("applied migration", "version", next.version, "file", next.filename)
	}

	return nil
}

func pendingMigrations(ctx context.Context, database *sql.DB) ([]migration, error) {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("reading migrations directory: %w", err)
	}

	var all []migration
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			all = append(all, migration{version: extractVersion(entry.Name()), filename: entry.Name()})
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].version < all[j].version })

	var pending []migration
	for _, candidate := range all {
		var exists int
		err := database.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM schema_migrations WHERE version = ?", candidate.version,
		).Scan(&exists)
		if err != nil {
			return nil, fmt.Errorf("checking migration %d: %w", candidate.version, err)
		}
		if exists == 0 {
			pending = append(pending, candidate)
		}
	}
	return pending, nil
}

func apply(ctx context.Context, database *sql.DB, next migration) error {
	content, err := migrationsFS.ReadFile("migrations/" + next.filename)
	if err != nil {
		return fmt.Errorf("reading migration %s: %w", next.filename, err)
	}

	transaction, err := database.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction for migration %d: %w", next.version, err)
	}
	defer transaction.Rollback()

	if _, err := transaction.ExecContext(ctx, string(content)); err != nil {
		return fmt.Errorf("executing migration %s: %w", next.filename, err)
	}
	if _, err := transaction.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", next.version); err != nil {
		return fmt.Errorf("recording migration %d: %w", next.version, err)
	}

	if err := transaction.Commit(); err != nil {
		return fmt.Errorf("committing migration %d: %w", next.version, err)
	}
	return nil
}

func extractVersion(filename string) int {
	var version int
	fmt.Sscanf(filename, "%d_", &version)
	return version
}
