package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest snapshot schema version this build writes.
// Files with a higher version were written by a newer build and are refused.
const ExpectedSchemaVersion = 3

// Migration represents a snapshot schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial boats table",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS boats (
					position INTEGER PRIMARY KEY,
					category TEXT NOT NULL,
					name TEXT NOT NULL,
					year INTEGER NOT NULL,
					make_model TEXT NOT NULL,
					length_ft INTEGER NOT NULL,
					price REAL NOT NULL,
					spent REAL NOT NULL DEFAULT 0
				)
			`)
			return err
		},
	},
	{
		Version:     2,
		Description: "Store money as integer cents",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE boats_cents (
					position INTEGER PRIMARY KEY,
					category TEXT NOT NULL,
					name TEXT NOT NULL,
					year INTEGER NOT NULL,
					make_model TEXT NOT NULL,
					length_ft INTEGER NOT NULL,
					price_cents INTEGER NOT NULL,
					expense_cents INTEGER NOT NULL DEFAULT 0
				)`,
				`INSERT INTO boats_cents (position, category, name, year, make_model, length_ft, price_cents, expense_cents)
					SELECT position, UPPER(category), name, year, make_model, length_ft,
						CAST(ROUND(price * 100) AS INTEGER), CAST(ROUND(spent * 100) AS INTEGER)
					FROM boats`,
				`DROP TABLE boats`,
				`ALTER TABLE boats_cents RENAME TO boats`,
				`CREATE INDEX idx_boats_name ON boats(name COLLATE NOCASE)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query '%s': %w", query, err)
				}
			}
			return nil
		},
	},
	{
		Version:     3,
		Description: "Add snapshot metadata",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS snapshot_meta (
					key TEXT PRIMARY KEY,
					value TEXT NOT NULL
				)
			`)
			return err
		},
	},
}

// Migrate applies all pending schema migrations.
func (s *SQLiteSnapshot) Migrate(ctx context.Context) error {
	return s.migrateTo(ctx, ExpectedSchemaVersion)
}

func (s *SQLiteSnapshot) migrateTo(ctx context.Context, target int) error {
	currentVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}
	if currentVersion > ExpectedSchemaVersion {
		return fmt.Errorf("%w: file is version %d, this build supports %d", ErrSchemaTooNew, currentVersion, ExpectedSchemaVersion)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion || migration.Version > target {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Debug("Applied snapshot migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	finalVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}
	if finalVersion != target {
		return fmt.Errorf("snapshot schema version mismatch: expected %d, got %d", target, finalVersion)
	}

	return nil
}
