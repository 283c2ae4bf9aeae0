package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Veraticus/fleet/internal/model"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteSnapshot is an open snapshot database.
// Gateway functions open one, use it and close it within a single call.
type SQLiteSnapshot struct {
	db     *sql.DB
	dbPath string
}

// OpenSQLiteSnapshot opens (or creates) the snapshot database at dbPath.
func OpenSQLiteSnapshot(dbPath string) (*SQLiteSnapshot, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
			return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
		}
	}

	// Rollback journal rather than WAL: the file is renamed into place after writing.
	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping snapshot: %w", err)
	}

	return &SQLiteSnapshot{db: db, dbPath: dbPath}, nil
}

// Close closes the database connection.
func (s *SQLiteSnapshot) Close() error {
	return s.db.Close()
}

// SchemaVersion returns the schema version recorded in the file.
func (s *SQLiteSnapshot) SchemaVersion(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}

// ReadFleet loads every boat in saved order.
func (s *SQLiteSnapshot) ReadFleet(ctx context.Context) (*model.Fleet, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT category, name, year, make_model, length_ft, price_cents, expense_cents
		FROM boats
		ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query boats: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	fleet := model.NewFleet()
	for rows.Next() {
		var (
			b        model.Boat
			category string
			price    int64
			expenses int64
		)
		if err := rows.Scan(&category, &b.Name, &b.Year, &b.MakeModel, &b.Length, &price, &expenses); err != nil {
			return nil, fmt.Errorf("failed to scan boat: %w", err)
		}
		b.Category = model.Category(category)
		b.PurchasePrice = model.Money(price)
		b.Expenses = model.Money(expenses)

		if err := validateStoredBoat(&b); err != nil {
			return nil, fmt.Errorf("boat at position %d: %w", fleet.Len()+1, err)
		}
		fleet.Add(&b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate boats: %w", err)
	}

	return fleet, nil
}

func (s *SQLiteSnapshot) writeFleetTx(ctx context.Context, tx *sql.Tx, fleet *model.Fleet) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM boats"); err != nil {
		return fmt.Errorf("failed to clear boats: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO boats (position, category, name, year, make_model, length_ft, price_cents, expense_cents)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() {
		if err := stmt.Close(); err != nil {
			slog.Error("failed to close statement", "error", err)
		}
	}()

	for i, b := range fleet.Boats() {
		if _, err := stmt.ExecContext(ctx,
			i+1, string(b.Category), b.Name, b.Year, b.MakeModel, b.Length,
			int64(b.PurchasePrice), int64(b.Expenses),
		); err != nil {
			return fmt.Errorf("failed to insert boat %q: %w", b.Name, err)
		}
	}

	meta := map[string]string{
		metaSavedAt:   time.Now().UTC().Format(time.RFC3339),
		metaBoatCount: strconv.Itoa(fleet.Len()),
		metaWriter:    WriterVersion,
	}
	for key, value := range meta {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO snapshot_meta (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value); err != nil {
			return fmt.Errorf("failed to write snapshot metadata %s: %w", key, err)
		}
	}

	return nil
}

// WriteFleet replaces the stored boats with fleet atomically.
func (s *SQLiteSnapshot) WriteFleet(ctx context.Context, fleet *model.Fleet) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if fleet == nil {
		return fmt.Errorf("%w: fleet", ErrNilParameter)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := s.writeFleetTx(ctx, tx, fleet); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}

// Metadata returns the key/value pairs recorded by the last save.
func (s *SQLiteSnapshot) Metadata(ctx context.Context) (map[string]string, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM snapshot_meta")
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot metadata: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	meta := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot metadata: %w", err)
		}
		meta[key] = value
	}
	return meta, rows.Err()
}
