package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/Veraticus/fleet/internal/model"
)

// Snapshot errors.
var (
	ErrSnapshotCorrupted = errors.New("snapshot corrupted")
	ErrSchemaTooNew      = errors.New("snapshot written by a newer version")
)

// Metadata keys recorded with every snapshot.
const (
	metaSavedAt   = "saved_at"
	metaBoatCount = "boat_count"
	metaWriter    = "writer_version"
)

// WriterVersion is recorded in each snapshot's metadata. cmd/fleet sets it
// from the build version.
var WriterVersion = "dev"

// LoadFromSnapshot reads the fleet saved at path.
// A missing file is not an error: it yields an empty fleet and found=false.
func LoadFromSnapshot(ctx context.Context, path string) (fleet *model.Fleet, found bool, err error) {
	if err := validateString(path, "path"); err != nil {
		return nil, false, err
	}

	if _, statErr := os.Stat(path); statErr != nil {
		if errors.Is(statErr, os.ErrNotExist) {
			return model.NewFleet(), false, nil
		}
		return nil, false, fmt.Errorf("failed to access snapshot: %w", statErr)
	}

	snap, err := OpenSQLiteSnapshot(path)
	if err != nil {
		return nil, true, err
	}
	defer func() {
		if closeErr := snap.Close(); closeErr != nil {
			slog.Error("failed to close snapshot", "error", closeErr)
		}
	}()

	if err := snap.Migrate(ctx); err != nil {
		return nil, true, fmt.Errorf("failed to migrate snapshot: %w", err)
	}

	fleet, err = snap.ReadFleet(ctx)
	if err != nil {
		return nil, true, err
	}

	slog.Debug("Loaded snapshot", "path", path, "boats", fleet.Len())
	return fleet, true, nil
}

// SaveSnapshot writes the whole fleet to path, replacing any previous snapshot.
// The new file is built beside the target and renamed into place, so a failed
// save leaves the previous snapshot intact.
func SaveSnapshot(ctx context.Context, path string, fleet *model.Fleet) error {
	if err := validateString(path, "path"); err != nil {
		return err
	}
	if fleet == nil {
		return fmt.Errorf("%w: fleet", ErrNilParameter)
	}

	tmpPath := path + ".tmp"
	if err := os.Remove(tmpPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to clear stale temporary snapshot: %w", err)
	}

	if err := writeSnapshotFile(ctx, tmpPath, fleet); err != nil {
		if rmErr := os.Remove(tmpPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			slog.Warn("failed to remove temporary snapshot", "path", tmpPath, "error", rmErr)
		}
		return err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}

	slog.Debug("Saved snapshot", "path", path, "boats", fleet.Len())
	return nil
}

func writeSnapshotFile(ctx context.Context, path string, fleet *model.Fleet) error {
	snap, err := OpenSQLiteSnapshot(path)
	if err != nil {
		return err
	}

	if err := snap.Migrate(ctx); err != nil {
		_ = snap.Close()
		return fmt.Errorf("failed to initialize snapshot schema: %w", err)
	}

	if err := snap.WriteFleet(ctx, fleet); err != nil {
		_ = snap.Close()
		return err
	}

	if err := snap.Close(); err != nil {
		return fmt.Errorf("failed to close snapshot: %w", err)
	}
	return nil
}

// MigrateSnapshot upgrades the snapshot at path to the current schema in place.
// It returns the versions before and after.
func MigrateSnapshot(ctx context.Context, path string) (from, to int, err error) {
	if _, statErr := os.Stat(path); statErr != nil {
		return 0, 0, fmt.Errorf("failed to access snapshot: %w", statErr)
	}

	snap, err := OpenSQLiteSnapshot(path)
	if err != nil {
		return 0, 0, err
	}
	defer func() {
		if closeErr := snap.Close(); closeErr != nil {
			slog.Error("failed to close snapshot", "error", closeErr)
		}
	}()

	from, err = snap.SchemaVersion(ctx)
	if err != nil {
		return 0, 0, err
	}
	if err := snap.Migrate(ctx); err != nil {
		return from, from, err
	}
	return from, ExpectedSchemaVersion, nil
}
