// Package storage is the persistence gateway of the fleet ledger: it reads
// delimited boat data and reads and writes versioned SQLite snapshots.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/fleet/internal/model"
)

// Validation errors.
var (
	ErrNilContext   = errors.New("context cannot be nil")
	ErrEmptyString  = errors.New("string parameter cannot be empty")
	ErrNilParameter = errors.New("parameter cannot be nil")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateStoredBoat checks a boat read back from a snapshot.
// Bounds are not re-applied; limits may have changed since the boat was added.
func validateStoredBoat(b *model.Boat) error {
	if _, err := model.ParseCategory(string(b.Category)); err != nil {
		return fmt.Errorf("%w: %v", ErrSnapshotCorrupted, err)
	}
	if strings.TrimSpace(b.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrSnapshotCorrupted)
	}
	if b.PurchasePrice < 0 || b.Expenses < 0 {
		return fmt.Errorf("%w: negative amount for %q", ErrSnapshotCorrupted, b.Name)
	}
	if b.Expenses > b.PurchasePrice {
		return fmt.Errorf("%w: %q has spent %s of %s", ErrSnapshotCorrupted, b.Name, b.Expenses, b.PurchasePrice)
	}
	return nil
}
