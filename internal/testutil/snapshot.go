// Package testutil provides shared helpers for tests that need a saved fleet.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Veraticus/fleet/internal/model"
	"github.com/Veraticus/fleet/internal/storage"
)

// SetupTestSnapshot saves fleet to a snapshot in a fresh temporary directory
// and returns the snapshot path.
func SetupTestSnapshot(t *testing.T, fleet *model.Fleet) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fleet.db")
	if err := storage.SaveSnapshot(context.Background(), path, fleet); err != nil {
		t.Fatalf("failed to save test snapshot: %v", err)
	}
	return path
}
