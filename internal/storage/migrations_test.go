package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Veraticus/fleet/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_FreshSnapshot(t *testing.T) {
	ctx := context.Background()
	snap, err := OpenSQLiteSnapshot(filepath.Join(t.TempDir(), "fleet.db"))
	require.NoError(t, err)
	defer func() { _ = snap.Close() }()

	require.NoError(t, snap.Migrate(ctx))

	version, err := snap.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)

	// Running again is a no-op.
	require.NoError(t, snap.Migrate(ctx))
}

func TestMigrate_FromVersionOne(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "fleet.db")

	snap, err := OpenSQLiteSnapshot(path)
	require.NoError(t, err)
	require.NoError(t, snap.migrateTo(ctx, 1))
	_, err = snap.db.ExecContext(ctx, `
		INSERT INTO boats (position, category, name, year, make_model, length_ft, price, spent)
		VALUES (1, 'power', 'Skipper', 2020, 'Mako', 20, 12000.0, 5000.5),
		       (2, 'SAILING', 'Moon Glow', 1985, 'Catalina', 27, 8500.1, 0)`)
	require.NoError(t, err)
	require.NoError(t, snap.Close())

	fleet, found, err := LoadFromSnapshot(ctx, path)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, 2, fleet.Len())

	skipper := fleet.Boats()[0]
	assert.Equal(t, model.CategoryPower, skipper.Category)
	assert.Equal(t, model.Cents(12000, 0), skipper.PurchasePrice)
	assert.Equal(t, model.Cents(5000, 50), skipper.Expenses)
	assert.Equal(t, model.Cents(8500, 10), fleet.Boats()[1].PurchasePrice)
}

func TestMigrate_RejectsNewerSchema(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "fleet.db")

	snap, err := OpenSQLiteSnapshot(path)
	require.NoError(t, err)
	_, err = snap.db.ExecContext(ctx, "PRAGMA user_version = 99")
	require.NoError(t, err)
	require.NoError(t, snap.Close())

	_, _, err = LoadFromSnapshot(ctx, path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchemaTooNew)
}

func TestMigrateSnapshot(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "fleet.db")

	snap, err := OpenSQLiteSnapshot(path)
	require.NoError(t, err)
	require.NoError(t, snap.migrateTo(ctx, 1))
	require.NoError(t, snap.Close())

	from, to, err := MigrateSnapshot(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 1, from)
	assert.Equal(t, ExpectedSchemaVersion, to)

	_, _, err = MigrateSnapshot(ctx, filepath.Join(t.TempDir(), "missing.db"))
	assert.Error(t, err)
}

func TestMigrations_AreOrdered(t *testing.T) {
	for i, m := range migrations {
		assert.Equal(t, i+1, m.Version, "migration %q", m.Description)
	}
	assert.Equal(t, ExpectedSchemaVersion, migrations[len(migrations)-1].Version)
}
