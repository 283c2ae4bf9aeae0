package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/fleet/internal/common"
	"github.com/Veraticus/fleet/internal/config"
	"github.com/Veraticus/fleet/internal/model"
	"github.com/Veraticus/fleet/internal/storage"
	"github.com/Veraticus/fleet/internal/testutil/fleets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSettings(t *testing.T) *config.Settings {
	t.Helper()
	return &config.Settings{
		SnapshotPath: filepath.Join(t.TempDir(), "fleet.db"),
		Bounds:       model.DefaultBounds(),
	}
}

func writeDataFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "boats.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadFleet_DataFile(t *testing.T) {
	settings := testSettings(t)
	data := writeDataFile(t, "POWER,Skipper,2020,Mako,20,12000.00\nCANOE,Bad,2000,X,10,5\n")

	var notices bytes.Buffer
	fleet, err := loadFleet(context.Background(), settings, data, &notices)
	require.NoError(t, err)

	assert.Equal(t, 1, fleet.Len())
	assert.Contains(t, notices.String(), "line 2")
}

func TestLoadFleet_DataFileCheckpointsPreviousSnapshot(t *testing.T) {
	ctx := context.Background()
	settings := testSettings(t)
	require.NoError(t, storage.SaveSnapshot(ctx, settings.SnapshotPath, model.NewFleet()))

	var notices bytes.Buffer
	_, err := loadFleet(ctx, settings, writeDataFile(t, fleets.CSV(fleets.BoatSkipper)+"\n"), &notices)
	require.NoError(t, err)

	manager, err := storage.NewCheckpointManager(settings.SnapshotPath)
	require.NoError(t, err)
	list, err := manager.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, strings.HasPrefix(list[0].ID, "auto-import-"))
	assert.Contains(t, notices.String(), list[0].ID)
}

func TestLoadFleet_MissingDataFile(t *testing.T) {
	var notices bytes.Buffer
	fleet, err := loadFleet(context.Background(), testSettings(t), filepath.Join(t.TempDir(), "nope.csv"), &notices)
	require.NoError(t, err)

	assert.Equal(t, 0, fleet.Len())
	assert.Contains(t, notices.String(), "starting with an empty fleet")
}

func TestLoadFleet_Snapshot(t *testing.T) {
	ctx := context.Background()

	t.Run("missing snapshot", func(t *testing.T) {
		var notices bytes.Buffer
		fleet, err := loadFleet(ctx, testSettings(t), "", &notices)
		require.NoError(t, err)
		assert.Equal(t, 0, fleet.Len())
		assert.Contains(t, notices.String(), "No saved fleet found")
	})

	t.Run("unreadable snapshot is moved aside", func(t *testing.T) {
		settings := testSettings(t)
		require.NoError(t, os.WriteFile(settings.SnapshotPath, []byte("definitely not a sqlite database file"), 0600))

		var notices bytes.Buffer
		fleet, err := loadFleet(ctx, settings, "", &notices)
		require.NoError(t, err)
		assert.Equal(t, 0, fleet.Len())

		_, statErr := os.Stat(settings.SnapshotPath)
		assert.ErrorIs(t, statErr, os.ErrNotExist)
		matches, _ := filepath.Glob(settings.SnapshotPath + ".corrupt-*")
		assert.Len(t, matches, 1)
	})

	t.Run("newer snapshot is refused", func(t *testing.T) {
		settings := testSettings(t)
		snap, err := storage.OpenSQLiteSnapshot(settings.SnapshotPath)
		require.NoError(t, err)
		require.NoError(t, snap.Migrate(ctx))
		require.NoError(t, snap.Close())
		bumpSchemaVersion(t, settings.SnapshotPath)

		_, err = loadFleet(ctx, settings, "", &bytes.Buffer{})
		require.Error(t, err)
		var userErr *common.UserError
		assert.ErrorAs(t, err, &userErr)
		assert.ErrorIs(t, err, storage.ErrSchemaTooNew)

		_, statErr := os.Stat(settings.SnapshotPath)
		assert.NoError(t, statErr, "file is left in place")
	})
}

func TestRunMenu_SavesAndReloads(t *testing.T) {
	ctx := context.Background()
	settings := testSettings(t)

	var notices bytes.Buffer
	fleet, err := loadFleet(ctx, settings, writeDataFile(t, fleets.CSV(fleets.BoatSkipper)+"\n"), &notices)
	require.NoError(t, err)

	var out bytes.Buffer
	input := "e\nskipper\n5000\nx\n"
	require.NoError(t, runMenu(ctx, strings.NewReader(input), &out, fleet, settings))
	assert.Contains(t, out.String(), "Expense authorized, $5000.00 spent.")

	reloaded, err := loadFleet(ctx, settings, "", &notices)
	require.NoError(t, err)
	boat, ok := reloaded.FindByName("Skipper")
	require.True(t, ok)
	assert.Equal(t, model.Cents(5000, 0), boat.Expenses)
}

func TestRunMenu_SaveFailureIsNotFatal(t *testing.T) {
	settings := testSettings(t)
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))
	settings.SnapshotPath = filepath.Join(blocker, "fleet.db")

	var out bytes.Buffer
	err := runMenu(context.Background(), strings.NewReader("x\n"), &out, model.NewFleet(), settings)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Could not save the fleet")
	assert.Contains(t, out.String(), "Exiting the Fleet Management System")
}

func TestFormatFileSize(t *testing.T) {
	tests := []struct {
		want string
		size int64
	}{
		{size: 0, want: "0 B"},
		{size: 1023, want: "1023 B"},
		{size: 1024, want: "1.0 KB"},
		{size: 1536, want: "1.5 KB"},
		{size: 5 * 1024 * 1024, want: "5.0 MB"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, formatFileSize(tt.size))
		})
	}
}

func TestFormatRelativeTime(t *testing.T) {
	now := time.Now()

	assert.Equal(t, "just now", formatRelativeTime(now))
	assert.Equal(t, "5 minutes ago", formatRelativeTime(now.Add(-5*time.Minute-time.Second)))
	assert.Equal(t, "1 hour ago", formatRelativeTime(now.Add(-61*time.Minute)))
	assert.Equal(t, "yesterday", formatRelativeTime(now.Add(-25*time.Hour)))
	old := now.Add(-30 * 24 * time.Hour)
	assert.Equal(t, old.Format("2006-01-02 15:04"), formatRelativeTime(old))
}

func TestExitStatus(t *testing.T) {
	tests := []struct {
		err        error
		name       string
		wantStderr string
		want       int
	}{
		{name: "menu session", err: nil, want: 0},
		{
			name:       "startup refusal",
			err:        common.NewUserError("The saved fleet was written by a newer version of fleet", storage.ErrSchemaTooNew),
			want:       1,
			wantStderr: "The saved fleet was written by a newer version of fleet\n",
		},
		{name: "subcommand failure", err: errors.New("boom"), want: 1, wantStderr: "boom\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stderr bytes.Buffer
			assert.Equal(t, tt.want, exitStatus(&stderr, tt.err))
			assert.Equal(t, tt.wantStderr, stderr.String())
		})
	}
}

func TestRunFleet_SaveFailureExitsZero(t *testing.T) {
	settings := testSettings(t)
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))
	settings.SnapshotPath = filepath.Join(blocker, "fleet.db")

	err := runMenu(context.Background(), strings.NewReader("x\n"), &bytes.Buffer{}, model.NewFleet(), settings)
	assert.Equal(t, 0, exitStatus(&bytes.Buffer{}, err))
}
