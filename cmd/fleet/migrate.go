package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/Veraticus/fleet/internal/cli"
	"github.com/Veraticus/fleet/internal/common"
	"github.com/Veraticus/fleet/internal/storage"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Upgrade the saved fleet to the current format",
		Long: `Upgrade the saved fleet file to the latest schema version.

A checkpoint of the file is taken first. Loading the fleet also upgrades it,
so this is only needed to upgrade without starting the menu.`,
		Args: cobra.NoArgs,
		RunE: runMigrate,
	}

	cmd.Flags().Bool("status", false, "show the schema version without changing anything")

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	status, _ := cmd.Flags().GetBool("status")
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	settings, err := loadSettings()
	if err != nil {
		return err
	}
	path := settings.SnapshotPath

	if status {
		if _, err := os.Stat(path); err != nil {
			return common.NewUserError("No saved fleet at "+path, err)
		}
		snap, err := storage.OpenSQLiteSnapshot(path)
		if err != nil {
			return common.NewUserError("Could not open the saved fleet", err)
		}
		defer func() { _ = snap.Close() }()

		current, err := snap.SchemaVersion(ctx)
		if err != nil {
			return common.NewUserError("Could not read the schema version", err)
		}
		fmt.Fprintf(out, "Snapshot: %s\nCurrent version: %d\nLatest version: %d\n", path, current, storage.ExpectedSchemaVersion)
		return nil
	}

	slog.Info("Starting snapshot migration", "path", path)

	info, err := autoCheckpoint(ctx, path, "migrate")
	if err != nil {
		return common.NewUserError("Could not checkpoint the saved fleet", err)
	}
	if info == nil {
		fmt.Fprintln(out, cli.FormatInfo("No saved fleet at "+path+", nothing to migrate"))
		return nil
	}

	from, to, err := storage.MigrateSnapshot(ctx, path)
	if err != nil {
		return common.NewUserError("Migration failed, restore with: fleet checkpoint restore "+info.ID, err)
	}

	if from == to {
		fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Already at schema version %d", to)))
		return nil
	}
	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Migrated from schema version %d to %d", from, to)))
	return nil
}
