package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/fleet/internal/cli"
	"github.com/Veraticus/fleet/internal/common"
	"github.com/Veraticus/fleet/internal/config"
	"github.com/Veraticus/fleet/internal/export"
	"github.com/Veraticus/fleet/internal/model"
	"github.com/Veraticus/fleet/internal/sheets"
	"github.com/Veraticus/fleet/internal/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// newSheetsWriter is swapped out in tests.
var newSheetsWriter = func(ctx context.Context, cfg sheets.Config) (sheets.ReportWriter, error) {
	return sheets.NewWriter(ctx, cfg, slog.Default())
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the saved fleet",
		Example: `  # Write a workbook
  fleet export xlsx --out fleet.xlsx

  # Publish to Google Sheets
  fleet export sheets`,
	}

	cmd.AddCommand(exportXLSXCmd())
	cmd.AddCommand(exportSheetsCmd())

	return cmd
}

func exportXLSXCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "xlsx",
		Short: "Write the fleet to an Excel workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fleet, err := loadSavedFleet(cmd.Context())
			if err != nil {
				return err
			}

			path := config.ExpandPath(out)
			if err := export.SaveXLSX(path, fleet); err != nil {
				return common.NewUserError("Could not write "+path, err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Wrote %d boats to %s", fleet.Len(), path)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "fleet.xlsx", "output file")

	return cmd
}

func exportSheetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sheets",
		Short: "Publish the fleet report to Google Sheets",
		Long: `Publish the fleet report to Google Sheets.

Credentials come from the sheets.* config keys or GOOGLE_SHEETS_*
environment variables: either a service account key file or an OAuth2
client id, secret and refresh token.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, err := config.LoadSheetsConfig(viper.GetViper())
			if err != nil {
				return common.NewUserError("Google Sheets is not configured", err)
			}

			fleet, err := loadSavedFleet(ctx)
			if err != nil {
				return err
			}

			writer, err := newSheetsWriter(ctx, *cfg)
			if err != nil {
				return common.NewUserError("Could not connect to Google Sheets", err)
			}
			if err := writer.Write(ctx, fleet); err != nil {
				return common.NewUserError("Could not publish the fleet report", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Published %d boats to Google Sheets", fleet.Len())))
			return nil
		},
	}
}

func loadSavedFleet(ctx context.Context) (*model.Fleet, error) {
	settings, err := loadSettings()
	if err != nil {
		return nil, err
	}

	fleet, found, err := storage.LoadFromSnapshot(ctx, settings.SnapshotPath)
	if err != nil {
		return nil, common.NewUserError("Could not read the saved fleet", err)
	}
	if !found {
		return nil, common.NewUserError("No saved fleet at "+settings.SnapshotPath, nil)
	}
	return fleet, nil
}
