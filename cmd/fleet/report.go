package main

import (
	"fmt"

	"github.com/Veraticus/fleet/internal/cli"
	"github.com/Veraticus/fleet/internal/common"
	"github.com/Veraticus/fleet/internal/storage"
	"github.com/spf13/cobra"
)

func reportCmd() *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the saved fleet",
		Long:  `Print the saved fleet report without starting the interactive menu.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}

			fleet, found, err := storage.LoadFromSnapshot(cmd.Context(), settings.SnapshotPath)
			if err != nil {
				return common.NewUserError("Could not read the saved fleet", err)
			}
			if !found {
				fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatInfo("No saved fleet at "+settings.SnapshotPath))
			}

			out := cmd.OutOrStdout()
			if plain {
				fmt.Fprint(out, fleet.Render())
				return nil
			}
			fmt.Fprintln(out, cli.RenderFleetReport(fleet))
			return nil
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "print the report without decoration")

	return cmd
}
