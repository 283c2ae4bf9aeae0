package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/Veraticus/fleet/internal/cli"
	"github.com/Veraticus/fleet/internal/config"
	"github.com/Veraticus/fleet/internal/model"
	"github.com/spf13/cobra"
)

func runFleet(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	handler := cli.NewInterruptHandler(cmd.ErrOrStderr())
	ctx, stop := handler.HandleInterrupts(cmd.Context())
	defer stop()

	var dataFile string
	if len(args) == 1 {
		dataFile = args[0]
	}

	fleet, err := loadFleet(ctx, settings, dataFile, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	return runMenu(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), fleet, settings)
}

// runMenu drives the interactive loop. A failed save has already been shown
// to the user by the menu and does not change the exit status.
func runMenu(ctx context.Context, in io.Reader, out io.Writer, fleet *model.Fleet, settings *config.Settings) error {
	menu := cli.NewMenu(cli.NewConsoleReader(in), out, fleet, settings.Bounds, snapshotSaver(settings.SnapshotPath))
	if err := menu.Run(ctx); err != nil {
		slog.Debug("menu finished without saving", "error", err)
	}
	return nil
}
