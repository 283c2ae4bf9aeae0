package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Veraticus/fleet/internal/cli"
	"github.com/Veraticus/fleet/internal/common"
	"github.com/Veraticus/fleet/internal/config"
	"github.com/Veraticus/fleet/internal/model"
	"github.com/Veraticus/fleet/internal/storage"
	"github.com/spf13/viper"
)

// envKeyReplacer maps snapshot.path to FLEET_SNAPSHOT_PATH.
var envKeyReplacer = strings.NewReplacer(".", "_")

func loadSettings() (*config.Settings, error) {
	settings, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, common.NewUserError("Invalid configuration", err)
	}
	return settings, nil
}

// loadFleet picks the load path for this run: the data file when one is
// given, otherwise the saved snapshot. Problems with either source are
// reported on notices and the run continues with an empty fleet, except a
// snapshot written by a newer build, which is refused so exit cannot
// overwrite it.
func loadFleet(ctx context.Context, settings *config.Settings, dataFile string, notices io.Writer) (*model.Fleet, error) {
	if dataFile != "" {
		return loadDataFile(ctx, settings, dataFile, notices), nil
	}

	fleet, found, err := storage.LoadFromSnapshot(ctx, settings.SnapshotPath)
	switch {
	case err == nil && !found:
		fmt.Fprintln(notices, cli.FormatInfo("No saved fleet found, starting with an empty fleet"))
		return fleet, nil
	case err == nil:
		return fleet, nil
	case errors.Is(err, storage.ErrSchemaTooNew):
		return nil, common.NewUserError("The saved fleet was written by a newer version of fleet", err)
	}

	common.LogError(err, "Failed to load snapshot", common.Fields{"path": settings.SnapshotPath})
	moved := quarantineSnapshot(settings.SnapshotPath)
	msg := "Could not read the saved fleet, starting with an empty fleet"
	if moved != "" {
		msg += " (kept the unreadable file as " + moved + ")"
	}
	fmt.Fprintln(notices, cli.FormatWarning(msg))
	return model.NewFleet(), nil
}

func loadDataFile(ctx context.Context, settings *config.Settings, path string, notices io.Writer) *model.Fleet {
	if info, err := autoCheckpoint(ctx, settings.SnapshotPath, "import"); err != nil {
		slog.Warn("Failed to checkpoint the saved fleet before import", "error", err)
	} else if info != nil {
		fmt.Fprintln(notices, cli.FormatInfo("Previous fleet kept as checkpoint "+info.ID))
	}

	var opts []storage.LoadOption
	if settings.Progress {
		opts = append(opts, storage.WithReaderWrapper(cli.ProgressReader(notices, "Loading boats")))
	}

	fleet, skipped, err := storage.LoadFromDelimitedText(path, settings.Bounds, opts...)
	if err != nil {
		common.LogError(err, "Failed to load data file", common.Fields{"path": path})
		fmt.Fprintln(notices, cli.FormatError("Could not read "+path+", starting with an empty fleet"))
		return model.NewFleet()
	}

	for _, s := range skipped {
		fmt.Fprintln(notices, cli.FormatWarning("Skipped "+s.Error()))
	}
	common.LogInfo("Loaded data file", common.Fields{"path": path, "boats": fleet.Len(), "skipped": len(skipped)})
	return fleet
}

// quarantineSnapshot moves an unreadable snapshot aside and returns its new
// name, or "" if it could not be moved.
func quarantineSnapshot(path string) string {
	target := fmt.Sprintf("%s.corrupt-%s", path, time.Now().Format("20060102-150405"))
	if err := os.Rename(path, target); err != nil {
		slog.Warn("Failed to move unreadable snapshot aside", "path", path, "error", err)
		return ""
	}
	return target
}

func autoCheckpoint(ctx context.Context, snapshotPath, prefix string) (*storage.CheckpointMetadata, error) {
	manager, err := storage.NewCheckpointManager(snapshotPath)
	if err != nil {
		return nil, err
	}
	return manager.AutoCheckpoint(ctx, prefix)
}

func snapshotSaver(path string) cli.SaveFunc {
	return func(ctx context.Context, fleet *model.Fleet) error {
		return storage.SaveSnapshot(ctx, path, fleet)
	}
}

func formatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}

func formatRelativeTime(t time.Time) string {
	duration := time.Since(t)

	switch {
	case duration < time.Minute:
		return "just now"
	case duration < time.Hour:
		minutes := int(duration.Minutes())
		if minutes == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", minutes)
	case duration < 24*time.Hour:
		hours := int(duration.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	case duration < 7*24*time.Hour:
		days := int(duration.Hours() / 24)
		if days == 1 {
			return "yesterday"
		}
		return fmt.Sprintf("%d days ago", days)
	default:
		return t.Format("2006-01-02 15:04")
	}
}
