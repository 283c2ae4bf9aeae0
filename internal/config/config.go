package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Veraticus/fleet/internal/common"
	"github.com/Veraticus/fleet/internal/model"
	"github.com/spf13/viper"
)

// Configuration keys.
const (
	KeySnapshotPath = "snapshot.path"
	KeyMinLength    = "bounds.min_length"
	KeyMaxLength    = "bounds.max_length"
	KeyMaxPrice     = "bounds.max_price"
	KeyMinYear      = "bounds.min_year"
	KeyMaxYear      = "bounds.max_year"
	KeyLogLevel     = "logging.level"
	KeyLogFormat    = "logging.format"
	KeyProgress     = "load.progress"
)

// Settings holds everything the fleet commands need at runtime.
type Settings struct {
	SnapshotPath string
	LogLevel     string
	LogFormat    string
	Bounds       model.Bounds
	Progress     bool
}

// DefaultSnapshotPath returns $HOME/.local/share/fleet/fleet.db.
func DefaultSnapshotPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "fleet.db"
	}
	return filepath.Join(home, ".local", "share", "fleet", "fleet.db")
}

// SetDefaults registers default values for every key.
func SetDefaults(v *viper.Viper) {
	bounds := model.DefaultBounds()

	v.SetDefault(KeySnapshotPath, DefaultSnapshotPath())
	v.SetDefault(KeyMinLength, bounds.MinLength)
	v.SetDefault(KeyMaxLength, bounds.MaxLength)
	v.SetDefault(KeyMaxPrice, bounds.MaxPrice.Decimal())
	v.SetDefault(KeyMinYear, bounds.MinYear)
	v.SetDefault(KeyMaxYear, bounds.MaxYear)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
	v.SetDefault(KeyProgress, false)
}

// Load resolves Settings from v and validates them.
func Load(v *viper.Viper) (*Settings, error) {
	maxPrice, err := model.ParseMoney(v.GetString(KeyMaxPrice))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", common.ErrInvalidConfig, KeyMaxPrice, err)
	}

	settings := &Settings{
		SnapshotPath: ExpandPath(v.GetString(KeySnapshotPath)),
		LogLevel:     v.GetString(KeyLogLevel),
		LogFormat:    v.GetString(KeyLogFormat),
		Progress:     v.GetBool(KeyProgress),
		Bounds: model.Bounds{
			MinLength: v.GetInt(KeyMinLength),
			MaxLength: v.GetInt(KeyMaxLength),
			MaxPrice:  maxPrice,
			MinYear:   v.GetInt(KeyMinYear),
			MaxYear:   v.GetInt(KeyMaxYear),
		},
	}

	if settings.SnapshotPath == "" {
		return nil, fmt.Errorf("%w: %s", common.ErrMissingConfig, KeySnapshotPath)
	}
	if err := settings.Bounds.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}

	return settings, nil
}
