package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Veraticus/fleet/internal/common"
	"github.com/Veraticus/fleet/internal/config"
	"github.com/Veraticus/fleet/internal/storage"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	version = "dev"
	rootCmd = &cobra.Command{
		Use:   "fleet [data-file]",
		Short: "⛵ Sailing club fleet management",
		Long: `fleet keeps the club's boats and what has been spent on them.

Run it with a comma-separated data file to start a new fleet, or with no
arguments to continue from the last saved fleet. The fleet is saved on exit.`,
		Args:              cobra.MaximumNArgs(1),
		PersistentPreRunE: initConfig,
		RunE:              runFleet,
		SilenceUsage:      true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.config/fleet/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")
	rootCmd.PersistentFlags().String("snapshot", "", "saved fleet location (default: $HOME/.local/share/fleet/fleet.db)")
	rootCmd.Flags().Bool("progress", false, "show a progress bar while reading the data file")

	_ = viper.BindPFlag(config.KeyLogLevel, rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag(config.KeyLogFormat, rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag(config.KeySnapshotPath, rootCmd.PersistentFlags().Lookup("snapshot"))
	_ = viper.BindPFlag(config.KeyProgress, rootCmd.Flags().Lookup("progress"))

	config.SetDefaults(viper.GetViper())

	rootCmd.AddCommand(checkpointCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(versionCmd())
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Debug("Received interrupt signal, shutting down gracefully")
		cancel()
	}()

	storage.WriterVersion = version

	err := rootCmd.ExecuteContext(ctx)
	cancel()

	if code := exitStatus(os.Stderr, err); code != 0 {
		os.Exit(code)
	}
}

// exitStatus reports err and picks the process status. Once the menu has
// started the session always ends with status zero, because runMenu swallows
// save failures. A non-zero status therefore only means the menu never ran:
// invalid configuration, a snapshot from a newer build, or a failed
// subcommand.
func exitStatus(w io.Writer, err error) int {
	if err == nil {
		return 0
	}
	var userErr *common.UserError
	if errors.As(err, &userErr) {
		fmt.Fprintln(w, userErr.UserMessage)
		slog.Debug("command failed", "error", userErr.Err)
	} else {
		fmt.Fprintln(w, err)
	}
	return 1
}

func initConfig(_ *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to read .env: %w", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}

		viper.AddConfigPath(fmt.Sprintf("%s/.config/fleet", home))
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("FLEET")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := setupLogging(); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	return nil
}

func setupLogging() error {
	level, err := common.ParseLevel(viper.GetString(config.KeyLogLevel))
	if err != nil {
		return err
	}
	return common.SetupLogger(level, viper.GetString(config.KeyLogFormat))
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "fleet %s (snapshot schema v%d)\n", version, storage.ExpectedSchemaVersion)
		},
	}
}
