package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/freelancer-hub/internal/config"
)

var (
	configFile string

	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "freelancer-hub",
	Short: "freelancer-hub - business dashboard backend",
	Long: `freelancer-hub serves the dashboard API on top of a pluggable database
provider. Providers are configured at deploy time through the environment or
at runtime with the provider commands.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger = newLogger(cfg.LogLevel)
		slog.SetDefault(logger)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML config file (default $FH_CONFIG_FILE)")
}

// newLogger routes slog through a charmbracelet handler
func newLogger(level string) *slog.Logger {
	handler := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "2006-01-02 15:04:05",
		Prefix:          "freelancer-hub",
	})

	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	handler.SetLevel(lvl)

	return slog.New(handler)
}
