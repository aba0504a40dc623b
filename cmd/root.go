package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"launcher-core/config"
	"launcher-core/logger"
)

var configPath string

// rootCmd is the base command; without a subcommand it lists installs.
var rootCmd = &cobra.Command{
	Use:   "launcher-core",
	Short: "Manage game installs and their compatibility tools",
	Long: `launcher-core keeps track of game installs, the runner, DXVK and
prefix each one uses, and moves those directories around on disk.`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		logger.InitLogger(cfg.LogFile, cfg.LogLevel)
		loadedConfig = cfg
		return nil
	},
}

// loadedConfig is set before any command runs.
var loadedConfig config.Config

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", ".", "directory containing the .env file")
}

// Execute runs the command tree.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logger.Log.Errorw("Command failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}
