package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const appName = "launcher-core"

// Config holds all configuration for the application.
// Values are loaded by Viper from a config file and/or environment variables.
type Config struct {
	DataDir          string `mapstructure:"LAUNCHER_DATA_DIR"`
	ConfigDir        string `mapstructure:"LAUNCHER_CONFIG_DIR"`
	LogLevel         string `mapstructure:"LOG_LEVEL"`
	LogFile          string `mapstructure:"LOG_FILE"`
	DatabasePath     string `mapstructure:"-"` // Not from env, derived
	ManifestsDir     string `mapstructure:"-"` // Not from env, derived
	CompatibilityDir string `mapstructure:"-"` // Not from env, derived
}

var envKeys = []string{
	"LAUNCHER_DATA_DIR",
	"LAUNCHER_CONFIG_DIR",
	"LOG_LEVEL",
	"LOG_FILE",
}

// LoadConfig reads configuration from file and environment variables.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")

	vipErr := v.ReadInConfig()
	if _, ok := vipErr.(viper.ConfigFileNotFoundError); ok {
		slog.Info("Config file (.env) not found, relying on environment variables.")
	} else if vipErr != nil {
		return Config{}, fmt.Errorf("fatal error config file: %w", vipErr)
	}

	v.AutomaticEnv()
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			slog.Warn("Unable to bind env var", "key", key, "error", err)
		}
	}

	if err := v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("unable to decode into struct, %w", err)
	}

	processConfigDefaults(&config)

	if err := validateAndEnsureDirectories(&config); err != nil {
		return Config{}, err
	}

	return config, nil
}

// processConfigDefaults fills in everything the user left unset.
func processConfigDefaults(cfg *Config) {
	if cfg.DataDir == "" {
		cfg.DataDir = defaultDir(os.UserHomeDir, ".local", "share")
	}
	if cfg.ConfigDir == "" {
		cfg.ConfigDir = defaultDir(os.UserConfigDir)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFile == "" && cfg.DataDir != "" {
		cfg.LogFile = filepath.Join(cfg.DataDir, appName+".log")
	}
}

func defaultDir(base func() (string, error), elems ...string) string {
	root, err := base()
	if err != nil || root == "" {
		slog.Warn("Unable to resolve base directory, using working directory", "error", err)
		root = "."
	}
	parts := append([]string{root}, elems...)
	parts = append(parts, appName)
	return filepath.Join(parts...)
}

// validateAndEnsureDirectories checks required directories, creates them and
// derives the paths that are not read from the environment.
func validateAndEnsureDirectories(cfg *Config) error {
	if cfg.DataDir == "" {
		slog.Error("LAUNCHER_DATA_DIR is not set")
		return fmt.Errorf("LAUNCHER_DATA_DIR is required")
	}
	if cfg.ConfigDir == "" {
		slog.Error("LAUNCHER_CONFIG_DIR is not set")
		return fmt.Errorf("LAUNCHER_CONFIG_DIR is required")
	}

	for _, dir := range []string{cfg.DataDir, cfg.ConfigDir} {
		if err := ensureDir(dir); err != nil {
			return err
		}
	}

	cfg.DatabasePath = filepath.Join(cfg.ConfigDir, "storage.db")
	cfg.ManifestsDir = filepath.Join(cfg.DataDir, "manifests")
	cfg.CompatibilityDir = filepath.Join(cfg.DataDir, "compatibility")
	return nil
}

func ensureDir(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		slog.Info("Directory does not exist, creating it", "path", dir)
		if err := os.MkdirAll(dir, 0755); err != nil {
			slog.Error("Failed to create directory", "path", dir, "error", err)
			return err
		}
	} else if err != nil {
		slog.Error("Failed to check directory", "path", dir, "error", err)
		return err
	}
	return nil
}
