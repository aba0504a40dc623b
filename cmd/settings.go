package cmd

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"launcher-core/logger"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change global launcher settings",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the settings as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a := bootstrap()
		defer a.Close()

		settings, err := a.store.GetSettings(context.Background())
		if err != nil {
			logger.Log.Errorw("Failed to read settings", zap.Error(err))
			return fmt.Errorf("settings: %s", describe(err))
		}
		return printJSON(cmd.OutOrStdout(), settings)
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change one setting",
	Long:  "Change one setting. Keys: " + strings.Join(settingKeys(), ", "),
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := bootstrap()
		defer a.Close()

		if err := updateSetting(context.Background(), a.store, args[0], args[1]); err != nil {
			logger.Log.Errorw("Failed to update setting", zap.String("key", args[0]), zap.Error(err))
			return fmt.Errorf("set %s: %s", args[0], describe(err))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Set %s to %s\n", args[0], args[1])
		return nil
	},
}

func settingKeys() []string {
	keys := make([]string, 0, len(settingUpdaters))
	for k := range settingUpdaters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd, settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}
