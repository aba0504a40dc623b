package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"launcher-core/logger"
	"launcher-core/ui"
)

var switchVersionCmd = &cobra.Command{
	Use:   "switch-version [installID] [runner|dxvk] [version]",
	Short: "Point an install at another runner or DXVK version",
	Long: `Record a new runner or DXVK version for an install and create the
matching directory. Nothing is downloaded.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		tool, err := parseTool(args[1])
		if err != nil {
			return err
		}

		a := bootstrap()
		defer a.Close()

		res, err := a.switcher.Switch(context.Background(), args[0], tool, args[2])
		if err != nil {
			logger.Log.Errorw("Failed to switch version", zap.String("install_id", args[0]), zap.Error(err))
			return fmt.Errorf("switch %s: %s", args[1], describe(err))
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %s -> %s\n", tool, res.OldVersion, res.NewVersion)
		if res.PathChanged {
			fmt.Fprintf(out, "  path %s -> %s\n", res.OldPath, res.NewPath)
		} else {
			fmt.Fprintln(out, ui.Colorize("  path unchanged: "+res.NewPath, ui.Yellow))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(switchVersionCmd)
}
