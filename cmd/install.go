package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"launcher-core/install"
	"launcher-core/logger"
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Add, inspect or remove a single install",
}

// addOptions are the user's choices for a new install beyond the game
// version itself.
type addOptions struct {
	Name          string
	RunnerVersion string
	DxvkVersion   string
	Prefix        string
	FPSValue      string
	LaunchArgs    string
}

var installAddCmd = &cobra.Command{
	Use:   "add [manifestID] [version] [directory]",
	Short: "Register a game version installed in a directory",
	Long: `Register a new install of a game version from an enabled manifest.
The game directory is created when missing. On Linux the runner and DXVK
directories are created under the compatibility directory by version.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		var opts addOptions
		opts.Name, _ = cmd.Flags().GetString("name")
		opts.RunnerVersion, _ = cmd.Flags().GetString("runner-version")
		opts.DxvkVersion, _ = cmd.Flags().GetString("dxvk-version")
		opts.Prefix, _ = cmd.Flags().GetString("prefix")
		opts.FPSValue, _ = cmd.Flags().GetString("fps")
		opts.LaunchArgs, _ = cmd.Flags().GetString("launch-args")

		a := bootstrap()
		defer a.Close()

		res, err := addInstall(context.Background(), a, args[0], args[1], args[2], opts)
		if err != nil {
			logger.Log.Errorw("Failed to add install", zap.String("manifest_id", args[0]), zap.String("version", args[1]), zap.Error(err))
			return fmt.Errorf("add %s %s: %s", args[0], args[1], describe(err))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added install %s\n", res.InstallID)
		return nil
	},
}

func addInstall(ctx context.Context, a *app, manifestID, version, directory string, opts addOptions) (*install.AddResult, error) {
	req, err := a.installs.NewRequest(ctx, manifestID, version)
	if err != nil {
		return nil, err
	}
	req.Directory = directory
	if opts.Name != "" {
		req.Name = opts.Name
	}
	req.RunnerVersion = opts.RunnerVersion
	req.DxvkVersion = opts.DxvkVersion
	req.RunnerPrefix = opts.Prefix
	if req.RunnerPrefix == "" && opts.RunnerVersion != "" {
		req.RunnerPrefix = filepath.Join(a.cfg.CompatibilityDir, "prefixes", manifestID)
	}
	req.FPSValue = opts.FPSValue
	req.LaunchArgs = opts.LaunchArgs
	return a.installs.Add(ctx, req)
}

var installShowCmd = &cobra.Command{
	Use:   "show [installID]",
	Short: "Print an install as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := bootstrap()
		defer a.Close()

		in, err := a.store.GetInstallByID(context.Background(), args[0])
		if err != nil {
			logger.Log.Warnw("Install lookup failed", zap.String("install_id", args[0]), zap.Error(err))
			return fmt.Errorf("install %s: %s", args[0], describe(err))
		}
		return printJSON(cmd.OutOrStdout(), in)
	},
}

var installRemoveCmd = &cobra.Command{
	Use:   "remove [installID]",
	Short: "Delete an install's game files and its record",
	Long: `Delete an install's game directory and its record. The prefix is
kept unless --wipe-prefix is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		wipePrefix, _ := cmd.Flags().GetBool("wipe-prefix")

		a := bootstrap()
		defer a.Close()

		if err := a.installs.Remove(context.Background(), args[0], wipePrefix); err != nil {
			logger.Log.Errorw("Failed to remove install", zap.String("install_id", args[0]), zap.Error(err))
			return fmt.Errorf("remove %s: %s", args[0], describe(err))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed install %s\n", args[0])
		return nil
	},
}

func init() {
	installAddCmd.Flags().String("name", "", "display name (defaults to the manifest's versioned name)")
	installAddCmd.Flags().String("runner-version", "", "runner to use, e.g. wine-9.0")
	installAddCmd.Flags().String("dxvk-version", "", "DXVK version to use")
	installAddCmd.Flags().String("prefix", "", "prefix directory (defaults to one per manifest)")
	installAddCmd.Flags().String("fps", "", "FPS unlock value")
	installAddCmd.Flags().String("launch-args", "", "extra game arguments")
	installRemoveCmd.Flags().Bool("wipe-prefix", false, "also delete the install's prefix")
	installCmd.AddCommand(installAddCmd, installShowCmd, installRemoveCmd)
	rootCmd.AddCommand(installCmd)
}
