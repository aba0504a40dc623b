package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"launcher-core/logger"
)

var manifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "Register, enable or disable game manifests",
	Long: `Enable or disable game manifests. A disabled manifest stays in the
database but its content is hidden.`,
}

func manifestToggleCmd(use string, enabled bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [manifestID]",
		Short: fmt.Sprintf("Mark a manifest as %sd", use),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := bootstrap()
			defer a.Close()

			if err := a.installs.SetManifestEnabled(context.Background(), args[0], enabled); err != nil {
				logger.Log.Errorw("Failed to toggle manifest", zap.String("manifest_id", args[0]), zap.Error(err))
				return fmt.Errorf("manifest %s: %s", args[0], describe(err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Manifest %s %sd\n", args[0], use)
			return nil
		},
	}
}

var manifestSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Register manifest files found in the manifests directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		repo, _ := cmd.Flags().GetString("repository")

		a := bootstrap()
		defer a.Close()

		added, err := syncManifests(context.Background(), a, repo)
		if err != nil {
			logger.Log.Errorw("Failed to sync manifests", zap.String("repository_id", repo), zap.Error(err))
			return fmt.Errorf("manifest sync: %s", describe(err))
		}
		if len(added) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No new manifests.")
			return nil
		}
		for _, id := range added {
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s\n", id)
		}
		return nil
	},
}

func syncManifests(ctx context.Context, a *app, repositoryID string) ([]string, error) {
	found, err := a.manifests.List()
	if err != nil {
		return nil, err
	}
	return a.installs.RegisterManifests(ctx, repositoryID, found)
}

func init() {
	manifestSyncCmd.Flags().String("repository", "local", "repository id to register manifests under")
	manifestCmd.AddCommand(manifestSyncCmd, manifestToggleCmd("enable", true), manifestToggleCmd("disable", false))
	rootCmd.AddCommand(manifestCmd)
}
