package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"launcher-core/db"
	"launcher-core/logger"
)

// installsCmd lists installs. It also runs when no subcommand is given.
var installsCmd = &cobra.Command{
	Use:   "installs",
	Short: "List game installs",
	Run: func(cmd *cobra.Command, _ []string) {
		asJSON, _ := cmd.Flags().GetBool("json")
		runInstalls(cmd.OutOrStdout(), asJSON)
	},
}

func init() {
	installsCmd.Flags().Bool("json", false, "print installs as JSON")
	rootCmd.AddCommand(installsCmd)

	rootCmd.Run = func(cmd *cobra.Command, _ []string) {
		runInstalls(cmd.OutOrStdout(), false)
	}
}

func runInstalls(w io.Writer, asJSON bool) {
	a := bootstrap()
	defer a.Close()

	installs, err := a.store.ListInstalls(context.Background())
	if err != nil {
		logger.Log.Errorw("Failed to list installs", zap.Error(err))
		fmt.Fprintln(w, "Could not list installs:", describe(err))
		return
	}
	if asJSON {
		if err := printJSON(w, installs); err != nil {
			logger.Log.Errorw("Failed to encode installs", zap.Error(err))
		}
		return
	}
	writeInstallTable(w, installs)
}

func writeInstallTable(w io.Writer, installs []db.Install) {
	if len(installs) == 0 {
		fmt.Fprintln(w, "No installs yet.")
		return
	}

	header := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	fmt.Fprintln(w, header.Render(fmt.Sprintf("%-36s  %-30s  %-10s  %s", "ID", "Name", "Version", "Directory")))
	for _, in := range installs {
		fmt.Fprintf(w, "%-36s  %-30s  %-10s  %s\n", in.ID, truncate(in.Name, 30), truncate(in.Version, 10), in.Directory)
	}
}
