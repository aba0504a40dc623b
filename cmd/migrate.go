package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// migrateCmd only bootstraps: opening the store applies pending migrations
// and seeds the default directories.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		a := bootstrap()
		defer a.Close()
		fmt.Fprintf(cmd.OutOrStdout(), "Database ready at %s\n", a.cfg.DatabasePath)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
