package cmd

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"launcher-core/logger"
	"launcher-core/relocate"
)

var moveCmd = &cobra.Command{
	Use:   "move [installID] [Game|Runner|DXVK|Prefix] [destination]",
	Short: "Copy an install directory to a new location",
	Long: `Copy the game, runner, DXVK or prefix directory of an install into an
empty destination and record the new location once the copy succeeded.
The old directory is left in place.

If the destination already has files, or there is nothing to copy, the
install is pointed at the destination without copying.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := relocate.ParseKind(args[1])
		if err != nil {
			return errors.New(describe(err))
		}
		plain, _ := cmd.Flags().GetBool("plain")
		return runMove(cmd, args[0], kind, args[2], plain)
	},
}

func init() {
	moveCmd.Flags().Bool("plain", false, "print the outcome instead of showing progress")
	rootCmd.AddCommand(moveCmd)
}

func runMove(cmd *cobra.Command, installID string, kind relocate.Kind, destination string, plain bool) error {
	events := relocate.NewChannelSink(1)
	a := bootstrap(events)
	defer a.Close()

	out := cmd.OutOrStdout()
	log := logger.Log.With(zap.String("install_id", installID), zap.String("kind", string(kind)))

	task, err := a.relocator.Relocate(context.Background(), installID, kind, destination)
	var skip *relocate.SkipError
	if errors.As(err, &skip) {
		fmt.Fprintf(out, "Nothing copied (%s); %s now points at %s\n", skip.Reason, kind, destination)
		return nil
	}
	if err != nil {
		log.Errorw("Failed to start relocation", zap.Error(err))
		return fmt.Errorf("move: %s", describe(err))
	}

	if plain {
		if err := printJSON(out, <-events); err != nil {
			return err
		}
	} else if _, err := tea.NewProgram(newMoveModel(task, events)).Run(); err != nil {
		log.Errorw("Failed to run progress view", zap.Error(err))
		task.Cancel()
	}

	if err := task.Wait(context.Background()); err != nil {
		return fmt.Errorf("move failed: %s", describe(err))
	}
	return nil
}
