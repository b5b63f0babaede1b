package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var resetConfirm bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Remove all indexed data",
	Long: `Removes every document, chunk and vector from the index, along with
the embedding strategy manifest. The next ingest starts from a clean
slate and may resolve a different embedding strategy.

Requires --confirm; there is no undo.`,
	Args: cobra.NoArgs,
	RunE: runReset,
}

func init() {
	resetCmd.Flags().BoolVar(&resetConfirm, "confirm", false, "confirm the reset")
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, _ []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	if !resetConfirm {
		return errors.New("refusing to reset without --confirm")
	}

	if err := ingestService.Reset(context.Background()); err != nil {
		return fmt.Errorf("reset failed: %w", err)
	}

	cmd.Println("Index reset. All documents, chunks and vectors removed.")
	return nil
}
