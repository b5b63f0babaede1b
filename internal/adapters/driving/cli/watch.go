package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Watch a directory and keep it indexed",
	Long: `Ingests the path, then keeps the index synchronised as files are
created, changed or removed. A periodic full rescan catches events the
filesystem watcher missed. Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	root := args[0]

	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// The scheduler drives the periodic rescan; the watcher inside
	// Watch handles the live events. Both are best-effort: a missing
	// scheduler just means no rescans.
	if newScheduler != nil {
		scheduler := newScheduler(root)
		if scheduler != nil {
			go func() {
				if err := scheduler.Start(ctx); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "scheduler stopped: %v\n", err)
				}
			}()
			defer func() {
				if err := scheduler.Stop(); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "scheduler stop error: %v\n", err)
				}
			}()
		}
	}

	cmd.Printf("Watching %s (Ctrl-C to stop)...\n", root)

	if err := ingestService.Watch(ctx, root); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("watch failed: %w", err)
	}

	cmd.Println("\nWatch stopped.")
	return nil
}
