// Command loadtest fires concurrent registrations at a running server and
// verifies that no event is overbooked.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/Shivanand-hulikatti/event-registrations/internal/loadtest"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts loadtest.Options

	cmd := &cobra.Command{
		Use:   "loadtest",
		Short: "Race concurrent registrations against one event",
		Long: `Create one event and a batch of users, then register every user
concurrently and check the outcome against the event's capacity.

Examples:
  # 200 users competing for 50 seats
  loadtest --url http://localhost:8080 --capacity 50 --users 200

  # every user tries three times, at most 16 requests in flight
  loadtest --users 40 --attempts 3 --concurrency 16`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := loadtest.Run(cmd.Context(), opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "event %d: %d attempts, %d admitted, %d full, %d duplicate, %d failed\n",
				report.EventID, report.Attempts, report.Admitted, report.Full, report.Duplicate, report.Failed)
			fmt.Fprintf(out, "stats: total=%d remaining=%d percentUsed=%.2f\n",
				report.Stats.Total, report.Stats.Remaining, report.Stats.PercentUsed)
			if err := report.Check(opts); err != nil {
				return fmt.Errorf("invariant violated: %w", err)
			}
			fmt.Fprintln(out, "ok")
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.BaseURL, "url", "http://localhost:8080", "Base URL of the API")
	cmd.Flags().IntVarP(&opts.Capacity, "capacity", "c", 10, "Capacity of the test event (1-1000)")
	cmd.Flags().IntVarP(&opts.Users, "users", "u", 50, "Number of users to create")
	cmd.Flags().IntVarP(&opts.Attempts, "attempts", "a", 1, "Registration attempts per user")
	cmd.Flags().IntVar(&opts.Concurrency, "concurrency", 0, "Maximum requests in flight (0 = all at once)")
	return cmd
}
