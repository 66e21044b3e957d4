package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/claudebar/claudebar/internal/config"
	"github.com/claudebar/claudebar/internal/keychain"
	"github.com/claudebar/claudebar/internal/monitor"
)

// newOnceCommand fetches usage a single time and prints it, for scripts and
// status bars that want plain text instead of the TUI.
func newOnceCommand(cfg config.Config, logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "once",
		Short: "Fetch usage once and print it as plain text",
		RunE: func(cmd *cobra.Command, _ []string) error {
			mcfg := cfg.Monitor()
			creds := monitor.NewCredentialProvider(mcfg, keychain.Default(), nil, logger)
			client := monitor.NewUsageClient(mcfg, creds, logger)

			snap, err := client.FetchUsage(cmd.Context())
			if err != nil {
				return fmt.Errorf("fetching usage: %w", err)
			}

			now := time.Now()
			fmt.Printf("5h: %.0f%% used • resets %s\n",
				snap.FiveHourUtilization*100, monitor.FormatReset(snap.FiveHourResetsAt, now))
			fmt.Printf("Weekly: %.0f%% used • resets %s\n",
				snap.WeeklyUtilization*100, monitor.FormatReset(snap.WeeklyResetsAt, now))
			fmt.Println("Status: connected")
			fmt.Println("Updated: " + snap.FetchedAt.Format("15:04"))
			return nil
		},
	}
}
