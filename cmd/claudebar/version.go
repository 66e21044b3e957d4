package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/claudebar/claudebar/internal/appupdate"
	"github.com/claudebar/claudebar/internal/version"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version and check for updates",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Println("claudebar " + version.String())

			result, err := appupdate.Check(cmd.Context(), appupdate.CheckOptions{
				CurrentVersion: version.Version,
			})
			if err != nil {
				// Updates are best effort; the version line already printed.
				return
			}
			if result.UpdateAvailable {
				fmt.Printf("Update available: %s → %s\n", result.CurrentVersion, result.LatestVersion)
				fmt.Println("Upgrade with: " + result.UpgradeHint)
			}
		},
	}
}
