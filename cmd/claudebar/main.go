package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/claudebar/claudebar/internal/applog"
	"github.com/claudebar/claudebar/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		fmt.Fprintf(os.Stderr, "Config path: %s\n", config.ConfigPath())
		os.Exit(1)
	}

	logger, closer, err := applog.Init(config.LogDir(), cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	root := cobra.Command{
		Use:   "claudebar",
		Short: "claudebar is a terminal status monitor for Claude Code usage limits.",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runMonitor(cfg, logger)
		},
		SilenceUsage: true,
	}

	root.AddCommand(newOnceCommand(cfg, logger))
	root.AddCommand(newVersionCommand())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
