// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docmark/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Convert documents as they arrive in a directory",
	Long: `Watch converts every supported file created in the directory (default
server.input_dir) once it has stopped changing for the settle delay.
Files are converted one at a time in arrival order until interrupted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	dir := cfg.Server.InputDir
	if len(args) == 1 {
		dir = args[0]
	}
	if cmd.Flags().Changed("settle") {
		cfg.Watch.Settle, _ = cmd.Flags().GetDuration("settle")
	}

	ctx, stop := signalContext()
	defer stop()

	a, err := buildApp(ctx, cfg, buildOptions{}, os.Stdout)
	if err != nil {
		return err
	}
	defer a.Close()

	return watch.New(dir, cfg.Watch.Settle, a.runner, os.Stdout).Run(ctx)
}

func init() {
	watchCmd.Flags().Duration("settle", 0, "quiet period before a file is converted (default watch.settle, 2s)")

	rootCmd.AddCommand(watchCmd)
}
