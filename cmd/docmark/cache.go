// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docmark/internal/ocrmerge"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Maintain the OCR cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached fragment and index",
	Long: `Clear deletes the contents of the cache directory, including fragments
kept by --keep-cache or left behind by failed runs. The directory itself is
recreated empty.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := ocrmerge.NewCache(cfg.Cache.Root).Clear(); err != nil {
			return err
		}
		fmt.Printf("cleared: %s\n", cfg.Cache.Root)
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
