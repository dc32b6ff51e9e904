// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/docmark/internal/ocr"
	"github.com/pdiddy/docmark/internal/ocrmerge"
)

var mergeCmd = &cobra.Command{
	Use:   "merge <document>",
	Short: "Merge OCR fragments already in the cache",
	Long: `Merge skips recognition and merges the per-page fragments and index
left in the cache by an earlier run (for example one with --keep-cache).
The merge report is printed as YAML. The result is written next to the
document and is not delivered or recorded.`,
	Args: cobra.ExactArgs(1),
	RunE: runMerge,
}

func runMerge(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	engine := ocrmerge.NewEngine(ocr.Existing{}, ocrmerge.NewCache(cfg.Cache.Root), ocrmerge.Options{
		Filter:      ocrmerge.Filter{NoImage: cfg.Merge.NoImage, NoTable: cfg.Merge.NoTable},
		DeleteCache: cfg.Cache.DeleteOnSuccess,
		Log:         os.Stderr,
	})

	rep, err := engine.Process(ctx, args[0], cfg.OCR.PromptMode)
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(rep); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	warnPartial(os.Stderr, rep)
	return nil
}

// warnPartial notes a merge that left index lines or fragments out. A partial
// merge still wrote its output, so it is not an error.
func warnPartial(w io.Writer, rep *ocrmerge.Report) {
	if !rep.Partial() {
		return
	}
	fmt.Fprintf(w, "warning: partial merge of %s: %d index line(s) and %d fragment(s) skipped\n",
		rep.Document, len(rep.SkippedRecords), rep.SkippedFragments())
}

func init() {
	rootCmd.AddCommand(mergeCmd)
}
