// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/docmark/internal/convert"
)

var convertCmd = &cobra.Command{
	Use:   "convert [documents...]",
	Short: "Convert documents to Markdown",
	Long: `Convert routes each document by extension: PDFs and images go through
OCR and the page merge, office documents through the office converter.
Results are moved to the output directory (and uploaded when S3 delivery is
configured), and each run is recorded in the job history.

With no arguments, every supported file in --input-dir is converted.
Documents are processed one at a time; a failure does not stop the batch.`,
	RunE: runConvert,
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	paths := args
	if len(paths) == 0 {
		inputDir, _ := cmd.Flags().GetString("input-dir")
		if inputDir == "" {
			inputDir = cfg.Server.InputDir
		}
		paths, err = supportedFiles(inputDir)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			fmt.Fprintf(os.Stderr, "no supported documents in %s\n", inputDir)
			return nil
		}
	}

	bbox, _ := cmd.Flags().GetString("bbox")
	region, err := parseRegion(bbox)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	a, err := buildApp(ctx, cfg, buildOptions{region: region}, os.Stdout)
	if err != nil {
		return err
	}
	defer a.Close()

	batch := a.runner.RunBatch(ctx, paths)

	if reportPath, _ := cmd.Flags().GetString("report"); reportPath != "" {
		if err := writeYAML(reportPath, batch.Outcomes); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "report: %s\n", reportPath)
	}

	if batch.HasFailures() {
		return fmt.Errorf("%d of %d document(s) failed", batch.Failed, batch.Total())
	}
	return nil
}

// supportedFiles lists the convertible regular files directly inside dir,
// sorted by name.
func supportedFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading input directory: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if convert.Supported(e.Name()) {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// parseRegion reads "x1,y1,x2,y2". Empty input returns nil.
func parseRegion(s string) (*[4]int, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("--bbox wants x1,y1,x2,y2, got %q", s)
	}
	var r [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("--bbox: %w", err)
		}
		r[i] = n
	}
	return &r, nil
}

func writeYAML(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func init() {
	convertCmd.Flags().String("input-dir", "", "directory scanned when no documents are given (default server.input_dir)")
	convertCmd.Flags().String("report", "", "write per-document outcomes to this YAML file")
	convertCmd.Flags().String("bbox", "", "bounding box x1,y1,x2,y2 for prompt_grounding_ocr")

	rootCmd.AddCommand(convertCmd)
}
