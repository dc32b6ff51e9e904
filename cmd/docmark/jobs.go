// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/docmark/internal/jobs"
	"github.com/pdiddy/docmark/pkg/types"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Inspect the conversion history (list, show, export)",
	Long: `Jobs reads the SQLite job history written by convert, serve, and watch.`,
}

// --- list subcommand ---

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent jobs, newest first",
	RunE:  runJobsList,
}

func runJobsList(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	list, err := store.List(context.Background(), listOptsFromFlags(cmd))
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatJobs(list, jsonOutput)
}

func formatJobs(list []types.Job, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	}

	if len(list) == 0 {
		fmt.Println("No jobs recorded.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-8s  %-19s  %-9s  %-6s  %-30s  %s\n",
		"ID", "Created", "Status", "Route", "Document", "Pages")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 90))

	for _, j := range list {
		doc := filepath.Base(j.Document)
		if len(doc) > 30 {
			doc = doc[:27] + "..."
		}
		pages := "-"
		if j.Route == types.RouteOCR {
			pages = fmt.Sprintf("%d/%d", j.Merged, j.Merged+j.Skipped)
		}
		fmt.Fprintf(os.Stdout, "%-8s  %-19s  %-9s  %-6s  %-30s  %s\n",
			shortID(j.ID), j.CreatedAt.Local().Format(time.DateTime), j.Status, j.Route, doc, pages)
	}

	fmt.Fprintf(os.Stdout, "\n%d jobs\n", len(list))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// --- show subcommand ---

var jobsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print one job as YAML",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobsShow,
}

func runJobsShow(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	job, err := store.Get(context.Background(), args[0])
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(job); err != nil {
		return err
	}
	return enc.Close()
}

// --- export subcommand ---

var jobsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the job history to YAML or JSON",
	Long: `Export writes the job history (optionally filtered by --status) to
stdout or to --out.`,
	RunE: runJobsExport,
}

func runJobsExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	outPath, _ := cmd.Flags().GetString("out")

	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	w := os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating %s: %w", outPath, err)
		}
		defer f.Close()
		w = f
	}

	opts := listOptsFromFlags(cmd)
	switch format {
	case "yaml", "":
		err = store.ExportYAML(context.Background(), w, opts)
	case "json":
		err = store.ExportJSON(context.Background(), w, opts)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}
	if outPath != "" {
		fmt.Fprintf(os.Stderr, "Exported to %s\n", outPath)
	}
	return nil
}

// --- shared helpers ---

func openStore(cmd *cobra.Command) (*jobs.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return jobs.NewStore(cfg.Store)
}

func listOptsFromFlags(cmd *cobra.Command) jobs.ListOptions {
	var opts jobs.ListOptions
	if cmd.Flags().Lookup("limit") != nil {
		opts.Limit, _ = cmd.Flags().GetInt("limit")
	}
	status, _ := cmd.Flags().GetString("status")
	opts.Status = types.ConversionStatus(status)
	return opts
}

func init() {
	jobsListCmd.Flags().Int("limit", 20, "maximum number of jobs")
	jobsListCmd.Flags().String("status", "", "only jobs with this status: converted, partial, failed")
	jobsListCmd.Flags().Bool("json", false, "output as JSON")

	jobsExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	jobsExportCmd.Flags().String("status", "", "only jobs with this status")
	jobsExportCmd.Flags().String("out", "", "write to this file instead of stdout")

	jobsCmd.AddCommand(jobsListCmd)
	jobsCmd.AddCommand(jobsShowCmd)
	jobsCmd.AddCommand(jobsExportCmd)
	rootCmd.AddCommand(jobsCmd)
}
