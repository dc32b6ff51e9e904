// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the docmark CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/docmark/internal/secrets"
	"github.com/pdiddy/docmark/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets secrets.Set

// rootCmd is the base command for the docmark CLI.
var rootCmd = &cobra.Command{
	Use:   "docmark",
	Short: "Convert scanned and office documents to Markdown",
	Long: `docmark converts PDFs and images through a vision OCR model and office
documents (docx, pptx, xls, xlsx) through markitdown or a native converter,
writing one Markdown file per document.

OCR runs page by page into a cache directory; the per-page fragments are
then merged in page order, optionally stripped of images and tables, and
the cache entries for the document are removed.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/", os.Stderr)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./docmark.yaml or ~/.config/docmark/docmark.yaml)")
	pf.String("cache-dir", "", "OCR cache directory (default ./cache)")
	pf.Bool("no-image", true, "strip Markdown images from OCR output")
	pf.Bool("no-table", false, "strip HTML tables from OCR output")
	pf.Bool("keep-cache", false, "keep per-page OCR fragments after merging")
	pf.String("prompt-mode", "", "OCR prompt mode: prompt_layout_all_en, prompt_layout_only_en, prompt_ocr, prompt_grounding_ocr")
	pf.String("output-dir", "", "directory that receives finished Markdown (default ./output)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("docmark")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "docmark"))
		}
	}

	setDefaults(types.DefaultConfig())
	viper.SetEnvPrefix("DOCMARK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setDefaults registers every key so that DOCMARK_* variables reach
// Unmarshal even when no config file mentions them.
func setDefaults(d types.Config) {
	viper.SetDefault("cache.root", d.Cache.Root)
	viper.SetDefault("cache.delete_on_success", d.Cache.DeleteOnSuccess)
	viper.SetDefault("merge.no_image", d.Merge.NoImage)
	viper.SetDefault("merge.no_table", d.Merge.NoTable)
	viper.SetDefault("ocr.backend", string(d.OCR.Backend))
	viper.SetDefault("ocr.base_url", d.OCR.BaseURL)
	viper.SetDefault("ocr.api_key", d.OCR.APIKey)
	viper.SetDefault("ocr.model", d.OCR.Model)
	viper.SetDefault("ocr.prompt_mode", d.OCR.PromptMode)
	viper.SetDefault("ocr.dpi", d.OCR.DPI)
	viper.SetDefault("ocr.max_attempts", d.OCR.MaxAttempts)
	viper.SetDefault("ocr.requests_per_second", d.OCR.RequestsPerSecond)
	viper.SetDefault("ocr.timeout", d.OCR.Timeout)
	viper.SetDefault("ocr.rasterizer_image", d.OCR.RasterizerImage)
	viper.SetDefault("ocr.languages", d.OCR.Languages)
	viper.SetDefault("office.backend", string(d.Office.Backend))
	viper.SetDefault("container.runtime", d.Container.Runtime)
	viper.SetDefault("delivery.output_dir", d.Delivery.OutputDir)
	viper.SetDefault("delivery.s3.bucket", d.Delivery.S3.Bucket)
	viper.SetDefault("delivery.s3.prefix", d.Delivery.S3.Prefix)
	viper.SetDefault("delivery.s3.region", d.Delivery.S3.Region)
	viper.SetDefault("delivery.s3.endpoint", d.Delivery.S3.Endpoint)
	viper.SetDefault("delivery.s3.access_key", "")
	viper.SetDefault("delivery.s3.secret_key", "")
	viper.SetDefault("store.path", d.Store.Path)
	viper.SetDefault("server.addr", d.Server.Addr)
	viper.SetDefault("server.input_dir", d.Server.InputDir)
	viper.SetDefault("server.max_upload_mb", d.Server.MaxUploadMB)
	viper.SetDefault("watch.settle", d.Watch.Settle)
}

// loadConfig merges defaults, the config file, DOCMARK_* variables, secrets,
// and explicitly set persistent flags, in increasing priority.
func loadConfig(cmd *cobra.Command) (types.Config, error) {
	cfg := types.DefaultConfig()
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("reading configuration: %w", err)
	}

	loadedSecrets.ApplyOCR(&cfg.OCR)
	loadedSecrets.ApplyS3(&cfg.Delivery.S3)

	flags := cmd.Flags()
	if flags.Changed("cache-dir") {
		cfg.Cache.Root, _ = flags.GetString("cache-dir")
	}
	if flags.Changed("no-image") {
		cfg.Merge.NoImage, _ = flags.GetBool("no-image")
	}
	if flags.Changed("no-table") {
		cfg.Merge.NoTable, _ = flags.GetBool("no-table")
	}
	if flags.Changed("keep-cache") {
		keep, _ := flags.GetBool("keep-cache")
		cfg.Cache.DeleteOnSuccess = !keep
	}
	if flags.Changed("prompt-mode") {
		cfg.OCR.PromptMode, _ = flags.GetString("prompt-mode")
	}
	if flags.Changed("output-dir") {
		cfg.Delivery.OutputDir, _ = flags.GetString("output-dir")
	}
	return cfg, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
