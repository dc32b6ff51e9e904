// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docmark/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the upload API",
	Long: `Serve accepts document uploads over HTTP, converts each one through the
same pipeline as convert, and exposes the job history, finished Markdown,
and cache maintenance.

  POST /api/v1/convert         multipart field "file"
  GET  /api/v1/jobs            ?limit=&status=
  GET  /api/v1/jobs/:id
  GET  /api/v1/outputs/:name
  POST /api/v1/cache/clear     ?outputs=true also removes results`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("addr") {
		cfg.Server.Addr, _ = cmd.Flags().GetString("addr")
	}

	ctx, stop := signalContext()
	defer stop()

	a, err := buildApp(ctx, cfg, buildOptions{}, os.Stdout)
	if err != nil {
		return err
	}
	defer a.Close()

	outDir := ""
	if d := a.sink.Dir(); d != nil {
		outDir = d.Dir
	}

	srv := server.New(server.Options{
		Config:    cfg.Server,
		OutputDir: outDir,
		Runner:    a.runner,
		Jobs:      a.store,
		Cache:     idleClearer{a},
	})
	return srv.ListenAndServe(ctx)
}

// idleClearer clears the OCR cache between conversions.
type idleClearer struct{ a *app }

func (c idleClearer) Clear() error {
	return c.a.runner.Idle(c.a.engine.Cache().Clear)
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default server.addr, :8080)")

	rootCmd.AddCommand(serveCmd)
}
