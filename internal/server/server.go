// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the conversion pipeline over HTTP: upload a
// document, browse the job history, download results, and clear the cache.
package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pdiddy/docmark/internal/jobs"
	"github.com/pdiddy/docmark/internal/pipeline"
	"github.com/pdiddy/docmark/pkg/types"
)

// Runner converts and delivers one document.
type Runner interface {
	Run(ctx context.Context, path string) (*pipeline.Outcome, error)
}

// JobStore reads the job history.
type JobStore interface {
	Get(ctx context.Context, id string) (*types.Job, error)
	List(ctx context.Context, opts jobs.ListOptions) ([]types.Job, error)
}

// CacheClearer wipes the OCR cache.
type CacheClearer interface {
	Clear() error
}

// Options wire a Server.
type Options struct {
	Config types.ServerConfig

	// OutputDir holds the files served by the download route. Without an
	// output directory results stay next to each upload under InputDir.
	OutputDir string

	Runner Runner
	Jobs   JobStore
	Cache  CacheClearer
}

// Server is the HTTP front end.
type Server struct {
	addr      string
	inputDir  string
	outputDir string
	maxUpload int64

	runner Runner
	jobs   JobStore
	cache  CacheClearer

	engine *gin.Engine
}

// New builds the gin engine with all routes and middleware.
func New(opts Options) *Server {
	maxMB := opts.Config.MaxUploadMB
	if maxMB <= 0 {
		maxMB = 50
	}
	outDir := opts.OutputDir
	if outDir == "" {
		outDir = opts.Config.InputDir
	}
	s := &Server{
		addr:      opts.Config.Addr,
		inputDir:  opts.Config.InputDir,
		outputDir: outDir,
		maxUpload: maxMB << 20,
		runner:    opts.Runner,
		jobs:      opts.Jobs,
		cache:     opts.Cache,
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(Logger())

	r.GET("/healthz", s.health)

	v1 := r.Group("/api/v1")
	v1.POST("/convert", s.convert)
	v1.GET("/jobs", s.listJobs)
	v1.GET("/jobs/:id", s.getJob)
	v1.GET("/outputs/:name", s.download)
	v1.POST("/cache/clear", s.clearCache)

	s.engine = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.engine }

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		log.Printf("Server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
