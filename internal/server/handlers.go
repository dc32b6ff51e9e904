// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pdiddy/docmark/internal/convert"
	"github.com/pdiddy/docmark/internal/deliver"
	"github.com/pdiddy/docmark/internal/jobs"
	"github.com/pdiddy/docmark/pkg/types"
)

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// convert handles POST /api/v1/convert with a multipart "file" field. The
// upload is saved under input/<uuid>/ and processed before the response is
// sent.
func (s *Server) convert(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUpload)

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			handleError(c, err)
			return
		}
		respondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}

	name := filepath.Base(header.Filename)
	if name == "." || name == string(filepath.Separator) || strings.HasPrefix(name, ".") {
		handleError(c, deliver.ErrBadName)
		return
	}
	if _, err := convert.Route(name); err != nil {
		handleError(c, err)
		return
	}

	// Each upload gets its own directory so a same-named upload cannot
	// replace a document, or its output, while it waits for the runner.
	dir := filepath.Join(s.inputDir, uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		handleError(c, err)
		return
	}
	dst := filepath.Join(dir, name)
	if err := c.SaveUploadedFile(header, dst); err != nil {
		handleError(c, err)
		return
	}

	out, err := s.runner.Run(c.Request.Context(), dst)
	if err != nil {
		handleError(c, err)
		return
	}
	respondCreated(c, out)
}

// listJobs handles GET /api/v1/jobs?limit=&status=
func (s *Server) listJobs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	list, err := s.jobs.List(c.Request.Context(), jobs.ListOptions{
		Limit:  limit,
		Status: types.ConversionStatus(c.Query("status")),
	})
	if err != nil {
		handleError(c, err)
		return
	}
	respondOK(c, list)
}

// getJob handles GET /api/v1/jobs/:id
func (s *Server) getJob(c *gin.Context) {
	job, err := s.jobs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	respondOK(c, job)
}

// download handles GET /api/v1/outputs/:name
func (s *Server) download(c *gin.Context) {
	p, err := (&deliver.DirSink{Dir: s.outputDir}).Path(c.Param("name"))
	if err != nil {
		handleError(c, err)
		return
	}
	if filepath.Ext(p) != ".md" {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "output not found")
		return
	}
	if info, err := os.Stat(p); err != nil || info.IsDir() {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "output not found")
		return
	}
	c.Header("Content-Type", "text/markdown; charset=utf-8")
	c.File(p)
}

// clearCache handles POST /api/v1/cache/clear. With outputs=true the
// Markdown files in the output directory are removed as well.
func (s *Server) clearCache(c *gin.Context) {
	if err := s.cache.Clear(); err != nil {
		handleError(c, err)
		return
	}
	removed := []string{}
	if c.Query("outputs") == "true" {
		matches, err := filepath.Glob(filepath.Join(s.outputDir, "*.md"))
		if err != nil {
			handleError(c, err)
			return
		}
		for _, m := range matches {
			if err := os.Remove(m); err != nil && !errors.Is(err, os.ErrNotExist) {
				handleError(c, err)
				return
			}
			removed = append(removed, filepath.Base(m))
		}
	}
	respondOK(c, gin.H{"cache_cleared": true, "outputs_removed": removed})
}
