// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ocr

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/docmark/internal/container"
)

const pagePrefix = "page"

// Rasterizer renders every page of a PDF into outDir and returns the page
// image paths in page order.
type Rasterizer interface {
	Rasterize(ctx context.Context, pdfPath, outDir string, dpi int) ([]string, error)
}

// ContainerRasterizer runs poppler's pdftoppm inside a container image.
type ContainerRasterizer struct {
	runtime container.Runtime
	image   string
}

// NewContainerRasterizer verifies that image exists in rt.
func NewContainerRasterizer(rt container.Runtime, image string) (*ContainerRasterizer, error) {
	if err := rt.ImageExists(image); err != nil {
		return nil, fmt.Errorf("rasterizer image not available in %s: %w", rt.Name(), err)
	}
	return &ContainerRasterizer{runtime: rt, image: image}, nil
}

// Rasterize renders pdfPath at dpi into outDir as page-<n>.png.
func (r *ContainerRasterizer) Rasterize(ctx context.Context, pdfPath, outDir string, dpi int) ([]string, error) {
	if dpi <= 0 {
		dpi = 200
	}
	absPDF, err := filepath.Abs(pdfPath)
	if err != nil {
		return nil, err
	}
	absOut, err := filepath.Abs(outDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(absOut, 0o755); err != nil {
		return nil, fmt.Errorf("creating page directory: %w", err)
	}

	opts := container.RunOptions{
		Mounts: []container.Mount{
			{Source: filepath.Dir(absPDF), Target: "/input", ReadOnly: true},
			{Source: absOut, Target: "/output"},
		},
		Args: []string{
			"pdftoppm", "-r", strconv.Itoa(dpi), "-png",
			"/input/" + filepath.Base(absPDF), "/output/" + pagePrefix,
		},
		Offline: true,
	}
	if err := r.runtime.Run(ctx, r.image, opts, nil, io.Discard); err != nil {
		return nil, fmt.Errorf("rasterizing %s: %w", pdfPath, err)
	}

	pages, err := listPages(absOut)
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("rasterizing %s: no pages produced", pdfPath)
	}
	return pages, nil
}

// listPages returns page-<n>.png files in dir ordered by n. pdftoppm pads
// the page number to the width of the page count.
func listPages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading page directory: %w", err)
	}
	type page struct {
		n    int
		path string
	}
	var pages []page
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, pagePrefix+"-") || filepath.Ext(name) != ".png" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, pagePrefix+"-"), ".png"))
		if err != nil {
			continue
		}
		pages = append(pages, page{n: n, path: filepath.Join(dir, name)})
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].n < pages[j].n })

	paths := make([]string, len(pages))
	for i, p := range pages {
		paths[i] = p.path
	}
	return paths, nil
}
