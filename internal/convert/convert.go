// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert routes documents to the OCR merge pipeline or to an office
// converter and writes the resulting Markdown next to the source file.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/docmark/internal/ocrmerge"
	"github.com/pdiddy/docmark/pkg/types"
)

// ErrUnsupported is returned for file types no route accepts.
var ErrUnsupported = errors.New("unsupported file type")

var (
	ocrExts    = map[string]bool{".pdf": true, ".jpeg": true, ".jpg": true, ".png": true}
	officeExts = map[string]bool{".docx": true, ".pptx": true, ".xls": true, ".xlsx": true}
)

// Route picks the pipeline for path by its lower-cased extension.
func Route(path string) (types.Route, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case ocrExts[ext]:
		return types.RouteOCR, nil
	case officeExts[ext]:
		return types.RouteOffice, nil
	default:
		return "", fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupported)
	}
}

// Supported reports whether Route accepts path.
func Supported(path string) bool {
	_, err := Route(path)
	return err == nil
}

// Converter transforms an office document into Markdown text. Different
// backends (markitdown, excelize) implement this interface.
type Converter interface {
	// Convert reads the document at path and returns the Markdown content.
	Convert(ctx context.Context, path string) (string, error)
}

// Office converts office documents with a converter chosen by extension.
type Office struct {
	converters map[string]Converter
	log        io.Writer
}

// NewOffice returns an Office with no converters. Status lines go to log
// (nil discards).
func NewOffice(log io.Writer) *Office {
	if log == nil {
		log = io.Discard
	}
	return &Office{converters: make(map[string]Converter), log: log}
}

// Register makes c handle the given extensions, replacing earlier entries.
func (o *Office) Register(c Converter, exts ...string) {
	for _, ext := range exts {
		o.converters[strings.ToLower(ext)] = c
	}
}

// Process converts the document and writes <dir>/<stem>.md, replacing any
// existing file. It returns the output path.
func (o *Office) Process(ctx context.Context, path string) (string, error) {
	doc, err := types.NewDocument(path)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", path, err)
	}
	if _, err := os.Stat(doc.Path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", &ocrmerge.NotFoundError{What: "document", Path: doc.Path}
		}
		return "", fmt.Errorf("checking %s: %w", doc.Path, err)
	}

	c, ok := o.converters[doc.Ext()]
	if !ok {
		return "", fmt.Errorf("no office converter configured for %s", doc.Ext())
	}

	md, err := c.Convert(ctx, doc.Path)
	if err != nil {
		return "", err
	}

	out := doc.MarkdownPath()
	if err := os.WriteFile(out, []byte(md), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", out, err)
	}
	fmt.Fprintf(o.log, "written: %s\n", out)
	return out, nil
}
