// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ocr renders documents into page images, recognizes each page, and
// writes per-page Markdown fragments plus a line-delimited index into the
// cache for ocrmerge.
package ocr

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/docmark/internal/ocrmerge"
)

// imageExts are documents recognized directly as a single page.
var imageExts = map[string]bool{".png": true, ".jpg": true, ".jpeg": true}

// DotsParser implements ocrmerge.Parser on top of a Recognizer.
type DotsParser struct {
	recognizer Recognizer
	rasterizer Rasterizer
	dpi        int
	log        io.Writer

	// Region is the bounding box sent with the grounding prompt.
	Region *[4]int
}

// NewDotsParser returns a parser. rasterizer may be nil when only images
// are processed. Status lines go to log (nil discards).
func NewDotsParser(r Recognizer, rasterizer Rasterizer, dpi int, log io.Writer) *DotsParser {
	if log == nil {
		log = io.Discard
	}
	return &DotsParser{recognizer: r, rasterizer: rasterizer, dpi: dpi, log: log}
}

// Parse writes outputRoot/<stem>/<stem>[_page_<n>][_nohf].md for each
// recognized page and outputRoot/<stem>.jsonl with one record per page.
// Pages that fail recognition are logged and left out of the index; Parse
// fails only when no page could be recognized.
func (p *DotsParser) Parse(ctx context.Context, documentPath, outputRoot, promptMode string) error {
	prompt, err := p.promptFor(promptMode)
	if err != nil {
		return err
	}

	ext := strings.ToLower(filepath.Ext(documentPath))
	stem := strings.TrimSuffix(filepath.Base(documentPath), filepath.Ext(documentPath))
	cache := ocrmerge.NewCache(outputRoot)
	docDir := cache.DocumentDir(stem)
	if err := os.MkdirAll(docDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", docDir, err)
	}

	pages, err := p.pages(ctx, documentPath, ext, docDir)
	if err != nil {
		return err
	}

	var records []ocrmerge.Record
	for i, pagePath := range pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		name := stem
		if ext == ".pdf" {
			name = fmt.Sprintf("%s_page_%d", stem, i)
		}
		rec, err := p.parsePage(ctx, documentPath, pagePath, filepath.Join(docDir, name), prompt, promptMode)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fmt.Fprintf(p.log, "failed:  page %d of %s (%v)\n", i, filepath.Base(documentPath), err)
			continue
		}
		rec.PageNo = i
		records = append(records, rec)
		fmt.Fprintf(p.log, "recognized: page %d of %s\n", i, filepath.Base(documentPath))
	}

	if len(records) == 0 {
		return fmt.Errorf("no page of %s could be recognized", documentPath)
	}
	return writeIndex(cache.IndexPath(stem), records)
}

func (p *DotsParser) promptFor(mode string) (string, error) {
	prompt, err := Prompt(mode)
	if err != nil {
		return "", err
	}
	if mode == PromptGroundingOCR {
		if p.Region == nil {
			return "", fmt.Errorf("prompt mode %s requires a bounding box", mode)
		}
		r := p.Region
		prompt += fmt.Sprintf("[%d, %d, %d, %d]", r[0], r[1], r[2], r[3])
	}
	return prompt, nil
}

// pages returns the page images of the document in order.
func (p *DotsParser) pages(ctx context.Context, documentPath, ext, docDir string) ([]string, error) {
	switch {
	case imageExts[ext]:
		return []string{documentPath}, nil
	case ext == ".pdf":
		if p.rasterizer == nil {
			return nil, fmt.Errorf("no rasterizer configured for %s", documentPath)
		}
		return p.rasterizer.Rasterize(ctx, documentPath, filepath.Join(docDir, "pages"), p.dpi)
	default:
		return nil, fmt.Errorf("unsupported document type %q", ext)
	}
}

// parsePage recognizes one page and writes base.md and base_nohf.md.
func (p *DotsParser) parsePage(ctx context.Context, documentPath, pagePath, base, prompt, mode string) (ocrmerge.Record, error) {
	img, err := os.ReadFile(pagePath)
	if err != nil {
		return ocrmerge.Record{}, fmt.Errorf("reading page image: %w", err)
	}

	raw, err := p.recognizer.Recognize(ctx, Page{Image: img, MIME: mimeFor(pagePath)}, prompt)
	if err != nil {
		return ocrmerge.Record{}, err
	}

	full, nohf := raw, raw
	if isLayoutMode(mode) {
		cells, err := parseCells(raw)
		switch {
		case err != nil:
			fmt.Fprintf(p.log, "warning: %s: layout not decodable, keeping raw text (%v)\n", filepath.Base(base), err)
		case mode == PromptLayoutOnly:
			full = renderLayoutOnly(cells)
			nohf = full
		default:
			full, nohf = renderCells(cells, img)
		}
		if err == nil {
			if err := writeJSON(base+".json", cells); err != nil {
				return ocrmerge.Record{}, err
			}
		}
	}

	mdPath := base + ".md"
	nohfPath := base + "_nohf.md"
	if err := os.WriteFile(mdPath, []byte(full), 0o644); err != nil {
		return ocrmerge.Record{}, fmt.Errorf("writing %s: %w", mdPath, err)
	}
	if err := os.WriteFile(nohfPath, []byte(nohf), 0o644); err != nil {
		return ocrmerge.Record{}, fmt.Errorf("writing %s: %w", nohfPath, err)
	}

	return ocrmerge.Record{
		InputPath:   documentPath,
		FilePath:    pagePath,
		MDPath:      mdPath,
		FragmentRef: nohfPath,
	}, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// writeIndex writes one JSON record per line, truncating any previous index.
func writeIndex(path string, records []ocrmerge.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating index %s: %w", path, err)
	}
	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			f.Close()
			return fmt.Errorf("writing index %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("writing index %s: %w", path, err)
	}
	return f.Close()
}

// Existing is a Parser that does nothing. It merges fragments and an index
// already present in the cache, e.g. from an earlier run with cleanup off.
type Existing struct{}

// Parse implements ocrmerge.Parser.
func (Existing) Parse(context.Context, string, string, string) error { return nil }
