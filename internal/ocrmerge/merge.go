// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ocrmerge merges per-page OCR fragments into one Markdown document.
//
// An external Parser writes one Markdown fragment per page into the cache
// together with a line-delimited index. The Engine reads the index in order,
// filters each fragment, concatenates the results next to the source
// document, and removes the document's cache entries.
package ocrmerge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"unicode/utf8"

	"github.com/pdiddy/docmark/pkg/types"
)

var errInvalidUTF8 = errors.New("fragment is not valid UTF-8")

// Parser is the OCR step. Parse must populate outputRoot/<stem>/ with
// fragment files and write outputRoot/<stem>.jsonl. Retries against remote
// services are the parser's concern; the engine treats each call as
// all-or-nothing.
type Parser interface {
	Parse(ctx context.Context, documentPath, outputRoot, promptMode string) error
}

// Options configure an Engine.
type Options struct {
	Filter Filter

	// DeleteCache removes the document's fragment directory and index after
	// the output has been written.
	DeleteCache bool

	// Log receives one status line per step. Nil discards.
	Log io.Writer
}

// Engine runs parse, merge, and cleanup for one document at a time.
type Engine struct {
	parser      Parser
	cache       Cache
	filter      Filter
	deleteCache bool
	log         io.Writer

	mu sync.Mutex
}

// NewEngine returns an Engine that parses with p into cache.
func NewEngine(p Parser, cache Cache, opts Options) *Engine {
	w := opts.Log
	if w == nil {
		w = io.Discard
	}
	return &Engine{
		parser:      p,
		cache:       cache,
		filter:      opts.Filter,
		deleteCache: opts.DeleteCache,
		log:         w,
	}
}

// Cache returns the engine's cache.
func (e *Engine) Cache() Cache { return e.cache }

// Process parses the document at documentPath and merges its fragments into
// <document dir>/<stem>.md, replacing any existing file. It returns a Report
// whose Output field is the merged path.
//
// A missing document or index file yields a NotFoundError; an index without
// usable records yields an EmptyIndexError and no output is written. Missing
// or unreadable fragments, including ones that are not valid UTF-8, are
// skipped and recorded in the Report. Cache
// cleanup failures are recorded but never fail a written merge.
func (e *Engine) Process(ctx context.Context, documentPath, promptMode string) (*Report, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	doc, err := types.NewDocument(documentPath)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", documentPath, err)
	}
	if _, err := os.Stat(doc.Path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &NotFoundError{What: "document", Path: doc.Path}
		}
		return nil, fmt.Errorf("checking %s: %w", doc.Path, err)
	}

	stem := doc.Stem()
	indexPath := e.cache.IndexPath(stem)
	report := &Report{
		Document: doc.Path,
		Index:    indexPath,
		Output:   doc.MarkdownPath(),
	}

	if err := e.cache.Ensure(); err != nil {
		return nil, err
	}

	fmt.Fprintf(e.log, "parsing: %s (prompt %s)\n", doc.Path, promptMode)
	if err := e.parser.Parse(ctx, doc.Path, e.cache.Root, promptMode); err != nil {
		return nil, fmt.Errorf("ocr parse of %s: %w", doc.Path, err)
	}

	if _, err := os.Stat(indexPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &NotFoundError{What: "OCR result file", Path: indexPath}
		}
		return nil, fmt.Errorf("checking index %s: %w", indexPath, err)
	}

	idx, err := LoadIndex(indexPath, e.cache.DocumentDir(stem))
	if err != nil {
		return nil, err
	}
	report.SkippedRecords = idx.Skipped
	for _, s := range idx.Skipped {
		fmt.Fprintf(e.log, "skipped: %s line %d (%v)\n", indexPath, s.Line, s.Err)
	}

	if err := e.merge(idx.Paths, report); err != nil {
		return nil, err
	}
	fmt.Fprintf(e.log, "written: %s (%d of %d fragments)\n", report.Output, report.Merged(), len(report.Fragments))

	if e.deleteCache {
		if err := e.cache.Remove(stem); err != nil {
			report.Cleanup = &CleanupError{Path: e.cache.DocumentDir(stem), Err: err}
			fmt.Fprintf(e.log, "warning: %v\n", report.Cleanup)
		} else {
			fmt.Fprintf(e.log, "cleaned: %s\n", e.cache.DocumentDir(stem))
		}
	}

	return report, nil
}

// merge truncates the output and appends each filtered fragment in order,
// with no separators. Only output write failures are fatal.
func (e *Engine) merge(paths []string, report *Report) error {
	out, err := os.Create(report.Output)
	if err != nil {
		return fmt.Errorf("creating %s: %w", report.Output, err)
	}

	seen := make(map[string]bool, len(paths))
	for _, p := range paths {
		if seen[p] {
			report.Duplicates = append(report.Duplicates, p)
			fmt.Fprintf(e.log, "warning: %s referenced more than once\n", p)
		}
		seen[p] = true

		outcome := FragmentOutcome{Path: p}
		data, err := os.ReadFile(p)
		switch {
		case errors.Is(err, os.ErrNotExist):
			outcome.Status = FragmentMissing
			outcome.Err = &FragmentReadError{Path: p, Err: err}
			fmt.Fprintf(e.log, "missing: %s\n", p)
		case err != nil:
			outcome.Status = FragmentUnreadable
			outcome.Err = &FragmentReadError{Path: p, Err: err}
			fmt.Fprintf(e.log, "failed:  %s (%v)\n", p, err)
		case !utf8.Valid(data):
			outcome.Status = FragmentUnreadable
			outcome.Err = &FragmentReadError{Path: p, Err: errInvalidUTF8}
			fmt.Fprintf(e.log, "failed:  %s (%v)\n", p, errInvalidUTF8)
		default:
			text := e.filter.Apply(string(data))
			if _, err := io.WriteString(out, text); err != nil {
				out.Close()
				return fmt.Errorf("writing %s: %w", report.Output, err)
			}
			outcome.Status = FragmentMerged
			outcome.Bytes = len(text)
			fmt.Fprintf(e.log, "merged:  %s\n", p)
		}
		report.Fragments = append(report.Fragments, outcome)
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", report.Output, err)
	}
	return nil
}
