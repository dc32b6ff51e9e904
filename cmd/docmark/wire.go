// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pdiddy/docmark/internal/container"
	"github.com/pdiddy/docmark/internal/convert"
	"github.com/pdiddy/docmark/internal/deliver"
	"github.com/pdiddy/docmark/internal/jobs"
	"github.com/pdiddy/docmark/internal/ocr"
	"github.com/pdiddy/docmark/internal/ocrmerge"
	"github.com/pdiddy/docmark/internal/pipeline"
	"github.com/pdiddy/docmark/pkg/types"
)

// app holds everything a command needs to convert documents.
type app struct {
	cfg    types.Config
	runner *pipeline.Runner
	engine *ocrmerge.Engine
	sink   deliver.Chain
	store  *jobs.Store
}

func (a *app) Close() error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}

// buildOptions tweak how the pipeline is assembled.
type buildOptions struct {
	// region is the bounding box for the grounding prompt.
	region *[4]int

	// noStore skips opening the job history.
	noStore bool
}

// buildApp assembles the dispatcher, delivery chain, and job store from cfg.
// Missing optional backends (container runtime, markitdown image) only
// disable what depends on them.
func buildApp(ctx context.Context, cfg types.Config, opts buildOptions, log io.Writer) (*app, error) {
	if _, err := ocr.Prompt(cfg.OCR.PromptMode); err != nil {
		return nil, err
	}

	rt, rtErr := container.DetectRuntime(cfg.Container.Runtime)
	if rtErr != nil {
		fmt.Fprintf(os.Stderr, "warning: %v; PDF rasterization and markitdown are disabled\n", rtErr)
	}

	parser, err := buildParser(cfg.OCR, rt, log)
	if err != nil {
		return nil, err
	}
	parser.Region = opts.region

	engine := ocrmerge.NewEngine(parser, ocrmerge.NewCache(cfg.Cache.Root), ocrmerge.Options{
		Filter:      ocrmerge.Filter{NoImage: cfg.Merge.NoImage, NoTable: cfg.Merge.NoTable},
		DeleteCache: cfg.Cache.DeleteOnSuccess,
		Log:         log,
	})

	dispatcher := convert.NewDispatcher(engine, buildOffice(cfg.Office, rt, log), cfg.OCR.PromptMode, log)

	sink, err := deliver.FromConfig(ctx, cfg.Delivery)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, engine: engine, sink: sink}
	var recorder pipeline.Recorder
	if !opts.noStore {
		store, err := jobs.NewStore(cfg.Store)
		if err != nil {
			return nil, err
		}
		a.store = store
		recorder = store
	}

	var s deliver.Sink
	if len(sink) > 0 {
		s = sink
	}
	a.runner = pipeline.New(dispatcher, s, recorder, log)
	return a, nil
}

// buildParser picks the recognizer by backend and attaches the container
// rasterizer when a runtime and the poppler image are present.
func buildParser(cfg types.OCRConfig, rt container.Runtime, log io.Writer) (*ocr.DotsParser, error) {
	var rec ocr.Recognizer
	switch cfg.Backend {
	case types.BackendTesseract:
		rec = ocr.NewTesseractRecognizer(cfg.Languages)
	case types.BackendDots, "":
		c, err := ocr.NewDotsClient(cfg, log)
		if err != nil {
			return nil, err
		}
		rec = c
	default:
		return nil, fmt.Errorf("unknown OCR backend %q (valid: %s, %s)", cfg.Backend, types.BackendDots, types.BackendTesseract)
	}

	var rasterizer ocr.Rasterizer
	if rt != nil {
		r, err := ocr.NewContainerRasterizer(rt, cfg.RasterizerImage)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v; PDF documents will fail\n", err)
		} else {
			rasterizer = r
		}
	}
	return ocr.NewDotsParser(rec, rasterizer, cfg.DPI, log), nil
}

// buildOffice registers markitdown for every office type when its image is
// present, and the native spreadsheet converter for .xlsx in native mode.
func buildOffice(cfg types.OfficeConfig, rt container.Runtime, log io.Writer) *convert.Office {
	office := convert.NewOffice(log)
	if rt != nil {
		m, err := convert.NewMarkitdownConverter(rt)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		} else {
			office.Register(m, ".docx", ".pptx", ".xls", ".xlsx")
		}
	}
	if cfg.Backend != types.OfficeMarkitdown {
		office.Register(convert.XLSXConverter{}, ".xlsx")
	}
	return office
}
