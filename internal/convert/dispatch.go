// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pdiddy/docmark/internal/ocrmerge"
	"github.com/pdiddy/docmark/pkg/types"
)

// Result is the outcome of converting one document.
type Result struct {
	Document   string                 `json:"document" yaml:"document"`
	Route      types.Route            `json:"route" yaml:"route"`
	Status     types.ConversionStatus `json:"status" yaml:"status"`
	OutputPath string                 `json:"output" yaml:"output"`
	// Report is set for the OCR route only.
	Report  *ocrmerge.Report `json:"report,omitempty" yaml:"report,omitempty"`
	Outline []Heading        `json:"outline,omitempty" yaml:"outline,omitempty"`
}

// Dispatcher sends each document down its route.
type Dispatcher struct {
	engine     *ocrmerge.Engine
	office     *Office
	promptMode string
	log        io.Writer
}

// NewDispatcher returns a Dispatcher. Either engine or office may be nil,
// which disables that route.
func NewDispatcher(engine *ocrmerge.Engine, office *Office, promptMode string, log io.Writer) *Dispatcher {
	if log == nil {
		log = io.Discard
	}
	return &Dispatcher{engine: engine, office: office, promptMode: promptMode, log: log}
}

// Engine returns the OCR merge engine, or nil.
func (d *Dispatcher) Engine() *ocrmerge.Engine { return d.engine }

// Process converts the document at path and returns where the Markdown
// was written.
func (d *Dispatcher) Process(ctx context.Context, path string) (*Result, error) {
	res, err := d.process(ctx, path)
	if err != nil {
		fmt.Fprintf(d.log, "failed:  %s (%v)\n", filepath.Base(path), err)
		return nil, err
	}
	fmt.Fprintf(d.log, "%s: %s -> %s\n", res.Status, filepath.Base(path), res.OutputPath)
	return res, nil
}

func (d *Dispatcher) process(ctx context.Context, path string) (*Result, error) {
	route, err := Route(path)
	if err != nil {
		return nil, err
	}
	res := &Result{Document: path, Route: route, Status: types.ConversionDone}

	switch route {
	case types.RouteOCR:
		if d.engine == nil {
			return nil, errors.New("OCR route not configured")
		}
		rep, err := d.engine.Process(ctx, path, d.promptMode)
		if err != nil {
			return nil, err
		}
		res.Report = rep
		res.OutputPath = rep.Output
		if rep.Partial() {
			res.Status = types.ConversionPartial
		}
	case types.RouteOffice:
		if d.office == nil {
			return nil, errors.New("office route not configured")
		}
		out, err := d.office.Process(ctx, path)
		if err != nil {
			return nil, err
		}
		res.OutputPath = out
	}

	if data, err := os.ReadFile(res.OutputPath); err == nil {
		res.Outline = Outline(data)
	}
	return res, nil
}
