// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs one document through conversion, delivery, and the
// job history. The CLI, the HTTP server, and the inbox watcher share it.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/pdiddy/docmark/internal/convert"
	"github.com/pdiddy/docmark/internal/deliver"
	"github.com/pdiddy/docmark/internal/jobs"
	"github.com/pdiddy/docmark/pkg/types"
)

// Processor converts one document.
type Processor interface {
	Process(ctx context.Context, path string) (*convert.Result, error)
}

// Recorder stores finished jobs.
type Recorder interface {
	Record(ctx context.Context, job *types.Job) error
}

// Outcome is what Run reports for one document.
type Outcome struct {
	Job    types.Job       `json:"job" yaml:"job"`
	Result *convert.Result `json:"result,omitempty" yaml:"result,omitempty"`
}

// Runner runs documents strictly one at a time.
type Runner struct {
	proc     Processor
	sink     deliver.Sink
	recorder Recorder
	log      io.Writer

	mu sync.Mutex
}

// New returns a Runner. sink and recorder may be nil.
func New(proc Processor, sink deliver.Sink, recorder Recorder, log io.Writer) *Runner {
	if log == nil {
		log = io.Discard
	}
	return &Runner{proc: proc, sink: sink, recorder: recorder, log: log}
}

// Run converts path, delivers the output, and records the job. The returned
// error is the conversion or delivery error. The job is recorded either
// way; a recording failure is only logged.
func (r *Runner) Run(ctx context.Context, path string) (*Outcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	res, err := r.proc.Process(ctx, path)
	job := jobs.NewJob(path, res, err, 0)

	if err == nil && r.sink != nil {
		loc, derr := r.sink.Deliver(ctx, res.OutputPath)
		if derr != nil {
			err = fmt.Errorf("delivering %s: %w", res.OutputPath, derr)
			job.Status = types.ConversionFailed
			job.Error = err.Error()
			fmt.Fprintf(r.log, "failed:  %v\n", err)
		} else {
			job.Delivered = loc
			fmt.Fprintf(r.log, "delivered: %s\n", loc)
		}
	}

	job.Duration = time.Since(start)
	if r.recorder != nil {
		if rerr := r.recorder.Record(ctx, &job); rerr != nil {
			fmt.Fprintf(r.log, "warning: recording job for %s: %v\n", path, rerr)
		}
	}
	return &Outcome{Job: job, Result: res}, err
}

// BatchResult holds the outcome of a batch run.
type BatchResult struct {
	Converted int
	Partial   int
	Failed    int
	Outcomes  []*Outcome
}

// Total returns the total number of documents processed.
func (b BatchResult) Total() int {
	return b.Converted + b.Partial + b.Failed
}

// HasFailures reports whether any document failed.
func (b BatchResult) HasFailures() bool {
	return b.Failed > 0
}

// RunBatch runs paths in order, printing a summary when done. A cancelled
// context stops the batch; remaining documents are not attempted.
func (r *Runner) RunBatch(ctx context.Context, paths []string) BatchResult {
	var result BatchResult
	for _, p := range paths {
		if ctx.Err() != nil {
			break
		}
		out, _ := r.Run(ctx, p)
		result.Outcomes = append(result.Outcomes, out)
		switch out.Job.Status {
		case types.ConversionDone:
			result.Converted++
		case types.ConversionPartial:
			result.Partial++
		default:
			result.Failed++
		}
	}
	fmt.Fprintf(r.log, "\nBatch summary: %d converted, %d partial, %d failed (total: %d)\n",
		result.Converted, result.Partial, result.Failed, result.Total())
	return result
}

// Idle runs fn while no document is being processed, e.g. to clear the
// cache.
func (r *Runner) Idle(fn func() error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn()
}
