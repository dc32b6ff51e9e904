// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package watch converts documents as they land in an inbox directory.
package watch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/pdiddy/docmark/internal/convert"
	"github.com/pdiddy/docmark/internal/pipeline"
)

// Runner converts and delivers one document.
type Runner interface {
	Run(ctx context.Context, path string) (*pipeline.Outcome, error)
}

// Watcher processes supported files created or written in Dir. A file is
// processed once no event for it has arrived for the settle delay, so
// partially copied files are not picked up. Files are processed one at a
// time in the order they first appeared.
type Watcher struct {
	dir    string
	settle time.Duration
	runner Runner
	log    io.Writer
}

// New returns a Watcher. A non-positive settle uses two seconds.
func New(dir string, settle time.Duration, runner Runner, log io.Writer) *Watcher {
	if settle <= 0 {
		settle = 2 * time.Second
	}
	if log == nil {
		log = io.Discard
	}
	return &Watcher{dir: dir, settle: settle, runner: runner, log: log}
}

// Run watches until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("creating inbox %s: %w", w.dir, err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fsw.Close()
	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}
	fmt.Fprintf(w.log, "watching: %s\n", w.dir)

	q := newQueue()
	tick := time.NewTicker(max(w.settle/4, 10*time.Millisecond))
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if path, ok := accept(ev); ok {
				q.touch(path, time.Now().Add(w.settle))
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(w.log, "warning: watcher: %v\n", err)
		case now := <-tick.C:
			for _, path := range q.ready(now) {
				if ctx.Err() != nil {
					return nil
				}
				w.process(ctx, path)
			}
		}
	}
}

func (w *Watcher) process(ctx context.Context, path string) {
	if _, err := os.Stat(path); err != nil {
		fmt.Fprintf(w.log, "skipped: %s (%v)\n", filepath.Base(path), err)
		return
	}
	out, err := w.runner.Run(ctx, path)
	if err != nil {
		fmt.Fprintf(w.log, "failed:  %s (%v)\n", filepath.Base(path), err)
		return
	}
	fmt.Fprintf(w.log, "%s: %s (job %s)\n", out.Job.Status, filepath.Base(path), out.Job.ID)
}

// accept reports whether ev is a create or write of a visible, supported
// regular file.
func accept(ev fsnotify.Event) (string, bool) {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return "", false
	}
	if strings.HasPrefix(filepath.Base(ev.Name), ".") || !convert.Supported(ev.Name) {
		return "", false
	}
	info, err := os.Stat(ev.Name)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return ev.Name, true
}

// queue keeps pending paths in arrival order with their settle deadline.
type queue struct {
	order    []string
	deadline map[string]time.Time
}

func newQueue() *queue {
	return &queue{deadline: make(map[string]time.Time)}
}

// touch adds path or pushes back its deadline without changing its place.
func (q *queue) touch(path string, at time.Time) {
	if _, ok := q.deadline[path]; !ok {
		q.order = append(q.order, path)
	}
	q.deadline[path] = at
}

// ready removes and returns the paths whose deadline has passed, in
// arrival order.
func (q *queue) ready(now time.Time) []string {
	var out []string
	keep := q.order[:0]
	for _, p := range q.order {
		if !now.Before(q.deadline[p]) {
			out = append(out, p)
			delete(q.deadline, p)
			continue
		}
		keep = append(keep, p)
	}
	q.order = keep
	return out
}
