// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package watch

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/docmark/internal/pipeline"
	"github.com/pdiddy/docmark/pkg/types"
)

type recordingRunner struct {
	mu    sync.Mutex
	paths []string
}

func (r *recordingRunner) Run(_ context.Context, path string) (*pipeline.Outcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
	return &pipeline.Outcome{Job: types.Job{ID: "j", Status: types.ConversionDone}}, nil
}

func (r *recordingRunner) seen() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

func TestAccept(t *testing.T) {
	dir := t.TempDir()
	pdf := filepath.Join(dir, "scan.pdf")
	require.NoError(t, os.WriteFile(pdf, []byte("x"), 0o644))
	txt := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txt, []byte("x"), 0o644))
	hidden := filepath.Join(dir, ".scan.pdf")
	require.NoError(t, os.WriteFile(hidden, []byte("x"), 0o644))
	sub := filepath.Join(dir, "folder.pdf")
	require.NoError(t, os.Mkdir(sub, 0o755))

	tests := []struct {
		name string
		ev   fsnotify.Event
		want bool
	}{
		{name: "create", ev: fsnotify.Event{Name: pdf, Op: fsnotify.Create}, want: true},
		{name: "write", ev: fsnotify.Event{Name: pdf, Op: fsnotify.Write}, want: true},
		{name: "chmod", ev: fsnotify.Event{Name: pdf, Op: fsnotify.Chmod}},
		{name: "remove", ev: fsnotify.Event{Name: pdf, Op: fsnotify.Remove}},
		{name: "unsupported", ev: fsnotify.Event{Name: txt, Op: fsnotify.Create}},
		{name: "hidden", ev: fsnotify.Event{Name: hidden, Op: fsnotify.Create}},
		{name: "directory", ev: fsnotify.Event{Name: sub, Op: fsnotify.Create}},
		{name: "vanished", ev: fsnotify.Event{Name: filepath.Join(dir, "gone.png"), Op: fsnotify.Create}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := accept(tt.ev)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestQueue(t *testing.T) {
	q := newQueue()
	t0 := time.Unix(1000, 0)
	q.touch("a", t0.Add(time.Second))
	q.touch("b", t0.Add(2*time.Second))
	q.touch("a", t0.Add(3*time.Second))

	assert.Empty(t, q.ready(t0))
	assert.Equal(t, []string{"b"}, q.ready(t0.Add(2*time.Second)))
	assert.Equal(t, []string{"a"}, q.ready(t0.Add(3*time.Second)))
	assert.Empty(t, q.order)

	q.touch("c", t0)
	q.touch("d", t0)
	assert.Equal(t, []string{"c", "d"}, q.ready(t0))
}

func TestWatcher_ProcessesArrivalsInOrder(t *testing.T) {
	dir := t.TempDir()
	runner := &recordingRunner{}
	var log bytes.Buffer
	w := New(dir, 50*time.Millisecond, runner, &log)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.pdf"), []byte("1"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "skip.txt"), []byte("1"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.png"), []byte("1"), 0o644))

	require.Eventually(t, func() bool { return len(runner.seen()) >= 2 }, 5*time.Second, 20*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, []string{filepath.Join(dir, "a.pdf"), filepath.Join(dir, "b.png")}, runner.seen())
}
