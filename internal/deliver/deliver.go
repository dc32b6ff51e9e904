// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package deliver moves converted Markdown to its destination: an output
// directory, an S3 bucket, or both.
package deliver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/docmark/pkg/types"
)

// Sink delivers the file at path and returns where it ended up.
type Sink interface {
	Deliver(ctx context.Context, path string) (string, error)
}

// Chain runs sinks in order. When a sink relocates the file on disk
// (DirSink), later sinks read it from the new location. The returned
// location is the last sink's.
type Chain []Sink

// Deliver implements Sink. An empty chain returns path unchanged.
func (c Chain) Deliver(ctx context.Context, path string) (string, error) {
	loc, cur := path, path
	for _, s := range c {
		l, err := s.Deliver(ctx, cur)
		if err != nil {
			return "", err
		}
		loc = l
		if _, ok := s.(*DirSink); ok {
			cur = l
		}
	}
	return loc, nil
}

// FromConfig builds the chain for cfg: a DirSink when OutputDir is set,
// then an S3Sink when a bucket is set.
func FromConfig(ctx context.Context, cfg types.DeliveryConfig) (Chain, error) {
	var c Chain
	if cfg.OutputDir != "" {
		d, err := NewDirSink(cfg.OutputDir)
		if err != nil {
			return nil, err
		}
		c = append(c, d)
	}
	if cfg.S3.Bucket != "" {
		s, err := NewS3Sink(ctx, cfg.S3)
		if err != nil {
			return nil, err
		}
		c = append(c, s)
	}
	return c, nil
}

// Dir returns the chain's DirSink, or nil.
func (c Chain) Dir() *DirSink {
	for _, s := range c {
		if d, ok := s.(*DirSink); ok {
			return d
		}
	}
	return nil
}

// ErrBadName is returned by DirSink.Path for names that are not a plain
// file name.
var ErrBadName = errors.New("invalid output name")

// DirSink moves files into Dir, replacing any file of the same name.
type DirSink struct {
	Dir string
}

// NewDirSink creates dir if needed.
func NewDirSink(dir string) (*DirSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory %s: %w", dir, err)
	}
	return &DirSink{Dir: filepath.Clean(dir)}, nil
}

// Deliver implements Sink.
func (d *DirSink) Deliver(_ context.Context, path string) (string, error) {
	dest := filepath.Join(d.Dir, filepath.Base(path))
	if same(path, dest) {
		return dest, nil
	}
	if err := os.Remove(dest); err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("replacing %s: %w", dest, err)
	}
	if err := os.Rename(path, dest); err == nil {
		return dest, nil
	}
	// Rename fails across filesystems.
	if err := copyFile(path, dest); err != nil {
		return "", fmt.Errorf("moving %s to %s: %w", path, d.Dir, err)
	}
	if err := os.Remove(path); err != nil {
		return "", fmt.Errorf("removing %s after copy: %w", path, err)
	}
	return dest, nil
}

// Path resolves a delivered file name inside Dir. Names containing a path
// separator or dot segments are rejected.
func (d *DirSink) Path(name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%q: %w", name, ErrBadName)
	}
	return filepath.Join(d.Dir, name), nil
}

func same(a, b string) bool {
	aa, err1 := filepath.Abs(a)
	bb, err2 := filepath.Abs(b)
	return err1 == nil && err2 == nil && aa == bb
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
