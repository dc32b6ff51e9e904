// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ocrmerge

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports that a required input (document or index file)
	// does not exist.
	ErrNotFound = errors.New("not found")

	// ErrEmptyIndex reports that an index file yielded no usable fragment
	// references.
	ErrEmptyIndex = errors.New("index yielded no fragments")
)

// NotFoundError is returned when the document or its index file is missing.
// It matches ErrNotFound under errors.Is.
type NotFoundError struct {
	What string
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.What, e.Path)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// EmptyIndexError is returned when every line of an index was blank or
// malformed. It matches ErrEmptyIndex under errors.Is.
type EmptyIndexError struct {
	Path    string
	Skipped int
}

func (e *EmptyIndexError) Error() string {
	return fmt.Sprintf("no markdown fragments referenced by %s (%d line(s) skipped)", e.Path, e.Skipped)
}

func (e *EmptyIndexError) Unwrap() error { return ErrEmptyIndex }

// RecordDecodeError describes one index line that could not be used.
// It is recovered locally and only surfaces in a Report.
type RecordDecodeError struct {
	Line int
	Err  error
}

func (e *RecordDecodeError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *RecordDecodeError) Unwrap() error { return e.Err }

// FragmentReadError describes a fragment that was missing or unreadable.
// It is recovered locally and only surfaces in a Report.
type FragmentReadError struct {
	Path string
	Err  error
}

func (e *FragmentReadError) Error() string {
	return fmt.Sprintf("fragment %s: %v", e.Path, e.Err)
}

func (e *FragmentReadError) Unwrap() error { return e.Err }

// CleanupError describes a failed cache removal after a written merge.
type CleanupError struct {
	Path string
	Err  error
}

func (e *CleanupError) Error() string {
	return fmt.Sprintf("cleaning %s: %v", e.Path, e.Err)
}

func (e *CleanupError) Unwrap() error { return e.Err }
