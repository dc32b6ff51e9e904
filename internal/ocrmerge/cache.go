// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ocrmerge

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Cache is the working tree for intermediate OCR artifacts. Each document
// owns <root>/<stem>/ (fragments) and <root>/<stem>.jsonl (index).
type Cache struct {
	Root string
}

// NewCache returns a Cache rooted at root.
func NewCache(root string) Cache {
	return Cache{Root: filepath.Clean(root)}
}

// Ensure creates the cache root if it does not exist.
func (c Cache) Ensure() error {
	if err := os.MkdirAll(c.Root, 0o755); err != nil {
		return fmt.Errorf("creating cache %s: %w", c.Root, err)
	}
	return nil
}

// DocumentDir returns the fragment directory for the document stem.
func (c Cache) DocumentDir(stem string) string {
	return filepath.Join(c.Root, stem)
}

// IndexPath returns the index file for the document stem.
func (c Cache) IndexPath(stem string) string {
	return filepath.Join(c.Root, stem+IndexExt)
}

// Remove deletes the cache entries of one document: its fragment directory
// and its index file. Other documents' entries are left alone. Missing
// entries are not an error.
func (c Cache) Remove(stem string) error {
	var errs []error
	if err := os.RemoveAll(c.DocumentDir(stem)); err != nil {
		errs = append(errs, err)
	}
	if err := os.Remove(c.IndexPath(stem)); err != nil && !errors.Is(err, os.ErrNotExist) {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Clear deletes the whole cache tree and recreates an empty root. It must
// not run while a document is being processed.
func (c Cache) Clear() error {
	if err := os.RemoveAll(c.Root); err != nil {
		return fmt.Errorf("clearing cache %s: %w", c.Root, err)
	}
	return c.Ensure()
}
