// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the docmark pipeline.
package types

import (
	"path/filepath"
	"strings"
)

// ConversionStatus indicates the outcome of converting one document.
type ConversionStatus string

const (
	ConversionDone    ConversionStatus = "converted"
	ConversionPartial ConversionStatus = "partial"
	ConversionFailed  ConversionStatus = "failed"
)

// Route names the pipeline a document is sent through.
type Route string

const (
	RouteOCR    Route = "ocr"
	RouteOffice Route = "office"
)

// Document is an input file. It is read-only to the pipeline.
type Document struct {
	// Path is the absolute path to the file.
	Path string `json:"path" yaml:"path"`
}

// NewDocument resolves path to an absolute Document.
func NewDocument(path string) (Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Document{}, err
	}
	return Document{Path: abs}, nil
}

// Dir returns the directory containing the document.
func (d Document) Dir() string { return filepath.Dir(d.Path) }

// Ext returns the lower-cased extension including the dot.
func (d Document) Ext() string { return strings.ToLower(filepath.Ext(d.Path)) }

// Stem returns the file name without its extension.
func (d Document) Stem() string {
	base := filepath.Base(d.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// MarkdownPath returns <dir>/<stem>.md, where merged output is written.
func (d Document) MarkdownPath() string {
	return filepath.Join(d.Dir(), d.Stem()+".md")
}
