// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Job is one recorded conversion run.
type Job struct {
	// ID is a random UUID assigned when the job is recorded.
	ID string `json:"id" yaml:"id"`

	// Document is the input path as given.
	Document string `json:"document" yaml:"document"`

	// Route is empty when the file type was rejected.
	Route Route `json:"route,omitempty" yaml:"route,omitempty"`

	Status ConversionStatus `json:"status" yaml:"status"`

	// Output is the Markdown path written next to the document.
	Output string `json:"output,omitempty" yaml:"output,omitempty"`

	// Delivered is where the output ended up (a directory path or an
	// s3:// URI). Empty when delivery was not configured or failed.
	Delivered string `json:"delivered,omitempty" yaml:"delivered,omitempty"`

	// Merged and Skipped count fragments on the OCR route.
	Merged  int `json:"merged" yaml:"merged"`
	Skipped int `json:"skipped" yaml:"skipped"`

	Error string `json:"error,omitempty" yaml:"error,omitempty"`

	CreatedAt time.Time     `json:"created_at" yaml:"created_at"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
}
