// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ocrmerge

import "encoding/json"

// FragmentStatus is the outcome of merging one fragment.
type FragmentStatus string

const (
	FragmentMerged     FragmentStatus = "merged"
	FragmentMissing    FragmentStatus = "missing"
	FragmentUnreadable FragmentStatus = "unreadable"
)

// FragmentOutcome records what happened to one fragment, in index order.
type FragmentOutcome struct {
	Path   string
	Status FragmentStatus
	// Bytes is the filtered length written to the output.
	Bytes int
	Err   error
}

// Report describes one merge. Skipped lines and fragments do not change the
// returned output path; callers that care about partial merges inspect
// Partial.
type Report struct {
	Document string
	Index    string
	Output   string

	SkippedRecords []RecordDecodeError
	Fragments      []FragmentOutcome

	// Duplicates lists fragment paths referenced by more than one record.
	// Fragment references are reduced to a base name, so distinct pages
	// with the same file name collide.
	Duplicates []string

	// Cleanup is set when the cache could not be removed after the output
	// was written. It never fails the merge.
	Cleanup *CleanupError
}

// Merged returns the number of fragments written to the output.
func (r *Report) Merged() int {
	n := 0
	for _, f := range r.Fragments {
		if f.Status == FragmentMerged {
			n++
		}
	}
	return n
}

// SkippedFragments returns the number of fragments left out of the output.
func (r *Report) SkippedFragments() int {
	return len(r.Fragments) - r.Merged()
}

// Partial reports whether any index line or fragment was skipped.
func (r *Report) Partial() bool {
	return len(r.SkippedRecords) > 0 || r.SkippedFragments() > 0
}

type reportView struct {
	Document       string         `json:"document" yaml:"document"`
	Index          string         `json:"index" yaml:"index"`
	Output         string         `json:"output" yaml:"output"`
	Merged         int            `json:"merged" yaml:"merged"`
	Partial        bool           `json:"partial" yaml:"partial"`
	SkippedRecords []skippedLine  `json:"skipped_records,omitempty" yaml:"skipped_records,omitempty"`
	Fragments      []fragmentView `json:"fragments" yaml:"fragments"`
	Duplicates     []string       `json:"duplicates,omitempty" yaml:"duplicates,omitempty"`
	Cleanup        string         `json:"cleanup_error,omitempty" yaml:"cleanup_error,omitempty"`
}

type skippedLine struct {
	Line  int    `json:"line" yaml:"line"`
	Error string `json:"error" yaml:"error"`
}

type fragmentView struct {
	Path   string         `json:"path" yaml:"path"`
	Status FragmentStatus `json:"status" yaml:"status"`
	Bytes  int            `json:"bytes,omitempty" yaml:"bytes,omitempty"`
	Error  string         `json:"error,omitempty" yaml:"error,omitempty"`
}

func (r *Report) view() reportView {
	v := reportView{
		Document:   r.Document,
		Index:      r.Index,
		Output:     r.Output,
		Merged:     r.Merged(),
		Partial:    r.Partial(),
		Duplicates: r.Duplicates,
		Fragments:  make([]fragmentView, 0, len(r.Fragments)),
	}
	for _, s := range r.SkippedRecords {
		v.SkippedRecords = append(v.SkippedRecords, skippedLine{Line: s.Line, Error: s.Err.Error()})
	}
	for _, f := range r.Fragments {
		fv := fragmentView{Path: f.Path, Status: f.Status, Bytes: f.Bytes}
		if f.Err != nil {
			fv.Error = f.Err.Error()
		}
		v.Fragments = append(v.Fragments, fv)
	}
	if r.Cleanup != nil {
		v.Cleanup = r.Cleanup.Error()
	}
	return v
}

// MarshalJSON renders the report with errors as strings.
func (r *Report) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.view())
}

// MarshalYAML renders the report with errors as strings.
func (r *Report) MarshalYAML() (any, error) {
	return r.view(), nil
}
