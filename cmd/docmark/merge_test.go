// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/docmark/internal/ocrmerge"
)

func TestWarnPartial(t *testing.T) {
	tests := []struct {
		name string
		rep  *ocrmerge.Report
		want string
	}{
		{
			name: "complete",
			rep: &ocrmerge.Report{
				Document:  "/docs/a.pdf",
				Fragments: []ocrmerge.FragmentOutcome{{Path: "p0", Status: ocrmerge.FragmentMerged}},
			},
		},
		{
			name: "only index lines skipped",
			rep: &ocrmerge.Report{
				Document:       "/docs/a.pdf",
				SkippedRecords: []ocrmerge.RecordDecodeError{{Line: 2, Err: errors.New("bad json")}},
				Fragments:      []ocrmerge.FragmentOutcome{{Path: "p0", Status: ocrmerge.FragmentMerged}},
			},
			want: "warning: partial merge of /docs/a.pdf: 1 index line(s) and 0 fragment(s) skipped\n",
		},
		{
			name: "lines and fragments skipped",
			rep: &ocrmerge.Report{
				Document:       "/docs/b.pdf",
				SkippedRecords: []ocrmerge.RecordDecodeError{{Line: 1, Err: errors.New("no path")}},
				Fragments: []ocrmerge.FragmentOutcome{
					{Path: "p0", Status: ocrmerge.FragmentMissing},
					{Path: "p1", Status: ocrmerge.FragmentUnreadable},
					{Path: "p2", Status: ocrmerge.FragmentMerged},
				},
			},
			want: "warning: partial merge of /docs/b.pdf: 1 index line(s) and 2 fragment(s) skipped\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			warnPartial(&buf, tt.rep)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}
