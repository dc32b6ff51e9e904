// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ocrmerge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterApply(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		in     string
		want   string
	}{
		{
			name:   "no markup is unchanged with both switches",
			filter: Filter{NoImage: true, NoTable: true},
			in:     "# Title\n\nPlain paragraph with [a link](http://x) and <b>bold</b>.\n",
			want:   "# Title\n\nPlain paragraph with [a link](http://x) and <b>bold</b>.\n",
		},
		{
			name:   "image removed, surrounding spaces kept",
			filter: Filter{NoImage: true},
			in:     "A ![x](y.png) B",
			want:   "A  B",
		},
		{
			name:   "table removed",
			filter: Filter{NoTable: true},
			in:     "before<table><tr></tr></table>after",
			want:   "beforeafter",
		},
		{
			name:   "table with attributes spanning lines",
			filter: Filter{NoTable: true},
			in:     "x\n<table border=\"1\">\n<tr><td>1</td></tr>\n</table>\ny",
			want:   "x\n\ny",
		},
		{
			name:   "consecutive tables removed separately",
			filter: Filter{NoTable: true},
			in:     "<table>a</table>keep<table>b</table>",
			want:   "keep",
		},
		{
			name:   "multiple images non-greedy",
			filter: Filter{NoImage: true},
			in:     "![a](1.png) text ![b](2.png)",
			want:   " text ",
		},
		{
			name:   "data uri image",
			filter: Filter{NoImage: true},
			in:     "p1\n\n![](data:image/png;base64,iVBORw0KGgo=)\n\np2",
			want:   "p1\n\n\n\np2",
		},
		{
			name:   "switches off leaves markup",
			filter: Filter{},
			in:     "![x](y.png)<table></table>",
			want:   "![x](y.png)<table></table>",
		},
		{
			name:   "tables kept when only images stripped",
			filter: Filter{NoImage: true},
			in:     "![x](y.png)<table></table>",
			want:   "<table></table>",
		},
		{
			name:   "both switches",
			filter: Filter{NoImage: true, NoTable: true},
			in:     "a![x](y.png)b<table><tr><td>c</td></tr></table>d",
			want:   "abd",
		},
		{
			name:   "image alt does not span lines",
			filter: Filter{NoImage: true},
			in:     "![a\nb](c.png)",
			want:   "![a\nb](c.png)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.filter.Apply(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, tt.filter.Apply(tt.in), "output must be deterministic")
		})
	}
}
