// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ocrmerge

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeIndex(t *testing.T, dir string, lines ...string) string {
	t.Helper()
	p := filepath.Join(dir, "doc.jsonl")
	require.NoError(t, os.WriteFile(p, []byte(strings.Join(lines, "\n")), 0o644))
	return p
}

func TestLoadIndex(t *testing.T) {
	dir := t.TempDir()
	fragDir := filepath.Join(dir, "doc")
	p := writeIndex(t, dir,
		`{"page_no": 0, "md_content_nohf_path": "/srv/out/doc/doc_page_0_nohf.md"}`,
		``,
		`   `,
		`{not json`,
		`{"page_no": 1, "md_content_path": "doc_page_1.md"}`,
		`{"page_no": 2, "md_content_nohf_path": "nested/dir/doc_page_2_nohf.md"}`,
		`{"page_no": 3, "md_content_nohf_path": "doc_page_3_nohf.md"}`,
		`{"page_no": 4, "md_content_nohf_path": "trailing/"}`,
		`{"page_no": 5, "md_content_nohf_path": 12}`,
		`{"page_no": 6, "md_content_nohf_path": "a/.."}`,
	)

	idx, err := LoadIndex(p, fragDir)
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(fragDir, "doc_page_0_nohf.md"),
		filepath.Join(fragDir, "doc_page_2_nohf.md"),
		filepath.Join(fragDir, "doc_page_3_nohf.md"),
	}, idx.Paths)

	lines := make([]int, 0, len(idx.Skipped))
	for _, s := range idx.Skipped {
		lines = append(lines, s.Line)
	}
	assert.Equal(t, []int{4, 5, 8, 9, 10}, lines)
	assert.ErrorIs(t, idx.Skipped[1].Err, errMissingRef)
	assert.ErrorIs(t, idx.Skipped[2].Err, errEmptyName)
	assert.ErrorIs(t, idx.Skipped[4].Err, errDotName)
}

func TestLoadIndex_PreservesLineOrder(t *testing.T) {
	dir := t.TempDir()
	p := writeIndex(t, dir,
		`{"md_content_nohf_path": "c.md"}`,
		`{"md_content_nohf_path": "a.md"}`,
		`{"md_content_nohf_path": "b.md"}`,
	)

	idx, err := LoadIndex(p, dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "c.md"),
		filepath.Join(dir, "a.md"),
		filepath.Join(dir, "b.md"),
	}, idx.Paths)
	assert.Empty(t, idx.Skipped)
}

func TestLoadIndex_Missing(t *testing.T) {
	_, err := LoadIndex(filepath.Join(t.TempDir(), "absent.jsonl"), "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Contains(t, nf.Path, "absent.jsonl")
}

func TestLoadIndex_Empty(t *testing.T) {
	tests := []struct {
		name        string
		lines       []string
		wantSkipped int
	}{
		{name: "empty file", lines: nil},
		{name: "blank lines only", lines: []string{"", "  ", "\t"}},
		{name: "all malformed", lines: []string{"{", "[]", `{"page_no": 1}`}, wantSkipped: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := writeIndex(t, t.TempDir(), tt.lines...)
			_, err := LoadIndex(p, "")
			require.ErrorIs(t, err, ErrEmptyIndex)

			var ee *EmptyIndexError
			require.ErrorAs(t, err, &ee)
			assert.Equal(t, tt.wantSkipped, ee.Skipped)
		})
	}
}

func TestFragmentName(t *testing.T) {
	tests := map[string]string{
		"page.md":              "page.md",
		"a/b/page.md":          "page.md",
		"/abs/path/page.md":    "page.md",
		"dir/":                 "",
		"":                     "",
		`c:\win\style\page.md`: `c:\win\style\page.md`,
	}
	for in, want := range tests {
		assert.Equal(t, want, FragmentName(in), "FragmentName(%q)", in)
	}
}
