// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ocr

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/docmark/internal/ocrmerge"
)

// scriptedRecognizer returns responses in call order; an error entry fails
// that page.
type scriptedRecognizer struct {
	replies []any
	prompts []string
	calls   int
}

func (s *scriptedRecognizer) Recognize(_ context.Context, page Page, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	r := s.replies[s.calls%len(s.replies)]
	s.calls++
	if err, ok := r.(error); ok {
		return "", err
	}
	return r.(string), nil
}

// dirRasterizer writes n page images into outDir.
type dirRasterizer struct {
	n   int
	png []byte
	err error
}

func (d *dirRasterizer) Rasterize(_ context.Context, _, outDir string, _ int) ([]string, error) {
	if d.err != nil {
		return nil, d.err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}
	var paths []string
	for i := 1; i <= d.n; i++ {
		p := filepath.Join(outDir, fmt.Sprintf("page-%d.png", i))
		if err := os.WriteFile(p, d.png, 0o644); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

func readRecords(t *testing.T, path string) []ocrmerge.Record {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	var recs []ocrmerge.Record
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var r ocrmerge.Record
		require.NoError(t, json.Unmarshal(sc.Bytes(), &r))
		recs = append(recs, r)
	}
	return recs
}

func TestDotsParser_PDF(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "paper.pdf")
	require.NoError(t, os.WriteFile(doc, []byte("%PDF"), 0o644))
	root := filepath.Join(dir, "cache")

	rec := &scriptedRecognizer{replies: []any{
		`[{"bbox":[0,0,1,1],"category":"Page-header","text":"hdr"},{"bbox":[0,0,1,1],"category":"Text","text":"page one"}]`,
		errors.New("timeout"),
		`not json at all`,
	}}
	var log bytes.Buffer
	p := NewDotsParser(rec, &dirRasterizer{n: 3, png: testPNG(t, 4, 4)}, 200, &log)

	require.NoError(t, p.Parse(context.Background(), doc, root, PromptLayoutAll))

	recs := readRecords(t, filepath.Join(root, "paper.jsonl"))
	require.Len(t, recs, 2)
	assert.Equal(t, 0, recs[0].PageNo)
	assert.Equal(t, 2, recs[1].PageNo)
	assert.Equal(t, filepath.Join(root, "paper", "paper_page_0_nohf.md"), recs[0].FragmentRef)

	nohf, err := os.ReadFile(recs[0].FragmentRef)
	require.NoError(t, err)
	assert.Equal(t, "page one\n\n", string(nohf))
	full, err := os.ReadFile(recs[0].MDPath)
	require.NoError(t, err)
	assert.Equal(t, "hdr\n\npage one\n\n", string(full))
	assert.FileExists(t, filepath.Join(root, "paper", "paper_page_0.json"))

	raw, err := os.ReadFile(recs[1].FragmentRef)
	require.NoError(t, err)
	assert.Equal(t, "not json at all", string(raw))

	assert.Contains(t, log.String(), "failed:  page 1")
	assert.Contains(t, rec.prompts[0], "Please output the layout information")
}

func TestDotsParser_ImageIsSinglePage(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "receipt.JPG")
	require.NoError(t, os.WriteFile(doc, testPNG(t, 2, 2), 0o644))
	root := filepath.Join(dir, "cache")

	rec := &scriptedRecognizer{replies: []any{"Total: 12.00\n"}}
	p := NewDotsParser(rec, nil, 0, nil)

	require.NoError(t, p.Parse(context.Background(), doc, root, PromptOCR))

	recs := readRecords(t, filepath.Join(root, "receipt.jsonl"))
	require.Len(t, recs, 1)
	assert.Equal(t, filepath.Join(root, "receipt", "receipt_nohf.md"), recs[0].FragmentRef)
	assert.Equal(t, doc, recs[0].FilePath)
	assert.Equal(t, []string{prompts[PromptOCR]}, rec.prompts)
}

func TestDotsParser_Errors(t *testing.T) {
	dir := t.TempDir()
	pdf := filepath.Join(dir, "x.pdf")
	require.NoError(t, os.WriteFile(pdf, []byte("%PDF"), 0o644))
	docx := filepath.Join(dir, "x.docx")
	require.NoError(t, os.WriteFile(docx, []byte("PK"), 0o644))

	tests := []struct {
		name   string
		parser *DotsParser
		doc    string
		mode   string
		want   string
	}{
		{
			name:   "unknown prompt mode",
			parser: NewDotsParser(&scriptedRecognizer{replies: []any{"x"}}, nil, 0, nil),
			doc:    pdf, mode: "prompt_poem", want: "unknown prompt mode",
		},
		{
			name:   "grounding without region",
			parser: NewDotsParser(&scriptedRecognizer{replies: []any{"x"}}, nil, 0, nil),
			doc:    pdf, mode: PromptGroundingOCR, want: "requires a bounding box",
		},
		{
			name:   "pdf without rasterizer",
			parser: NewDotsParser(&scriptedRecognizer{replies: []any{"x"}}, nil, 0, nil),
			doc:    pdf, mode: PromptOCR, want: "no rasterizer",
		},
		{
			name:   "unsupported extension",
			parser: NewDotsParser(&scriptedRecognizer{replies: []any{"x"}}, nil, 0, nil),
			doc:    docx, mode: PromptOCR, want: "unsupported document type",
		},
		{
			name:   "every page fails",
			parser: NewDotsParser(&scriptedRecognizer{replies: []any{errors.New("boom")}}, &dirRasterizer{n: 2, png: []byte("p")}, 0, nil),
			doc:    pdf, mode: PromptOCR, want: "no page",
		},
		{
			name:   "rasterizer failure",
			parser: NewDotsParser(&scriptedRecognizer{replies: []any{"x"}}, &dirRasterizer{err: errors.New("bad pdf")}, 0, nil),
			doc:    pdf, mode: PromptOCR, want: "bad pdf",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := filepath.Join(t.TempDir(), "cache")
			err := tt.parser.Parse(context.Background(), tt.doc, root, tt.mode)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.NoFileExists(t, filepath.Join(root, "x.jsonl"))
		})
	}
}

func TestDotsParser_GroundingRegion(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "crop.png")
	require.NoError(t, os.WriteFile(doc, testPNG(t, 2, 2), 0o644))

	rec := &scriptedRecognizer{replies: []any{"boxed text"}}
	p := NewDotsParser(rec, nil, 0, nil)
	p.Region = &[4]int{10, 20, 30, 40}

	require.NoError(t, p.Parse(context.Background(), doc, filepath.Join(dir, "cache"), PromptGroundingOCR))
	assert.Contains(t, rec.prompts[0], "Bounding Box:\n[10, 20, 30, 40]")
}

// The parser's output is exactly what the merge engine consumes.
func TestDotsParser_FeedsMergeEngine(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "slides.pdf")
	require.NoError(t, os.WriteFile(doc, []byte("%PDF"), 0o644))

	rec := &scriptedRecognizer{replies: []any{
		`[{"bbox":[0,0,2,2],"category":"Picture"},{"bbox":[0,0,1,1],"category":"Text","text":"one"}]`,
		`[{"bbox":[0,0,1,1],"category":"Text","text":"two"}]`,
	}}
	p := NewDotsParser(rec, &dirRasterizer{n: 2, png: testPNG(t, 4, 4)}, 0, nil)
	engine := ocrmerge.NewEngine(p, ocrmerge.NewCache(filepath.Join(dir, "cache")), ocrmerge.Options{
		Filter:      ocrmerge.Filter{NoImage: true},
		DeleteCache: true,
	})

	rep, err := engine.Process(context.Background(), doc, PromptLayoutAll)
	require.NoError(t, err)

	data, err := os.ReadFile(rep.Output)
	require.NoError(t, err)
	assert.Equal(t, "\n\none\n\ntwo\n\n", string(data))
	assert.NoDirExists(t, filepath.Join(dir, "cache", "slides"))
}
