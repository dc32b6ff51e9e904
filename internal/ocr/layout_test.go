// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ocr

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x%h, color.Black)
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestParseCells(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    int
		wantErr bool
	}{
		{name: "list", raw: `[{"bbox":[0,0,1,1],"category":"Text","text":"a"},{"bbox":[0,0,1,1],"category":"Title","text":"b"}]`, want: 2},
		{name: "fenced", raw: "```json\n[{\"bbox\":[0,0,1,1],\"category\":\"Text\",\"text\":\"a\"}]\n```", want: 1},
		{name: "single object", raw: `{"bbox":[0,0,1,1],"category":"Table","text":"<table></table>"}`, want: 1},
		{name: "plain text", raw: "just some recognized text", wantErr: true},
		{name: "object without category", raw: `{"foo": 1}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cells, err := parseCells(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, cells, tt.want)
		})
	}
}

func TestRenderCells(t *testing.T) {
	cells := []Cell{
		{Category: "Page-header", Text: "Annual Report 2025"},
		{Category: "Title", Text: "Results"},
		{Category: "Section-header", Text: "Revenue"},
		{Category: "Text", Text: "Revenue grew."},
		{Category: "Formula", Text: "$$E = mc^2$$"},
		{Category: "Table", Text: "<table><tr><td>1</td></tr></table>"},
		{Category: "Picture", BBox: [4]float64{0, 0, 4, 4}},
		{Category: "Text", Text: "   "},
		{Category: "Page-footer", Text: "3"},
	}

	full, nohf := renderCells(cells, testPNG(t, 8, 8))

	assert.True(t, strings.HasPrefix(full, "Annual Report 2025\n\n# Results\n\n## Revenue\n\nRevenue grew.\n\n$$\nE = mc^2\n$$\n\n<table>"))
	assert.True(t, strings.HasSuffix(full, "\n\n3\n\n"))
	assert.Contains(t, full, "![](data:image/png;base64,")

	assert.True(t, strings.HasPrefix(nohf, "# Results\n\n"))
	assert.NotContains(t, nohf, "Annual Report 2025")
	assert.False(t, strings.HasSuffix(nohf, "\n\n3\n\n"))
	assert.Contains(t, nohf, "![](data:image/png;base64,")
}

func TestRenderCells_PictureOutsideImage(t *testing.T) {
	cells := []Cell{{Category: "Picture", BBox: [4]float64{100, 100, 200, 200}}, {Category: "Text", Text: "x"}}
	full, nohf := renderCells(cells, testPNG(t, 8, 8))
	assert.Equal(t, "x\n\n", full)
	assert.Equal(t, full, nohf)
}

func TestRenderLayoutOnly(t *testing.T) {
	got := renderLayoutOnly([]Cell{
		{Category: "Title", BBox: [4]float64{1, 2, 3, 4}},
		{Category: "Text", BBox: [4]float64{5, 6.5, 7, 8}},
	})
	assert.Equal(t, "- Title [1, 2, 3, 4]\n- Text [5, 6.5, 7, 8]\n\n", got)
}
