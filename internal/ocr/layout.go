// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ocr

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"strings"
)

// Cell is one layout element returned by the model.
type Cell struct {
	BBox     [4]float64 `json:"bbox"`
	Category string     `json:"category"`
	Text     string     `json:"text,omitempty"`
}

// parseCells decodes a layout response. Models sometimes wrap the JSON in a
// fenced code block or return a single object instead of a list.
func parseCells(raw string) ([]Cell, error) {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}

	var cells []Cell
	if err := json.Unmarshal([]byte(s), &cells); err == nil {
		return cells, nil
	}
	var one Cell
	if err := json.Unmarshal([]byte(s), &one); err != nil {
		return nil, fmt.Errorf("decoding layout: %w", err)
	}
	if one.Category == "" {
		return nil, fmt.Errorf("decoding layout: no category")
	}
	return []Cell{one}, nil
}

// isHeaderFooter reports whether a cell is dropped from the _nohf variant.
func isHeaderFooter(c Cell) bool {
	return c.Category == "Page-header" || c.Category == "Page-footer"
}

// renderCells converts layout cells into Markdown. The full variant keeps
// page headers and footers; nohf omits them. Pictures are cropped from the
// page image and embedded as data URIs.
func renderCells(cells []Cell, pageImage []byte) (full, nohf string) {
	var img image.Image
	if len(pageImage) > 0 {
		img, _, _ = image.Decode(bytes.NewReader(pageImage))
	}

	var all, body []string
	for _, c := range cells {
		text := renderCell(c, img)
		if text == "" {
			continue
		}
		all = append(all, text)
		if !isHeaderFooter(c) {
			body = append(body, text)
		}
	}
	return joinBlocks(all), joinBlocks(body)
}

func renderCell(c Cell, img image.Image) string {
	text := strings.TrimSpace(c.Text)
	switch c.Category {
	case "Picture":
		if img == nil {
			return ""
		}
		uri, err := cropDataURI(img, c.BBox)
		if err != nil {
			return ""
		}
		return "![](" + uri + ")"
	case "Title":
		if text == "" {
			return ""
		}
		return "# " + text
	case "Section-header":
		if text == "" {
			return ""
		}
		return "## " + text
	case "Formula":
		if text == "" {
			return ""
		}
		text = strings.TrimPrefix(strings.TrimSuffix(text, "$$"), "$$")
		return "$$\n" + strings.TrimSpace(text) + "\n$$"
	default:
		return text
	}
}

// renderLayoutOnly lists cells without text for the layout-only prompt.
func renderLayoutOnly(cells []Cell) string {
	lines := make([]string, 0, len(cells))
	for _, c := range cells {
		lines = append(lines, fmt.Sprintf("- %s [%g, %g, %g, %g]", c.Category, c.BBox[0], c.BBox[1], c.BBox[2], c.BBox[3]))
	}
	return joinBlocks([]string{strings.Join(lines, "\n")})
}

func joinBlocks(blocks []string) string {
	if len(blocks) == 0 {
		return ""
	}
	return strings.Join(blocks, "\n\n") + "\n\n"
}

// cropDataURI crops bbox out of img and returns it as a PNG data URI.
func cropDataURI(img image.Image, bbox [4]float64) (string, error) {
	rect := image.Rect(int(bbox[0]), int(bbox[1]), int(bbox[2]), int(bbox[3])).Intersect(img.Bounds())
	if rect.Empty() {
		return "", fmt.Errorf("region outside image bounds")
	}
	sub, ok := img.(interface {
		SubImage(r image.Rectangle) image.Image
	})
	if !ok {
		return "", fmt.Errorf("image does not support sub-image")
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, sub.SubImage(rect)); err != nil {
		return "", fmt.Errorf("encode cropped image: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
