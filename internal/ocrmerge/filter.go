// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ocrmerge

import "regexp"

var (
	imagePattern = regexp.MustCompile(`!\[.*?\]\(.*?\)`)
	tablePattern = regexp.MustCompile(`(?s)<table[^>]*>.*?</table>`)
)

// Filter holds the content-removal switches applied to every fragment.
// The zero value passes text through unchanged.
type Filter struct {
	NoImage bool
	NoTable bool
}

// Apply returns text with image embeds and/or HTML tables removed.
// Surrounding whitespace is left as-is.
func (f Filter) Apply(text string) string {
	if f.NoImage {
		text = StripImages(text)
	}
	if f.NoTable {
		text = StripTables(text)
	}
	return text
}

// StripImages removes every ![alt](target) embed.
func StripImages(text string) string {
	return imagePattern.ReplaceAllLiteralString(text, "")
}

// StripTables removes every <table ...>...</table> block, including blocks
// spanning lines. Consecutive tables are removed separately.
func StripTables(text string) string {
	return tablePattern.ReplaceAllLiteralString(text, "")
}
