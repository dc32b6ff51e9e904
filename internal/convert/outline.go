// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Heading is one entry of a document outline.
type Heading struct {
	Level int    `json:"level" yaml:"level"`
	Text  string `json:"text" yaml:"text"`
}

// Outline returns the ATX and setext headings of a Markdown document in
// order.
func Outline(src []byte) []Heading {
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var out []Heading
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		h, ok := n.(*ast.Heading)
		if !ok || !entering {
			return ast.WalkContinue, nil
		}
		out = append(out, Heading{Level: h.Level, Text: strings.TrimSpace(inlineText(h, src))})
		return ast.WalkSkipChildren, nil
	})
	return out
}

// inlineText concatenates the text segments under n, dropping markup.
func inlineText(n ast.Node, src []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		default:
			b.WriteString(inlineText(c, src))
		}
	}
	return b.String()
}
