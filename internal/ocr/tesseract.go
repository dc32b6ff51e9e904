// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// TesseractRecognizer runs OCR locally with libtesseract. It ignores the
// prompt and returns plain text, so layout modes fall back to raw text.
type TesseractRecognizer struct {
	languages     []string
	clientFactory func() *gosseract.Client
}

// NewTesseractRecognizer returns a recognizer for the given languages
// (tesseract codes such as "eng"; empty uses the tesseract default).
func NewTesseractRecognizer(languages []string) *TesseractRecognizer {
	return &TesseractRecognizer{languages: languages, clientFactory: gosseract.NewClient}
}

// Recognize extracts the text of one page.
func (r *TesseractRecognizer) Recognize(ctx context.Context, page Page, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c := r.clientFactory()
	defer c.Close()

	if err := c.SetImageFromBytes(page.Image); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	if len(r.languages) > 0 {
		if err := c.SetLanguage(r.languages...); err != nil {
			return "", fmt.Errorf("set languages: %w", err)
		}
	}
	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return strings.TrimSpace(text) + "\n", nil
}
