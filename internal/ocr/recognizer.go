// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ocr

import (
	"context"
	"path/filepath"
	"strings"
)

// Page is one rendered page image.
type Page struct {
	Image []byte
	// MIME is the image content type, e.g. "image/png".
	MIME string
}

// Recognizer turns a page image into text following prompt.
type Recognizer interface {
	Recognize(ctx context.Context, page Page, prompt string) (string, error)
}

// mimeFor returns the image content type for a file name.
func mimeFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	default:
		return "image/png"
	}
}
