// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/docmark/internal/container"
)

// ImageMarkitdown is the container image whose entrypoint is markitdown.
const ImageMarkitdown = "markitdown:latest"

// MarkitdownConverter converts office documents by piping them through the
// markitdown container image. It depends on a container.Runtime (docker or
// podman) injected at construction time.
type MarkitdownConverter struct {
	runtime container.Runtime
}

// NewMarkitdownConverter creates a converter that uses the given container
// runtime. It verifies that the markitdown image exists locally before
// returning.
func NewMarkitdownConverter(rt container.Runtime) (*MarkitdownConverter, error) {
	if err := rt.ImageExists(ImageMarkitdown); err != nil {
		return nil, fmt.Errorf("markitdown image not available in %s: %w", rt.Name(), err)
	}
	return &MarkitdownConverter{runtime: rt}, nil
}

// Convert streams the document to markitdown on stdin. The extension is
// passed as a hint since stdin carries no file name.
func (m *MarkitdownConverter) Convert(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	opts := container.RunOptions{
		Args:    []string{"-x", strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")},
		Offline: true,
	}
	var out bytes.Buffer
	if err := m.runtime.Run(ctx, ImageMarkitdown, opts, f, &out); err != nil {
		return "", fmt.Errorf("converting %s with markitdown: %w", path, err)
	}

	if out.Len() == 0 {
		return "", fmt.Errorf("markitdown produced empty output for %s", path)
	}

	return out.String(), nil
}
