// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"
)

const exportLimit = 100000

// ExportYAML writes the job history to w, newest first.
func (s *Store) ExportYAML(ctx context.Context, w io.Writer, opts ListOptions) error {
	opts.Limit = exportLimit
	jobs, err := s.List(ctx, opts)
	if err != nil {
		return fmt.Errorf("querying for export: %w", err)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(jobs); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}

// ExportJSON writes the job history to w, newest first.
func (s *Store) ExportJSON(ctx context.Context, w io.Writer, opts ListOptions) error {
	opts.Limit = exportLimit
	jobs, err := s.List(ctx, opts)
	if err != nil {
		return fmt.Errorf("querying for export: %w", err)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(jobs); err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return nil
}
