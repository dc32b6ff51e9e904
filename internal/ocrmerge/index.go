// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ocrmerge

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// IndexExt is the extension of the per-document index file.
const IndexExt = ".jsonl"

// maxRecordSize bounds a single index line. Records carry paths only, but
// some parsers inline layout metadata.
const maxRecordSize = 16 << 20

// Record is one line of an index file. Only FragmentRef is needed by the
// merge; the remaining fields are written by the parser for inspection.
type Record struct {
	PageNo      int    `json:"page_no"`
	InputPath   string `json:"input_path,omitempty"`
	FilePath    string `json:"file_path,omitempty"`
	MDPath      string `json:"md_content_path,omitempty"`
	FragmentRef string `json:"md_content_nohf_path"`
}

// Index is the ordered list of fragment paths resolved from an index file,
// plus the lines that were skipped along the way.
type Index struct {
	Source  string
	Paths   []string
	Skipped []RecordDecodeError
}

var (
	errMissingRef = errors.New("record has no md_content_nohf_path")
	errEmptyName  = errors.New("fragment reference has an empty file name")
	errDotName    = errors.New("fragment reference does not name a file")
)

// LoadIndex reads the index file at indexPath and resolves each record's
// fragment reference to a file under fragmentDir. Blank lines are ignored.
// Malformed lines are skipped and collected in Index.Skipped. Order follows
// line order. It returns a NotFoundError when indexPath does not exist and an
// EmptyIndexError when no paths were resolved.
func LoadIndex(indexPath, fragmentDir string) (*Index, error) {
	f, err := os.Open(indexPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &NotFoundError{What: "OCR result file", Path: indexPath}
		}
		return nil, fmt.Errorf("opening index %s: %w", indexPath, err)
	}
	defer f.Close()

	idx := &Index{Source: indexPath}

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxRecordSize)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		name, err := decodeRecord(text)
		if err != nil {
			idx.Skipped = append(idx.Skipped, RecordDecodeError{Line: line, Err: err})
			continue
		}
		idx.Paths = append(idx.Paths, filepath.Join(fragmentDir, name))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading index %s: %w", indexPath, err)
	}

	if len(idx.Paths) == 0 {
		return nil, &EmptyIndexError{Path: indexPath, Skipped: len(idx.Skipped)}
	}
	return idx, nil
}

// decodeRecord parses one index line and returns the fragment file name.
func decodeRecord(line string) (string, error) {
	var rec struct {
		Ref *string `json:"md_content_nohf_path"`
	}
	if err := json.Unmarshal([]byte(line), &rec); err != nil {
		return "", err
	}
	if rec.Ref == nil {
		return "", errMissingRef
	}
	name := FragmentName(*rec.Ref)
	switch name {
	case "":
		return "", errEmptyName
	case ".", "..":
		return "", errDotName
	}
	return name, nil
}

// FragmentName returns the final "/"-delimited segment of ref. Any directory
// structure recorded by the parser is discarded; fragments always live in
// the document's own cache subdirectory.
func FragmentName(ref string) string {
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		return ref[i+1:]
	}
	return ref
}
