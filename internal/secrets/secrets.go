// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key
// name and the file contents (trimmed) are the value. Keys without a file
// fall back to an environment variable.
package secrets

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/docmark/pkg/types"
)

// Key file names.
const (
	OCRAPIKey          = "ocr-api-key"
	OCRBaseURL         = "ocr-base-url"
	AWSAccessKeyID     = "aws-access-key-id"
	AWSSecretAccessKey = "aws-secret-access-key"
)

// envFallback maps key names to the environment variable read when no file
// provides the key.
var envFallback = map[string]string{
	OCRAPIKey:          "OCR_API_KEY",
	OCRBaseURL:         "OCR_BASE_URL",
	AWSAccessKeyID:     "AWS_ACCESS_KEY_ID",
	AWSSecretAccessKey: "AWS_SECRET_ACCESS_KEY",
}

// Set holds loaded secrets by key name.
type Set map[string]string

// Load reads all files in dir. A missing directory or missing files are not
// errors; Load returns an empty Set. Unreadable files produce a warning on
// warn (nil means stderr) but do not abort.
func Load(dir string, warn io.Writer) (Set, error) {
	if warn == nil {
		warn = os.Stderr
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Set{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(Set)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(warn, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// Get returns the file value for key, or its environment fallback.
func (s Set) Get(key string) string {
	if v := s[key]; v != "" {
		return v
	}
	if env, ok := envFallback[key]; ok {
		return strings.TrimSpace(os.Getenv(env))
	}
	return ""
}

// ApplyOCR fills the inference credentials that cfg leaves empty.
func (s Set) ApplyOCR(cfg *types.OCRConfig) {
	if cfg.APIKey == "" {
		cfg.APIKey = s.Get(OCRAPIKey)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = s.Get(OCRBaseURL)
	}
}

// ApplyS3 fills the static S3 credentials that cfg leaves empty. When both
// stay empty the SDK's default credential chain is used.
func (s Set) ApplyS3(cfg *types.S3Config) {
	if cfg.AccessKey == "" {
		cfg.AccessKey = s.Get(AWSAccessKeyID)
	}
	if cfg.SecretKey == "" {
		cfg.SecretKey = s.Get(AWSSecretAccessKey)
	}
}
