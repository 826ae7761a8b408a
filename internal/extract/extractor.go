// Package extract turns source files into plain document text.
// Structured formats (JSON, XML, CSV, HTML) are flattened into readable
// text so the chunker can work on natural boundaries.
package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/askdocs-cli/internal/core/domain"
	"github.com/custodia-labs/askdocs-cli/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// supportedFormats maps extensions to display names.
var supportedFormats = map[string]string{
	".txt":  "Text File",
	".md":   "Markdown Document",
	".log":  "Log File",
	".json": "JSON Document",
	".xml":  "XML Document",
	".csv":  "CSV Data File",
	".html": "HTML Document",
	".htm":  "HTML Document",
	".yaml": "YAML Configuration",
	".yml":  "YAML Configuration",
}

// Extractor reads supported files and produces plain text.
type Extractor struct{}

// New creates an Extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedExtensions returns the recognised file extensions, unordered.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(supportedFormats))
	for ext := range supportedFormats {
		exts = append(exts, ext)
	}
	return exts
}

// Supported reports whether the path's extension can be extracted.
func (e *Extractor) Supported(path string) bool {
	_, ok := supportedFormats[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Extract reads and converts the file at path. Unsupported extensions and
// unreadable files fail with domain.ErrExtraction.
func (e *Extractor) Extract(ctx context.Context, path string) (*driven.Extracted, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(path))
	format, ok := supportedFormats[ext]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported format %q", domain.ErrExtraction, ext)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrExtraction, err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", domain.ErrExtraction, path, err)
	}

	var content string
	switch ext {
	case ".json":
		content = jsonToText(raw)
	case ".xml":
		content = xmlToText(raw)
	case ".csv":
		content = csvToText(raw)
	case ".html", ".htm":
		content, err = htmlToText(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: parsing HTML %s: %v", domain.ErrExtraction, path, err)
		}
	default:
		content = string(raw)
	}

	name := filepath.Base(path)
	return &driven.Extracted{
		Name:      name,
		Content:   content,
		PageCount: 1,
		Metadata: map[string]any{
			"filename":   name,
			"file_type":  format,
			"file_size":  info.Size(),
			"line_count": strings.Count(content, "\n") + 1,
		},
	}, nil
}
