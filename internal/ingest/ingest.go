// Package ingest extracts a text summary from question attachments.
//
// Each supported format (CSV, JSON, plain text, ZIP) has its own extractor
// implementing the Extractor interface. ExtractFile auto-detects the format
// by extension and dispatches; unsupported types degrade to a typed
// "unknown" result rather than an error, so the answer path can still run
// on the question text alone.
package ingest

import (
	"context"
	"path/filepath"
)

// FileInfo is the extracted summary of one attachment.
type FileInfo struct {
	Path    string `json:"path"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Content string `json:"content"`

	// CSV only.
	Columns  []string          `json:"columns,omitempty"`
	FirstRow map[string]string `json:"first_row,omitempty"`

	// ZIP only.
	Members []string `json:"members,omitempty"`
}

// Extractor handles a specific attachment format.
type Extractor interface {
	// CanHandle returns true if this extractor supports the given file path.
	CanHandle(path string) bool

	// Extract parses the file into a summary.
	Extract(ctx context.Context, path string) (FileInfo, error)
}

// Content limits keep attachment summaries prompt-sized.
const (
	csvHeadRows      = 20
	jsonContentLimit = 2000
	textContentLimit = 5000
)

func extractors() []Extractor {
	return []Extractor{
		&ZipExtractor{},
		&CSVExtractor{},
		&JSONExtractor{},
		&TextExtractor{},
	}
}

// ExtractFile dispatches to the extractor matching the file's extension.
// Unknown extensions yield a FileInfo with Type "unknown" and no error.
func ExtractFile(ctx context.Context, path string) (FileInfo, error) {
	for _, ex := range extractors() {
		if ex.CanHandle(path) {
			return ex.Extract(ctx, path)
		}
	}
	return FileInfo{
		Path:    path,
		Name:    filepath.Base(path),
		Type:    "unknown",
		Content: "File type not supported: " + path,
	}, nil
}

func clip(s string, limit int) string {
	if len(s) > limit {
		return s[:limit]
	}
	return s
}
