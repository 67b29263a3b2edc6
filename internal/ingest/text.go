package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
)

// TextExtractor handles .txt and .log files.
type TextExtractor struct{}

// CanHandle returns true for plain-text extensions.
func (t *TextExtractor) CanHandle(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".txt" || ext == ".log"
}

// Extract reads the file, clipped to the content limit.
func (t *TextExtractor) Extract(ctx context.Context, path string) (FileInfo, error) {
	info := FileInfo{
		Path: path,
		Name: filepath.Base(path),
		Type: "text",
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return info, err
	}
	info.Content = clip(string(b), textContentLimit)

	return info, nil
}
