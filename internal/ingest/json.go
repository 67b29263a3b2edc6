package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// JSONExtractor handles .json files.
type JSONExtractor struct{}

// CanHandle returns true for the .json extension.
func (j *JSONExtractor) CanHandle(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".json"
}

// Extract pretty-prints the document, clipped to the content limit.
func (j *JSONExtractor) Extract(ctx context.Context, path string) (FileInfo, error) {
	info := FileInfo{
		Path: path,
		Name: filepath.Base(path),
		Type: "json",
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return info, err
	}

	var data any
	if err := json.Unmarshal(b, &data); err != nil {
		return info, fmt.Errorf("parsing JSON %s: %w", path, err)
	}

	pretty, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return info, err
	}
	info.Content = clip(string(pretty), jsonContentLimit)

	return info, nil
}
