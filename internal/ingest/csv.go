package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CSVExtractor handles .csv and .tsv files.
type CSVExtractor struct{}

// CanHandle returns true for CSV/TSV file extensions.
func (c *CSVExtractor) CanHandle(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".csv" || ext == ".tsv"
}

// Extract parses the file and keeps the headers, the first rows rendered as
// text, and the parsed first-row values for the direct-answer shortcut.
func (c *CSVExtractor) Extract(ctx context.Context, path string) (FileInfo, error) {
	info := FileInfo{
		Path: path,
		Name: filepath.Base(path),
		Type: "csv",
	}

	f, err := os.Open(path)
	if err != nil {
		return info, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	if strings.ToLower(filepath.Ext(path)) == ".tsv" {
		reader.Comma = '\t'
	}
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return info, fmt.Errorf("parsing CSV %s: %w", path, err)
	}
	if len(records) == 0 {
		return info, nil
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.TrimSpace(h)
	}
	info.Columns = headers

	if len(records) > 1 {
		firstRow := make(map[string]string)
		for j, val := range records[1] {
			if j < len(headers) {
				firstRow[headers[j]] = strings.TrimSpace(val)
			}
		}
		info.FirstRow = firstRow
	}

	var b strings.Builder
	b.WriteString(strings.Join(headers, ", "))
	rows := records[1:]
	if len(rows) > csvHeadRows {
		rows = rows[:csvHeadRows]
	}
	for _, row := range rows {
		b.WriteString("\n")
		b.WriteString(strings.Join(row, ", "))
	}
	info.Content = b.String()

	return info, nil
}
