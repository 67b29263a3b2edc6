package ingest

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ZipExtractor handles .zip archives by unpacking them to a temp directory
// and extracting each member recursively.
type ZipExtractor struct{}

// CanHandle returns true for the .zip extension.
func (z *ZipExtractor) CanHandle(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".zip"
}

// Extract unpacks the archive and concatenates per-member summaries.
// Nested archives and unsupported members keep their typed results inline.
func (z *ZipExtractor) Extract(ctx context.Context, path string) (FileInfo, error) {
	info := FileInfo{
		Path: path,
		Name: filepath.Base(path),
		Type: "zip",
	}

	r, err := zip.OpenReader(path)
	if err != nil {
		return info, fmt.Errorf("opening zip %s: %w", path, err)
	}
	defer r.Close()

	tmpDir, err := os.MkdirTemp("", "answerbank-zip-*")
	if err != nil {
		return info, err
	}
	defer os.RemoveAll(tmpDir)

	var b strings.Builder
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		name := filepath.Base(f.Name)
		info.Members = append(info.Members, f.Name)

		memberPath, err := unpackMember(f, tmpDir, name)
		if err != nil {
			return info, fmt.Errorf("extracting %s from %s: %w", f.Name, path, err)
		}

		memberInfo, err := ExtractFile(ctx, memberPath)
		if err != nil {
			return info, err
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "=== %s (%s) ===\n%s", f.Name, memberInfo.Type, memberInfo.Content)

		// Surface the first CSV's parsed row so the direct-answer shortcut
		// works through archives too.
		if memberInfo.Type == "csv" && info.FirstRow == nil {
			info.Columns = memberInfo.Columns
			info.FirstRow = memberInfo.FirstRow
		}
	}
	info.Content = b.String()

	return info, nil
}

func unpackMember(f *zip.File, dir, name string) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	dst := filepath.Join(dir, name)
	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, rc); err != nil {
		return "", err
	}
	return dst, nil
}
