// Package document extracts plain text from book files. Each format is
// flattened to paragraphs separated by blank lines, with headings kept
// on their own line so chapter detection can find them.
package document

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned for file extensions no extractor handles.
var ErrUnsupportedFormat = errors.New("document: unsupported format")

// SupportedExtensions lists the file extensions this package can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// Supported checks if a filename's extension is supported.
func Supported(filename string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// Load reads and extracts the file at path.
func Load(path string) (string, error) {
	f, err := os.Open(path) // #nosec G304 - path is provided by the operator
	if err != nil {
		return "", fmt.Errorf("document: open: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Extract(f, filepath.Base(path))
}

// Extract pulls plain text out of r, choosing the extractor by the
// filename's extension.
func Extract(r io.Reader, filename string) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt":
		return extractText(r)
	case ".md", ".markdown":
		return extractMarkdown(r)
	case ".html", ".htm":
		return extractHTML(r)
	case ".pdf":
		return extractPDF(r)
	case ".docx":
		return extractDOCX(r)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

// extractText normalizes line endings and trims the document.
func extractText(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("document: read: %w", err)
	}
	s := strings.ReplaceAll(string(data), "\r\n", "\n")
	return strings.TrimSpace(s), nil
}

// joinBlocks assembles extracted blocks into the canonical paragraph
// form: blocks separated by blank lines, empties dropped.
func joinBlocks(blocks []string) string {
	var kept []string
	for _, b := range blocks {
		if b = strings.TrimSpace(b); b != "" {
			kept = append(kept, b)
		}
	}
	return strings.Join(kept, "\n\n")
}
