package document

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fumiama/go-docx"
)

// extractDOCX flattens a .docx file paragraph by paragraph. Heading
// styles are not treated specially: a "Chapter 1" heading is already a
// paragraph of its own, which is all chapter detection needs.
func extractDOCX(r io.Reader) (string, error) {
	// go-docx needs a ReadSeeker and a size, so spool to a temp file.
	tmp, err := os.CreateTemp("", "audiobooker-docx-*.docx")
	if err != nil {
		return "", fmt.Errorf("document: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	size, err := io.Copy(tmp, r)
	if err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("document: write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("document: seek temp file: %w", err)
	}

	doc, err := docx.Parse(tmp, size)
	_ = tmp.Close()
	if err != nil {
		return "", fmt.Errorf("document: parse docx: %w", err)
	}

	var blocks []string
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		if text := paragraphText(para); text != "" {
			blocks = append(blocks, text)
		}
	}

	return joinBlocks(blocks), nil
}

// paragraphText collects the run text of one paragraph.
func paragraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
