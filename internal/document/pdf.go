package document

import (
	"fmt"
	"io"
	"os"

	pdflib "github.com/ledongthuc/pdf"
)

// extractPDF pulls plain text out of a PDF, page by page.
func extractPDF(r io.Reader) (string, error) {
	// ledongthuc/pdf needs a ReadSeeker and a size, so spool to a temp file.
	tmp, err := os.CreateTemp("", "audiobooker-pdf-*.pdf")
	if err != nil {
		return "", fmt.Errorf("document: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("document: write temp file: %w", err)
	}
	_ = tmp.Close()

	f, reader, err := pdflib.Open(tmpPath)
	if err != nil {
		return "", fmt.Errorf("document: open pdf: %w", err)
	}
	defer func() { _ = f.Close() }()

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		pages = append(pages, text)
	}

	return joinBlocks(pages), nil
}
