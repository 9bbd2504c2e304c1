package ingest

import (
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"
)

// PageText holds the extracted plain text of one PDF page.
type PageText struct {
	Page int
	Text string
}

// ExtractPages extracts plain text from every page of a PDF file.
// Pages that fail text extraction are skipped rather than failing the whole
// document; scanned pages without a text layer are common in governance PDFs.
func ExtractPages(path string) ([]PageText, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat pdf: %w", err)
	}

	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to read pdf: %w", err)
	}

	var pages []PageText
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		pages = append(pages, PageText{Page: i, Text: text})
	}

	if len(pages) == 0 {
		return nil, fmt.Errorf("no extractable text in %s", path)
	}
	return pages, nil
}
