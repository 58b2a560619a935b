package retrieval

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/aqua777/ayurveda-companion/schema"
)

// PDFReader loads PDF files into page-level documents.
type PDFReader struct{}

// NewPDFReader creates a PDFReader.
func NewPDFReader() *PDFReader {
	return &PDFReader{}
}

// LoadFile reads a single PDF file and returns one document per page.
// Pages with no extractable text are skipped.
func (r *PDFReader) LoadFile(path string) ([]schema.Document, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf %s: %w", path, err)
	}
	defer f.Close()

	var docs []schema.Document
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to extract text from page %d of %s: %w", pageNum, path, err)
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		doc := schema.NewDocumentWithSource(text, filepath.Base(path))
		doc.Metadata[schema.MetaPageNumber] = pageNum
		docs = append(docs, doc)
	}
	return docs, nil
}

// LoadDir reads every .pdf file in a directory and returns the combined
// page-level documents.
func (r *PDFReader) LoadDir(dir string) ([]schema.Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read pdf directory %s: %w", dir, err)
	}

	var docs []schema.Document
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}
		fileDocs, err := r.LoadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		docs = append(docs, fileDocs...)
	}
	return docs, nil
}
