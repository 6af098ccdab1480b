package pdfio

import (
	"fmt"

	"github.com/ledongthuc/pdf"
)

// NativeExtractor reads the embedded text layer of a PDF. Image-only
// statements yield empty pages here; the reader falls through to OCR.
type NativeExtractor struct{}

func (NativeExtractor) PageCount(path string) (int, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()
	return r.NumPage(), nil
}

func (NativeExtractor) ExtractPageText(path string, page int) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	if page < 1 || page > r.NumPage() {
		return "", fmt.Errorf("page %d out of range (1..%d)", page, r.NumPage())
	}

	p := r.Page(page)
	if p.V.IsNull() {
		return "", nil
	}
	text, err := p.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("extract text layer page %d: %w", page, err)
	}
	return text, nil
}
