// Package pdfio defines the external document-processing collaborators the
// extraction pipeline consumes: the native text-layer extractor, the
// table-structure detector, the page rasterizer and the OCR recognizer.
// Table detection and character recognition are external capabilities; the
// adapters here only bridge to them.
package pdfio

import "image"

// Table is one raw tabular block as detected on a page: rows of cells.
type Table [][]string

// TextExtractor reads the native text layer of a PDF.
type TextExtractor interface {
	PageCount(path string) (int, error)
	ExtractPageText(path string, page int) (string, error)
}

// TableExtractor recovers raw tabular blocks from a PDF. maxPages <= 0 means
// all pages.
type TableExtractor interface {
	ExtractTables(path string, maxPages int) ([]Table, error)
}

// Rasterizer renders PDF pages to images. last <= 0 means through the final
// page.
type Rasterizer interface {
	RenderPages(path string, dpi, first, last int) ([]image.Image, error)
}

// Recognizer turns one page image into text.
type Recognizer interface {
	Recognize(img image.Image) (string, error)
}
