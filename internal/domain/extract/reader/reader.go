// Package reader recovers raw content from statement PDFs of unknown
// quality. It tries table-structure extraction, the native text layer and
// OCR in order until one yields content; each strategy is fault-isolated and
// a document where everything fails produces empty content, never an error.
package reader

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/FACorreiaa/statement-ledger/internal/domain/extract/ocr"
	"github.com/FACorreiaa/statement-ledger/internal/pdfio"
	"github.com/FACorreiaa/statement-ledger/pkg/config"
)

// Content is everything a single extraction recovered from a document.
type Content struct {
	Lines   []string
	Tables  []pdfio.Table
	Text    string
	Pages   int
	UsedOCR bool
}

// Empty reports whether the extraction recovered nothing usable.
func (c Content) Empty() bool {
	return len(c.Lines) == 0 && len(c.Tables) == 0
}

// OCRSource is the reader's view of the OCR relevance filter.
type OCRSource interface {
	ExtractRelevantPages(path string) ([]ocr.PageText, error)
}

// Reader extracts raw content with ordered strategy fallback and a bounded
// per-(path, mode) cache.
type Reader struct {
	text     pdfio.TextExtractor
	tables   pdfio.TableExtractor
	ocr      OCRSource
	cache    *readCache
	tableMax int
	log      *slog.Logger
}

// New builds a Reader over the given collaborators. cfg bounds the cache and
// the table-extraction page window.
func New(text pdfio.TextExtractor, tables pdfio.TableExtractor, ocrSrc OCRSource, cfg config.ExtractionConfig, log *slog.Logger) *Reader {
	return &Reader{
		text:     text,
		tables:   tables,
		ocr:      ocrSrc,
		cache:    newReadCache(cfg.CacheSize),
		tableMax: cfg.TableMaxPages,
		log:      log,
	}
}

type strategy struct {
	name string
	run  func(path string) (Content, error)
}

// Extract runs the fallback chain for one document. preferTables swaps the
// priority of table extraction and the native text layer; OCR is always
// last. Extract never fails: a missing or corrupt file yields empty Content.
func (r *Reader) Extract(path string, preferTables bool) Content {
	key := cacheKey(path, preferTables)
	if c, ok := r.cache.get(key); ok {
		return c
	}

	var strategies []strategy
	if preferTables {
		strategies = []strategy{
			{"tables", r.tryTables},
			{"text", r.tryText},
		}
	} else {
		strategies = []strategy{
			{"text", r.tryText},
			{"tables", r.tryTables},
		}
	}
	strategies = append(strategies, strategy{"ocr", r.tryOCR})

	for _, s := range strategies {
		content, err := runIsolated(s.run, path)
		if err != nil {
			r.log.Warn("extraction strategy failed",
				slog.String("strategy", s.name),
				slog.String("file", path),
				slog.Any("error", err))
			continue
		}
		if content.Empty() {
			continue
		}
		if content.Pages == 0 {
			content.Pages = r.pageCount(path)
		}
		r.log.Info("extraction strategy succeeded",
			slog.String("strategy", s.name),
			slog.String("file", path),
			slog.Int("lines", len(content.Lines)),
			slog.Int("tables", len(content.Tables)))
		r.cache.put(key, content)
		return content
	}

	empty := Content{Pages: r.pageCount(path)}
	r.cache.put(key, empty)
	return empty
}

// runIsolated shields the caller from panicking collaborators.
func runIsolated(fn func(string) (Content, error), path string) (c Content, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("strategy panic: %v", rec)
		}
	}()
	return fn(path)
}

// tryTables runs the table detector over the first tableMax pages only;
// statement tables start early and full-document detection is the slowest
// strategy in the chain.
func (r *Reader) tryTables(path string) (Content, error) {
	tables, err := r.tables.ExtractTables(path, r.tableMax)
	if err != nil {
		return Content{}, err
	}
	if len(tables) == 0 {
		return Content{}, nil
	}

	var lines []string
	for _, table := range tables {
		for _, row := range table {
			var cells []string
			for _, cell := range row {
				if cell = strings.TrimSpace(cell); cell != "" {
					cells = append(cells, cell)
				}
			}
			if len(cells) > 0 {
				lines = append(lines, strings.Join(cells, " "))
			}
		}
	}
	return Content{Lines: lines, Tables: tables, Text: strings.Join(lines, "\n")}, nil
}

func (r *Reader) tryText(path string) (Content, error) {
	pages, err := r.text.PageCount(path)
	if err != nil {
		return Content{}, err
	}

	var lines []string
	for page := 1; page <= pages; page++ {
		text, err := r.text.ExtractPageText(path, page)
		if err != nil {
			return Content{}, err
		}
		for _, line := range strings.Split(text, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				lines = append(lines, line)
			}
		}
	}
	if len(lines) == 0 {
		return Content{Pages: pages}, nil
	}
	return Content{Lines: lines, Text: strings.Join(lines, "\n"), Pages: pages}, nil
}

func (r *Reader) tryOCR(path string) (Content, error) {
	if r.ocr == nil {
		return Content{}, nil
	}
	pages, err := r.ocr.ExtractRelevantPages(path)
	if err != nil {
		return Content{}, err
	}

	var lines []string
	var chunks []string
	for _, p := range pages {
		chunks = append(chunks, p.Text)
		for _, line := range strings.Split(p.Text, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				lines = append(lines, line)
			}
		}
	}
	if len(lines) == 0 {
		return Content{}, nil
	}
	return Content{Lines: lines, Text: strings.Join(chunks, "\n"), UsedOCR: true}, nil
}

func (r *Reader) pageCount(path string) int {
	n, err := r.text.PageCount(path)
	if err != nil {
		return 0
	}
	return n
}

func cacheKey(path string, preferTables bool) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	mode := "text"
	if preferTables {
		mode = "tables"
	}
	return abs + "::" + mode
}
