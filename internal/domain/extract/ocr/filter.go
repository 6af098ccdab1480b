// Package ocr implements the two-pass OCR relevance filter. Full-resolution
// recognition on every page is too slow and most statement pages are
// boilerplate, so a cheap low-resolution pass scores each page first and only
// relevant pages are re-rasterized at full resolution, in fixed-size batches
// so decoded images are released between batches.
package ocr

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/FACorreiaa/statement-ledger/internal/pdfio"
	"github.com/FACorreiaa/statement-ledger/pkg/config"
	"github.com/FACorreiaa/statement-ledger/pkg/money"
)

// PageText is the recognized text of one relevant page.
type PageText struct {
	Page int
	Text string
}

// headerKeywords mark a movement table header. Kept as data so the rule set
// is testable on its own.
var headerKeywords = []string{
	"fecha", "concepto", "descripción", "descripcion", "detalle",
	"importe", "saldo", "débito", "debito", "crédito", "credito",
	"n°", "nro", "comprobante", "referencia",
}

var datePattern = regexp.MustCompile(`\b[0-3]?\d[/-][01]?\d[/-](?:\d{2}|\d{4})\b`)

type pageScore struct {
	Headers int
	Dates   int
	Amounts int
}

// Filter runs the quick/full OCR passes over a document.
type Filter struct {
	raster pdfio.Rasterizer
	rec    pdfio.Recognizer
	cfg    config.OCRConfig
	log    *slog.Logger
}

// NewFilter creates a relevance filter over the given rasterizer/recognizer.
func NewFilter(raster pdfio.Rasterizer, rec pdfio.Recognizer, cfg config.OCRConfig, log *slog.Logger) *Filter {
	return &Filter{raster: raster, rec: rec, cfg: cfg, log: log}
}

// ExtractRelevantPages returns (page, text) pairs for relevant pages only,
// in page order. A page whose recognition fails is logged and skipped; a
// document with no relevant pages yields an empty slice.
func (f *Filter) ExtractRelevantPages(path string) ([]PageText, error) {
	f.log.Info("ocr quick pass", slog.String("file", path), slog.Int("dpi", f.cfg.QuickDPI))

	quick, err := f.raster.RenderPages(path, f.cfg.QuickDPI, 1, 0)
	if err != nil {
		return nil, fmt.Errorf("quick-pass rasterization: %w", err)
	}

	var relevant []int
	for i, img := range quick {
		page := i + 1
		pre := Preprocess(img, f.cfg.QuickScale, f.cfg.BinarizeThreshold)
		text, err := f.rec.Recognize(pre)
		if err != nil {
			f.log.Warn("quick-pass recognition failed",
				slog.Int("page", page), slog.Any("error", err))
			continue
		}
		sc := scorePage(text)
		ok := f.relevant(sc)
		f.log.Debug("quick pass scored page",
			slog.Int("page", page), slog.Bool("relevant", ok),
			slog.Int("headers", sc.Headers), slog.Int("dates", sc.Dates),
			slog.Int("amounts", sc.Amounts))
		if ok {
			relevant = append(relevant, page)
		}
	}

	if len(relevant) == 0 {
		f.log.Warn("no page qualified as relevant", slog.String("file", path))
		return nil, nil
	}

	f.log.Info("ocr full pass", slog.Int("dpi", f.cfg.FullDPI),
		slog.Int("pages", len(relevant)))

	batchSize := f.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 10
	}

	var results []PageText
	for start := 0; start < len(relevant); start += batchSize {
		end := min(start+batchSize, len(relevant))
		batch := relevant[start:end]

		first, last := batch[0], batch[len(batch)-1]
		imgs, err := f.raster.RenderPages(path, f.cfg.FullDPI, first, last)
		if err != nil {
			f.log.Error("full-pass rasterization failed",
				slog.Int("first", first), slog.Int("last", last), slog.Any("error", err))
			continue
		}

		for _, page := range batch {
			offset := page - first
			if offset < 0 || offset >= len(imgs) {
				continue
			}
			pre := Preprocess(imgs[offset], f.cfg.FullScale, f.cfg.BinarizeThreshold)
			text, err := f.rec.Recognize(pre)
			if err != nil {
				f.log.Warn("full-pass recognition failed",
					slog.Int("page", page), slog.Any("error", err))
				continue
			}
			results = append(results, PageText{Page: page, Text: text})
		}
	}

	return results, nil
}

// relevant applies the tuned relevance rule to a page score.
func (f *Filter) relevant(sc pageScore) bool {
	return (sc.Headers >= f.cfg.MinHeaders && (sc.Dates >= f.cfg.MinDates || sc.Amounts >= f.cfg.MinAmounts)) ||
		(sc.Dates >= f.cfg.StrongDates && sc.Amounts >= f.cfg.StrongAmounts) ||
		sc.Headers >= f.cfg.SoloHeaders
}

func scorePage(text string) pageScore {
	lower := strings.ToLower(text)
	var sc pageScore
	for _, kw := range headerKeywords {
		if strings.Contains(lower, kw) {
			sc.Headers++
		}
	}
	sc.Dates = len(datePattern.FindAllString(text, -1))
	sc.Amounts = len(money.AmountPattern.FindAllString(text, -1))
	return sc
}
