// Package extract orchestrates the statement pipeline: raw content recovery,
// institution classification, parser dispatch and per-file reporting. One bad
// document never aborts a batch.
package extract

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/FACorreiaa/statement-ledger/internal/domain/extract/bank"
	"github.com/FACorreiaa/statement-ledger/internal/domain/extract/parser"
	"github.com/FACorreiaa/statement-ledger/internal/domain/extract/reader"
	"github.com/FACorreiaa/statement-ledger/internal/pdfio"
	"github.com/FACorreiaa/statement-ledger/pkg/config"
	"github.com/FACorreiaa/statement-ledger/pkg/money"
)

// Result is everything the pipeline recovered from one document.
type Result struct {
	Lines     []string
	Tables    []pdfio.Table
	Bank      bank.Code
	Metadata  bank.FileMetadata
	UsedOCR   bool
	Pages     int
	Statement parser.Statement
}

// Report statuses for batch processing.
const (
	StatusOK    = "ok"
	StatusEmpty = "empty"
	StatusError = "error"
)

// Report summarizes the outcome for one file in a batch.
type Report struct {
	ID     uuid.UUID
	File   string
	Status string
	Rows   int
	Err    error
}

// Service runs the extraction pipeline.
type Service struct {
	reader     *reader.Reader
	classifier *bank.Classifier
	registry   *parser.Registry
	text       pdfio.TextExtractor
	ocr        reader.OCRSource
	cfg        config.ExtractionConfig
	log        *slog.Logger
}

// NewService wires the pipeline stages together.
func NewService(r *reader.Reader, c *bank.Classifier, reg *parser.Registry, text pdfio.TextExtractor, ocrSrc reader.OCRSource, cfg config.ExtractionConfig, log *slog.Logger) *Service {
	return &Service{
		reader:     r,
		classifier: c,
		registry:   reg,
		text:       text,
		ocr:        ocrSrc,
		cfg:        cfg,
		log:        log,
	}
}

// Extract runs the full pipeline for one document. The filename drives
// classification and metadata; document content is only a fallback because
// statement bodies routinely mention other institutions.
func (s *Service) Extract(path, filename string) Result {
	if filename == "" {
		filename = filepath.Base(path)
	}

	sample := s.textSample(path)
	code, meta := s.classifier.Classify(filename, sample)
	if code == bank.CodeGeneric {
		if detected := s.registry.DetectBank(sample, filename); detected != bank.CodeGeneric {
			code = detected
		}
	}
	s.log.Info("bank classified",
		slog.String("file", filename),
		slog.String("bank", code))

	preferTables := s.shouldPreferTables(path, code)
	content := s.reader.Extract(path, preferTables)
	lines := precleanLines(content.Lines)

	if !content.UsedOCR && (s.forcesOCR(code) || len(lines) < s.cfg.MinTextLines) {
		if extra := s.ocrLines(path); len(extra) > 0 {
			lines = append(lines, extra...)
			content.UsedOCR = true
		}
	}

	// Image-only documents have no native text to classify from; once the
	// reader has recovered lines (OCR included), give classification a second
	// look before dispatching.
	if code == bank.CodeGeneric && len(lines) > 0 {
		recovered := strings.Join(sampleOf(lines, s.cfg.ClassifySampleLines), "\n")
		refined, _ := s.classifier.Classify(filename, recovered)
		if refined == bank.CodeGeneric {
			refined = s.registry.DetectBank(recovered, filename)
		}
		if refined != bank.CodeGeneric {
			code = refined
			s.log.Info("bank reclassified from recovered text",
				slog.String("file", filename),
				slog.String("bank", code))
		}
	}

	st := s.registry.Dispatch(code, parser.Content{Lines: lines, Tables: content.Tables})
	s.forceMetadata(&st, code, meta, filename)

	s.log.Info("extraction complete",
		slog.String("file", filename),
		slog.String("bank", code),
		slog.Int("lines", len(lines)),
		slog.Int("rows", len(st.Rows)),
		slog.Bool("ocr", content.UsedOCR))

	return Result{
		Lines:     lines,
		Tables:    content.Tables,
		Bank:      code,
		Metadata:  meta,
		UsedOCR:   content.UsedOCR,
		Pages:     content.Pages,
		Statement: st,
	}
}

// Process runs Extract over a batch. A panic while processing one file is
// reported on that file alone; the batch keeps going. Reports and results are
// index-aligned with paths.
func (s *Service) Process(paths []string) ([]Report, []Result) {
	reports := make([]Report, 0, len(paths))
	results := make([]Result, 0, len(paths))
	for _, path := range paths {
		rep, res := s.processOne(path)
		reports = append(reports, rep)
		results = append(results, res)
	}
	return reports, results
}

func (s *Service) processOne(path string) (rep Report, res Result) {
	rep = Report{ID: uuid.New(), File: filepath.Base(path)}
	defer func() {
		if rec := recover(); rec != nil {
			rep.Status = StatusError
			rep.Err = fmt.Errorf("extraction panic: %v", rec)
			res = Result{}
			s.log.Error("file processing panicked",
				slog.String("file", rep.File),
				slog.Any("error", rep.Err))
		}
	}()

	res = s.Extract(path, "")
	rep.Rows = len(res.Statement.Rows)
	if rep.Rows == 0 {
		rep.Status = StatusEmpty
		return rep, res
	}
	rep.Status = StatusOK
	return rep, res
}

// shouldPreferTables decides whether table-structure extraction should lead.
// Banks whose statements only parse through OCR, banks with layouts the table
// engine misreads, and image-based documents all start from the text path.
func (s *Service) shouldPreferTables(path string, code bank.Code) bool {
	for _, b := range s.cfg.ForceOCRBanks {
		if b == code {
			return false
		}
	}
	for _, b := range s.cfg.SkipTableBanks {
		if b == code {
			return false
		}
	}
	return !s.isImageBased(path)
}

func sampleOf(lines []string, n int) []string {
	if len(lines) <= n {
		return lines
	}
	return lines[:n]
}

func (s *Service) forcesOCR(code bank.Code) bool {
	for _, b := range s.cfg.ForceOCRBanks {
		if b == code {
			return true
		}
	}
	return false
}

// ocrLines runs the OCR relevance filter when the text layer came up short.
// OCR failures are logged and swallowed; whatever lines were recovered so far
// still go to the parser.
func (s *Service) ocrLines(path string) []string {
	if s.ocr == nil {
		return nil
	}
	pages, err := s.ocr.ExtractRelevantPages(path)
	if err != nil {
		s.log.Warn("ocr supplement failed",
			slog.String("file", path), slog.Any("error", err))
		return nil
	}

	var raw []string
	for _, p := range pages {
		raw = append(raw, strings.Split(p.Text, "\n")...)
	}
	return precleanLines(raw)
}

// isImageBased samples the native text layer of the first pages. Scanned
// statements have next to no extractable characters.
func (s *Service) isImageBased(path string) bool {
	pages, err := s.text.PageCount(path)
	if err != nil {
		s.log.Warn("page probe failed, assuming native text",
			slog.String("file", path), slog.Any("error", err))
		return false
	}
	if pages > s.cfg.ProbeSamplePages {
		pages = s.cfg.ProbeSamplePages
	}

	total := 0
	for page := 1; page <= pages; page++ {
		text, err := s.text.ExtractPageText(path, page)
		if err != nil {
			continue
		}
		total += len(strings.TrimSpace(text))
	}
	return total < s.cfg.ImageCharThreshold
}

// textSample pulls the first lines of native text for content-based
// classification. Returns "" for image-based documents.
func (s *Service) textSample(path string) string {
	pages, err := s.text.PageCount(path)
	if err != nil {
		return ""
	}

	var lines []string
	for page := 1; page <= pages && len(lines) < s.cfg.ClassifySampleLines; page++ {
		text, err := s.text.ExtractPageText(path, page)
		if err != nil {
			continue
		}
		for _, ln := range strings.Split(text, "\n") {
			if ln = strings.TrimSpace(ln); ln != "" {
				lines = append(lines, ln)
			}
			if len(lines) >= s.cfg.ClassifySampleLines {
				break
			}
		}
	}
	return strings.Join(lines, "\n")
}

// forceMetadata stamps filename-derived metadata onto the statement. The
// filename always wins over whatever the parser read out of the document.
func (s *Service) forceMetadata(st *parser.Statement, code bank.Code, meta bank.FileMetadata, filename string) {
	st.Bank = code
	if meta.Bank != "" {
		st.Bank = meta.Bank
	}
	st.Company = meta.Company
	st.Period = meta.Period
	st.SourceFile = filepath.Base(filename)
	if st.Currency == "" {
		st.Currency = money.DefaultCurrency
	}
}
