// Package commands wires the extraction pipeline behind the CLI.
package commands

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/FACorreiaa/statement-ledger/internal/domain/extract"
	"github.com/FACorreiaa/statement-ledger/internal/domain/extract/bank"
	"github.com/FACorreiaa/statement-ledger/internal/domain/extract/ocr"
	"github.com/FACorreiaa/statement-ledger/internal/domain/extract/parser"
	"github.com/FACorreiaa/statement-ledger/internal/domain/extract/reader"
	"github.com/FACorreiaa/statement-ledger/internal/pdfio"
	"github.com/FACorreiaa/statement-ledger/pkg/config"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "statement-ledger",
		Short: "Extract and consolidate bank statement PDFs",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newExtractCommand())
	rootCmd.AddCommand(newConsolidateCommand())

	return rootCmd
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// buildService assembles the extraction pipeline from configuration.
func buildService(cfg *config.Config, log *slog.Logger) *extract.Service {
	text := pdfio.NativeExtractor{}
	tables := pdfio.CommandTableExtractor{Command: cfg.Extraction.TableCommand}
	raster := pdfio.PopplerRasterizer{Binary: cfg.OCR.RasterBinary}
	rec := pdfio.TesseractRecognizer{Binary: cfg.OCR.RecognizeBinary, Language: cfg.OCR.Language}

	filter := ocr.NewFilter(raster, rec, cfg.OCR, log)
	rd := reader.New(text, tables, filter, cfg.Extraction, log)

	return extract.NewService(
		rd,
		bank.NewClassifier(log),
		parser.NewRegistry(log),
		text,
		filter,
		cfg.Extraction,
		log,
	)
}
