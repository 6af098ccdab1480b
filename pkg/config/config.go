// Package config holds all tunables for the extraction pipeline. The OCR
// relevance thresholds are empirically tuned against real statements; they
// live here as named values so deployments can override them per environment.
package config

import (
	"os"
	"strconv"
	"strings"

	// Load environment variables from .env files when present.
	_ "github.com/joho/godotenv/autoload"
)

// Config holds all application configuration.
type Config struct {
	OCR         OCRConfig
	Extraction  ExtractionConfig
	Consolidate ConsolidateConfig
	LogLevel    string
}

// OCRConfig drives the two-pass relevance filter.
type OCRConfig struct {
	QuickDPI          int     // rasterization DPI for the scoring pass
	FullDPI           int     // rasterization DPI for the recognition pass
	QuickScale        float64 // upscale factor before quick-pass recognition
	FullScale         float64 // upscale factor before full-pass recognition
	BinarizeThreshold uint8   // grayscale cutoff for binarization

	// Relevance rule thresholds: a page is relevant when
	// (headers >= MinHeaders && (dates >= MinDates || amounts >= MinAmounts))
	// || (dates >= StrongDates && amounts >= StrongAmounts)
	// || headers >= SoloHeaders.
	MinHeaders    int
	MinDates      int
	MinAmounts    int
	StrongDates   int
	StrongAmounts int
	SoloHeaders   int

	BatchSize int    // full-pass pages rasterized per batch, bounds peak memory
	Language  string // tesseract language code

	RasterBinary    string // pdftoppm binary, resolved on PATH when empty
	RecognizeBinary string // tesseract binary, resolved on PATH when empty
}

// ExtractionConfig drives the per-document orchestration.
type ExtractionConfig struct {
	TableMaxPages       int // table-structure extraction is bounded to the first N pages
	ProbeSamplePages    int // pages sampled by the image-based probe
	ImageCharThreshold  int // fewer native chars than this over the sample means image-based
	MinTextLines        int // fewer precleaned lines than this triggers OCR
	ClassifySampleLines int // lines of text handed to the content classifier
	CacheSize           int // reader cache entries per (path, mode)
	ForceOCRBanks       []string
	SkipTableBanks      []string

	// TableCommand is the external table-structure detector invocation.
	// Table extraction is skipped when empty.
	TableCommand []string
}

// ConsolidateConfig drives ledger serialization.
type ConsolidateConfig struct {
	SheetName       string
	DefaultCurrency string
}

// Default returns the tuned production configuration.
func Default() *Config {
	return &Config{
		OCR: OCRConfig{
			QuickDPI:          160,
			FullDPI:           200,
			QuickScale:        1.25,
			FullScale:         1.35,
			BinarizeThreshold: 180,
			MinHeaders:        2,
			MinDates:          5,
			MinAmounts:        5,
			StrongDates:       8,
			StrongAmounts:     6,
			SoloHeaders:       3,
			BatchSize:         10,
			Language:          "spa",
		},
		Extraction: ExtractionConfig{
			TableMaxPages:       5,
			ProbeSamplePages:    2,
			ImageCharThreshold:  100,
			MinTextLines:        5,
			ClassifySampleLines: 250,
			CacheSize:           64,
			ForceOCRBanks:       []string{"ICBC", "COMAFI", "MERCADOPAGO", "SUPERVIELLE", "GALICIA"},
			SkipTableBanks:      []string{"MACRO"},
		},
		Consolidate: ConsolidateConfig{
			SheetName:       "Consolidado",
			DefaultCurrency: "ARS",
		},
		LogLevel: "info",
	}
}

// Load reads configuration from environment variables on top of Default.
func Load() (*Config, error) {
	cfg := Default()

	cfg.OCR.QuickDPI = getEnvAsInt("OCR_QUICK_DPI", cfg.OCR.QuickDPI)
	cfg.OCR.FullDPI = getEnvAsInt("OCR_FULL_DPI", cfg.OCR.FullDPI)
	cfg.OCR.QuickScale = getEnvAsFloat("OCR_QUICK_SCALE", cfg.OCR.QuickScale)
	cfg.OCR.FullScale = getEnvAsFloat("OCR_FULL_SCALE", cfg.OCR.FullScale)
	cfg.OCR.MinHeaders = getEnvAsInt("OCR_MIN_HEADERS", cfg.OCR.MinHeaders)
	cfg.OCR.MinDates = getEnvAsInt("OCR_MIN_DATES", cfg.OCR.MinDates)
	cfg.OCR.MinAmounts = getEnvAsInt("OCR_MIN_AMOUNTS", cfg.OCR.MinAmounts)
	cfg.OCR.StrongDates = getEnvAsInt("OCR_STRONG_DATES", cfg.OCR.StrongDates)
	cfg.OCR.StrongAmounts = getEnvAsInt("OCR_STRONG_AMOUNTS", cfg.OCR.StrongAmounts)
	cfg.OCR.SoloHeaders = getEnvAsInt("OCR_SOLO_HEADERS", cfg.OCR.SoloHeaders)
	cfg.OCR.BatchSize = getEnvAsInt("OCR_BATCH_SIZE", cfg.OCR.BatchSize)
	cfg.OCR.Language = getEnv("OCR_LANGUAGE", cfg.OCR.Language)
	cfg.OCR.RasterBinary = getEnv("OCR_RASTER_BINARY", cfg.OCR.RasterBinary)
	cfg.OCR.RecognizeBinary = getEnv("OCR_RECOGNIZE_BINARY", cfg.OCR.RecognizeBinary)

	cfg.Extraction.TableMaxPages = getEnvAsInt("TABLE_MAX_PAGES", cfg.Extraction.TableMaxPages)
	cfg.Extraction.ProbeSamplePages = getEnvAsInt("PROBE_SAMPLE_PAGES", cfg.Extraction.ProbeSamplePages)
	cfg.Extraction.ImageCharThreshold = getEnvAsInt("IMAGE_CHAR_THRESHOLD", cfg.Extraction.ImageCharThreshold)
	cfg.Extraction.MinTextLines = getEnvAsInt("MIN_TEXT_LINES", cfg.Extraction.MinTextLines)
	cfg.Extraction.CacheSize = getEnvAsInt("READER_CACHE_SIZE", cfg.Extraction.CacheSize)
	cfg.Extraction.ForceOCRBanks = getEnvAsList("FORCE_OCR_BANKS", cfg.Extraction.ForceOCRBanks)
	cfg.Extraction.SkipTableBanks = getEnvAsList("SKIP_TABLE_BANKS", cfg.Extraction.SkipTableBanks)
	if cmd := os.Getenv("TABLE_EXTRACTOR_CMD"); cmd != "" {
		cfg.Extraction.TableCommand = strings.Fields(cmd)
	}

	cfg.Consolidate.SheetName = getEnv("CONSOLIDATE_SHEET_NAME", cfg.Consolidate.SheetName)
	cfg.Consolidate.DefaultCurrency = getEnv("DEFAULT_CURRENCY", cfg.Consolidate.DefaultCurrency)

	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, strings.ToUpper(p))
		}
	}
	return out
}
