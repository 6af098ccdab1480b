package ocr

import (
	"errors"
	"image"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/statement-ledger/pkg/config"
)

// stubRaster returns one tiny image per configured page. Page texts are
// delivered by the paired stubRecognizer, which replays them in call order.
type stubRaster struct {
	pages int
	err   error
	calls []int
}

// basePageWidth is the stub page width before the page number is added.
// Preprocess rescales images, so the recognizer recovers the page number
// from the scaled width rather than from pixel content.
const basePageWidth = 100

func (s *stubRaster) RenderPages(_ string, dpi, first, last int) ([]image.Image, error) {
	if s.err != nil {
		return nil, s.err
	}
	if last <= 0 || last > s.pages {
		last = s.pages
	}
	s.calls = append(s.calls, last-first+1)
	imgs := make([]image.Image, 0, last-first+1)
	for p := first; p <= last; p++ {
		imgs = append(imgs, image.NewGray(image.Rect(0, 0, basePageWidth+p, 10)))
	}
	return imgs, nil
}

type stubRecognizer struct {
	texts map[int]string
	fail  map[int]bool
	calls map[int]int
}

func (s *stubRecognizer) Recognize(img image.Image) (string, error) {
	page := pageOf(img)
	if s.calls == nil {
		s.calls = map[int]int{}
	}
	s.calls[page]++
	if s.fail[page] {
		return "", errors.New("tesseract exit status 1")
	}
	return s.texts[page], nil
}

// pageOf recovers the page number from the scaled image width.
func pageOf(img image.Image) int {
	w := img.Bounds().Dx()
	cfg := config.Default().OCR
	for p := 1; p <= 64; p++ {
		for _, scale := range []float64{cfg.QuickScale, cfg.FullScale} {
			if int(float64(basePageWidth+p)*scale) == w {
				return p
			}
		}
	}
	return 0
}

const relevantPage = `FECHA CONCEPTO DEBITO CREDITO SALDO
01/06/2024 pago 1.000,00 02/06/2024 cobro 2.000,00
03/06/2024 04/06/2024 05/06/2024 500,00 600,00 700,00`

const boilerplatePage = `Estimado cliente, le informamos que nuestras sucursales
permaneceran cerradas durante los feriados nacionales.`

func testFilter(r *stubRaster, rec *stubRecognizer) *Filter {
	cfg := config.Default().OCR
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewFilter(r, rec, cfg, log)
}

func TestScorePage(t *testing.T) {
	sc := scorePage(relevantPage)
	assert.GreaterOrEqual(t, sc.Headers, 3)
	assert.Equal(t, 5, sc.Dates)
	assert.Equal(t, 5, sc.Amounts)

	sc = scorePage(boilerplatePage)
	assert.Zero(t, sc.Dates)
	assert.Zero(t, sc.Amounts)
}

func TestRelevanceRule(t *testing.T) {
	f := testFilter(&stubRaster{}, &stubRecognizer{})

	tests := []struct {
		name string
		sc   pageScore
		want bool
	}{
		{"headers with dates", pageScore{Headers: 2, Dates: 5}, true},
		{"headers with amounts", pageScore{Headers: 2, Amounts: 5}, true},
		{"headers alone below solo threshold", pageScore{Headers: 2, Dates: 1}, false},
		{"strong dates and amounts without headers", pageScore{Dates: 8, Amounts: 6}, true},
		{"dates without amounts", pageScore{Dates: 20}, false},
		{"solo headers", pageScore{Headers: 3}, true},
		{"nothing", pageScore{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.relevant(tt.sc))
		})
	}
}

func TestExtractRelevantPages(t *testing.T) {
	t.Run("only relevant pages get the full pass", func(t *testing.T) {
		raster := &stubRaster{pages: 3}
		rec := &stubRecognizer{texts: map[int]string{
			1: boilerplatePage,
			2: relevantPage,
			3: boilerplatePage,
		}}
		f := testFilter(raster, rec)

		pages, err := f.ExtractRelevantPages("/in/scan.pdf")
		require.NoError(t, err)
		require.Len(t, pages, 1)
		assert.Equal(t, 2, pages[0].Page)
		assert.Contains(t, pages[0].Text, "FECHA")

		// Quick pass touches every page once; only page 2 is recognized again.
		assert.Equal(t, 2, rec.calls[2])
		assert.Equal(t, 1, rec.calls[1])
		assert.Equal(t, 1, rec.calls[3])
	})

	t.Run("no relevant pages yields empty result", func(t *testing.T) {
		raster := &stubRaster{pages: 2}
		rec := &stubRecognizer{texts: map[int]string{1: boilerplatePage, 2: boilerplatePage}}
		f := testFilter(raster, rec)

		pages, err := f.ExtractRelevantPages("/in/scan.pdf")
		require.NoError(t, err)
		assert.Empty(t, pages)
	})

	t.Run("failed page is skipped, not fatal", func(t *testing.T) {
		raster := &stubRaster{pages: 2}
		rec := &stubRecognizer{
			texts: map[int]string{1: relevantPage, 2: relevantPage},
			fail:  map[int]bool{1: true},
		}
		f := testFilter(raster, rec)

		pages, err := f.ExtractRelevantPages("/in/scan.pdf")
		require.NoError(t, err)
		require.Len(t, pages, 1)
		assert.Equal(t, 2, pages[0].Page)
	})

	t.Run("rasterization failure is an error", func(t *testing.T) {
		f := testFilter(&stubRaster{err: errors.New("pdftoppm not found")}, &stubRecognizer{})
		_, err := f.ExtractRelevantPages("/in/scan.pdf")
		require.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), "quick-pass"))
	})

	t.Run("gapped relevant pages keep their alignment", func(t *testing.T) {
		raster := &stubRaster{pages: 5}
		rec := &stubRecognizer{texts: map[int]string{
			1: relevantPage,
			2: boilerplatePage,
			3: boilerplatePage,
			4: boilerplatePage,
			5: relevantPage,
		}}
		f := testFilter(raster, rec)

		pages, err := f.ExtractRelevantPages("/in/scan.pdf")
		require.NoError(t, err)
		require.Len(t, pages, 2)
		assert.Equal(t, 1, pages[0].Page)
		assert.Equal(t, 5, pages[1].Page)
		assert.Contains(t, pages[1].Text, "FECHA")
	})
}
