package pdfio

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// PopplerRasterizer renders pages through the poppler pdftoppm binary.
type PopplerRasterizer struct {
	Binary string // defaults to "pdftoppm" on PATH
}

func (r PopplerRasterizer) binary() string {
	if r.Binary != "" {
		return r.Binary
	}
	return "pdftoppm"
}

func (r PopplerRasterizer) RenderPages(path string, dpi, first, last int) ([]image.Image, error) {
	dir, err := os.MkdirTemp("", "rasterize-*")
	if err != nil {
		return nil, fmt.Errorf("create raster dir: %w", err)
	}
	defer os.RemoveAll(dir)

	args := []string{"-png", "-r", strconv.Itoa(dpi)}
	if first > 0 {
		args = append(args, "-f", strconv.Itoa(first))
	}
	if last > 0 {
		args = append(args, "-l", strconv.Itoa(last))
	}
	args = append(args, path, filepath.Join(dir, "page"))

	cmd := exec.Command(r.binary(), args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdftoppm %s: %w: %s", path, err, bytes.TrimSpace(out))
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read raster dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".png") {
			names = append(names, e.Name())
		}
	}
	// pdftoppm zero-pads page numbers, lexicographic order is page order
	sort.Strings(names)

	images := make([]image.Image, 0, len(names))
	for _, name := range names {
		f, err := os.Open(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("open rendered page %s: %w", name, err)
		}
		img, err := png.Decode(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("decode rendered page %s: %w", name, err)
		}
		images = append(images, img)
	}
	return images, nil
}

// TesseractRecognizer pipes a page image through the tesseract binary.
// OEM 1 / PSM 6 match what statement pages need: LSTM engine, uniform block.
type TesseractRecognizer struct {
	Binary   string // defaults to "tesseract" on PATH
	Language string // defaults to "spa"
}

func (t TesseractRecognizer) binary() string {
	if t.Binary != "" {
		return t.Binary
	}
	return "tesseract"
}

func (t TesseractRecognizer) language() string {
	if t.Language != "" {
		return t.Language
	}
	return "spa"
}

func (t TesseractRecognizer) Recognize(img image.Image) (string, error) {
	var in bytes.Buffer
	if err := png.Encode(&in, img); err != nil {
		return "", fmt.Errorf("encode page image: %w", err)
	}

	cmd := exec.Command(t.binary(), "stdin", "stdout",
		"-l", t.language(), "--oem", "1", "--psm", "6")
	cmd.Stdin = &in
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, bytes.TrimSpace(stderr.Bytes()))
	}
	return out.String(), nil
}

// ErrNoTableExtractor is returned when table detection is not configured.
var ErrNoTableExtractor = errors.New("no table extractor command configured")

// CommandTableExtractor shells out to an external table-structure detector.
// The command receives `--max-pages N` and the PDF path, and must print the
// detected tables as CSV blocks separated by blank lines.
type CommandTableExtractor struct {
	Command []string
}

func (c CommandTableExtractor) ExtractTables(path string, maxPages int) ([]Table, error) {
	if len(c.Command) == 0 {
		return nil, ErrNoTableExtractor
	}

	args := append([]string{}, c.Command[1:]...)
	if maxPages > 0 {
		args = append(args, "--max-pages", strconv.Itoa(maxPages))
	}
	args = append(args, path)

	out, err := exec.Command(c.Command[0], args...).Output()
	if err != nil {
		return nil, fmt.Errorf("table extractor %s: %w", c.Command[0], err)
	}
	return ParseTableBlocks(bytes.NewReader(out))
}

// ParseTableBlocks reads blank-line separated CSV blocks into Tables.
func ParseTableBlocks(r io.Reader) ([]Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var tables []Table
	for _, block := range strings.Split(string(data), "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		cr := csv.NewReader(strings.NewReader(block))
		cr.FieldsPerRecord = -1
		cr.LazyQuotes = true
		rows, err := cr.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("parse table block: %w", err)
		}
		if len(rows) > 0 {
			tables = append(tables, Table(rows))
		}
	}
	return tables, nil
}
