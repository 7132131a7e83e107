// Package pdftext extracts per-page text from PDFs via poppler. Travelers are
// usually born-digital with a real text layer; pdftotext handles those. A
// scanned traveler has no text layer, so pages are rasterized with pdftoppm
// and pushed through OCR instead.
package pdftext

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mfg-qc/crosscheck/internal/common"
	"github.com/mfg-qc/crosscheck/internal/extract"
)

// Extractor implements extract.PDFCapability. Safe for concurrent use as long
// as the injected OCR capability is.
type Extractor struct {
	cfg    common.PDFConfig
	runner Runner
	ocr    extract.OCRCapability
	logger *slog.Logger
}

// NewExtractor builds a PDF extractor. ocr may be nil, which disables the
// scanned-document fallback.
func NewExtractor(cfg common.PDFConfig, ocr extract.OCRCapability, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{cfg: cfg, runner: execRunner{}, ocr: ocr, logger: logger}
}

// NewExtractorWithRunner is for tests.
func NewExtractorWithRunner(cfg common.PDFConfig, runner Runner, ocr extract.OCRCapability, logger *slog.Logger) *Extractor {
	e := NewExtractor(cfg, ocr, logger)
	e.runner = runner
	return e
}

// ExtractPages returns one string per page. Pages come from the native text
// layer when one exists; otherwise the whole document is rasterized and OCRed.
func (e *Extractor) ExtractPages(ctx context.Context, pdf []byte) ([]string, error) {
	path, cleanup, err := e.spill(pdf)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	pages, err := e.nativePages(ctx, path)
	if err != nil {
		return nil, err
	}
	if e.hasTextLayer(pages) {
		return pages, nil
	}

	if e.ocr == nil {
		e.logger.Warn("pdf has no text layer and no OCR fallback is configured")
		return pages, nil
	}
	e.logger.Info("pdf text layer absent, falling back to raster OCR", "native_pages", len(pages))
	return e.rasterPages(ctx, path)
}

// spill writes the bytes to a temp file because the poppler tools want paths.
func (e *Extractor) spill(pdf []byte) (string, func(), error) {
	f, err := os.CreateTemp("", "qc-pdf-*.pdf")
	if err != nil {
		return "", nil, fmt.Errorf("temp pdf: %w", err)
	}
	if _, err := f.Write(pdf); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", nil, fmt.Errorf("write temp pdf: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", nil, fmt.Errorf("close temp pdf: %w", err)
	}
	name := f.Name()
	return name, func() {
		if err := os.Remove(name); err != nil {
			e.logger.Warn("failed to remove temp pdf", "path", name, "error", err)
		}
	}, nil
}

func (e *Extractor) nativePages(ctx context.Context, path string) ([]string, error) {
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w (%s)", err, truncate(string(errb), 512))
	}
	// form-feed is the default page separator
	return strings.Split(string(out), "\f"), nil
}

// hasTextLayer decides whether native extraction produced real content. A
// scanned PDF still yields pages, just near-empty ones.
func (e *Extractor) hasTextLayer(pages []string) bool {
	total := 0
	for _, p := range pages {
		total += len(strings.TrimSpace(p))
	}
	return total >= e.cfg.MinNativeChars
}

func (e *Extractor) rasterPages(ctx context.Context, path string) ([]string, error) {
	tmpDir, err := os.MkdirTemp("", "qc-pp-*")
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			e.logger.Warn("failed to remove temp dir", "path", tmpDir, "error", err)
		}
	}()

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r <dpi> -png <in.pdf> <tmp/page>
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, "-r", fmt.Sprintf("%d", e.cfg.DPI), "-png", path, prefix)
	if err != nil {
		return nil, fmt.Errorf("pdftoppm: %w (%s)", err, truncate(string(errb), 512))
	}

	// generated as prefix-1.png, prefix-2.png, ...
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if e.cfg.MaxPages > 0 && len(matches) > e.cfg.MaxPages {
		matches = matches[:e.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("pdftoppm produced no images")
	}

	pages := make([]string, 0, len(matches))
	for _, img := range matches {
		data, err := os.ReadFile(img)
		if err != nil {
			return nil, fmt.Errorf("read rendered page: %w", err)
		}
		// Rasterized documents are flat on the page; no rotation sweep needed.
		text, conf, err := e.ocr.ExtractText(ctx, data, 0)
		if err != nil {
			e.logger.Warn("ocr failed on rendered page", "page", img, "error", err)
			pages = append(pages, "")
			continue
		}
		e.logger.Debug("ocr page done", "page", img, "chars", len(text), "confidence", conf)
		pages = append(pages, text)
	}
	return pages, nil
}
