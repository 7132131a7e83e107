// runextract is a debug tool: extract raw fields from one document and dump
// them as JSON, without touching a database or running the engine.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/mfg-qc/crosscheck/constants"
	"github.com/mfg-qc/crosscheck/internal/common"
	"github.com/mfg-qc/crosscheck/internal/extract"
	"github.com/mfg-qc/crosscheck/internal/facts"
	"github.com/mfg-qc/crosscheck/internal/ocr"
	"github.com/mfg-qc/crosscheck/internal/patterns"
	"github.com/mfg-qc/crosscheck/internal/pdftext"
	"github.com/mfg-qc/crosscheck/internal/tabular"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		logger.Error("usage", "cmd", "runextract <file>")
		os.Exit(2)
	}
	path := os.Args[1]

	var kind constants.DocumentKind
	switch constants.MapExtToFormat(filepath.Ext(path)) {
	case constants.FormatPDF:
		kind = constants.DocTraveler
	case constants.FormatExcel:
		kind = constants.DocBOM
	case constants.FormatImage:
		kind = constants.DocImageSet
	default:
		logger.Error("unsupported file extension", "file", path)
		os.Exit(2)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		logger.Error("read file", "error", err)
		os.Exit(1)
	}

	cfg := common.LoadConfig()
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Extract.Timeout)
	defer cancel()

	ocrEngine, err := ocr.NewEngine(cfg.OCR, logger)
	if err != nil {
		logger.Error("start ocr engine", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := ocrEngine.Close(); cerr != nil {
			logger.Error("close ocr engine", "error", cerr)
		}
	}()

	lib := patterns.NewLibrary()
	extractor := extract.NewExtractor(lib, cfg.Extract.MinOCRConfidence, logger)
	caps := extract.Capabilities{
		OCR:   ocrEngine,
		PDF:   pdftext.NewExtractor(cfg.PDF, ocrEngine, logger),
		Table: tabular.NewReader(logger),
	}

	start := time.Now()
	raws, err := extractor.Extract(ctx, kind, content, caps)
	if err != nil {
		logger.Error("extraction failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		os.Exit(1)
	}
	logger.Info("extraction OK",
		"kind", kind, "fields", len(raws), "duration_ms", time.Since(start).Milliseconds())

	fs := facts.NewBuilder(lib, logger).Build(kind, raws)
	dump := struct {
		Kind  constants.DocumentKind                          `json:"kind"`
		Raw   []extract.RawField                              `json:"raw_fields"`
		Facts map[constants.FieldKind][]facts.NormalizedField `json:"facts"`
	}{Kind: kind, Raw: raws, Facts: map[constants.FieldKind][]facts.NormalizedField{}}
	for _, fk := range constants.FieldKinds {
		if vs := fs.Values(fk); len(vs) > 0 {
			dump.Facts[fk] = vs
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(dump); err != nil {
		fmt.Fprintln(os.Stderr, "encode:", err)
		os.Exit(1)
	}
}
