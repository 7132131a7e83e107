package extract

import (
	"context"
	"log/slog"

	"github.com/mfg-qc/crosscheck/constants"
	"github.com/mfg-qc/crosscheck/internal/patterns"
)

// Capabilities bundles the injected extraction backends. Exactly one is used
// per document, selected by the declared document kind.
type Capabilities struct {
	OCR   OCRCapability
	PDF   PDFCapability
	Table TableCapability
}

// Extractor turns one document's bytes into raw fields. It holds no per-run
// state and is safe for concurrent use.
type Extractor struct {
	lib     *patterns.Library
	minConf float32
	logger  *slog.Logger
}

func NewExtractor(lib *patterns.Library, minOCRConfidence float32, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{lib: lib, minConf: minOCRConfidence, logger: logger}
}

// Extract dispatches on the declared document kind.
func (e *Extractor) Extract(ctx context.Context, kind constants.DocumentKind, data []byte, caps Capabilities) ([]RawField, error) {
	switch kind {
	case constants.DocTraveler:
		return e.ExtractPDF(ctx, caps.PDF, data)
	case constants.DocBOM:
		return e.ExtractExcel(ctx, caps.Table, data)
	case constants.DocImageSet:
		return e.ExtractImage(ctx, caps.OCR, data)
	default:
		return nil, newExtractionError(string(kind), "unsupported document kind", nil)
	}
}

// scanKinds runs every family matcher except flight status over a cleaned
// text blob.
func (e *Extractor) scanKinds(text string, docKind constants.DocumentKind, location string, conf float32, rotation int) []RawField {
	var out []RawField
	for _, kind := range constants.FieldKinds {
		if kind == constants.FieldFlightStatus {
			continue
		}
		for _, m := range e.lib.Match(kind, text) {
			out = append(out, RawField{
				Kind:            kind,
				Raw:             m.Raw,
				DocumentKind:    docKind,
				Location:        location,
				Confidence:      conf,
				RotationDegrees: rotation,
			})
		}
	}
	return out
}
