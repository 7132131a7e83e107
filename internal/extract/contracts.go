// Package extract turns raw file bytes into typed raw fields using the
// pattern library and the injected OCR/PDF/table capabilities.
package extract

import (
	"context"

	"github.com/mfg-qc/crosscheck/constants"
)

// OCRCapability extracts text from encoded image bytes at a given rotation.
// Confidence is a mean per-token confidence in [0,1]. Implementations may
// block; they are only ever called from extraction workers.
type OCRCapability interface {
	ExtractText(ctx context.Context, image []byte, rotationDegrees int) (text string, confidence float32, err error)
}

// PDFCapability extracts per-page text from PDF bytes, layout-preserving
// where possible.
type PDFCapability interface {
	ExtractPages(ctx context.Context, pdf []byte) ([]string, error)
}

// TableCapability extracts the first worksheet of a spreadsheet as rows of
// cell strings.
type TableCapability interface {
	ExtractRows(ctx context.Context, spreadsheet []byte) ([][]string, error)
}

// Rotations are the orientation candidates tried for image OCR.
var Rotations = []int{0, 90, 180, 270}

// RawField is one raw identifier hit in a source document. Immutable once
// created.
type RawField struct {
	Kind         constants.FieldKind
	Raw          string
	DocumentKind constants.DocumentKind
	// Location is human-readable source context ("page 2", "row 14",
	// "rotation 90").
	Location   string
	Confidence float32
	// RotationDegrees is set for image-sourced fields only.
	RotationDegrees int
}
