package extract

import (
	"context"
	"fmt"

	"github.com/mfg-qc/crosscheck/constants"
	"github.com/mfg-qc/crosscheck/internal/patterns"
)

// ExtractImage OCRs a product photo at each rotation candidate and keeps, per
// field kind, only the best-confidence rotation's matches. Rotation is a
// recovery strategy, not a source of duplicate evidence.
func (e *Extractor) ExtractImage(ctx context.Context, oc OCRCapability, data []byte) ([]RawField, error) {
	if oc == nil {
		return nil, newExtractionError(string(constants.DocImageSet), "no OCR capability configured", nil)
	}

	type candidate struct {
		rotation int
		conf     float32
		fields   []RawField
	}
	byKind := make(map[constants.FieldKind]candidate)
	attempted := 0

	var lastErr error
	for _, rot := range Rotations {
		text, conf, err := oc.ExtractText(ctx, data, rot)
		if err != nil {
			lastErr = err
			e.logger.Warn("ocr failed at rotation", "rotation", rot, "error", err)
			continue
		}
		attempted++
		if conf < e.minConf {
			e.logger.Debug("ocr below confidence floor", "rotation", rot, "confidence", conf, "min", e.minConf)
			continue
		}
		cleaned := patterns.CleanText(text)
		loc := fmt.Sprintf("rotation %d", rot)

		fields := e.scanKinds(cleaned, constants.DocImageSet, loc, conf, rot)
		if m, ok := e.lib.DecideFlightStatus(cleaned); ok {
			fields = append(fields, RawField{
				Kind:            constants.FieldFlightStatus,
				Raw:             m.Raw,
				DocumentKind:    constants.DocImageSet,
				Location:        loc,
				Confidence:      conf,
				RotationDegrees: rot,
			})
		}

		grouped := make(map[constants.FieldKind][]RawField)
		for _, f := range fields {
			grouped[f.Kind] = append(grouped[f.Kind], f)
		}
		for kind, fs := range grouped {
			if best, ok := byKind[kind]; ok && best.conf >= conf {
				continue
			}
			byKind[kind] = candidate{rotation: rot, conf: conf, fields: fs}
		}
	}

	if attempted == 0 {
		return nil, newExtractionError(string(constants.DocImageSet), "OCR failed at every rotation", lastErr)
	}

	var out []RawField
	for _, kind := range constants.FieldKinds {
		if c, ok := byKind[kind]; ok {
			out = append(out, c.fields...)
		}
	}
	e.logger.Debug("image extraction complete", "rotations_ok", attempted, "fields", len(out))
	return out, nil
}
