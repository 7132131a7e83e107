package extract

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/mfg-qc/crosscheck/constants"
	"github.com/mfg-qc/crosscheck/internal/patterns"
)

// Native text carries no OCR uncertainty.
const nativeTextConfidence = 1.0

// Travelers record the as-built serials in the Seq 20 section; serial hits
// from that section are emitted first so they win first-seen ordering on
// confidence ties.
var reSeq20 = regexp.MustCompile(`(?is)seq(?:uence)?\s*20\b(.*?)(?:seq(?:uence)?\s*\d|\z)`)

// ExtractPDF pulls raw fields from a traveler PDF: per-page matching for
// line-level context, a full-text pass for identifiers split across pages,
// and the flight-status decision over the whole document.
func (e *Extractor) ExtractPDF(ctx context.Context, pc PDFCapability, data []byte) ([]RawField, error) {
	if pc == nil {
		return nil, newExtractionError(string(constants.DocTraveler), "no PDF capability configured", nil)
	}
	pages, err := pc.ExtractPages(ctx, data)
	if err != nil {
		return nil, newExtractionError(string(constants.DocTraveler), "PDF text extraction failed", err)
	}
	if len(pages) == 0 {
		return nil, newExtractionError(string(constants.DocTraveler), "PDF produced no pages", nil)
	}

	cleaned := make([]string, len(pages))
	for i, p := range pages {
		cleaned[i] = patterns.CleanText(p)
	}
	full := strings.Join(cleaned, "\n")

	var fields []RawField

	// Seq 20 serials first.
	if sec := reSeq20.FindStringSubmatch(full); sec != nil {
		for _, kind := range []constants.FieldKind{constants.FieldBoardSerial, constants.FieldUnitSerial} {
			for _, m := range e.lib.Match(kind, sec[1]) {
				fields = append(fields, RawField{
					Kind:         kind,
					Raw:          m.Raw,
					DocumentKind: constants.DocTraveler,
					Location:     "seq 20",
					Confidence:   nativeTextConfidence,
				})
			}
		}
	}

	seen := claimedValues(fields)
	for i, page := range cleaned {
		loc := fmt.Sprintf("page %d", i+1)
		for _, f := range e.scanKinds(page, constants.DocTraveler, loc, nativeTextConfidence, 0) {
			if seen[valueKey(f)] {
				continue
			}
			seen[valueKey(f)] = true
			fields = append(fields, f)
		}
	}

	// Full-text pass catches identifiers broken across page boundaries.
	for _, f := range e.scanKinds(full, constants.DocTraveler, "document", nativeTextConfidence, 0) {
		if seen[valueKey(f)] {
			continue
		}
		seen[valueKey(f)] = true
		fields = append(fields, f)
	}

	if m, ok := e.lib.DecideFlightStatus(full); ok {
		fields = append(fields, RawField{
			Kind:         constants.FieldFlightStatus,
			Raw:          m.Raw,
			DocumentKind: constants.DocTraveler,
			Location:     "document",
			Confidence:   nativeTextConfidence,
		})
	}

	e.logger.Debug("pdf extraction complete", "pages", len(pages), "fields", len(fields))
	return fields, nil
}

func valueKey(f RawField) string { return string(f.Kind) + "\x00" + strings.ToUpper(f.Raw) }

func claimedValues(fields []RawField) map[string]bool {
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		seen[valueKey(f)] = true
	}
	return seen
}
