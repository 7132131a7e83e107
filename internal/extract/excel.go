package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/mfg-qc/crosscheck/constants"
	"github.com/mfg-qc/crosscheck/internal/patterns"
)

// ExtractExcel pulls raw fields from a BOM spreadsheet. Each row's cells are
// concatenated and matched as one blob; the row index is kept as the source
// location.
func (e *Extractor) ExtractExcel(ctx context.Context, tc TableCapability, data []byte) ([]RawField, error) {
	if tc == nil {
		return nil, newExtractionError(string(constants.DocBOM), "no table capability configured", nil)
	}
	rows, err := tc.ExtractRows(ctx, data)
	if err != nil {
		return nil, newExtractionError(string(constants.DocBOM), "spreadsheet parsing failed", err)
	}
	if len(rows) == 0 {
		return nil, newExtractionError(string(constants.DocBOM), "spreadsheet has no rows", nil)
	}

	var fields []RawField
	seen := make(map[string]bool)
	revCol := revisionColumn(rows)
	for i, row := range rows {
		blob := patterns.CleanText(strings.Join(row, " "))
		if blob == "" {
			continue
		}
		loc := fmt.Sprintf("row %d", i+1)
		for _, f := range e.scanKinds(blob, constants.DocBOM, loc, nativeTextConfidence, 0) {
			if seen[valueKey(f)] {
				continue
			}
			seen[valueKey(f)] = true
			fields = append(fields, f)
		}
		// A bare revision letter in a Rev column has no "Rev" literal for the
		// matcher to anchor on, so the column itself is the evidence.
		if revCol >= 0 && i > 0 && revCol < len(row) {
			if f, ok := e.revisionCell(row[revCol], loc); ok && !seen[valueKey(f)] {
				seen[valueKey(f)] = true
				fields = append(fields, f)
			}
		}
	}

	e.logger.Debug("excel extraction complete", "rows", len(rows), "fields", len(fields))
	return fields, nil
}

// revisionColumn finds the index of a header cell naming the revision column,
// or -1 when the sheet has none.
func revisionColumn(rows [][]string) int {
	if len(rows) == 0 {
		return -1
	}
	for i, cell := range rows[0] {
		h := strings.ToLower(strings.TrimSpace(cell))
		if h == "rev" || h == "rev." || strings.Contains(h, "revision") {
			return i
		}
	}
	return -1
}

func (e *Extractor) revisionCell(cell, loc string) (RawField, bool) {
	v := strings.TrimSpace(cell)
	if v == "" {
		return RawField{}, false
	}
	if _, ok := e.lib.Normalize(constants.FieldRevision, v); !ok {
		return RawField{}, false
	}
	return RawField{
		Kind:         constants.FieldRevision,
		Raw:          v,
		DocumentKind: constants.DocBOM,
		Location:     loc,
		Confidence:   nativeTextConfidence,
	}, true
}
