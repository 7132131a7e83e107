// Package tabular reads BOM spreadsheets into rows of cell strings.
package tabular

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"
)

// Reader implements extract.TableCapability over XLSX bytes. Safe for
// concurrent use.
type Reader struct {
	logger *slog.Logger
}

func NewReader(logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{logger: logger}
}

// ExtractRows returns the first worksheet as rows of cell strings. BOMs in
// practice put everything on the first sheet; additional sheets are change
// logs and are deliberately ignored.
func (r *Reader) ExtractRows(ctx context.Context, spreadsheet []byte) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := excelize.OpenReader(bytes.NewReader(spreadsheet))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			r.logger.Warn("failed to close workbook", "error", err)
		}
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no worksheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}

	r.logger.Debug("worksheet read", "sheet", sheets[0], "rows", len(rows))
	return rows, nil
}
