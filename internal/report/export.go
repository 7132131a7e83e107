package report

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mfg-qc/crosscheck/constants"
)

// ExportXLSX renders one report as an XLSX workbook: a summary row block
// followed by one row per finding, worst severity first.
func ExportXLSX(r ValidationReport, logger *slog.Logger) ([]byte, error) {
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()

	f := excelize.NewFile()
	const sheet = "Findings"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	// Drop the default sheet so the workbook opens on Findings.
	if index, _ := f.GetSheetIndex("Sheet1"); index != -1 {
		_ = f.DeleteSheet("Sheet1")
	}

	write := func(col, row int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}

	write(1, 1, "Session")
	write(2, 1, r.SessionID.String())
	write(1, 2, "Verdict")
	write(2, 2, string(r.OverallVerdict))
	write(1, 3, "Generated")
	write(2, 3, r.GeneratedAt.Format(time.RFC3339))

	headers := []string{"Severity", "Check", "Field", "Values Compared", "Message"}
	const headerRow = 5
	for i, h := range headers {
		write(i+1, headerRow, h)
	}

	ordered := make([]int, len(r.Findings))
	for i := range ordered {
		ordered[i] = i
	}
	sort.SliceStable(ordered, func(a, b int) bool {
		return r.Findings[ordered[a]].Severity.Rank() > r.Findings[ordered[b]].Severity.Rank()
	})

	row := headerRow + 1
	for _, idx := range ordered {
		fd := r.Findings[idx]
		write(1, row, string(fd.Severity))
		write(2, row, string(fd.CheckID))
		write(3, row, string(fd.FieldKind))
		write(4, row, formatValues(fd.ValuesCompared))
		write(5, row, fd.Message)
		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 12)
	_ = f.SetColWidth(sheet, "B", "B", 20)
	_ = f.SetColWidth(sheet, "C", "C", 16)
	_ = f.SetColWidth(sheet, "D", "D", 48)
	_ = f.SetColWidth(sheet, "E", "E", 80)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	logger.Info("export.xlsx.ok",
		"session_id", r.SessionID.String(),
		"findings", len(r.Findings),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// formatValues renders the compared values in a stable kind order.
func formatValues(values map[constants.DocumentKind]string) string {
	if len(values) == 0 {
		return ""
	}
	var parts []string
	for _, kind := range constants.DocumentKinds {
		if v, ok := values[kind]; ok {
			parts = append(parts, fmt.Sprintf("%s=%s", kind, v))
		}
	}
	return strings.Join(parts, "; ")
}
