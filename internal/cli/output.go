package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mfg-qc/crosscheck/constants"
	"github.com/mfg-qc/crosscheck/internal/common"
	"github.com/mfg-qc/crosscheck/internal/patterns"
	"github.com/mfg-qc/crosscheck/internal/report"
)

// loadLibrary builds the pattern library, applying YAML overrides when
// PATTERNS_FILE points at one.
func loadLibrary(cfg *common.Config) (*patterns.Library, error) {
	if cfg.Extract.PatternsFile == "" {
		return patterns.NewLibrary(), nil
	}
	ov, err := patterns.LoadOverrides(cfg.Extract.PatternsFile)
	if err != nil {
		return nil, fmt.Errorf("load pattern overrides: %w", err)
	}
	return patterns.NewLibraryWithOverrides(ov)
}

// emitReport prints the report JSON to stdout and writes the optional file
// outputs; the process exit code reflects the verdict.
func emitReport(cmd *cobra.Command, rep report.ValidationReport, opts analyzeOptions) error {
	body, err := report.Marshal(rep)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(body))

	if opts.outPath != "" {
		if err := os.WriteFile(opts.outPath, append(body, '\n'), 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}
	if opts.xlsxPath != "" {
		xlsx, err := report.ExportXLSX(rep, nil)
		if err != nil {
			return err
		}
		if err := os.WriteFile(opts.xlsxPath, xlsx, 0o644); err != nil {
			return fmt.Errorf("write xlsx: %w", err)
		}
	}

	switch rep.OverallVerdict {
	case constants.VerdictFail:
		return NewExitError(1, "verdict FAIL")
	case constants.VerdictWarning:
		if opts.failOnWarn {
			return NewExitError(1, "verdict WARNING")
		}
	}
	return nil
}

// ExitError carries an exit code through RunE without printing twice.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string { return e.Message }

func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}
