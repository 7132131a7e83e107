package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mfg-qc/crosscheck/internal/common"
	"github.com/mfg-qc/crosscheck/internal/report"
	"github.com/mfg-qc/crosscheck/internal/repository"
)

// NewExportCommand creates the export command: render a stored report as XLSX.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:          "export <session-id>",
		Short:        "Export a stored validation report as an XLSX workbook",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, rootOpts, args[0], outPath)
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "report.xlsx", "output file path")
	return cmd
}

func runExport(cmd *cobra.Command, rootOpts *RootOptions, rawID, outPath string) error {
	ctx := cmd.Context()
	logger := slog.Default()

	sessionID, err := uuid.Parse(rawID)
	if err != nil {
		return fmt.Errorf("invalid session id %q: %w", rawID, err)
	}
	if rootOpts.DBURL == "" {
		return fmt.Errorf("--db or DB_URL is required")
	}

	db, err := repository.Open(ctx, common.DatabaseConfig{DSN: rootOpts.DBURL, DialTimeout: 3 * time.Second}, logger)
	if err != nil {
		return err
	}
	defer repository.Close(db, logger)

	stored, err := repository.NewReportRepository(db, logger).GetBySession(ctx, sessionID)
	if err != nil {
		return err
	}

	var rep report.ValidationReport
	if err := json.Unmarshal(stored.Body, &rep); err != nil {
		return fmt.Errorf("stored report is corrupt: %w", err)
	}

	xlsx, err := report.ExportXLSX(rep, logger)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outPath, xlsx, 0o644); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%s)\n", outPath, stored.Verdict)
	return nil
}
