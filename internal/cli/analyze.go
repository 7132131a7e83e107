package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mfg-qc/crosscheck/constants"
	"github.com/mfg-qc/crosscheck/internal/analysis"
	"github.com/mfg-qc/crosscheck/internal/common"
	"github.com/mfg-qc/crosscheck/internal/extract"
	"github.com/mfg-qc/crosscheck/internal/ocr"
	"github.com/mfg-qc/crosscheck/internal/pdftext"
	"github.com/mfg-qc/crosscheck/internal/repository"
	"github.com/mfg-qc/crosscheck/internal/tabular"
)

// NewAnalyzeCommand creates the analyze command: one offline run over a
// directory of documents.
func NewAnalyzeCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		outPath    string
		xlsxPath   string
		strictRev  bool
		jobHint    string
		failOnWarn bool
	)

	cmd := &cobra.Command{
		Use:   "analyze <documents-dir>",
		Short: "Analyze one unit's documents and print the validation report",
		Long: `Analyze reads a directory holding the traveler PDF, the BOM spreadsheet,
and the unit photographs, runs extraction and cross-validation, and prints the
report JSON to stdout.

Exit code 1 means the verdict is FAIL; with --fail-on-warning a WARNING
verdict also exits 1.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, rootOpts, args[0], analyzeOptions{
				outPath:    outPath,
				xlsxPath:   xlsxPath,
				strictRev:  strictRev,
				jobHint:    jobHint,
				failOnWarn: failOnWarn,
			})
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "also write the report JSON to this file")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "also write an XLSX rendering to this file")
	cmd.Flags().BoolVar(&strictRev, "strict-revision", false, "treat same-letter revision differences as CRITICAL")
	cmd.Flags().StringVar(&jobHint, "job", "", "expected job number, recorded on the session")
	cmd.Flags().BoolVar(&failOnWarn, "fail-on-warning", false, "exit nonzero on a WARNING verdict")

	return cmd
}

type analyzeOptions struct {
	outPath    string
	xlsxPath   string
	strictRev  bool
	jobHint    string
	failOnWarn bool
}

func runAnalyze(cmd *cobra.Command, rootOpts *RootOptions, dir string, opts analyzeOptions) error {
	ctx := cmd.Context()
	logger := slog.Default()

	cfg := common.LoadConfig()
	cfg.Checks.RevisionStrict = cfg.Checks.RevisionStrict || opts.strictRev
	if err := cfg.Validate(); err != nil {
		return err
	}

	lib, err := loadLibrary(cfg)
	if err != nil {
		return err
	}

	docs, err := repository.LoadDirectory(dir, logger)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return fmt.Errorf("no recognizable documents in %s", dir)
	}

	ocrEngine, err := ocr.NewEngine(cfg.OCR, logger)
	if err != nil {
		return fmt.Errorf("start ocr engine: %w", err)
	}
	defer func() {
		if err := ocrEngine.Close(); err != nil {
			logger.Warn("failed to close ocr engine", "error", err)
		}
	}()

	caps := extract.Capabilities{
		OCR:   ocrEngine,
		PDF:   pdftext.NewExtractor(cfg.PDF, ocrEngine, logger),
		Table: tabular.NewReader(logger),
	}

	// A throwaway sqlite database keeps the CLI on the same code path as the
	// service deployment.
	dbPath := filepath.Join(os.TempDir(), fmt.Sprintf("qccheck-%d.db", os.Getpid()))
	defer os.Remove(dbPath)
	db, err := repository.Open(ctx, common.DatabaseConfig{DSN: dbPath, DialTimeout: cfg.Database.DialTimeout}, logger)
	if err != nil {
		return err
	}
	defer repository.Close(db, logger)

	sessions := repository.NewSessionRepository(db, logger)
	files := repository.NewFileRepository(db, logger)
	reports := repository.NewReportRepository(db, logger)

	session, err := sessions.Create(ctx, opts.jobHint)
	if err != nil {
		return err
	}
	for _, kind := range constants.DocumentKinds {
		for _, doc := range docs[kind] {
			if _, err := files.Add(ctx, session.ID, kind, doc.Name, doc.Content); err != nil {
				return err
			}
		}
	}

	svc := analysis.NewService(cfg, lib, sessions, files, reports, logger,
		analysis.WithCapabilities(caps))
	rep, err := svc.RunAnalysis(ctx, session.ID)
	if err != nil {
		return err
	}

	return emitReport(cmd, *rep, opts)
}
