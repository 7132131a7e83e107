package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

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

// NewBatchCommand creates the batch command: analyze every unit directory
// under a root, fanning out over the worker pool.
func NewBatchCommand(rootOpts *RootOptions) *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "batch <root-dir>",
		Short: "Analyze every unit subdirectory under a root directory",
		Long: `Batch treats each immediate subdirectory of root as one unit's document
set, analyzes them concurrently, and persists one session and report per
unit. Each worker holds its own Tesseract session.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, rootOpts, args[0], workers)
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 0, "worker count (default EXTRACT_WORKERS)")
	return cmd
}

func runBatch(cmd *cobra.Command, rootOpts *RootOptions, root string, workers int) error {
	ctx := cmd.Context()
	logger := slog.Default()

	cfg := common.LoadConfig()
	if rootOpts.DBURL != "" {
		cfg.Database.DSN = rootOpts.DBURL
	}
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = filepath.Join(root, "qccheck.db")
	}
	if workers > 0 {
		cfg.Extract.Workers = workers
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	lib, err := loadLibrary(cfg)
	if err != nil {
		return err
	}

	db, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer repository.Close(db, logger)

	sessions := repository.NewSessionRepository(db, logger)
	files := repository.NewFileRepository(db, logger)
	reports := repository.NewReportRepository(db, logger)

	entries, err := os.ReadDir(root)
	if err != nil {
		return fmt.Errorf("read root: %w", err)
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e.Name())
		}
	}
	sort.Strings(dirs)
	if len(dirs) == 0 {
		return fmt.Errorf("no unit directories under %s", root)
	}

	pool := analysis.NewPool(func(workerID int) (analysis.Runner, func(), error) {
		ocrEngine, err := ocr.NewEngine(cfg.OCR, logger)
		if err != nil {
			return nil, nil, err
		}
		caps := extract.Capabilities{
			OCR:   ocrEngine,
			PDF:   pdftext.NewExtractor(cfg.PDF, ocrEngine, logger),
			Table: tabular.NewReader(logger),
		}
		svc := analysis.NewService(cfg, lib, sessions, files, reports, logger,
			analysis.WithCapabilities(caps))
		cleanup := func() {
			if err := ocrEngine.Close(); err != nil {
				logger.Warn("failed to close ocr engine", "worker_id", workerID, "error", err)
			}
		}
		return svc, cleanup, nil
	}, logger,
		analysis.WithWorkers(cfg.Extract.Workers),
		analysis.WithQueueSize(cfg.Extract.QueueSize),
		analysis.WithProcessTimeout(cfg.Extract.Timeout),
	)

	queued := 0
	for _, name := range dirs {
		docs, err := repository.LoadDirectory(filepath.Join(root, name), logger)
		if err != nil {
			logger.Error("skipping unit directory", "dir", name, "error", err)
			continue
		}
		if len(docs) == 0 {
			logger.Warn("no documents in unit directory", "dir", name)
			continue
		}

		session, err := sessions.Create(ctx, name)
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
		if err := pool.Enqueue(ctx, analysis.Job{SessionID: session.ID, SubmittedAt: time.Now()}); err != nil {
			return err
		}
		queued++
	}

	pool.Shutdown(ctx)

	// Summarize from the database: the pool logs per-run outcomes already.
	done, err := sessions.List(ctx, queued)
	if err != nil {
		return err
	}
	failed := 0
	for _, s := range done {
		if s.Status != constants.RunStatusCompleted {
			failed++
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "analyzed %d unit(s), %d incomplete\n", queued, failed)
	if failed > 0 {
		return NewExitError(1, "one or more units failed analysis")
	}
	return nil
}
