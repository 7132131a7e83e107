// Package analysis orchestrates one session end to end: extract every
// uploaded document, cross-validate the fact sets, and persist the report.
package analysis

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mfg-qc/crosscheck/constants"
	"github.com/mfg-qc/crosscheck/internal/common"
	"github.com/mfg-qc/crosscheck/internal/engine"
	"github.com/mfg-qc/crosscheck/internal/extract"
	"github.com/mfg-qc/crosscheck/internal/facts"
	"github.com/mfg-qc/crosscheck/internal/patterns"
	"github.com/mfg-qc/crosscheck/internal/report"
	"github.com/mfg-qc/crosscheck/internal/repository"
)

// Clock is injected so reports are reproducible in tests.
type Clock func() time.Time

// Service runs analyses. Safe for concurrent use as long as the injected
// capabilities are; the pool gives each worker its own OCR session.
type Service struct {
	sessions  repository.SessionRepository
	files     repository.FileRepository
	reports   repository.ReportRepository
	extractor *extract.Extractor
	builder   *facts.Builder
	engine    *engine.Engine
	caps      extract.Capabilities
	schema    map[string]any
	now       Clock
	logger    *slog.Logger
}

type ServiceOption func(*Service)

// WithClock overrides the report timestamp source.
func WithClock(now Clock) ServiceOption {
	return func(s *Service) { s.now = now }
}

// WithCapabilities overrides the extraction backends, for CLI wiring and tests.
func WithCapabilities(caps extract.Capabilities) ServiceOption {
	return func(s *Service) { s.caps = caps }
}

func NewService(
	cfg *common.Config,
	lib *patterns.Library,
	sessions repository.SessionRepository,
	files repository.FileRepository,
	reports repository.ReportRepository,
	logger *slog.Logger,
	opts ...ServiceOption,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		sessions:  sessions,
		files:     files,
		reports:   reports,
		extractor: extract.NewExtractor(lib, cfg.Extract.MinOCRConfidence, logger),
		builder:   facts.NewBuilder(lib, logger),
		engine:    engine.New(cfg.Checks, logger),
		schema:    report.BuildReportJSONSchema(),
		now:       time.Now,
		logger:    logger,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// RunAnalysis is the single entry point: it is what the pool workers and the
// CLI both call. Rerunning a session replaces its previous report.
func (s *Service) RunAnalysis(ctx context.Context, sessionID uuid.UUID) (*report.ValidationReport, error) {
	start := time.Now()

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := s.sessions.UpdateStatus(ctx, session.ID, constants.RunStatusExtracting); err != nil {
		return nil, err
	}

	records, err := s.files.ListBySession(ctx, session.ID)
	if err != nil {
		return nil, s.fail(ctx, session.ID, err)
	}

	sets, err := s.extractAll(ctx, records)
	if err != nil {
		return nil, s.fail(ctx, session.ID, err)
	}

	if err := s.sessions.UpdateStatus(ctx, session.ID, constants.RunStatusValidating); err != nil {
		return nil, err
	}

	findings := s.engine.Validate(engine.Input{
		Traveler: sets[constants.DocTraveler],
		BOM:      sets[constants.DocBOM],
		Images:   sets[constants.DocImageSet],
	})
	rep := report.Assemble(session.ID, findings, s.now())

	body, err := report.Marshal(rep)
	if err != nil {
		return nil, s.fail(ctx, session.ID, err)
	}
	if err := report.ValidateAgainstSchema(s.schema, body); err != nil {
		return nil, s.fail(ctx, session.ID, err)
	}
	if err := s.reports.Save(ctx, repository.StoredReport{
		SessionID:   session.ID,
		Verdict:     rep.OverallVerdict,
		Body:        body,
		GeneratedAt: rep.GeneratedAt,
	}); err != nil {
		return nil, s.fail(ctx, session.ID, err)
	}

	if err := s.sessions.UpdateStatus(ctx, session.ID, constants.RunStatusCompleted); err != nil {
		return nil, err
	}

	s.logger.Info("analysis complete",
		"session_id", session.ID,
		"verdict", rep.OverallVerdict,
		"findings", len(rep.Findings),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return &rep, nil
}

// extractAll builds one fact set per document kind. A document whose
// extraction fails contributes a nil set; the engine reports it as missing
// instead of aborting the run.
func (s *Service) extractAll(ctx context.Context, records []*repository.FileRecord) (map[constants.DocumentKind]*facts.FactSet, error) {
	byKind := make(map[constants.DocumentKind][]extract.RawField)
	seen := make(map[constants.DocumentKind]bool)

	for _, rec := range records {
		content, err := s.files.GetContent(ctx, rec.ID)
		if err != nil {
			return nil, err
		}
		raws, err := s.extractor.Extract(ctx, rec.Kind, content, s.caps)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			s.logger.Warn("extraction failed, treating document as missing",
				"file_id", rec.ID, "kind", rec.Kind, "error", err)
			continue
		}
		seen[rec.Kind] = true
		byKind[rec.Kind] = append(byKind[rec.Kind], raws...)
	}

	sets := make(map[constants.DocumentKind]*facts.FactSet)
	for kind, ok := range seen {
		if ok {
			sets[kind] = s.builder.Build(kind, byKind[kind])
		}
	}
	return sets, nil
}

// fail marks the session FAILED, keeping the original error.
func (s *Service) fail(ctx context.Context, sessionID uuid.UUID, cause error) error {
	if err := s.sessions.UpdateStatus(ctx, sessionID, constants.RunStatusFailed); err != nil {
		s.logger.Error("failed to mark session failed", "session_id", sessionID, "error", err)
	}
	return common.NewAppError("ANALYSIS_FAILED", "analysis run failed", cause)
}
