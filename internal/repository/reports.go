package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mfg-qc/crosscheck/constants"
	"github.com/mfg-qc/crosscheck/internal/common"
)

// StoredReport is the persisted form of a validation report: the verdict for
// queries plus the canonical JSON body.
type StoredReport struct {
	SessionID   uuid.UUID
	Verdict     constants.Verdict
	Body        []byte
	GeneratedAt time.Time
}

type ReportRepository interface {
	// Save is an upsert: re-running analysis replaces the previous report.
	Save(ctx context.Context, rep StoredReport) error
	GetBySession(ctx context.Context, sessionID uuid.UUID) (*StoredReport, error)
}

type reportRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewReportRepository(db *sql.DB, logger *slog.Logger) ReportRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &reportRepository{db: db, logger: logger}
}

func (r *reportRepository) Save(ctx context.Context, rep StoredReport) error {
	// Same upsert syntax on sqlite and postgres.
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO qc_report (session_id, verdict, body, generated_at) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (session_id) DO UPDATE SET verdict = EXCLUDED.verdict, body = EXCLUDED.body, generated_at = EXCLUDED.generated_at`,
		rep.SessionID.String(), string(rep.Verdict), rep.Body, rep.GeneratedAt)
	if err != nil {
		return common.NewAppError("DB_ERROR", "failed to save report", err)
	}
	r.logger.Info("report saved", "session_id", rep.SessionID, "verdict", rep.Verdict)
	return nil
}

func (r *reportRepository) GetBySession(ctx context.Context, sessionID uuid.UUID) (*StoredReport, error) {
	rep := StoredReport{SessionID: sessionID}
	var verdict string
	err := r.db.QueryRowContext(ctx,
		`SELECT verdict, body, generated_at FROM qc_report WHERE session_id = $1`,
		sessionID.String()).Scan(&verdict, &rep.Body, &rep.GeneratedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NewAppError("NOT_FOUND", "no report for session", common.ErrNotFound)
	}
	if err != nil {
		return nil, common.NewAppError("DB_ERROR", "failed to read report", err)
	}
	rep.Verdict = constants.Verdict(verdict)
	return &rep, nil
}
