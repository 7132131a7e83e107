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

// Session is one QC check of one unit: up to three uploaded documents and,
// once analyzed, a report.
type Session struct {
	ID        uuid.UUID
	JobHint   string // operator-entered job number, informational only
	Status    constants.RunStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

type SessionRepository interface {
	Create(ctx context.Context, jobHint string) (*Session, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Session, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status constants.RunStatus) error
	List(ctx context.Context, limit int) ([]*Session, error)
}

type sessionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewSessionRepository(db *sql.DB, logger *slog.Logger) SessionRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &sessionRepository{db: db, logger: logger}
}

func (r *sessionRepository) Create(ctx context.Context, jobHint string) (*Session, error) {
	now := time.Now().UTC()
	s := &Session{
		ID:        uuid.New(),
		JobHint:   jobHint,
		Status:    constants.RunStatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO qc_session (id, job_hint, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		s.ID.String(), s.JobHint, string(s.Status), s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return nil, common.NewAppError("DB_ERROR", "failed to create session", err)
	}
	r.logger.Info("session created", "session_id", s.ID)
	return s, nil
}

func (r *sessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*Session, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, job_hint, status, created_at, updated_at FROM qc_session WHERE id = $1`,
		id.String())
	return scanSession(row)
}

func (r *sessionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status constants.RunStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE qc_session SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), time.Now().UTC(), id.String())
	if err != nil {
		return common.NewAppError("DB_ERROR", "failed to update session status", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.NewAppError("NOT_FOUND", "session not found", common.ErrNotFound)
	}
	r.logger.Info("session status updated", "session_id", id, "status", status)
	return nil
}

func (r *sessionRepository) List(ctx context.Context, limit int) ([]*Session, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, job_hint, status, created_at, updated_at FROM qc_session ORDER BY created_at DESC LIMIT $1`,
		limit)
	if err != nil {
		return nil, common.NewAppError("DB_ERROR", "failed to list sessions", err)
	}
	defer rows.Close()

	var out []*Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*Session, error) {
	var s Session
	var id, status string
	err := row.Scan(&id, &s.JobHint, &status, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NewAppError("NOT_FOUND", "session not found", common.ErrNotFound)
	}
	if err != nil {
		return nil, common.NewAppError("DB_ERROR", "failed to scan session", err)
	}
	s.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, common.NewAppError("DB_ERROR", "corrupt session id", err)
	}
	s.Status = constants.RunStatus(status)
	return &s, nil
}
