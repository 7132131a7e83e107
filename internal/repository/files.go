package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/mfg-qc/crosscheck/constants"
	"github.com/mfg-qc/crosscheck/internal/common"
)

// FileRecord is one uploaded document. Content is stored inline; uploads are
// a few MB at most and live exactly as long as their session.
type FileRecord struct {
	ID         uuid.UUID
	SessionID  uuid.UUID
	Kind       constants.DocumentKind
	Format     constants.FileFormat
	Filename   string
	UploadedAt time.Time
}

type FileRepository interface {
	Add(ctx context.Context, sessionID uuid.UUID, kind constants.DocumentKind, filename string, content []byte) (*FileRecord, error)
	GetContent(ctx context.Context, id uuid.UUID) ([]byte, error)
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*FileRecord, error)
}

type fileRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewFileRepository(db *sql.DB, logger *slog.Logger) FileRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &fileRepository{db: db, logger: logger}
}

func (r *fileRepository) Add(ctx context.Context, sessionID uuid.UUID, kind constants.DocumentKind, filename string, content []byte) (*FileRecord, error) {
	format := constants.MapExtToFormat(filepath.Ext(filename))
	if format == constants.FormatUnknown {
		return nil, common.NewAppError("INVALID_FILE", "unsupported file extension: "+filepath.Ext(filename), common.ErrInvalidInput)
	}
	if want := constants.FormatForKind(kind); format != want {
		return nil, common.NewAppError("INVALID_FILE",
			"file format does not match document kind: "+string(kind)+" expects "+string(want), common.ErrInvalidInput)
	}

	rec := &FileRecord{
		ID:         uuid.New(),
		SessionID:  sessionID,
		Kind:       kind,
		Format:     format,
		Filename:   filepath.Base(filename),
		UploadedAt: time.Now().UTC(),
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO qc_file (id, session_id, kind, format, filename, content, uploaded_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID.String(), rec.SessionID.String(), string(rec.Kind), string(rec.Format), rec.Filename, content, rec.UploadedAt)
	if err != nil {
		return nil, common.NewAppError("DB_ERROR", "failed to store file", err)
	}
	r.logger.Info("file stored", "file_id", rec.ID, "session_id", sessionID, "kind", kind, "bytes", len(content))
	return rec, nil
}

func (r *fileRepository) GetContent(ctx context.Context, id uuid.UUID) ([]byte, error) {
	var content []byte
	err := r.db.QueryRowContext(ctx, `SELECT content FROM qc_file WHERE id = $1`, id.String()).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NewAppError("NOT_FOUND", "file not found", common.ErrNotFound)
	}
	if err != nil {
		return nil, common.NewAppError("DB_ERROR", "failed to read file content", err)
	}
	return content, nil
}

func (r *fileRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*FileRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, session_id, kind, format, filename, uploaded_at FROM qc_file WHERE session_id = $1 ORDER BY uploaded_at`,
		sessionID.String())
	if err != nil {
		return nil, common.NewAppError("DB_ERROR", "failed to list files", err)
	}
	defer rows.Close()

	var out []*FileRecord
	for rows.Next() {
		var rec FileRecord
		var id, sid, kind, format string
		if err := rows.Scan(&id, &sid, &kind, &format, &rec.Filename, &rec.UploadedAt); err != nil {
			return nil, common.NewAppError("DB_ERROR", "failed to scan file row", err)
		}
		if rec.ID, err = uuid.Parse(id); err != nil {
			return nil, common.NewAppError("DB_ERROR", "corrupt file id", err)
		}
		if rec.SessionID, err = uuid.Parse(sid); err != nil {
			return nil, common.NewAppError("DB_ERROR", "corrupt session id", err)
		}
		rec.Kind = constants.DocumentKind(kind)
		rec.Format = constants.FileFormat(format)
		out = append(out, &rec)
	}
	return out, rows.Err()
}
