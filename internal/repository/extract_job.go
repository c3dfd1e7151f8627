package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/book-of-knowledge/constants"
	"github.com/joseph-ayodele/book-of-knowledge/internal/common"
	"github.com/joseph-ayodele/book-of-knowledge/internal/entity"
)

type ExtractJobRepository interface {
	StartJob(ctx context.Context, documentID uuid.UUID, format string) (*entity.ExtractJob, error)
	// FinishJob closes a job with a terminal non-failure status.
	FinishJob(ctx context.Context, jobID uuid.UUID, status constants.JobStatus, method string) error
	FinishFailure(ctx context.Context, jobID uuid.UUID, message string) error
	ListJobs(ctx context.Context, documentID uuid.UUID) ([]entity.ExtractJob, error)
}

type extractJobRepo struct {
	db  *DB
	log *slog.Logger
}

func NewExtractJobRepository(db *DB, log *slog.Logger) ExtractJobRepository {
	if log == nil {
		log = db.logger
	}
	return &extractJobRepo{db: db, log: log}
}

func (r *extractJobRepo) StartJob(ctx context.Context, documentID uuid.UUID, format string) (*entity.ExtractJob, error) {
	job := &entity.ExtractJob{
		ID:         uuid.New(),
		DocumentID: documentID,
		Format:     format,
		Status:     constants.JobStatusRunning,
		StartedAt:  time.Now().UTC(),
	}
	q := r.db.rebind(`INSERT INTO extract_jobs (id, document_id, format, status, started_at) VALUES (?, ?, ?, ?, ?)`)
	_, err := r.db.sql.ExecContext(ctx, q,
		job.ID.String(), documentID.String(), format, string(job.Status), formatTS(job.StartedAt))
	if err != nil {
		r.log.Error("extract_job start failed", "document_id", documentID, "err", err)
		return nil, fmt.Errorf("%w: start job: %w", common.ErrDatabase, err)
	}
	r.log.Info("extract_job started", "job_id", job.ID, "document_id", documentID, "format", format)
	return job, nil
}

func (r *extractJobRepo) FinishJob(ctx context.Context, jobID uuid.UUID, status constants.JobStatus, method string) error {
	if status == constants.JobStatusFailed {
		return common.NewAppError("INVALID_ARGUMENT", "use FinishFailure for failed jobs", common.ErrInvalidInput)
	}
	var m any
	if method != "" {
		m = method
	}
	if err := r.finish(ctx, jobID, status, m, nil); err != nil {
		r.log.Error("extract_job finish failed", "job_id", jobID, "status", status, "err", err)
		return err
	}
	r.log.Info("extract_job finished", "job_id", jobID, "status", status, "method", method)
	return nil
}

func (r *extractJobRepo) FinishFailure(ctx context.Context, jobID uuid.UUID, message string) error {
	if err := r.finish(ctx, jobID, constants.JobStatusFailed, nil, message); err != nil {
		r.log.Error("extract_job finish(FAILED) failed", "job_id", jobID, "err", err)
		return err
	}
	r.log.Warn("extract_job finished (FAILED)", "job_id", jobID, "error", message)
	return nil
}

func (r *extractJobRepo) finish(ctx context.Context, jobID uuid.UUID, status constants.JobStatus, method, message any) error {
	q := r.db.rebind(`UPDATE extract_jobs SET status = ?, method = ?, error_message = ?, finished_at = ? WHERE id = ?`)
	res, err := r.db.sql.ExecContext(ctx, q, string(status), method, message, formatTS(time.Now()), jobID.String())
	if err != nil {
		return fmt.Errorf("%w: finish job: %w", common.ErrDatabase, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.NewAppError("NOT_FOUND", "extract job "+jobID.String()+" not found", common.ErrNotFound)
	}
	return nil
}

func (r *extractJobRepo) ListJobs(ctx context.Context, documentID uuid.UUID) ([]entity.ExtractJob, error) {
	q := r.db.rebind(`SELECT id, document_id, format, status, method, started_at, finished_at, error_message
		FROM extract_jobs WHERE document_id = ? ORDER BY started_at, id`)
	rows, err := r.db.sql.QueryContext(ctx, q, documentID.String())
	if err != nil {
		return nil, fmt.Errorf("%w: list jobs: %w", common.ErrDatabase, err)
	}
	defer rows.Close()

	var out []entity.ExtractJob
	for rows.Next() {
		var (
			j                        entity.ExtractJob
			id, docID, status, start string
			method, finished, msg    sql.NullString
		)
		if err := rows.Scan(&id, &docID, &j.Format, &status, &method, &start, &finished, &msg); err != nil {
			return nil, fmt.Errorf("%w: scan job: %w", common.ErrDatabase, err)
		}
		if j.ID, err = uuid.Parse(id); err != nil {
			return nil, err
		}
		if j.DocumentID, err = uuid.Parse(docID); err != nil {
			return nil, err
		}
		if j.StartedAt, err = parseTS(start); err != nil {
			return nil, err
		}
		if j.FinishedAt, err = nullTS(finished); err != nil {
			return nil, err
		}
		j.Status = constants.JobStatus(status)
		if method.Valid {
			j.Method = &method.String
		}
		if msg.Valid {
			j.ErrorMessage = &msg.String
		}
		out = append(out, j)
	}
	return out, rows.Err()
}
