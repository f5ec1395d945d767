package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/common"
)

// fixed width so TEXT ordering matches time ordering
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ExtractJob is one recorded analysis run.
type ExtractJob struct {
	ID            uuid.UUID
	ModelID       string
	DocumentURL   string
	Locale        string
	Status        constants.JobStatus
	DocumentCount *int
	OutputPath    string
	ErrorMessage  string
	StartedAt     time.Time
	FinishedAt    *time.Time
}

type StartParams struct {
	ModelID     string
	DocumentURL string
	Locale      string
}

type ExtractJobRepository interface {
	Start(ctx context.Context, p StartParams) (*ExtractJob, error)
	FinishSuccess(ctx context.Context, jobID uuid.UUID, documentCount int, outputPath string) error
	FinishFailure(ctx context.Context, jobID uuid.UUID, message string) error
	Get(ctx context.Context, jobID uuid.UUID) (*ExtractJob, error)
	ListRecent(ctx context.Context, limit int) ([]ExtractJob, error)
}

type extractJobRepo struct {
	db  *sql.DB
	log *slog.Logger
	now func() time.Time
}

func NewExtractJobRepository(db *sql.DB, log *slog.Logger) ExtractJobRepository {
	if log == nil {
		log = slog.Default()
	}
	return &extractJobRepo{db: db, log: log, now: func() time.Time { return time.Now().UTC() }}
}

func (r *extractJobRepo) Start(ctx context.Context, p StartParams) (*ExtractJob, error) {
	job := &ExtractJob{
		ID:          uuid.New(),
		ModelID:     p.ModelID,
		DocumentURL: p.DocumentURL,
		Locale:      p.Locale,
		Status:      constants.JobStatusRunning,
		StartedAt:   r.now(),
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO extract_job (id, model_id, document_url, locale, status, started_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		job.ID.String(), job.ModelID, job.DocumentURL, job.Locale, string(job.Status), job.StartedAt.Format(timeLayout),
	)
	if err != nil {
		r.log.Error("extract_job start failed", "model", p.ModelID, "err", err)
		return nil, dbError("insert extract_job", err)
	}
	r.log.Info("extract_job started", "job_id", job.ID, "model", job.ModelID)
	return job, nil
}

func (r *extractJobRepo) FinishSuccess(ctx context.Context, jobID uuid.UUID, documentCount int, outputPath string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE extract_job SET status = $1, document_count = $2, output_path = $3, finished_at = $4 WHERE id = $5`,
		string(constants.JobStatusSucceeded), documentCount, outputPath, r.now().Format(timeLayout), jobID.String(),
	)
	if err := checkUpdated(res, err); err != nil {
		r.log.Error("extract_job finish(OK) failed", "job_id", jobID, "err", err)
		return err
	}
	r.log.Info("extract_job finished (SUCCEEDED)", "job_id", jobID, "documents", documentCount)
	return nil
}

func (r *extractJobRepo) FinishFailure(ctx context.Context, jobID uuid.UUID, message string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE extract_job SET status = $1, error_message = $2, finished_at = $3 WHERE id = $4`,
		string(constants.JobStatusFailed), message, r.now().Format(timeLayout), jobID.String(),
	)
	if err := checkUpdated(res, err); err != nil {
		r.log.Error("extract_job finish(FAILED) failed", "job_id", jobID, "err", err)
		return err
	}
	r.log.Warn("extract_job finished (FAILED)", "job_id", jobID, "error", message)
	return nil
}

const selectColumns = `SELECT id, model_id, document_url, locale, status, document_count, output_path, error_message, started_at, finished_at FROM extract_job`

func (r *extractJobRepo) Get(ctx context.Context, jobID uuid.UUID) (*ExtractJob, error) {
	row := r.db.QueryRowContext(ctx, selectColumns+` WHERE id = $1`, jobID.String())
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NewAppError(common.CodeDatabase, "extract_job "+jobID.String(), common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return job, nil
}

func (r *extractJobRepo) ListRecent(ctx context.Context, limit int) ([]ExtractJob, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, selectColumns+` ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, dbError("list extract_job", err)
	}
	defer func() { _ = rows.Close() }()

	var out []ExtractJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("list extract_job", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanJob(s scanner) (*ExtractJob, error) {
	var (
		id, status, startedAt              string
		job                                ExtractJob
		count                              sql.NullInt64
		outputPath, errMessage, finishedAt sql.NullString
	)
	if err := s.Scan(&id, &job.ModelID, &job.DocumentURL, &job.Locale, &status, &count, &outputPath, &errMessage, &startedAt, &finishedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, dbError("scan extract_job", err)
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, dbError("parse extract_job id", err)
	}
	job.ID = parsed
	job.Status = constants.JobStatus(status)
	if count.Valid {
		n := int(count.Int64)
		job.DocumentCount = &n
	}
	job.OutputPath = outputPath.String
	job.ErrorMessage = errMessage.String
	if job.StartedAt, err = time.Parse(timeLayout, startedAt); err != nil {
		return nil, dbError("parse started_at", err)
	}
	if finishedAt.Valid && finishedAt.String != "" {
		t, err := time.Parse(timeLayout, finishedAt.String)
		if err != nil {
			return nil, dbError("parse finished_at", err)
		}
		job.FinishedAt = &t
	}
	return &job, nil
}

func checkUpdated(res sql.Result, err error) error {
	if err != nil {
		return dbError("update extract_job", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return dbError("update extract_job", err)
	}
	if n == 0 {
		return common.NewAppError(common.CodeDatabase, "update extract_job", common.ErrNotFound)
	}
	return nil
}

func dbError(message string, err error) error {
	return common.NewAppError(common.CodeDatabase, message, fmt.Errorf("%w: %w", common.ErrDatabase, err))
}
