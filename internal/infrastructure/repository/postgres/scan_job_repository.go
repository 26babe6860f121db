package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MagicMike0112/Project-Study-BSH/internal/core/domain"
)

type ScanJobRepository struct {
	db *sql.DB
}

func NewScanJobRepository(db *sql.DB) *ScanJobRepository {
	return &ScanJobRepository{db: db}
}

func (r *ScanJobRepository) Create(ctx context.Context, job *domain.ScanJob) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO scan_jobs (id, mode, storage_key, status, error_message, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
`, job.ID, string(job.Mode), job.StorageKey, string(job.Status), job.Error, job.CreatedAt, job.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert scan job: %w", err)
	}
	return nil
}

func (r *ScanJobRepository) GetByID(ctx context.Context, id string) (*domain.ScanJob, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, mode, storage_key, status, error_message, result, created_at, updated_at
FROM scan_jobs
WHERE id = $1
`, id)

	var (
		job       domain.ScanJob
		mode      string
		status    string
		resultRaw []byte
	)
	err := row.Scan(&job.ID, &mode, &job.StorageKey, &status, &job.Error, &resultRaw, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrScanJobNotFound, "get scan job", fmt.Errorf("id=%s", id))
		}
		return nil, fmt.Errorf("scan scan job: %w", err)
	}
	job.Mode = domain.ScanMode(mode)
	job.Status = domain.ScanJobStatus(status)
	if len(resultRaw) > 0 {
		var result domain.BatchResult
		if err := json.Unmarshal(resultRaw, &result); err != nil {
			return nil, fmt.Errorf("unmarshal scan result: %w", err)
		}
		job.Result = &result
	}
	return &job, nil
}

func (r *ScanJobRepository) UpdateStatus(ctx context.Context, id string, status domain.ScanJobStatus, errMessage string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE scan_jobs
SET status = $2, error_message = $3, updated_at = $4
WHERE id = $1
`, id, string(status), errMessage, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update scan job status: %w", err)
	}
	return requireRow(res, "update scan job status", id)
}

func (r *ScanJobRepository) SaveResult(ctx context.Context, id string, result domain.BatchResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal scan result: %w", err)
	}
	res, err := r.db.ExecContext(ctx, `
UPDATE scan_jobs
SET result = $2, updated_at = $3
WHERE id = $1
`, id, payload, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save scan result: %w", err)
	}
	return requireRow(res, "save scan result", id)
}

func requireRow(res sql.Result, op, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrScanJobNotFound, op, fmt.Errorf("id=%s", id))
	}
	return nil
}
