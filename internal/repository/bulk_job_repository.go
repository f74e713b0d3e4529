package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/coop-gateway/internal/domain"
)

// BulkJobRepository defines persistence access for member bulk uploads.
type BulkJobRepository interface {
	Create(ctx context.Context, job *domain.BulkUploadJob) error
	UpdateStatus(ctx context.Context, id string, status domain.BulkJobStatus, message string) error
	ListByTenant(ctx context.Context, tenantSlug string, limit int) ([]domain.BulkUploadJob, error)
}

type bulkJobRepository struct {
	pool *pgxpool.Pool
}

// NewBulkJobRepository returns a Postgres-backed implementation.
func NewBulkJobRepository(pool *pgxpool.Pool) BulkJobRepository {
	return &bulkJobRepository{pool: pool}
}

func (r *bulkJobRepository) Create(ctx context.Context, job *domain.BulkUploadJob) error {
	const query = `
        INSERT INTO bulk_upload_jobs (tenant_slug, uploader_id, filename, row_count, status)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		job.TenantSlug,
		job.UploaderID,
		job.Filename,
		job.RowCount,
		job.Status,
	).Scan(&job.ID, &job.CreatedAt, &job.UpdatedAt)
}

func (r *bulkJobRepository) UpdateStatus(ctx context.Context, id string, status domain.BulkJobStatus, message string) error {
	const query = `
        UPDATE bulk_upload_jobs SET status=$1, message=$2, updated_at=NOW()
        WHERE id=$3`

	cmd, err := r.pool.Exec(ctx, query, status, message, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *bulkJobRepository) ListByTenant(ctx context.Context, tenantSlug string, limit int) ([]domain.BulkUploadJob, error) {
	const query = `
        SELECT id, tenant_slug, uploader_id, filename, row_count, status, COALESCE(message, ''), created_at, updated_at
        FROM bulk_upload_jobs WHERE tenant_slug=$1
        ORDER BY created_at DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, tenantSlug, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []domain.BulkUploadJob
	for rows.Next() {
		var job domain.BulkUploadJob
		if err := rows.Scan(
			&job.ID,
			&job.TenantSlug,
			&job.UploaderID,
			&job.Filename,
			&job.RowCount,
			&job.Status,
			&job.Message,
			&job.CreatedAt,
			&job.UpdatedAt,
		); err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}
