package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/coop-gateway/internal/domain"
	"github.com/spec-kit/coop-gateway/internal/events"
	"github.com/spec-kit/coop-gateway/internal/repository"
	"github.com/spec-kit/coop-gateway/internal/upstream"
	apperrors "github.com/spec-kit/coop-gateway/pkg/util"
)

const bulkUploadPath = "/members/bulk"

// BulkUploadService records member bulk uploads locally before forwarding
// them to the backend, so a tenant can audit what was submitted even when the
// upstream call fails.
type BulkUploadService struct {
	jobs       repository.BulkJobRepository
	client     *upstream.Client
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewBulkUploadService builds the service.
func NewBulkUploadService(jobs repository.BulkJobRepository, client *upstream.Client, dispatcher events.Dispatcher, logger *zap.Logger) *BulkUploadService {
	return &BulkUploadService{jobs: jobs, client: client, dispatcher: dispatcher, logger: logger}
}

// BulkUploadInput describes an upload to record and forward.
type BulkUploadInput struct {
	TenantSlug string
	UploaderID string
	Filename   string
	RowCount   int
	Headers    upstream.ForwardHeaders
	Body       []byte
}

// Upload persists the job and forwards the payload upstream. The returned
// response is the upstream's, relayed to the caller unchanged.
func (s *BulkUploadService) Upload(ctx context.Context, in BulkUploadInput) (*domain.BulkUploadJob, *upstream.Response, error) {
	job := &domain.BulkUploadJob{
		TenantSlug: in.TenantSlug,
		UploaderID: in.UploaderID,
		Filename:   in.Filename,
		RowCount:   in.RowCount,
		Status:     domain.BulkJobReceived,
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, nil, apperrors.MapError(err)
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:         uuid.NewString(),
			Type:       events.EventBulkUploadReceived,
			TenantSlug: in.TenantSlug,
			Timestamp:  time.Now(),
			Payload: events.BulkUploadReceivedPayload{
				JobID:    job.ID,
				Filename: in.Filename,
				RowCount: in.RowCount,
			},
		})
	}

	resp, err := s.client.Do(ctx, upstream.Request{
		Method:  http.MethodPost,
		Path:    bulkUploadPath,
		Headers: in.Headers,
		Body:    in.Body,
	})
	if err != nil {
		s.markJob(ctx, job.ID, domain.BulkJobFailed, err.Error())
		return job, nil, err
	}

	if resp.OK() {
		s.markJob(ctx, job.ID, domain.BulkJobForwarded, "")
	} else {
		s.markJob(ctx, job.ID, domain.BulkJobFailed, fmt.Sprintf("upstream status %d", resp.Status))
	}
	return job, resp, nil
}

// Jobs lists the tenant's recorded uploads.
func (s *BulkUploadService) Jobs(ctx context.Context, tenantSlug string, limit int) ([]domain.BulkUploadJob, error) {
	if limit <= 0 {
		limit = 50
	}
	jobs, err := s.jobs.ListByTenant(ctx, tenantSlug, limit)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return jobs, nil
}

func (s *BulkUploadService) markJob(ctx context.Context, id string, status domain.BulkJobStatus, message string) {
	if err := s.jobs.UpdateStatus(ctx, id, status, message); err != nil {
		s.logger.Error("failed to update bulk job", zap.String("job_id", id), zap.Error(err))
	}
}
