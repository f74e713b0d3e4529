package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/coop-gateway/internal/domain"
)

// In-memory implementations back the local stores when no Postgres DSN is
// configured, and serve as test doubles for the services.

type memoryTransactionRepository struct {
	mu           sync.RWMutex
	transactions map[string]*domain.PaymentTransaction
}

// NewMemoryTransactionRepository creates an in-memory transaction store.
func NewMemoryTransactionRepository() TransactionRepository {
	return &memoryTransactionRepository{transactions: make(map[string]*domain.PaymentTransaction)}
}

func (r *memoryTransactionRepository) Create(_ context.Context, tx *domain.PaymentTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	tx.ID = uuid.NewString()
	tx.CreatedAt = now
	tx.UpdatedAt = now
	clone := *tx
	r.transactions[tx.Reference] = &clone
	return nil
}

func (r *memoryTransactionRepository) SetProviderReference(_ context.Context, reference, providerRef, authorizationURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.transactions[reference]
	if !ok {
		return pgx.ErrNoRows
	}
	tx.ProviderReference = providerRef
	tx.AuthorizationURL = authorizationURL
	tx.UpdatedAt = time.Now()
	return nil
}

func (r *memoryTransactionRepository) UpdateStatus(_ context.Context, reference string, status domain.TransactionStatus, failureReason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.transactions[reference]
	if !ok {
		return pgx.ErrNoRows
	}
	tx.Status = status
	tx.FailureReason = failureReason
	tx.UpdatedAt = time.Now()
	return nil
}

func (r *memoryTransactionRepository) GetByReference(_ context.Context, reference string) (*domain.PaymentTransaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tx, ok := r.transactions[reference]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *tx
	return &clone, nil
}

func (r *memoryTransactionRepository) ListByTenant(_ context.Context, tenantSlug string, limit int) ([]domain.PaymentTransaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var transactions []domain.PaymentTransaction
	for _, tx := range r.transactions {
		if tx.TenantSlug != tenantSlug {
			continue
		}
		transactions = append(transactions, *tx)
		if limit > 0 && len(transactions) >= limit {
			break
		}
	}
	return transactions, nil
}

type memoryBulkJobRepository struct {
	mu   sync.RWMutex
	jobs map[string]*domain.BulkUploadJob
}

// NewMemoryBulkJobRepository creates an in-memory bulk job store.
func NewMemoryBulkJobRepository() BulkJobRepository {
	return &memoryBulkJobRepository{jobs: make(map[string]*domain.BulkUploadJob)}
}

func (r *memoryBulkJobRepository) Create(_ context.Context, job *domain.BulkUploadJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	job.ID = uuid.NewString()
	job.CreatedAt = now
	job.UpdatedAt = now
	clone := *job
	r.jobs[job.ID] = &clone
	return nil
}

func (r *memoryBulkJobRepository) UpdateStatus(_ context.Context, id string, status domain.BulkJobStatus, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return pgx.ErrNoRows
	}
	job.Status = status
	job.Message = message
	job.UpdatedAt = time.Now()
	return nil
}

func (r *memoryBulkJobRepository) ListByTenant(_ context.Context, tenantSlug string, limit int) ([]domain.BulkUploadJob, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var jobs []domain.BulkUploadJob
	for _, job := range r.jobs {
		if job.TenantSlug != tenantSlug {
			continue
		}
		jobs = append(jobs, *job)
		if limit > 0 && len(jobs) >= limit {
			break
		}
	}
	return jobs, nil
}
