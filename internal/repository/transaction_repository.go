package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/coop-gateway/internal/domain"
)

// TransactionRepository defines persistence access for payment transactions.
type TransactionRepository interface {
	Create(ctx context.Context, tx *domain.PaymentTransaction) error
	SetProviderReference(ctx context.Context, reference, providerRef, authorizationURL string) error
	UpdateStatus(ctx context.Context, reference string, status domain.TransactionStatus, failureReason string) error
	GetByReference(ctx context.Context, reference string) (*domain.PaymentTransaction, error)
	ListByTenant(ctx context.Context, tenantSlug string, limit int) ([]domain.PaymentTransaction, error)
}

type transactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository returns a Postgres-backed implementation.
func NewTransactionRepository(pool *pgxpool.Pool) TransactionRepository {
	return &transactionRepository{pool: pool}
}

func (r *transactionRepository) Create(ctx context.Context, tx *domain.PaymentTransaction) error {
	const query = `
        INSERT INTO payment_transactions (tenant_slug, user_id, provider, reference, amount, currency, status)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		tx.TenantSlug,
		tx.UserID,
		tx.Provider,
		tx.Reference,
		tx.Amount,
		tx.Currency,
		tx.Status,
	).Scan(&tx.ID, &tx.CreatedAt, &tx.UpdatedAt)
}

func (r *transactionRepository) SetProviderReference(ctx context.Context, reference, providerRef, authorizationURL string) error {
	const query = `
        UPDATE payment_transactions SET provider_reference=$1, authorization_url=$2, updated_at=NOW()
        WHERE reference=$3`

	cmd, err := r.pool.Exec(ctx, query, providerRef, authorizationURL, reference)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *transactionRepository) UpdateStatus(ctx context.Context, reference string, status domain.TransactionStatus, failureReason string) error {
	const query = `
        UPDATE payment_transactions SET status=$1, failure_reason=$2, updated_at=NOW()
        WHERE reference=$3`

	cmd, err := r.pool.Exec(ctx, query, status, failureReason, reference)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *transactionRepository) GetByReference(ctx context.Context, reference string) (*domain.PaymentTransaction, error) {
	const query = `
        SELECT id, tenant_slug, user_id, provider, reference, COALESCE(provider_reference, ''),
               amount, currency, status, COALESCE(authorization_url, ''), COALESCE(failure_reason, ''),
               created_at, updated_at
        FROM payment_transactions WHERE reference=$1`

	var tx domain.PaymentTransaction
	if err := r.pool.QueryRow(ctx, query, reference).Scan(
		&tx.ID,
		&tx.TenantSlug,
		&tx.UserID,
		&tx.Provider,
		&tx.Reference,
		&tx.ProviderReference,
		&tx.Amount,
		&tx.Currency,
		&tx.Status,
		&tx.AuthorizationURL,
		&tx.FailureReason,
		&tx.CreatedAt,
		&tx.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *transactionRepository) ListByTenant(ctx context.Context, tenantSlug string, limit int) ([]domain.PaymentTransaction, error) {
	const query = `
        SELECT id, tenant_slug, user_id, provider, reference, COALESCE(provider_reference, ''),
               amount, currency, status, COALESCE(authorization_url, ''), COALESCE(failure_reason, ''),
               created_at, updated_at
        FROM payment_transactions WHERE tenant_slug=$1
        ORDER BY created_at DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, tenantSlug, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []domain.PaymentTransaction
	for rows.Next() {
		var tx domain.PaymentTransaction
		if err := rows.Scan(
			&tx.ID,
			&tx.TenantSlug,
			&tx.UserID,
			&tx.Provider,
			&tx.Reference,
			&tx.ProviderReference,
			&tx.Amount,
			&tx.Currency,
			&tx.Status,
			&tx.AuthorizationURL,
			&tx.FailureReason,
			&tx.CreatedAt,
			&tx.UpdatedAt,
		); err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}
	return transactions, rows.Err()
}
