package domain

import "time"

// PaymentProviderName identifies a payment gateway integration.
type PaymentProviderName string

const (
	ProviderPaystack PaymentProviderName = "paystack"
	ProviderRemita   PaymentProviderName = "remita"
	ProviderStripe   PaymentProviderName = "stripe"
)

// TransactionStatus represents lifecycle states for a payment transaction.
type TransactionStatus string

const (
	TransactionPending TransactionStatus = "PENDING"
	TransactionSuccess TransactionStatus = "SUCCESS"
	TransactionFailed  TransactionStatus = "FAILED"
)

// PaymentTransaction is the local record of a provider payment. Amount is in
// major currency units; adapters convert to each provider's minor unit.
type PaymentTransaction struct {
	ID                string
	TenantSlug        string
	UserID            string
	Provider          PaymentProviderName
	Reference         string
	ProviderReference string
	Amount            float64
	Currency          string
	Status            TransactionStatus
	AuthorizationURL  string
	FailureReason     string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
