package events

import (
	"time"

	"github.com/spec-kit/coop-gateway/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventPaymentInitialized EventType = "payment_initialized"
	EventPaymentCompleted   EventType = "payment_completed"
	EventPaymentFailed      EventType = "payment_failed"
	EventBulkUploadReceived EventType = "bulk_upload_received"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID         string      `json:"id"`
	Type       EventType   `json:"type"`
	TenantSlug string      `json:"tenant_slug"`
	Timestamp  time.Time   `json:"timestamp"`
	Payload    interface{} `json:"payload"`
}

// PaymentInitializedPayload payload.
type PaymentInitializedPayload struct {
	Reference string                     `json:"reference"`
	Provider  domain.PaymentProviderName `json:"provider"`
	Amount    float64                    `json:"amount"`
	Currency  string                     `json:"currency"`
}

// PaymentCompletedPayload payload.
type PaymentCompletedPayload struct {
	Reference   string                     `json:"reference"`
	Provider    domain.PaymentProviderName `json:"provider"`
	AmountMinor int64                      `json:"amount_minor"`
	Currency    string                     `json:"currency"`
}

// PaymentFailedPayload payload.
type PaymentFailedPayload struct {
	Reference string                     `json:"reference"`
	Provider  domain.PaymentProviderName `json:"provider"`
	Reason    string                     `json:"reason,omitempty"`
}

// BulkUploadReceivedPayload payload.
type BulkUploadReceivedPayload struct {
	JobID    string `json:"job_id"`
	Filename string `json:"filename"`
	RowCount int    `json:"row_count"`
}
