package domain

import "time"

// BulkJobStatus represents lifecycle states for a member bulk upload.
type BulkJobStatus string

const (
	BulkJobReceived  BulkJobStatus = "RECEIVED"
	BulkJobForwarded BulkJobStatus = "FORWARDED"
	BulkJobFailed    BulkJobStatus = "FAILED"
)

// BulkUploadJob records a member bulk upload before it is forwarded upstream.
type BulkUploadJob struct {
	ID         string        `json:"id"`
	TenantSlug string        `json:"tenant_slug"`
	UploaderID string        `json:"uploader_id"`
	Filename   string        `json:"filename"`
	RowCount   int           `json:"row_count"`
	Status     BulkJobStatus `json:"status"`
	Message    string        `json:"message,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}
