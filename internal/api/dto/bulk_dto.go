package dto

// BulkUploadRequest payload for member bulk uploads. Members stay untyped;
// the upstream backend owns the member schema and validates rows.
type BulkUploadRequest struct {
	Filename string           `json:"filename"`
	Members  []map[string]any `json:"members"`
}
