package domain

import "time"

// TenantStatus represents lifecycle states for a cooperative business.
type TenantStatus string

const (
	TenantStatusActive    TenantStatus = "ACTIVE"
	TenantStatusSuspended TenantStatus = "SUSPENDED"
)

// Tenant is a cooperative business instance served by this deployment,
// distinguished by slug or custom domain. Tenant records are owned by the
// upstream backend; this shape mirrors its resolve response.
type Tenant struct {
	ID           string       `json:"id"`
	Slug         string       `json:"slug"`
	Name         string       `json:"name"`
	Status       TenantStatus `json:"status"`
	CustomDomain string       `json:"custom_domain,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}
