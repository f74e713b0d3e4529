package domain

import "time"

// SubscriptionStatus enumerates billing states for a tenant.
type SubscriptionStatus string

const (
	SubscriptionActive  SubscriptionStatus = "active"
	SubscriptionTrial   SubscriptionStatus = "trial"
	SubscriptionExpired SubscriptionStatus = "expired"
)

// Allows reports whether the status permits access to guarded routes.
func (s SubscriptionStatus) Allows() bool {
	return s == SubscriptionActive || s == SubscriptionTrial
}

// SubscriptionState is the upstream billing snapshot for a tenant. It is
// fetched on every guarded request and never cached across requests.
type SubscriptionState struct {
	Status    SubscriptionStatus `json:"status"`
	Plan      string             `json:"plan,omitempty"`
	ExpiresAt *time.Time         `json:"expires_at,omitempty"`
}
