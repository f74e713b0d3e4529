package dto

import "github.com/spec-kit/coop-gateway/internal/domain"

// LoginRequest payload forwarded to the upstream login endpoint.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginUpstreamResponse is the upstream login body the gateway parses to
// build a session. The raw body is still relayed to the browser verbatim.
type LoginUpstreamResponse struct {
	Token string             `json:"token"`
	User  domain.SessionUser `json:"user"`
}
