package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/coop-gateway/internal/domain"
)

// Claims describes the JWT payload issued by the upstream backend.
type Claims struct {
	UserID     string        `json:"sub"`
	Roles      []domain.Role `json:"roles"`
	TenantSlug string        `json:"tenant,omitempty"`
	jwt.RegisteredClaims
}

// HasRole reports whether the claims carry the given role.
func (c *Claims) HasRole(role domain.Role) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// TokenVerifier validates upstream-issued JWTs with the shared secret. The
// gateway never issues tokens; it only verifies signature and claims before
// trusting a role.
type TokenVerifier struct {
	secret []byte
}

// NewTokenVerifier builds a verifier.
func NewTokenVerifier(secret string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret)}
}

// Parse validates and returns claims.
func (v *TokenVerifier) Parse(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// SignToken builds a signed token for the given subject. Only tests and
// local tooling use this; production tokens come from upstream.
func (v *TokenVerifier) SignToken(userID string, roles []domain.Role, tenantSlug string, ttl time.Duration) (string, error) {
	claims := &Claims{
		UserID:     userID,
		Roles:      roles,
		TenantSlug: tenantSlug,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}
