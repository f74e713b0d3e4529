package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/coop-gateway/internal/api/dto"
	"github.com/spec-kit/coop-gateway/internal/auth"
	"github.com/spec-kit/coop-gateway/internal/domain"
	"github.com/spec-kit/coop-gateway/internal/proxy"
	"github.com/spec-kit/coop-gateway/internal/tenant"
	"github.com/spec-kit/coop-gateway/internal/upstream"
	apperrors "github.com/spec-kit/coop-gateway/pkg/util"
)

// AuthHandler proxies login/logout upstream and manages the local session.
type AuthHandler struct {
	client     *upstream.Client
	sessions   auth.SessionStore
	cookieName string
	logger     *zap.Logger
}

// NewAuthHandler constructs handler.
func NewAuthHandler(client *upstream.Client, sessions auth.SessionStore, cookieName string, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{client: client, sessions: sessions, cookieName: cookieName, logger: logger}
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	resp, err := h.client.Do(c.UserContext(), upstream.Request{
		Method:  http.MethodPost,
		Path:    "/auth/login",
		Headers: proxy.HeadersFromContext(c),
		Body:    c.Body(),
	})
	if err != nil {
		return err
	}
	if !resp.OK() {
		return upstream.ErrorFromResponse(resp)
	}

	var parsed dto.LoginUpstreamResponse
	if err := json.Unmarshal(resp.Body, &parsed); err != nil || parsed.Token == "" {
		h.logger.Error("unexpected login response from upstream", zap.Error(err))
		return apperrors.NewUpstreamUnavailable(err)
	}

	session := &domain.AuthSession{
		ID:         uuid.NewString(),
		Token:      parsed.Token,
		TenantSlug: tenant.SlugFromContext(c),
		User:       parsed.User,
		CreatedAt:  time.Now(),
	}
	if err := h.sessions.Create(c.UserContext(), session); err != nil {
		h.logger.Error("failed to create session", zap.Error(err))
		return apperrors.NewInternalError(err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cookieName,
		Value:    session.ID,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return proxy.Relay(c, resp)
}

// Logout handles POST /api/auth/logout. The upstream call is best-effort;
// the local session is destroyed regardless.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	headers := proxy.HeadersFromContext(c)

	if sid := c.Cookies(h.cookieName); sid != "" {
		if session, err := h.sessions.Get(c.UserContext(), sid); err == nil {
			headers.Authorization = "Bearer " + session.Token
		}
		if err := h.sessions.Delete(c.UserContext(), sid); err != nil {
			h.logger.Warn("failed to delete session", zap.Error(err))
		}
	}
	c.ClearCookie(h.cookieName)

	if _, err := h.client.Do(c.UserContext(), upstream.Request{
		Method:  http.MethodPost,
		Path:    "/auth/logout",
		Headers: headers,
	}); err != nil {
		h.logger.Warn("upstream logout failed", zap.Error(err))
	}

	return c.JSON(fiber.Map{"data": fiber.Map{"logged_out": true}})
}
