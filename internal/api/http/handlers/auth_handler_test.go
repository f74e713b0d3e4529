package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/coop-gateway/internal/api/http"
	"github.com/spec-kit/coop-gateway/internal/api/http/handlers"
	"github.com/spec-kit/coop-gateway/internal/auth"
	"github.com/spec-kit/coop-gateway/internal/config"
	"github.com/spec-kit/coop-gateway/internal/domain"
	"github.com/spec-kit/coop-gateway/internal/upstream"
)

const cookieName = "coop_session"

func newAuthApp(t *testing.T, baseURL string, sessions auth.SessionStore) *fiber.App {
	t.Helper()
	client := upstream.NewClient(config.UpstreamConfig{BaseURL: baseURL, TimeoutSeconds: 5}, zap.NewNop(), nil)
	handler := handlers.NewAuthHandler(client, sessions, cookieName, zap.NewNop())

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, zap.NewNop(), nil, 0)
	app.Post("/api/auth/login", handler.Login)
	app.Post("/api/auth/logout", handler.Logout)
	return app
}

func sessionCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == cookieName {
			return c
		}
	}
	return nil
}

func TestLoginCreatesSessionAndRelaysBody(t *testing.T) {
	upstreamBody := `{"token":"jwt-123","user":{"id":"u-1","name":"Ada","email":"ada@example.com","roles":["admin"]}}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/login", r.URL.Path)
		_, _ = w.Write([]byte(upstreamBody))
	}))
	defer server.Close()

	sessions := auth.NewMemorySessionStore()
	app := newAuthApp(t, server.URL, sessions)

	req := httptest.NewRequest(fiber.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"ada@example.com","password":"secret"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	cookie := sessionCookie(resp)
	require.NotNil(t, cookie)
	require.True(t, cookie.HttpOnly)
	require.NotEmpty(t, cookie.Value)

	session, err := sessions.Get(context.Background(), cookie.Value)
	require.NoError(t, err)
	require.Equal(t, "jwt-123", session.Token)
	require.Equal(t, "ada@example.com", session.User.Email)
	require.True(t, session.User.HasRole(domain.RoleAdmin))
}

func TestLoginRelaysUpstreamRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"invalid credentials"}`))
	}))
	defer server.Close()

	app := newAuthApp(t, server.URL, auth.NewMemorySessionStore())

	req := httptest.NewRequest(fiber.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"ada@example.com","password":"wrong"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Nil(t, sessionCookie(resp))
}

func TestLoginValidatesPayload(t *testing.T) {
	app := newAuthApp(t, "http://unused.invalid", auth.NewMemorySessionStore())

	req := httptest.NewRequest(fiber.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"only"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLogoutDestroysSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/logout", r.URL.Path)
		require.Equal(t, "Bearer jwt-123", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	sessions := auth.NewMemorySessionStore()
	require.NoError(t, sessions.Create(context.Background(), &domain.AuthSession{
		ID:        "sid-1",
		Token:     "jwt-123",
		CreatedAt: time.Now(),
	}))

	app := newAuthApp(t, server.URL, sessions)

	req := httptest.NewRequest(fiber.MethodPost, "/api/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: "sid-1"})

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, err = sessions.Get(context.Background(), "sid-1")
	require.ErrorIs(t, err, auth.ErrSessionNotFound)
}

func TestLogoutSucceedsWhenUpstreamDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	app := newAuthApp(t, server.URL, auth.NewMemorySessionStore())

	resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/api/auth/logout", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
