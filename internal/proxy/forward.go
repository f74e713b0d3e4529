package proxy

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/coop-gateway/internal/auth"
	"github.com/spec-kit/coop-gateway/internal/domain"
	"github.com/spec-kit/coop-gateway/internal/tenant"
	"github.com/spec-kit/coop-gateway/internal/upstream"
)

// Route declares one proxied endpoint. The same forwarder serves every entry;
// behavior differences live in this table, not in per-resource handlers.
type Route struct {
	Method       string
	Path         string        // gateway path, fiber :params allowed
	UpstreamPath string        // upstream template sharing the :param names
	Public       bool          // skip the route guard entirely
	Roles        []domain.Role // allowed roles; empty means any authenticated caller
	RequireSub   bool          // demand an active subscription
	SuperAdmin   bool          // additionally verify the local admin key
}

// Forward returns the handler that proxies a route to the upstream backend.
func Forward(client *upstream.Client, route Route) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := route.UpstreamPath
		for _, param := range c.Route().Params {
			path = strings.ReplaceAll(path, ":"+param, c.Params(param))
		}

		var body []byte
		switch c.Method() {
		case fiber.MethodGet, fiber.MethodHead, fiber.MethodDelete:
		default:
			body = c.Body()
		}

		resp, err := client.Do(c.UserContext(), upstream.Request{
			Method:  c.Method(),
			Path:    path,
			Query:   string(c.Request().URI().QueryString()),
			Headers: HeadersFromContext(c),
			Body:    body,
		})
		if err != nil {
			return err
		}
		return Relay(c, resp)
	}
}

// HeadersFromContext assembles the forwarded header set for a request. The
// session token takes precedence over a raw inbound Authorization header, so
// a logged-in browser never has to carry the bearer token itself.
func HeadersFromContext(c *fiber.Ctx) upstream.ForwardHeaders {
	headers := upstream.ForwardHeaders{
		ForwardedHost: c.Hostname(),
		TenantSlug:    tenant.SlugFromContext(c),
	}
	if principal, ok := auth.PrincipalFromContext(c); ok && principal.Token() != "" {
		headers.Authorization = "Bearer " + principal.Token()
	} else if header := c.Get(fiber.HeaderAuthorization); header != "" {
		headers.Authorization = header
	}
	return headers
}

// Relay writes an upstream response back to the browser: 2xx bodies verbatim
// with the upstream status, everything else through the error envelope.
func Relay(c *fiber.Ctx, resp *upstream.Response) error {
	if !resp.OK() {
		return upstream.ErrorFromResponse(resp)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Status(resp.Status).Send(resp.Body)
}
