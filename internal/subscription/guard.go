package subscription

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/coop-gateway/internal/auth"
	"github.com/spec-kit/coop-gateway/internal/domain"
	"github.com/spec-kit/coop-gateway/internal/observability"
	"github.com/spec-kit/coop-gateway/internal/tenant"
	"github.com/spec-kit/coop-gateway/internal/upstream"
	apperrors "github.com/spec-kit/coop-gateway/pkg/util"
)

const statusPath = "/subscriptions/status"

// StatusFetcher retrieves the current billing state for a tenant.
type StatusFetcher interface {
	Status(ctx context.Context, headers upstream.ForwardHeaders) (*domain.SubscriptionState, error)
}

type upstreamFetcher struct {
	client *upstream.Client
}

// NewUpstreamFetcher fetches subscription status from the backend API.
func NewUpstreamFetcher(client *upstream.Client) StatusFetcher {
	return &upstreamFetcher{client: client}
}

func (f *upstreamFetcher) Status(ctx context.Context, headers upstream.ForwardHeaders) (*domain.SubscriptionState, error) {
	var state domain.SubscriptionState
	if err := f.client.DoJSON(ctx, http.MethodGet, statusPath, headers, nil, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// Guard blocks guarded routes when the tenant's subscription is not active.
// Status is fetched on every request, never cached across requests. The
// policy on fetch failure is fail closed: an unknown status is treated as
// expired.
type Guard struct {
	fetcher       StatusFetcher
	requireActive bool
	renewalPath   string
	logger        *zap.Logger
	metrics       *observability.Metrics
}

// NewGuard constructs the middleware. requireActive distinguishes admin
// contexts, which demand a live subscription, from member contexts that only
// render read-only views.
func NewGuard(fetcher StatusFetcher, requireActive bool, renewalPath string, logger *zap.Logger, metrics *observability.Metrics) *Guard {
	return &Guard{
		fetcher:       fetcher,
		requireActive: requireActive,
		renewalPath:   renewalPath,
		logger:        logger,
		metrics:       metrics,
	}
}

// Handle checks the subscription state before letting the request through.
func (g *Guard) Handle(c *fiber.Ctx) error {
	if !g.requireActive {
		g.metrics.RecordGuard("subscription", "allowed")
		return c.Next()
	}

	headers := upstream.ForwardHeaders{
		ForwardedHost: c.Hostname(),
		TenantSlug:    tenant.SlugFromContext(c),
	}
	if principal, ok := auth.PrincipalFromContext(c); ok {
		headers.Authorization = "Bearer " + principal.Token()
	}

	state, err := g.fetcher.Status(c.UserContext(), headers)
	if err != nil {
		g.logger.Warn("subscription status fetch failed; blocking",
			zap.String("tenant", headers.TenantSlug),
			zap.Error(err),
		)
		g.metrics.RecordGuard("subscription", "blocked")
		return g.block(c)
	}

	if !state.Status.Allows() {
		g.metrics.RecordGuard("subscription", "blocked")
		return g.block(c)
	}

	g.metrics.RecordGuard("subscription", "allowed")
	return c.Next()
}

func (g *Guard) block(c *fiber.Ctx) error {
	if auth.WantsHTML(c) {
		return c.Redirect(g.renewalPath, fiber.StatusFound)
	}
	return apperrors.NewSubscriptionRequired("subscription expired")
}
