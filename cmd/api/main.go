package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/coop-gateway/internal/api/http"
	"github.com/spec-kit/coop-gateway/internal/api/http/handlers"
	"github.com/spec-kit/coop-gateway/internal/auth"
	"github.com/spec-kit/coop-gateway/internal/config"
	"github.com/spec-kit/coop-gateway/internal/events"
	"github.com/spec-kit/coop-gateway/internal/observability"
	"github.com/spec-kit/coop-gateway/internal/payments"
	"github.com/spec-kit/coop-gateway/internal/persistence"
	"github.com/spec-kit/coop-gateway/internal/proxy"
	"github.com/spec-kit/coop-gateway/internal/repository"
	"github.com/spec-kit/coop-gateway/internal/service"
	"github.com/spec-kit/coop-gateway/internal/subscription"
	"github.com/spec-kit/coop-gateway/internal/tenant"
	"github.com/spec-kit/coop-gateway/internal/upstream"
	"github.com/spec-kit/coop-gateway/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	var transactionRepo repository.TransactionRepository
	var bulkJobRepo repository.BulkJobRepository
	if pool != nil {
		transactionRepo = repository.NewTransactionRepository(pool)
		bulkJobRepo = repository.NewBulkJobRepository(pool)
	} else {
		transactionRepo = repository.NewMemoryTransactionRepository()
		bulkJobRepo = repository.NewMemoryBulkJobRepository()
	}

	upstreamClient := upstream.NewClient(cfg.Upstream, logger, metrics)

	resolver := tenant.NewResolver(upstreamClient, tenant.NewRedisCache(redis.Client, cfg.Tenant.CacheTTL()), logger)
	sessions := auth.NewRedisSessionStore(redis.Client, cfg.Auth.SessionTTL())
	verifier := auth.NewTokenVerifier(cfg.Auth.JWTSecret)
	routeGuard := auth.NewRouteGuard(sessions, verifier, cfg.Auth.SessionCookieName, cfg.Auth.LoginPath, logger, metrics)
	subscriptionGuard := subscription.NewGuard(
		subscription.NewUpstreamFetcher(upstreamClient),
		true,
		cfg.Auth.RenewalPath,
		logger,
		metrics,
	)

	dispatcher := events.NewInMemoryDispatcher()
	providerRegistry := payments.NewRegistry(
		payments.NewPaystack(cfg.Payments.Paystack),
		payments.NewStripe(cfg.Payments.Stripe),
		payments.NewRemita(cfg.Payments.Remita),
	)

	paymentService := service.NewPaymentService(cfg.Payments, service.PaymentDependencies{
		Providers:    providerRegistry,
		Transactions: transactionRepo,
		Dispatcher:   dispatcher,
	}, logger, metrics)
	bulkService := service.NewBulkUploadService(bulkJobRepo, upstreamClient, dispatcher, logger)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:            handlers.NewHealthHandler(redis),
		Auth:              handlers.NewAuthHandler(upstreamClient, sessions, cfg.Auth.SessionCookieName, logger),
		Tenant:            handlers.NewTenantHandler(resolver),
		Payments:          handlers.NewPaymentsHandler(paymentService),
		Bulk:              handlers.NewBulkHandler(bulkService),
		RouteGuard:        routeGuard,
		SubscriptionGuard: subscriptionGuard,
		TenantMiddleware:  tenant.Middleware(resolver, logger),
		MetricsHandler:    adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})),
		Upstream:          upstreamClient,
		AdminKeyHash:      cfg.Auth.SuperAdminKeyHash,
		ProxyRoutes:       proxy.Routes(),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
