package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/coop-gateway/internal/config"
	"github.com/spec-kit/coop-gateway/internal/events"
)

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventPaymentInitialized, n.handlePaymentInitialized)
	n.dispatcher.Subscribe(events.EventPaymentCompleted, n.handlePaymentCompleted)
	n.dispatcher.Subscribe(events.EventPaymentFailed, n.handlePaymentFailed)
	n.dispatcher.Subscribe(events.EventBulkUploadReceived, n.handleBulkUploadReceived)
}

func (n *NotificationService) handlePaymentInitialized(ctx context.Context, event events.Event) error {
	n.logger.Info("PaymentInitialized", zap.String("tenant", event.TenantSlug), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handlePaymentCompleted(ctx context.Context, event events.Event) error {
	n.logger.Info("PaymentCompleted", zap.String("tenant", event.TenantSlug), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handlePaymentFailed(ctx context.Context, event events.Event) error {
	n.logger.Info("PaymentFailed", zap.String("tenant", event.TenantSlug), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleBulkUploadReceived(ctx context.Context, event events.Event) error {
	n.logger.Info("BulkUploadReceived", zap.String("tenant", event.TenantSlug), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	// TODO: wire a real mail sender; the upstream backend currently owns member email.
	n.logger.Debug("email notification stub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("event", string(event.Type)),
	)
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("webhook notification stub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("event", string(event.Type)),
	)
}
