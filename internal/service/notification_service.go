package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/facilityops/maintenance-service/internal/config"
	"github.com/facilityops/maintenance-service/internal/events"
)

// NotificationService handles emitting notifications for lifecycle events.
// Delivery is stubbed: the endpoints are logged, not called.
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
	n.dispatcher.Subscribe(events.EventRequestCreated, n.handleCreated)
	n.dispatcher.Subscribe(events.EventRequestStatusChanged, n.handleStatusChanged)
	n.dispatcher.Subscribe(events.EventRequestAssigned, n.handleAssigned)
}

func (n *NotificationService) handleCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("RequestCreated", zap.String("request_id", event.RequestID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(event)
	n.sendWebhookNotificationStub(event)
	return nil
}

func (n *NotificationService) handleStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("RequestStatusChanged", zap.String("request_id", event.RequestID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(event)
	return nil
}

func (n *NotificationService) handleAssigned(ctx context.Context, event events.Event) error {
	n.logger.Info("RequestAssigned", zap.String("request_id", event.RequestID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("request_id", event.RequestID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("request_id", event.RequestID),
		zap.String("event_type", string(event.Type)))
}
