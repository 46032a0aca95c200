package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/civicwatch/hazard-service/internal/config"
	"github.com/civicwatch/hazard-service/internal/events"
)

// NotificationService handles emitting notifications for domain events.
// Delivery is fire-and-forget: failures are logged, never propagated.
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

// RegisterHandlers subscribes to events on an in-process dispatcher.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.Handle)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.Handle)
	n.dispatcher.Subscribe(events.EventTicketEscalated, n.Handle)
	n.dispatcher.Subscribe(events.EventAuthorityAssigned, n.Handle)
	n.dispatcher.Subscribe(events.EventMessageAdded, n.Handle)
}

// Handle dispatches one event to the delivery stubs. The notification
// worker calls this directly for queue-consumed events.
func (n *NotificationService) Handle(ctx context.Context, event events.Event) error {
	n.logger.Info("notify",
		zap.String("event_type", string(event.Type)),
		zap.String("ticket_id", event.TicketID),
		zap.Any("payload", event.Payload))

	switch event.Type {
	case events.EventTicketCreated, events.EventMessageAdded:
		n.sendEmailNotificationStub(ctx, event)
	case events.EventTicketEscalated:
		n.sendEmailNotificationStub(ctx, event)
		n.sendWebhookNotificationStub(ctx, event)
	default:
		n.sendWebhookNotificationStub(ctx, event)
	}
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("ticket_id", event.TicketID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("ticket_id", event.TicketID),
		zap.String("event_type", string(event.Type)))
}
