package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/survey-service/internal/config"
	"github.com/spec-kit/survey-service/internal/events"
)

// Alert is a single composed mail alert.
type Alert struct {
	Username   string
	Email      string
	Department string
	Targets    []string
	Text       string
}

// AlertBatch is everything one mail alert request produced.
type AlertBatch struct {
	Window AlertWindow
	Alerts []Alert
}

// DeliveryResult reports what a Notifier did with a batch.
type DeliveryResult struct {
	Attempted int
	Delivered int
}

// Notifier delivers a composed alert batch.
type Notifier interface {
	Send(ctx context.Context, batch AlertBatch) (DeliveryResult, error)
}

// NotificationService simulates mail delivery by logging each alert, and
// logs domain events published by the other services.
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

// Send logs each alert as a simulated email. Nothing is transmitted.
func (n *NotificationService) Send(_ context.Context, batch AlertBatch) (DeliveryResult, error) {
	result := DeliveryResult{Attempted: len(batch.Alerts)}
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		n.logger.Warn("mail alert sender not configured; alerts not sent", zap.Int("alerts", len(batch.Alerts)))
		return result, nil
	}
	for _, alert := range batch.Alerts {
		n.logger.Info("simulated mail alert",
			zap.String("from", n.cfg.EmailFrom),
			zap.String("to", alert.Email),
			zap.String("username", alert.Username),
			zap.String("department", alert.Department),
			zap.Strings("targets", alert.Targets),
			zap.String("body", alert.Text))
		result.Delivered++
	}
	return result, nil
}

// RegisterHandlers subscribes the event log to every domain event.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.SubscribeAll(n.logEvent)
}

func (n *NotificationService) logEvent(_ context.Context, event events.Event) error {
	n.logger.Info(string(event.Type),
		zap.String("event_id", event.ID),
		zap.Time("timestamp", event.Timestamp),
		zap.Any("payload", event.Payload))
	return nil
}
