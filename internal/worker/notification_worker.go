package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/survey-service/internal/service"
)

// StartNotificationWorker subscribes the notification service to permission,
// mail alert and submission events. Handlers run synchronously on the
// publishing request.
func StartNotificationWorker(notifications *service.NotificationService, logger *zap.Logger) {
	if notifications == nil {
		logger.Warn("notification worker not started: no notification service")
		return
	}
	notifications.RegisterHandlers()
	logger.Info("notification worker subscribed to domain events")
}
