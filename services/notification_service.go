package services

import (
	"go.uber.org/zap"

	"github.com/campus-coop/coop-queue-api/models"
)

// NotificationService delivers order notifications to students. Delivery
// is an external collaborator concern; the queue core only decides when
// a notification fires. Implementations must tolerate being called after
// the triggering transaction has committed.
type NotificationService interface {
	// SendOrderConfirmation notifies the student that their order was
	// accepted (immediate or scheduled).
	SendOrderConfirmation(order *models.Order)

	// SendStatusUpdate notifies the student that their order moved from
	// previousStatus to its current status.
	SendStatusUpdate(order *models.Order, previousStatus string)
}

// LogNotificationService is the default implementation: it records the
// notification in the application log. A mail or push gateway can be
// swapped in without touching the lifecycle code.
type LogNotificationService struct {
	logger *zap.SugaredLogger
}

// NewLogNotificationService creates a log-backed notification service
func NewLogNotificationService(logger *zap.SugaredLogger) *LogNotificationService {
	return &LogNotificationService{logger: logger}
}

// SendOrderConfirmation logs the confirmation event
func (s *LogNotificationService) SendOrderConfirmation(order *models.Order) {
	s.logger.Infow("order confirmation",
		"order_id", order.ID,
		"reference_number", order.ReferenceNumber,
		"status", order.Status,
		"queue_date", order.QueueDate,
	)
}

// SendStatusUpdate logs the status-change event
func (s *LogNotificationService) SendStatusUpdate(order *models.Order, previousStatus string) {
	s.logger.Infow("order status update",
		"order_id", order.ID,
		"reference_number", order.ReferenceNumber,
		"from", previousStatus,
		"to", order.Status,
	)
}

var notificationServiceInstance NotificationService

// InitNotificationService initializes the notification service
func InitNotificationService(service NotificationService) NotificationService {
	notificationServiceInstance = service
	return notificationServiceInstance
}

// GetNotificationService returns the initialized notification service instance
func GetNotificationService() NotificationService {
	return notificationServiceInstance
}

// SetNotificationService sets the notification service instance (primarily for testing)
func SetNotificationService(service NotificationService) {
	notificationServiceInstance = service
}
