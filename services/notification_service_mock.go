package services

import (
	"sync"

	"github.com/campus-coop/coop-queue-api/models"
)

// SentNotification records one notification emitted during a test.
type SentNotification struct {
	Kind           string // "confirmation" or "status_update"
	OrderID        uint
	Status         string
	PreviousStatus string
}

// MockNotificationService is a NotificationService for testing that
// records every notification instead of delivering it.
type MockNotificationService struct {
	mu   sync.Mutex
	sent []SentNotification
}

// NewMockNotificationService creates a new mock notification service
func NewMockNotificationService() *MockNotificationService {
	return &MockNotificationService{}
}

// SetAsMockForTesting sets this mock as the global notification service for testing
func (m *MockNotificationService) SetAsMockForTesting() {
	SetNotificationService(m)
}

// SendOrderConfirmation records a confirmation notification
func (m *MockNotificationService) SendOrderConfirmation(order *models.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, SentNotification{
		Kind:    "confirmation",
		OrderID: order.ID,
		Status:  order.Status,
	})
}

// SendStatusUpdate records a status-change notification
func (m *MockNotificationService) SendStatusUpdate(order *models.Order, previousStatus string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, SentNotification{
		Kind:           "status_update",
		OrderID:        order.ID,
		Status:         order.Status,
		PreviousStatus: previousStatus,
	})
}

// Sent returns a copy of the recorded notifications
func (m *MockNotificationService) Sent() []SentNotification {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentNotification, len(m.sent))
	copy(out, m.sent)
	return out
}
