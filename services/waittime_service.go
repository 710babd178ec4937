package services

import (
	"fmt"
	"time"

	"github.com/campus-coop/coop-queue-api/models"
	"gorm.io/gorm"
)

// Estimate is the wait-time projection for a candidate order.
type Estimate struct {
	EstimatedMinutes int `json:"estimated_minutes"`
	QueuePosition    int `json:"queue_position"`
	OrdersAhead      int `json:"orders_ahead"`
	PendingOrders    int `json:"pending_orders"`
}

// WaitInfo is the refreshed projection returned on a wait-time poll.
type WaitInfo struct {
	Status           string `json:"status"`
	EstimatedMinutes int    `json:"estimated_minutes"`
	QueuePosition    int    `json:"queue_position"`
	OrdersAhead      int    `json:"orders_ahead"`
	MinutesElapsed   int    `json:"minutes_elapsed"`
}

// WaitTimeService computes wait estimates from current queue depth. Pure
// read-time projections: it never writes.
type WaitTimeService struct {
	db       *gorm.DB
	clock    Clock
	settings *SettingsService
}

// NewWaitTimeService creates a wait-time estimator
func NewWaitTimeService(db *gorm.DB, clock Clock, settings *SettingsService) *WaitTimeService {
	return &WaitTimeService{db: db, clock: clock, settings: settings}
}

// Estimate projects the wait for a candidate order on the given service
// date. The estimate is linear in the number of live orders ahead of the
// candidate plus the candidate's own processing weight. before limits the
// depth count to orders created strictly earlier; nil means the candidate
// is new and everything live counts.
//
// Must be called with the same transaction handle as the surrounding
// order transition so the depth snapshot is consistent.
func (w *WaitTimeService) Estimate(tx *gorm.DB, serviceDate, serviceType string, distinctItems int, before *time.Time) (*Estimate, error) {
	if tx == nil {
		tx = w.db
	}

	query := tx.Model(&models.Order{}).
		Where("queue_date = ?", serviceDate).
		Where("status IN ?", []string{models.StatusPending, models.StatusProcessing})
	if before != nil {
		query = query.Where("created_at < ?", *before)
	}

	var ahead int64
	if err := query.Count(&ahead).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders ahead: %w", err)
	}

	var pending int64
	if err := tx.Model(&models.Order{}).
		Where("queue_date = ?", serviceDate).
		Where("status = ?", models.StatusPending).
		Count(&pending).Error; err != nil {
		return nil, fmt.Errorf("failed to count pending orders: %w", err)
	}

	perOrder := w.settings.ItemWaitMinutes()
	own := w.ownWeight(serviceType, distinctItems)

	return &Estimate{
		EstimatedMinutes: int(ahead)*perOrder + own,
		QueuePosition:    int(ahead) + 1,
		OrdersAhead:      int(ahead),
		PendingOrders:    int(pending),
	}, nil
}

// Poll re-derives the queue position from current state and decays the
// originally quoted estimate by the minutes elapsed since the order was
// created. The remaining estimate is floored at 1 minute for live orders
// and never re-inflated.
func (w *WaitTimeService) Poll(order *models.Order) (*WaitInfo, error) {
	info := &WaitInfo{Status: order.Status}

	switch order.Status {
	case models.StatusPending, models.StatusProcessing:
		// fall through to the live computation below
	case models.StatusScheduled:
		// Not in the queue yet; nothing to decay.
		return info, nil
	default:
		// ready, completed, cancelled: the wait is over
		return info, nil
	}

	created := order.CreatedAt
	est, err := w.Estimate(w.db, order.QueueDate, order.ServiceType, len(order.Items), &created)
	if err != nil {
		return nil, err
	}

	elapsed := int(w.clock.Now().Sub(order.CreatedAt).Minutes())
	if elapsed < 0 {
		elapsed = 0
	}

	remaining := order.EstimatedMinutes - elapsed
	if remaining < 1 {
		remaining = 1
	}

	info.EstimatedMinutes = remaining
	info.QueuePosition = est.QueuePosition
	info.OrdersAhead = est.OrdersAhead
	info.MinutesElapsed = elapsed
	return info, nil
}

func (w *WaitTimeService) ownWeight(serviceType string, distinctItems int) int {
	if serviceType == models.ServicePrinting {
		return w.settings.PrintingBaseMinutes()
	}
	if distinctItems < 1 {
		distinctItems = 1
	}
	return w.settings.ItemWaitMinutes() * distinctItems
}

var waitTimeServiceInstance *WaitTimeService

// InitWaitTimeService initializes the wait-time estimator
func InitWaitTimeService(db *gorm.DB, clock Clock, settings *SettingsService) *WaitTimeService {
	waitTimeServiceInstance = NewWaitTimeService(db, clock, settings)
	return waitTimeServiceInstance
}

// GetWaitTimeService returns the initialized wait-time estimator instance
func GetWaitTimeService() *WaitTimeService {
	return waitTimeServiceInstance
}
