package services

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/campus-coop/coop-queue-api/models"
	"github.com/campus-coop/coop-queue-api/utils"
)

// LineItemInput is one requested item line on a merchandise order.
type LineItemInput struct {
	Name     string
	Quantity int
}

// CreateOrderInput carries a validated order submission into the
// lifecycle state machine.
type CreateOrderInput struct {
	StudentID   uint
	ServiceType string
	Items       []LineItemInput
	Notes       string

	// Printing payload
	PageCount *int
	Copies    *int
	ColorMode *string
	PaperSize *string
}

// RestoredItem is one inventory line put back by a cancellation.
type RestoredItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// CancelResult reports the outcome of a cancellation.
type CancelResult struct {
	PreviousStatus     string         `json:"previous_status"`
	NewStatus          string         `json:"new_status"`
	InventoryRestocked bool           `json:"inventory_restocked"`
	RestoredItems      []RestoredItem `json:"restored_items"`
}

// OrderService is the order lifecycle state machine. Every transition
// runs inside a single transaction: status change, queue allocation and
// inventory movement commit together or not at all. Notifications fire
// only after commit.
type OrderService struct {
	db       *gorm.DB
	clock    Clock
	hours    *HoursService
	queue    *QueueService
	waitTime *WaitTimeService
	settings *SettingsService
	notifier NotificationService
	logger   *zap.SugaredLogger
}

// NewOrderService creates the order lifecycle service
func NewOrderService(
	db *gorm.DB,
	clock Clock,
	hours *HoursService,
	queue *QueueService,
	waitTime *WaitTimeService,
	settings *SettingsService,
	notifier NotificationService,
	logger *zap.SugaredLogger,
) *OrderService {
	return &OrderService{
		db:       db,
		clock:    clock,
		hours:    hours,
		queue:    queue,
		waitTime: waitTime,
		settings: settings,
		notifier: notifier,
		logger:   logger,
	}
}

// Create runs the Create transition. When the co-op is open the order
// becomes pending with a queue number for today; when closed and
// pre-orders are enabled it becomes scheduled for the next business day;
// otherwise the submission is rejected with ErrServiceClosed.
func (s *OrderService) Create(input *CreateOrderInput) (*models.Order, *Estimate, error) {
	if err := validateCreateInput(input); err != nil {
		return nil, nil, err
	}

	status, err := s.hours.IsOpenNow()
	if err != nil {
		return nil, nil, err
	}

	openForOrders := status.Open
	if openForOrders {
		// Stop taking immediate orders within the configured cutoff of
		// closing time.
		cutoff := s.settings.OrderCutoffMinutes()
		if cutoff > 0 && status.MinutesUntilClosing != nil && *status.MinutesUntilClosing <= cutoff {
			openForOrders = false
		}
	}

	if openForOrders {
		return s.createImmediate(input)
	}

	if !s.settings.PreOrdersEnabled() {
		return nil, nil, ErrServiceClosed
	}
	return s.createScheduled(input)
}

func (s *OrderService) createImmediate(input *CreateOrderInput) (*models.Order, *Estimate, error) {
	now := s.clock.Now()
	today := DateString(now)

	var order *models.Order
	var estimate *Estimate

	err := s.queue.WithDateLock(today, func() error {
		return s.db.Transaction(func(tx *gorm.DB) error {
			if err := s.ensureNoActiveOrder(tx, input.StudentID, input.ServiceType); err != nil {
				return err
			}

			est, err := s.waitTime.Estimate(tx, today, input.ServiceType, len(input.Items), nil)
			if err != nil {
				return err
			}

			number, sequence, err := s.queue.NextQueueNumber(tx, today)
			if err != nil {
				return err
			}

			o := s.buildOrder(input, now)
			o.OrderType = models.OrderTypeImmediate
			o.Status = models.StatusPending
			o.QueueDate = today
			o.QueueNumber = &number
			o.QueueSequence = &sequence
			o.EstimatedMinutes = est.EstimatedMinutes

			if err := s.reserveInventory(tx, o); err != nil {
				return err
			}
			if err := tx.Create(o).Error; err != nil {
				return fmt.Errorf("failed to create order: %w", err)
			}

			order = o
			estimate = est
			return nil
		})
	})
	if err != nil {
		return nil, nil, err
	}

	s.notifier.SendOrderConfirmation(order)
	return order, estimate, nil
}

func (s *OrderService) createScheduled(input *CreateOrderInput) (*models.Order, *Estimate, error) {
	now := s.clock.Now()

	nextDay, err := s.hours.NextBusinessDay(now)
	if err != nil {
		return nil, nil, err
	}
	serviceDate := DateString(nextDay)

	var order *models.Order
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.ensureNoActiveOrder(tx, input.StudentID, input.ServiceType); err != nil {
			return err
		}

		o := s.buildOrder(input, now)
		o.OrderType = models.OrderTypePreOrder
		o.Status = models.StatusScheduled
		o.QueueDate = serviceDate
		o.ScheduledDate = &serviceDate

		if err := s.reserveInventory(tx, o); err != nil {
			return err
		}
		if err := tx.Create(o).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		order = o
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.notifier.SendOrderConfirmation(order)
	return order, &Estimate{}, nil
}

// CheckIn runs the scheduled-to-pending transition when the student
// arrives. Idempotent: repeated check-ins on an order that already holds
// a queue slot return the existing queue data instead of allocating a
// second number.
func (s *OrderService) CheckIn(orderID, studentID uint) (*models.Order, *Estimate, error) {
	order, err := s.findStudentOrder(orderID, studentID)
	if err != nil {
		return nil, nil, err
	}

	if models.IsActive(order.Status) {
		created := order.CreatedAt
		est, err := s.waitTime.Estimate(s.db, order.QueueDate, order.ServiceType, len(order.Items), &created)
		if err != nil {
			return nil, nil, err
		}
		return order, est, nil
	}

	if order.Status != models.StatusScheduled {
		return nil, nil, ErrInvalidState
	}

	status, err := s.hours.IsOpenNow()
	if err != nil {
		return nil, nil, err
	}
	if !status.Open {
		return nil, nil, ErrServiceClosed
	}

	now := s.clock.Now()
	today := DateString(now)

	var estimate *Estimate
	err = s.queue.WithDateLock(today, func() error {
		return s.db.Transaction(func(tx *gorm.DB) error {
			// Re-read inside the transaction in case of a concurrent
			// check-in on the same order.
			var fresh models.Order
			if err := tx.Preload("Items").First(&fresh, order.ID).Error; err != nil {
				return fmt.Errorf("failed to reload order: %w", err)
			}
			if fresh.Status != models.StatusScheduled {
				*order = fresh
				created := fresh.CreatedAt
				est, err := s.waitTime.Estimate(tx, fresh.QueueDate, fresh.ServiceType, len(fresh.Items), &created)
				if err != nil {
					return err
				}
				estimate = est
				return nil
			}

			est, err := s.waitTime.Estimate(tx, today, fresh.ServiceType, len(fresh.Items), nil)
			if err != nil {
				return err
			}

			number, sequence, err := s.queue.NextQueueNumber(tx, today)
			if err != nil {
				return err
			}

			// created_at moves to the arrival instant so queue-position
			// ordering reflects when the student actually showed up.
			updates := map[string]interface{}{
				"status":            models.StatusPending,
				"queue_date":        today,
				"queue_number":      number,
				"queue_sequence":    sequence,
				"estimated_minutes": est.EstimatedMinutes,
				"created_at":        now,
			}
			if err := tx.Model(&fresh).Updates(updates).Error; err != nil {
				return fmt.Errorf("failed to check in order: %w", err)
			}

			fresh.Status = models.StatusPending
			fresh.QueueDate = today
			fresh.QueueNumber = &number
			fresh.QueueSequence = &sequence
			fresh.EstimatedMinutes = est.EstimatedMinutes
			fresh.CreatedAt = now

			*order = fresh
			estimate = est
			return nil
		})
	})
	if err != nil {
		return nil, nil, err
	}

	if order.Status == models.StatusPending {
		s.notifier.SendStatusUpdate(order, models.StatusScheduled)
	}
	return order, estimate, nil
}

// Cancel runs the student-initiated cancellation. Only pending and
// scheduled orders can be cancelled; merchandise quantities go back into
// inventory in the same transaction.
func (s *OrderService) Cancel(orderID, studentID uint) (*CancelResult, error) {
	var result *CancelResult
	var order *models.Order

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var o models.Order
		if err := tx.Preload("Items").Where("student_id = ?", studentID).First(&o, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("failed to load order: %w", err)
		}

		if o.Status != models.StatusPending && o.Status != models.StatusScheduled {
			return &CannotCancelError{BlockingStatus: o.Status}
		}

		restored, err := s.restockInventory(tx, &o)
		if err != nil {
			return err
		}

		previous := o.Status
		now := s.clock.Now()
		updates := map[string]interface{}{
			"status":       models.StatusCancelled,
			"cancelled_at": now,
		}
		if err := tx.Model(&o).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to cancel order: %w", err)
		}
		o.Status = models.StatusCancelled
		o.CancelledAt = &now

		order = &o
		result = &CancelResult{
			PreviousStatus:     previous,
			NewStatus:          models.StatusCancelled,
			InventoryRestocked: len(restored) > 0,
			RestoredItems:      restored,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.SendStatusUpdate(order, result.PreviousStatus)
	return result, nil
}

// UpdateStatus runs a staff-driven transition. Only moves present in the
// transition table are accepted; skip-ahead jumps and edits to terminal
// orders are rejected.
func (s *OrderService) UpdateStatus(orderID uint, newStatus string, staffID uint) (*models.Order, error) {
	if !models.ValidStatus(newStatus) {
		return nil, ErrInvalidStatus
	}

	var order *models.Order
	var previous string

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var o models.Order
		if err := tx.Preload("Items").First(&o, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("failed to load order: %w", err)
		}

		if !models.CanTransition(o.Status, newStatus) {
			return ErrInvalidTransition
		}

		previous = o.Status
		now := s.clock.Now()
		updates := map[string]interface{}{"status": newStatus}

		switch newStatus {
		case models.StatusReady:
			updates["ready_at"] = now
			o.ReadyAt = &now
		case models.StatusCompleted:
			updates["completed_at"] = now
			o.CompletedAt = &now
		case models.StatusCancelled:
			updates["cancelled_at"] = now
			o.CancelledAt = &now
			// Staff cancellation before processing releases the
			// reservation just like a student cancellation.
			if previous == models.StatusPending || previous == models.StatusScheduled {
				if _, err := s.restockInventory(tx, &o); err != nil {
					return err
				}
			}
		}

		if err := tx.Model(&o).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}
		o.Status = newStatus

		order = &o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infow("staff status update", "order_id", order.ID, "from", previous, "to", newStatus, "staff_id", staffID)
	s.notifier.SendStatusUpdate(order, previous)
	return order, nil
}

// GetWaitTime refreshes the wait projection for one of the student's orders.
func (s *OrderService) GetWaitTime(orderID, studentID uint) (*WaitInfo, error) {
	order, err := s.findStudentOrder(orderID, studentID)
	if err != nil {
		return nil, err
	}
	return s.waitTime.Poll(order)
}

// QueueBoard returns today's non-cancelled orders in queue order, the
// read-only projection shown on the public board.
func (s *OrderService) QueueBoard() ([]models.Order, error) {
	today := DateString(s.clock.Now())

	var orders []models.Order
	err := s.db.
		Where("queue_date = ?", today).
		Where("status NOT IN ?", []string{models.StatusScheduled, models.StatusCancelled}).
		Order("queue_sequence ASC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load queue board: %w", err)
	}
	return orders, nil
}

func (s *OrderService) findStudentOrder(orderID, studentID uint) (*models.Order, error) {
	var order models.Order
	err := s.db.Preload("Items").Where("student_id = ?", studentID).First(&order, orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	return &order, nil
}

// ensureNoActiveOrder enforces the one-live-order-per-service rule.
// Scheduled orders are exempt: they do not yet hold a queue slot.
func (s *OrderService) ensureNoActiveOrder(tx *gorm.DB, studentID uint, serviceType string) error {
	var count int64
	err := tx.Model(&models.Order{}).
		Where("student_id = ?", studentID).
		Where("service_type = ?", serviceType).
		Where("status IN ?", []string{models.StatusPending, models.StatusProcessing, models.StatusReady}).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("failed to check active orders: %w", err)
	}
	if count > 0 {
		return ErrActiveOrderExists
	}
	return nil
}

func (s *OrderService) buildOrder(input *CreateOrderInput, now time.Time) *models.Order {
	order := &models.Order{
		CreatedAt:       now,
		ReferenceNumber: utils.GenerateReferenceNumber(now),
		ServiceType:     input.ServiceType,
		StudentID:       input.StudentID,
		Notes:           input.Notes,
		PageCount:       input.PageCount,
		Copies:          input.Copies,
		ColorMode:       input.ColorMode,
		PaperSize:       input.PaperSize,
	}
	for _, item := range input.Items {
		order.Items = append(order.Items, models.OrderLineItem{
			ItemName: item.Name,
			Quantity: item.Quantity,
		})
	}
	return order
}

// reserveInventory takes the ordered quantities out of stock. Items
// without a catalog row are allowed through untouched (custom requests);
// catalogued items must have enough on hand.
func (s *OrderService) reserveInventory(tx *gorm.DB, order *models.Order) error {
	if order.ServiceType != models.ServiceItems {
		return nil
	}

	for _, line := range order.Items {
		var item models.InventoryItem
		err := tx.Where("name = ?", line.ItemName).First(&item).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to load inventory for %q: %w", line.ItemName, err)
		}
		if item.Quantity < line.Quantity {
			return &InsufficientStockError{
				Item:      line.ItemName,
				Requested: line.Quantity,
				Available: item.Quantity,
			}
		}
		item.Quantity -= line.Quantity
		if err := tx.Save(&item).Error; err != nil {
			return fmt.Errorf("failed to reserve inventory for %q: %w", line.ItemName, err)
		}
	}
	return nil
}

// restockInventory reverses the reservation on cancel. Items that are no
// longer in the catalog are skipped with a warning rather than failing
// the cancellation.
func (s *OrderService) restockInventory(tx *gorm.DB, order *models.Order) ([]RestoredItem, error) {
	if order.ServiceType != models.ServiceItems {
		return nil, nil
	}

	var restored []RestoredItem
	for _, line := range order.Items {
		var item models.InventoryItem
		err := tx.Where("name = ?", line.ItemName).First(&item).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warnw("skipping restock for unknown inventory item",
				"order_id", order.ID, "item", line.ItemName, "quantity", line.Quantity)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load inventory for %q: %w", line.ItemName, err)
		}

		item.Quantity += line.Quantity
		if err := tx.Save(&item).Error; err != nil {
			return nil, fmt.Errorf("failed to restock %q: %w", line.ItemName, err)
		}
		restored = append(restored, RestoredItem{Name: line.ItemName, Quantity: line.Quantity})
	}
	return restored, nil
}

func validateCreateInput(input *CreateOrderInput) error {
	switch input.ServiceType {
	case models.ServiceItems:
		if len(input.Items) == 0 {
			return fmt.Errorf("%w: items order requires at least one line item", ErrValidation)
		}
		for _, item := range input.Items {
			if item.Name == "" || item.Quantity < 1 {
				return fmt.Errorf("%w: line item needs a name and a positive quantity", ErrValidation)
			}
		}
	case models.ServicePrinting:
		if input.PageCount == nil || *input.PageCount < 1 {
			return fmt.Errorf("%w: printing order requires a positive page count", ErrValidation)
		}
		if input.Copies == nil || *input.Copies < 1 {
			return fmt.Errorf("%w: printing order requires a positive copy count", ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unknown service type %q", ErrValidation, input.ServiceType)
	}
	return nil
}

var orderServiceInstance *OrderService

// InitOrderService initializes the order lifecycle service
func InitOrderService(
	db *gorm.DB,
	clock Clock,
	hours *HoursService,
	queue *QueueService,
	waitTime *WaitTimeService,
	settings *SettingsService,
	notifier NotificationService,
	logger *zap.SugaredLogger,
) *OrderService {
	orderServiceInstance = NewOrderService(db, clock, hours, queue, waitTime, settings, notifier, logger)
	return orderServiceInstance
}

// GetOrderService returns the initialized order lifecycle service instance
func GetOrderService() *OrderService {
	return orderServiceInstance
}

// SetOrderService sets the order lifecycle service instance (primarily for testing)
func SetOrderService(service *OrderService) {
	orderServiceInstance = service
}
