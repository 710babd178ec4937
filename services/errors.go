package services

import (
	"errors"
	"fmt"

	"github.com/campus-coop/coop-queue-api/models"
)

// State-conflict and environment errors returned by the order lifecycle.
// Controllers map these to specific user-facing responses; anything else
// is treated as an infrastructure error and surfaced generically.
var (
	// ErrActiveOrderExists means the student already has a live order of
	// the same service type.
	ErrActiveOrderExists = errors.New("an active order of this service type already exists")

	// ErrServiceClosed means immediate orders cannot be created right now
	// and pre-orders are disabled.
	ErrServiceClosed = errors.New("the co-op store is currently closed")

	// ErrNoBusinessDayFound means no open business day exists within the
	// scan window. Callers must treat this as a hard failure.
	ErrNoBusinessDayFound = errors.New("no business day found within the next 14 days")

	// ErrOrderNotFound means the order does not exist or is not visible
	// to the caller.
	ErrOrderNotFound = errors.New("order not found")

	// ErrInvalidTransition means the requested status change is not in
	// the transition table.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidStatus means the requested status value is not one of the
	// known statuses.
	ErrInvalidStatus = errors.New("invalid status value")

	// ErrQueueAlreadyReset means the daily queue has already been reset
	// once today.
	ErrQueueAlreadyReset = errors.New("queue has already been reset today")

	// ErrInvalidState means the order is in a state the requested
	// operation does not apply to (e.g. checking in a completed order).
	ErrInvalidState = errors.New("order is not in a valid state for this operation")

	// ErrValidation means the submitted payload is malformed. Rejected
	// before any persistence happens.
	ErrValidation = errors.New("invalid order payload")
)

// InsufficientStockError is returned when an items order asks for more
// of a catalogued item than is on hand.
type InsufficientStockError struct {
	Item      string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: requested %d, available %d", e.Item, e.Requested, e.Available)
}

// CannotCancelError is returned when an order is past the point of
// cancellation. BlockingStatus distinguishes why: already processing,
// already ready, already completed, or already cancelled.
type CannotCancelError struct {
	BlockingStatus string
}

func (e *CannotCancelError) Error() string {
	switch e.BlockingStatus {
	case models.StatusProcessing:
		return "order cannot be cancelled: it is already being processed"
	case models.StatusReady:
		return "order cannot be cancelled: it is already ready for pickup"
	case models.StatusCompleted:
		return "order cannot be cancelled: it is already completed"
	case models.StatusCancelled:
		return "order is already cancelled"
	}
	return fmt.Sprintf("order cannot be cancelled from status %q", e.BlockingStatus)
}
