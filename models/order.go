package models

import (
	"time"

	"gorm.io/gorm"
)

// Order statuses. The set is closed; transitions are validated against
// the table in CanTransition.
const (
	StatusScheduled  = "scheduled"
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusReady      = "ready"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// Order types.
const (
	OrderTypeImmediate = "immediate"
	OrderTypePreOrder  = "pre-order"
)

// Service types. Each one is tracked independently for the
// one-active-order-per-service rule.
const (
	ServiceItems    = "items"
	ServicePrinting = "printing"
)

// Order represents a co-op store order (merchandise or printing)
type Order struct {
	ID              uint    `gorm:"primaryKey" json:"id"`
	ReferenceNumber string  `gorm:"uniqueIndex;not null" json:"reference_number"` // human-shareable, assigned once, never reused
	QueueNumber     *string `json:"queue_number"`                                 // "Q-<n>", nil while scheduled
	QueueSequence   *int    `json:"-"`                                            // numeric part of QueueNumber, used for board ordering
	OrderType       string  `gorm:"not null" json:"order_type"`                   // immediate, pre-order
	ServiceType     string  `gorm:"not null;index" json:"service_type"`           // items, printing
	Status          string  `gorm:"not null;default:'pending';index" json:"status"`

	// QueueDate is the business day the order is (or will be) served,
	// formatted YYYY-MM-DD. Queue numbers are only unique within one
	// queue date; the admin daily reset is allowed to restart numbering,
	// so uniqueness is enforced by the counter rather than an index.
	QueueDate     string  `gorm:"not null;index" json:"queue_date"`
	ScheduledDate *string `json:"scheduled_date"` // set only for pre-orders

	EstimatedMinutes int    `json:"estimated_minutes"`
	Notes            string `json:"notes,omitempty"`

	// Printing payload, opaque to the queue core beyond wait-time weighting.
	PageCount *int    `json:"page_count,omitempty"`
	Copies    *int    `json:"copies,omitempty"`
	ColorMode *string `json:"color_mode,omitempty"` // "bw" or "color"
	PaperSize *string `json:"paper_size,omitempty"`

	StudentID uint            `gorm:"not null;index" json:"student_id"`
	Student   Student         `gorm:"foreignKey:StudentID" json:"student"`
	Items     []OrderLineItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`

	ReadyAt     *time.Time `json:"ready_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// OrderLineItem is one item line of a merchandise order.
type OrderLineItem struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	OrderID  uint   `gorm:"not null;index" json:"order_id"`
	ItemName string `gorm:"not null" json:"item_name"`
	Quantity int    `gorm:"not null;check:quantity > 0" json:"quantity"`
}

// TableName specifies the table name for the OrderLineItem model
func (OrderLineItem) TableName() string {
	return "order_line_items"
}

// transitions is the closed set of legal status moves. Skip-ahead
// updates (e.g. pending straight to completed) are rejected.
var transitions = map[string][]string{
	StatusScheduled:  {StatusPending, StatusCancelled},
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusReady, StatusCancelled},
	StatusReady:      {StatusCompleted, StatusCancelled},
	StatusCompleted:  {},
	StatusCancelled:  {},
}

// ValidStatus reports whether s is one of the known order statuses.
func ValidStatus(s string) bool {
	_, ok := transitions[s]
	return ok
}

// CanTransition reports whether an order may move from one status to
// another. Terminal statuses have no outgoing transitions.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status admits no further transitions.
func IsTerminal(status string) bool {
	return status == StatusCompleted || status == StatusCancelled
}

// IsActive reports whether the status holds a live queue slot. Scheduled
// orders are exempt: they have not been checked in yet.
func IsActive(status string) bool {
	switch status {
	case StatusPending, StatusProcessing, StatusReady:
		return true
	}
	return false
}
