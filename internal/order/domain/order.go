package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Status is an order's lifecycle state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// Payment statuses carried on the order row. Payment processing itself
// happens outside this system.
const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentFailed  = "failed"
)

// allowedTransitions is the full transition relation: the linear
// fulfillment path, plus cancellation from any non-terminal state.
var allowedTransitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered, StatusCancelled},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

// ValidStatus reports whether s names a known order status.
func ValidStatus(s Status) bool {
	_, ok := allowedTransitions[s]
	return ok
}

// CanTransition reports whether from -> to is a legal transition.
func CanTransition(from, to Status) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether s has no outgoing transitions.
func IsTerminal(s Status) bool {
	return len(allowedTransitions[s]) == 0
}

// InvalidTransitionError reports a rejected status change. The order is
// left unchanged when it is returned.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid order transition from %s to %s", e.From, e.To)
}

// Order represents the order entity. Status is mutated only through the
// transition handler's compare-and-swap; everything else is set at
// checkout.
type Order struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	OrderNumber   string          `json:"order_number" gorm:"uniqueIndex;not null"`
	UserID        uint            `json:"user_id" gorm:"not null;index"`
	Status        Status          `json:"status" gorm:"type:varchar(16);not null;default:'pending';index"`
	PaymentStatus string          `json:"payment_status" gorm:"type:varchar(16);not null;default:'pending'"`
	TotalAmount   decimal.Decimal `json:"total_amount" gorm:"type:numeric(12,2);not null"`
	Items         []OrderItem     `json:"items" gorm:"foreignKey:OrderID"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// TableName specifies the table name
func (Order) TableName() string {
	return "orders"
}

// OrderItem is one line of an order. The unit price is a snapshot taken
// at order time; rows are immutable once created.
type OrderItem struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	OrderID   uint            `json:"order_id" gorm:"not null;index"`
	ProductID uint            `json:"product_id" gorm:"not null;index"`
	Quantity  int             `json:"quantity" gorm:"not null"`
	UnitPrice decimal.Decimal `json:"price" gorm:"column:price;type:numeric(12,2);not null"`
	CreatedAt time.Time       `json:"created_at"`
}

// TableName specifies the table name
func (OrderItem) TableName() string {
	return "order_items"
}

// OrderRepository defines the contract for order data access
type OrderRepository interface {
	Create(order *Order) error
	FindByID(id uint) (*Order, error)
	FindByUserID(userID uint, limit, offset int) ([]Order, error)
	FindAll(limit, offset int) ([]Order, error)

	// UpdateStatusCAS writes the new status only if the stored status
	// still equals from, and reports whether the swap took effect.
	UpdateStatusCAS(id uint, from, to Status) (bool, error)

	UpdatePaymentStatus(id uint, status string) error

	WithTx(tx *gorm.DB) OrderRepository
}
