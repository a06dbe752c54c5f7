package domain

import (
	"time"

	"gorm.io/gorm"
)

// InventoryRecord is the authoritative stock row for one product.
// reserved_quantity counts units held for open orders but not yet removed
// from stock; the row must satisfy 0 <= reserved_quantity <= quantity at
// every observable point.
type InventoryRecord struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	ProductID        uint      `json:"product_id" gorm:"not null;uniqueIndex"`
	Quantity         int       `json:"quantity" gorm:"not null;default:0"`
	ReservedQuantity int       `json:"reserved_quantity" gorm:"not null;default:0"`
	Warehouse        string    `json:"warehouse" gorm:"default:'main'"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TableName specifies the table name
func (InventoryRecord) TableName() string {
	return "inventory"
}

// Available returns the stock that can still be reserved.
func (r *InventoryRecord) Available() int {
	return r.Quantity - r.ReservedQuantity
}

// ReservationStatus is the lifecycle state of a stock reservation.
type ReservationStatus string

const (
	ReservationActive    ReservationStatus = "active"
	ReservationReleased  ReservationStatus = "released"
	ReservationCommitted ReservationStatus = "committed"
)

// StockReservation records one reserved line item of an order. Release and
// commit are idempotent because they act only on rows still in the active
// state.
type StockReservation struct {
	ID        uint              `json:"id" gorm:"primaryKey"`
	OrderID   uint              `json:"order_id" gorm:"not null;index:idx_reservation_order"`
	ProductID uint              `json:"product_id" gorm:"not null;index"`
	Quantity  int               `json:"quantity" gorm:"not null"`
	Status    ReservationStatus `json:"status" gorm:"type:varchar(16);not null;default:'active';index:idx_reservation_order"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// TableName specifies the table name
func (StockReservation) TableName() string {
	return "stock_reservations"
}

// StockLedger defines the contract for inventory data access. All
// mutations on inventory rows go through Adjust; multi-row operations lock
// their rows through LockByProductIDs first.
type StockLedger interface {
	Create(record *InventoryRecord) error
	FindByProductID(productID uint) (*InventoryRecord, error)
	FindAll(limit, offset int) ([]InventoryRecord, error)
	GetAvailable(productID uint) (int, error)
	Adjust(productID uint, deltaQuantity, deltaReserved int) error
	DeleteByProductID(productID uint) error

	// LockByProductIDs takes FOR UPDATE locks on the given rows in
	// ascending product-id order and returns them in that order.
	LockByProductIDs(productIDs []uint) ([]InventoryRecord, error)

	CreateReservations(reservations []StockReservation) error
	ActiveReservations(orderID uint) ([]StockReservation, error)
	CloseReservations(orderID uint, to ReservationStatus) error

	WithTx(tx *gorm.DB) StockLedger
}
