package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/denly1/motoshop/internal/inventory/domain"
	"github.com/denly1/motoshop/pkg/timestamp"
)

// GormStockLedger implements StockLedger using GORM. The handle it wraps
// may be a transaction; WithTx rebinds the ledger to one.
type GormStockLedger struct {
	db    *gorm.DB
	clock *timestamp.Maintainer
}

func NewGormStockLedger(db *gorm.DB) *GormStockLedger {
	return &GormStockLedger{db: db, clock: timestamp.NewMaintainer()}
}

// NewGormStockLedgerWithClock binds the ledger to an explicit modification
// clock. Used by tests.
func NewGormStockLedgerWithClock(db *gorm.DB, clock *timestamp.Maintainer) *GormStockLedger {
	return &GormStockLedger{db: db, clock: clock}
}

func (r *GormStockLedger) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.InventoryRecord{}, &domain.StockReservation{})
}

func (r *GormStockLedger) WithTx(tx *gorm.DB) domain.StockLedger {
	return &GormStockLedger{db: tx, clock: r.clock}
}

func (r *GormStockLedger) Create(record *domain.InventoryRecord) error {
	if err := r.db.Create(record).Error; err != nil {
		return fmt.Errorf("failed to create inventory record: %w", err)
	}
	return nil
}

func (r *GormStockLedger) FindByProductID(productID uint) (*domain.InventoryRecord, error) {
	var record domain.InventoryRecord
	if err := r.db.Where("product_id = ?", productID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find inventory record: %w", err)
	}
	return &record, nil
}

func (r *GormStockLedger) FindAll(limit, offset int) ([]domain.InventoryRecord, error) {
	var records []domain.InventoryRecord
	err := r.db.Limit(limit).Offset(offset).
		Order("product_id ASC").
		Find(&records).Error
	return records, err
}

// GetAvailable returns quantity - reserved_quantity for one product. Any
// decision built on the result must read it inside the same transaction.
func (r *GormStockLedger) GetAvailable(productID uint) (int, error) {
	record, err := r.FindByProductID(productID)
	if err != nil {
		return 0, err
	}
	return record.Available(), nil
}

// Adjust applies both deltas to one row in a single guarded UPDATE. The
// WHERE clause re-checks the stock invariant against current column
// values, so a write that would break it simply matches no row.
func (r *GormStockLedger) Adjust(productID uint, deltaQuantity, deltaReserved int) error {
	res := r.db.Model(&domain.InventoryRecord{}).
		Where("product_id = ?", productID).
		Where("quantity + ? >= 0", deltaQuantity).
		Where("reserved_quantity + ? >= 0", deltaReserved).
		Where("reserved_quantity + ? <= quantity + ?", deltaReserved, deltaQuantity).
		Updates(map[string]interface{}{
			"quantity":          gorm.Expr("quantity + ?", deltaQuantity),
			"reserved_quantity": gorm.Expr("reserved_quantity + ?", deltaReserved),
			"updated_at":        r.clock.Now(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to adjust inventory: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := r.FindByProductID(productID); err != nil {
			return err
		}
		return fmt.Errorf("%w: product %d, delta quantity %d, delta reserved %d",
			domain.ErrInvariantViolation, productID, deltaQuantity, deltaReserved)
	}
	return nil
}

func (r *GormStockLedger) DeleteByProductID(productID uint) error {
	return r.db.Where("product_id = ?", productID).
		Delete(&domain.InventoryRecord{}).Error
}

// LockByProductIDs reads inventory rows under FOR UPDATE, always in
// ascending product id order so concurrent multi-row reservations cannot
// deadlock each other. SQLite has no row locks; writes there serialize on
// the database file instead.
func (r *GormStockLedger) LockByProductIDs(productIDs []uint) ([]domain.InventoryRecord, error) {
	q := r.db
	if q.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var records []domain.InventoryRecord
	err := q.Where("product_id IN ?", productIDs).
		Order("product_id ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to lock inventory rows: %w", err)
	}
	return records, nil
}

func (r *GormStockLedger) CreateReservations(reservations []domain.StockReservation) error {
	if len(reservations) == 0 {
		return nil
	}
	if err := r.db.Create(&reservations).Error; err != nil {
		return fmt.Errorf("failed to create stock reservations: %w", err)
	}
	return nil
}

func (r *GormStockLedger) ActiveReservations(orderID uint) ([]domain.StockReservation, error) {
	var reservations []domain.StockReservation
	err := r.db.Where("order_id = ? AND status = ?", orderID, domain.ReservationActive).
		Order("product_id ASC").
		Find(&reservations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load reservations: %w", err)
	}
	return reservations, nil
}

func (r *GormStockLedger) CloseReservations(orderID uint, to domain.ReservationStatus) error {
	err := r.db.Model(&domain.StockReservation{}).
		Where("order_id = ? AND status = ?", orderID, domain.ReservationActive).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": r.clock.Now(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to close reservations: %w", err)
	}
	return nil
}
