package repository

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/denly1/motoshop/internal/inventory/domain"
	"github.com/denly1/motoshop/pkg/timestamp"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "inventory.db") + "?_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.InventoryRecord{}, &domain.StockReservation{}))
	return db
}

func seedRecord(t *testing.T, ledger *GormStockLedger, productID uint, quantity, reserved int) {
	t.Helper()
	require.NoError(t, ledger.Create(&domain.InventoryRecord{
		ProductID:        productID,
		Quantity:         quantity,
		ReservedQuantity: reserved,
	}))
}

func TestAdjustAppliesBothDeltas(t *testing.T) {
	ledger := NewGormStockLedger(newTestDB(t))
	seedRecord(t, ledger, 1, 10, 2)

	require.NoError(t, ledger.Adjust(1, 5, 3))

	rec, err := ledger.FindByProductID(1)
	require.NoError(t, err)
	assert.Equal(t, 15, rec.Quantity)
	assert.Equal(t, 5, rec.ReservedQuantity)
	assert.Equal(t, 10, rec.Available())
}

func TestAdjustRejectsNegativeQuantity(t *testing.T) {
	ledger := NewGormStockLedger(newTestDB(t))
	seedRecord(t, ledger, 1, 3, 0)

	err := ledger.Adjust(1, -4, 0)
	assert.ErrorIs(t, err, domain.ErrInvariantViolation)

	rec, findErr := ledger.FindByProductID(1)
	require.NoError(t, findErr)
	assert.Equal(t, 3, rec.Quantity)
}

func TestAdjustRejectsOverReservation(t *testing.T) {
	ledger := NewGormStockLedger(newTestDB(t))
	seedRecord(t, ledger, 1, 10, 8)

	err := ledger.Adjust(1, 0, 3)
	assert.ErrorIs(t, err, domain.ErrInvariantViolation)

	rec, findErr := ledger.FindByProductID(1)
	require.NoError(t, findErr)
	assert.Equal(t, 8, rec.ReservedQuantity)
}

func TestAdjustRejectsNegativeReserved(t *testing.T) {
	ledger := NewGormStockLedger(newTestDB(t))
	seedRecord(t, ledger, 1, 10, 1)

	err := ledger.Adjust(1, 0, -2)
	assert.ErrorIs(t, err, domain.ErrInvariantViolation)
}

func TestAdjustUnknownProduct(t *testing.T) {
	ledger := NewGormStockLedger(newTestDB(t))

	err := ledger.Adjust(42, 1, 0)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdjustStampsUpdatedAt(t *testing.T) {
	fixed := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	clock := timestamp.NewMaintainerWithClock(func() time.Time { return fixed })
	ledger := NewGormStockLedgerWithClock(newTestDB(t), clock)
	seedRecord(t, ledger, 1, 10, 0)

	require.NoError(t, ledger.Adjust(1, 1, 0))

	rec, err := ledger.FindByProductID(1)
	require.NoError(t, err)
	assert.True(t, rec.UpdatedAt.Equal(fixed))
}

func TestLockByProductIDsReturnsAscendingOrder(t *testing.T) {
	ledger := NewGormStockLedger(newTestDB(t))
	seedRecord(t, ledger, 7, 1, 0)
	seedRecord(t, ledger, 3, 1, 0)
	seedRecord(t, ledger, 5, 1, 0)

	locked, err := ledger.LockByProductIDs([]uint{7, 3, 5})
	require.NoError(t, err)
	require.Len(t, locked, 3)
	assert.Equal(t, uint(3), locked[0].ProductID)
	assert.Equal(t, uint(5), locked[1].ProductID)
	assert.Equal(t, uint(7), locked[2].ProductID)
}

func TestCloseReservationsOnlyTouchesActive(t *testing.T) {
	ledger := NewGormStockLedger(newTestDB(t))
	require.NoError(t, ledger.CreateReservations([]domain.StockReservation{
		{OrderID: 1, ProductID: 1, Quantity: 2, Status: domain.ReservationActive},
		{OrderID: 1, ProductID: 2, Quantity: 1, Status: domain.ReservationCommitted},
		{OrderID: 2, ProductID: 1, Quantity: 4, Status: domain.ReservationActive},
	}))

	require.NoError(t, ledger.CloseReservations(1, domain.ReservationReleased))

	active, err := ledger.ActiveReservations(1)
	require.NoError(t, err)
	assert.Empty(t, active)

	otherOrder, err := ledger.ActiveReservations(2)
	require.NoError(t, err)
	assert.Len(t, otherOrder, 1)

	var released []domain.StockReservation
	require.NoError(t, ledger.db.Where("order_id = ? AND status = ?", 1, domain.ReservationReleased).Find(&released).Error)
	assert.Len(t, released, 1)
	assert.Equal(t, uint(1), released[0].ProductID)
}

func TestDeleteByProductID(t *testing.T) {
	ledger := NewGormStockLedger(newTestDB(t))
	seedRecord(t, ledger, 1, 5, 0)

	require.NoError(t, ledger.DeleteByProductID(1))

	_, err := ledger.FindByProductID(1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
