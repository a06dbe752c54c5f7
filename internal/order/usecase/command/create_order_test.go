package command

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/denly1/motoshop/internal/audit"
	auditdomain "github.com/denly1/motoshop/internal/audit/domain"
	auditrepo "github.com/denly1/motoshop/internal/audit/repository"
	invdomain "github.com/denly1/motoshop/internal/inventory/domain"
	invrepo "github.com/denly1/motoshop/internal/inventory/repository"
	invcommand "github.com/denly1/motoshop/internal/inventory/usecase/command"
	"github.com/denly1/motoshop/internal/order/domain"
	"github.com/denly1/motoshop/internal/order/repository"
	productdomain "github.com/denly1/motoshop/internal/product/domain"
	productrepo "github.com/denly1/motoshop/internal/product/repository"
)

type orderTestEnv struct {
	db       *gorm.DB
	orders   domain.OrderRepository
	products productdomain.ProductRepository
	ledger   invdomain.StockLedger
	recorder *audit.Recorder

	create  *CreateOrderHandler
	reserve *invcommand.ReserveStockHandler
	release *invcommand.ReleaseStockHandler
	commit  *invcommand.CommitStockHandler
}

func newOrderTestEnv(t *testing.T) *orderTestEnv {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "orders.db") + "?_busy_timeout=10000&_txlock=immediate"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&productdomain.Product{},
		&invdomain.InventoryRecord{},
		&invdomain.StockReservation{},
		&domain.Order{},
		&domain.OrderItem{},
		&auditdomain.Record{},
	))

	env := &orderTestEnv{
		db:       db,
		orders:   repository.NewGormOrderRepository(db),
		products: productrepo.NewGormProductRepository(db),
		ledger:   invrepo.NewGormStockLedger(db),
		recorder: audit.NewRecorder(auditrepo.NewGormAuditRepository(db)),
	}
	env.reserve = invcommand.NewReserveStockHandler(db, env.ledger, env.recorder)
	env.release = invcommand.NewReleaseStockHandler(db, env.ledger, env.recorder)
	env.commit = invcommand.NewCommitStockHandler(db, env.ledger, env.recorder)
	env.create = NewCreateOrderHandler(db, env.orders, env.products, env.reserve, env.recorder)
	return env
}

func (e *orderTestEnv) seedProduct(t *testing.T, id uint, price string, stock int, active bool) {
	t.Helper()
	require.NoError(t, e.products.Create(&productdomain.Product{
		ID:       id,
		Name:     "product",
		Price:    decimal.RequireFromString(price),
		IsActive: active,
	}))
	require.NoError(t, e.ledger.Create(&invdomain.InventoryRecord{
		ProductID: id,
		Quantity:  stock,
	}))
}

func (e *orderTestEnv) stock(t *testing.T, productID uint) *invdomain.InventoryRecord {
	t.Helper()
	rec, err := e.ledger.FindByProductID(productID)
	require.NoError(t, err)
	return rec
}

func TestCheckoutSnapshotsPricesAndReservesStock(t *testing.T) {
	env := newOrderTestEnv(t)
	env.seedProduct(t, 1, "19.99", 10, true)
	env.seedProduct(t, 2, "5.50", 10, true)

	order, err := env.create.Handle(context.Background(), CreateOrderCommand{
		UserID: 1,
		Items: []CheckoutItem{
			{ProductID: 1, Quantity: 2},
			{ProductID: 2, Quantity: 1},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, order)

	assert.Equal(t, domain.StatusPending, order.Status)
	assert.Equal(t, domain.PaymentPending, order.PaymentStatus)
	assert.NotEmpty(t, order.OrderNumber)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("45.48")),
		"total was %s", order.TotalAmount)

	require.Len(t, order.Items, 2)
	assert.True(t, order.Items[0].UnitPrice.Equal(decimal.RequireFromString("19.99")))

	assert.Equal(t, 2, env.stock(t, 1).ReservedQuantity)
	assert.Equal(t, 1, env.stock(t, 2).ReservedQuantity)

	// Later price changes must not touch the stored snapshot.
	product, err := env.products.FindByID(1)
	require.NoError(t, err)
	product.Price = decimal.RequireFromString("99.99")
	require.NoError(t, env.products.Update(product))

	stored, err := env.orders.FindByID(order.ID)
	require.NoError(t, err)
	assert.True(t, stored.Items[0].UnitPrice.Equal(decimal.RequireFromString("19.99")))
}

func TestCheckoutRollsBackOnInsufficientStock(t *testing.T) {
	env := newOrderTestEnv(t)
	env.seedProduct(t, 1, "10.00", 10, true)
	env.seedProduct(t, 2, "10.00", 1, true)

	_, err := env.create.Handle(context.Background(), CreateOrderCommand{
		UserID: 1,
		Items: []CheckoutItem{
			{ProductID: 1, Quantity: 2},
			{ProductID: 2, Quantity: 5},
		},
	})

	var insufficient *invdomain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, uint(2), insufficient.ProductID)

	// No order, no items, no reservations survive the rollback.
	orders, err := env.orders.FindAll(10, 0)
	require.NoError(t, err)
	assert.Empty(t, orders)

	var itemCount int64
	require.NoError(t, env.db.Model(&domain.OrderItem{}).Count(&itemCount).Error)
	assert.Zero(t, itemCount)

	assert.Equal(t, 0, env.stock(t, 1).ReservedQuantity)
	assert.Equal(t, 0, env.stock(t, 2).ReservedQuantity)
}

func TestCheckoutRejectsInactiveProduct(t *testing.T) {
	env := newOrderTestEnv(t)
	env.seedProduct(t, 1, "10.00", 10, false)

	_, err := env.create.Handle(context.Background(), CreateOrderCommand{
		UserID: 1,
		Items:  []CheckoutItem{{ProductID: 1, Quantity: 1}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not available")
	assert.Equal(t, 0, env.stock(t, 1).ReservedQuantity)
}

func TestCheckoutWritesOrderAuditRecord(t *testing.T) {
	env := newOrderTestEnv(t)
	env.seedProduct(t, 1, "10.00", 10, true)

	actor := uint(3)
	order, err := env.create.Handle(context.Background(), CreateOrderCommand{
		UserID:      3,
		ActorUserID: &actor,
		Items:       []CheckoutItem{{ProductID: 1, Quantity: 1}},
	})
	require.NoError(t, err)

	var records []auditdomain.Record
	require.NoError(t, env.db.
		Where("table_name = ? AND record_id = ?", auditdomain.EntityOrder, order.ID).
		Find(&records).Error)
	require.Len(t, records, 1)
	assert.Equal(t, auditdomain.ActionInsert, records[0].Action)
	assert.Nil(t, records[0].OldValues)
	require.NotNil(t, records[0].NewValues)
	assert.Contains(t, *records[0].NewValues, order.OrderNumber)
}
