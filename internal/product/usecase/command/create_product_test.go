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
	"github.com/denly1/motoshop/internal/product/domain"
	"github.com/denly1/motoshop/internal/product/repository"
)

type productTestEnv struct {
	db       *gorm.DB
	repo     domain.ProductRepository
	ledger   invdomain.StockLedger
	recorder *audit.Recorder
}

func newProductTestEnv(t *testing.T) *productTestEnv {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "products.db") + "?_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Product{},
		&invdomain.InventoryRecord{},
		&invdomain.StockReservation{},
		&auditdomain.Record{},
	))
	return &productTestEnv{
		db:       db,
		repo:     repository.NewGormProductRepository(db),
		ledger:   invrepo.NewGormStockLedger(db),
		recorder: audit.NewRecorder(auditrepo.NewGormAuditRepository(db)),
	}
}

func (e *productTestEnv) createHandler() *CreateProductHandler {
	inventory := invcommand.NewCreateInventoryHandler(e.db, e.ledger, e.recorder)
	return NewCreateProductHandler(e.db, e.repo, inventory, e.recorder)
}

func TestCreateProductOpensInventoryRow(t *testing.T) {
	env := newProductTestEnv(t)

	product, err := env.createHandler().Handle(context.Background(), CreateProductCommand{
		Name:         "Shoei RF-1400",
		Price:        decimal.RequireFromString("499.00"),
		SKU:          "HLM-1400",
		InitialStock: 25,
	})
	require.NoError(t, err)

	rec, err := env.ledger.FindByProductID(product.ID)
	require.NoError(t, err)
	assert.Equal(t, 25, rec.Quantity)
	assert.Equal(t, 0, rec.ReservedQuantity)

	// One insert image per table.
	var actions []string
	require.NoError(t, env.db.Model(&auditdomain.Record{}).
		Order("table_name").Pluck("table_name", &actions).Error)
	assert.Equal(t, []string{auditdomain.EntityInventory, auditdomain.EntityProduct}, actions)
}

func TestDeleteProductRefusedWhileStockReserved(t *testing.T) {
	env := newProductTestEnv(t)

	product, err := env.createHandler().Handle(context.Background(), CreateProductCommand{
		Name:         "Shoei RF-1400",
		Price:        decimal.RequireFromString("499.00"),
		InitialStock: 10,
	})
	require.NoError(t, err)
	require.NoError(t, env.ledger.Adjust(product.ID, 0, 2))

	err = NewDeleteProductHandler(env.db, env.repo, env.ledger, env.recorder).
		Handle(context.Background(), DeleteProductCommand{ProductID: product.ID})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reserved stock")

	_, err = env.repo.FindByID(product.ID)
	assert.NoError(t, err)
}

func TestDeleteProductRemovesInventoryRow(t *testing.T) {
	env := newProductTestEnv(t)

	product, err := env.createHandler().Handle(context.Background(), CreateProductCommand{
		Name:         "Shoei RF-1400",
		Price:        decimal.RequireFromString("499.00"),
		InitialStock: 10,
	})
	require.NoError(t, err)

	require.NoError(t, NewDeleteProductHandler(env.db, env.repo, env.ledger, env.recorder).
		Handle(context.Background(), DeleteProductCommand{ProductID: product.ID}))

	_, err = env.repo.FindByID(product.ID)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
	_, err = env.ledger.FindByProductID(product.ID)
	assert.ErrorIs(t, err, invdomain.ErrNotFound)
}

func TestDeleteProductWithoutInventoryRow(t *testing.T) {
	env := newProductTestEnv(t)
	require.NoError(t, env.repo.Create(&domain.Product{
		ID:    7,
		Name:  "orphan",
		Price: decimal.RequireFromString("1.00"),
	}))

	require.NoError(t, NewDeleteProductHandler(env.db, env.repo, env.ledger, env.recorder).
		Handle(context.Background(), DeleteProductCommand{ProductID: 7}))

	_, err := env.repo.FindByID(7)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}
