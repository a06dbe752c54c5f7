//go:build wireinject
// +build wireinject

package inventory

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/denly1/motoshop/internal/audit"
	httpDelivery "github.com/denly1/motoshop/internal/inventory/delivery/http"
	"github.com/denly1/motoshop/internal/inventory/domain"
	"github.com/denly1/motoshop/internal/inventory/repository"
)

// ProvideStockLedger provides the stock ledger with tracing
func ProvideStockLedger(db *gorm.DB) domain.StockLedger {
	return repository.NewGormStockLedgerWithTracing(db)
}

// Wire sets
var LedgerSet = wire.NewSet(
	ProvideStockLedger,
)

// InitializeHTTPHandler initializes HTTP handler with all dependencies
func InitializeHTTPHandler(db *gorm.DB, recorder *audit.Recorder) (*httpDelivery.InventoryHandler, error) {
	wire.Build(
		LedgerSet,
		httpDelivery.NewInventoryHandler,
	)
	return nil, nil
}
