//go:build wireinject
// +build wireinject

package product

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/denly1/motoshop/internal/audit"
	invdomain "github.com/denly1/motoshop/internal/inventory/domain"
	httpDelivery "github.com/denly1/motoshop/internal/product/delivery/http"
	"github.com/denly1/motoshop/internal/product/domain"
	"github.com/denly1/motoshop/internal/product/repository"
)

// ProvideProductRepository provides the product repository
func ProvideProductRepository(db *gorm.DB) domain.ProductRepository {
	return repository.NewGormProductRepository(db)
}

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideProductRepository,
)

// InitializeHTTPHandler initializes HTTP handler with all dependencies
func InitializeHTTPHandler(db *gorm.DB, ledger invdomain.StockLedger, recorder *audit.Recorder) (*httpDelivery.ProductHandler, error) {
	wire.Build(
		RepositorySet,
		httpDelivery.NewProductHandler,
	)
	return nil, nil
}
