//go:build wireinject
// +build wireinject

package order

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/denly1/motoshop/internal/audit"
	invdomain "github.com/denly1/motoshop/internal/inventory/domain"
	invcommand "github.com/denly1/motoshop/internal/inventory/usecase/command"
	httpDelivery "github.com/denly1/motoshop/internal/order/delivery/http"
	"github.com/denly1/motoshop/internal/order/domain"
	"github.com/denly1/motoshop/internal/order/repository"
	"github.com/denly1/motoshop/internal/order/usecase/command"
	productdomain "github.com/denly1/motoshop/internal/product/domain"
)

// ProvideOrderRepository provides the order repository
func ProvideOrderRepository(db *gorm.DB) domain.OrderRepository {
	return repository.NewGormOrderRepository(db)
}

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideOrderRepository,
)

// InitializeHTTPHandler initializes HTTP handler with all dependencies
func InitializeHTTPHandler(
	db *gorm.DB,
	products productdomain.ProductRepository,
	ledger invdomain.StockLedger,
	recorder *audit.Recorder,
	publisher command.StatusPublisher,
) (*httpDelivery.OrderHandler, error) {
	wire.Build(
		RepositorySet,
		httpDelivery.NewOrderHandler,
	)
	return nil, nil
}

// InitializeMarkPaidHandler initializes the payment confirmation handler
// consumed by the order-paid event stream.
func InitializeMarkPaidHandler(
	db *gorm.DB,
	ledger invdomain.StockLedger,
	recorder *audit.Recorder,
	publisher command.StatusPublisher,
) (*command.MarkOrderPaidHandler, error) {
	wire.Build(
		RepositorySet,
		invcommand.NewReleaseStockHandler,
		invcommand.NewCommitStockHandler,
		command.NewTransitionOrderHandler,
		command.NewMarkOrderPaidHandler,
	)
	return nil, nil
}
