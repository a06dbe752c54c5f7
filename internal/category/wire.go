//go:build wireinject
// +build wireinject

package category

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/denly1/motoshop/internal/audit"
	httpDelivery "github.com/denly1/motoshop/internal/category/delivery/http"
	"github.com/denly1/motoshop/internal/category/domain"
	"github.com/denly1/motoshop/internal/category/repository"
)

// ProvideCategoryRepository provides the category repository
func ProvideCategoryRepository(db *gorm.DB) domain.CategoryRepository {
	return repository.NewGormCategoryRepository(db)
}

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideCategoryRepository,
)

// InitializeHTTPHandler initializes HTTP handler with all dependencies
func InitializeHTTPHandler(db *gorm.DB, recorder *audit.Recorder) (*httpDelivery.CategoryHandler, error) {
	wire.Build(
		RepositorySet,
		httpDelivery.NewCategoryHandler,
	)
	return nil, nil
}
