package command

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/denly1/motoshop/internal/audit"
	auditdomain "github.com/denly1/motoshop/internal/audit/domain"
	"github.com/denly1/motoshop/internal/product/domain"
)

// UpdateProductCommand represents the command to update a product. Nil
// fields are left unchanged.
type UpdateProductCommand struct {
	ProductID   uint
	Name        *string
	Description *string
	Price       *decimal.Decimal
	CategoryID  *uint
	IsActive    *bool
	ActorUserID *uint
}

// UpdateProductHandler handles update product command
type UpdateProductHandler struct {
	db       *gorm.DB
	repo     domain.ProductRepository
	recorder *audit.Recorder
}

// NewUpdateProductHandler creates a new update product handler
func NewUpdateProductHandler(db *gorm.DB, repo domain.ProductRepository, recorder *audit.Recorder) *UpdateProductHandler {
	return &UpdateProductHandler{db: db, repo: repo, recorder: recorder}
}

// Handle executes the update product command
func (h *UpdateProductHandler) Handle(ctx context.Context, cmd UpdateProductCommand) (*domain.Product, error) {
	if cmd.ProductID == 0 {
		return nil, fmt.Errorf("product_id is required")
	}
	if cmd.Price != nil && cmd.Price.IsNegative() {
		return nil, fmt.Errorf("price cannot be negative")
	}

	var updated *domain.Product
	err := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := h.repo.WithTx(tx)

		product, err := repo.FindByID(cmd.ProductID)
		if err != nil {
			return err
		}
		before := *product

		if cmd.Name != nil {
			product.Name = *cmd.Name
		}
		if cmd.Description != nil {
			product.Description = *cmd.Description
		}
		if cmd.Price != nil {
			product.Price = *cmd.Price
		}
		if cmd.CategoryID != nil {
			product.CategoryID = cmd.CategoryID
		}
		if cmd.IsActive != nil {
			product.IsActive = *cmd.IsActive
		}

		if err := repo.Update(product); err != nil {
			return err
		}

		h.recorder.RecordInTx(ctx, tx, cmd.ActorUserID, auditdomain.ActionUpdate,
			auditdomain.EntityProduct, product.ID, before, product)
		updated = product
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
