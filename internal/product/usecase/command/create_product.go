package command

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/denly1/motoshop/internal/audit"
	auditdomain "github.com/denly1/motoshop/internal/audit/domain"
	invcommand "github.com/denly1/motoshop/internal/inventory/usecase/command"
	"github.com/denly1/motoshop/internal/product/domain"
)

// CreateProductCommand represents the command to create a product
type CreateProductCommand struct {
	Name         string
	Description  string
	Price        decimal.Decimal
	SKU          string
	CategoryID   *uint
	InitialStock int
	Warehouse    string
	ActorUserID  *uint
}

// CreateProductHandler creates a product together with its inventory row;
// a product is never visible without one.
type CreateProductHandler struct {
	db        *gorm.DB
	repo      domain.ProductRepository
	inventory *invcommand.CreateInventoryHandler
	recorder  *audit.Recorder
}

// NewCreateProductHandler creates a new create product handler
func NewCreateProductHandler(db *gorm.DB, repo domain.ProductRepository, inventory *invcommand.CreateInventoryHandler, recorder *audit.Recorder) *CreateProductHandler {
	return &CreateProductHandler{db: db, repo: repo, inventory: inventory, recorder: recorder}
}

// Handle executes the create product command
func (h *CreateProductHandler) Handle(ctx context.Context, cmd CreateProductCommand) (*domain.Product, error) {
	if cmd.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if cmd.Price.IsNegative() {
		return nil, fmt.Errorf("price cannot be negative")
	}
	if cmd.InitialStock < 0 {
		return nil, fmt.Errorf("initial stock cannot be negative")
	}

	product := &domain.Product{
		Name:        cmd.Name,
		Description: cmd.Description,
		Price:       cmd.Price,
		SKU:         cmd.SKU,
		CategoryID:  cmd.CategoryID,
		IsActive:    true,
	}

	err := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := h.repo.WithTx(tx).Create(product); err != nil {
			return err
		}
		if _, err := h.inventory.HandleInTx(ctx, tx, invcommand.CreateInventoryCommand{
			ProductID:   product.ID,
			Quantity:    cmd.InitialStock,
			Warehouse:   cmd.Warehouse,
			ActorUserID: cmd.ActorUserID,
		}); err != nil {
			return err
		}
		h.recorder.RecordInTx(ctx, tx, cmd.ActorUserID, auditdomain.ActionInsert,
			auditdomain.EntityProduct, product.ID, nil, product)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}
