package command

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/denly1/motoshop/internal/audit"
	auditdomain "github.com/denly1/motoshop/internal/audit/domain"
	invdomain "github.com/denly1/motoshop/internal/inventory/domain"
	"github.com/denly1/motoshop/internal/product/domain"
)

// DeleteProductCommand represents the command to delete a product
type DeleteProductCommand struct {
	ProductID   uint
	ActorUserID *uint
}

// DeleteProductHandler removes a product and its inventory row. Both
// deletions are audited with the pre-image.
type DeleteProductHandler struct {
	db       *gorm.DB
	repo     domain.ProductRepository
	ledger   invdomain.StockLedger
	recorder *audit.Recorder
}

// NewDeleteProductHandler creates a new delete product handler
func NewDeleteProductHandler(db *gorm.DB, repo domain.ProductRepository, ledger invdomain.StockLedger, recorder *audit.Recorder) *DeleteProductHandler {
	return &DeleteProductHandler{db: db, repo: repo, ledger: ledger, recorder: recorder}
}

// Handle executes the delete product command
func (h *DeleteProductHandler) Handle(ctx context.Context, cmd DeleteProductCommand) error {
	if cmd.ProductID == 0 {
		return fmt.Errorf("product_id is required")
	}

	return h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := h.repo.WithTx(tx)
		ledger := h.ledger.WithTx(tx)

		product, err := repo.FindByID(cmd.ProductID)
		if err != nil {
			return err
		}

		record, err := ledger.FindByProductID(cmd.ProductID)
		if err != nil && !errors.Is(err, invdomain.ErrNotFound) {
			return err
		}
		if record != nil {
			if record.ReservedQuantity > 0 {
				return fmt.Errorf("cannot delete product %d with reserved stock", cmd.ProductID)
			}
			if err := ledger.DeleteByProductID(cmd.ProductID); err != nil {
				return err
			}
			h.recorder.RecordInTx(ctx, tx, cmd.ActorUserID, auditdomain.ActionDelete,
				auditdomain.EntityInventory, record.ID, record, nil)
		}

		if err := repo.Delete(cmd.ProductID); err != nil {
			return err
		}
		h.recorder.RecordInTx(ctx, tx, cmd.ActorUserID, auditdomain.ActionDelete,
			auditdomain.EntityProduct, product.ID, product, nil)
		return nil
	})
}
