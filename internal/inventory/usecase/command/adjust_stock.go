package command

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/denly1/motoshop/internal/audit"
	auditdomain "github.com/denly1/motoshop/internal/audit/domain"
	"github.com/denly1/motoshop/internal/inventory/domain"
	"github.com/denly1/motoshop/pkg/database"
)

// AdjustStockCommand represents an administrative stock correction, e.g. a
// restock delivery or a shrinkage write-off. It never touches the
// reserved pool.
type AdjustStockCommand struct {
	ProductID   uint
	Delta       int
	ActorUserID *uint
}

// AdjustStockHandler handles administrative stock adjustments
type AdjustStockHandler struct {
	db       *gorm.DB
	ledger   domain.StockLedger
	recorder *audit.Recorder
}

// NewAdjustStockHandler creates a new adjust stock handler
func NewAdjustStockHandler(db *gorm.DB, ledger domain.StockLedger, recorder *audit.Recorder) *AdjustStockHandler {
	return &AdjustStockHandler{db: db, ledger: ledger, recorder: recorder}
}

// Handle executes the adjustment
func (h *AdjustStockHandler) Handle(ctx context.Context, cmd AdjustStockCommand) error {
	if cmd.ProductID == 0 {
		return fmt.Errorf("product_id is required")
	}
	if cmd.Delta == 0 {
		return fmt.Errorf("delta must be non-zero")
	}

	return database.WithRetry(ctx, func() error {
		return h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			ledger := h.ledger.WithTx(tx)

			locked, err := ledger.LockByProductIDs([]uint{cmd.ProductID})
			if err != nil {
				return err
			}
			if len(locked) == 0 {
				return fmt.Errorf("%w: product %d", domain.ErrNotFound, cmd.ProductID)
			}
			prev := locked[0]

			if err := adjustStock(ctx, ledger, cmd.ProductID, cmd.Delta, 0); err != nil {
				return err
			}

			next := prev
			next.Quantity += cmd.Delta
			h.recorder.RecordInTx(ctx, tx, cmd.ActorUserID, auditdomain.ActionUpdate,
				auditdomain.EntityInventory, prev.ID, prev, next)
			return nil
		})
	})
}
