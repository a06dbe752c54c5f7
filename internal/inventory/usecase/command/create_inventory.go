package command

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/denly1/motoshop/internal/audit"
	auditdomain "github.com/denly1/motoshop/internal/audit/domain"
	"github.com/denly1/motoshop/internal/inventory/domain"
)

// CreateInventoryCommand represents the command to create an inventory row
type CreateInventoryCommand struct {
	ProductID   uint
	Quantity    int
	Warehouse   string
	ActorUserID *uint
}

// CreateInventoryHandler handles create inventory command
type CreateInventoryHandler struct {
	db       *gorm.DB
	ledger   domain.StockLedger
	recorder *audit.Recorder
}

// NewCreateInventoryHandler creates a new create inventory handler
func NewCreateInventoryHandler(db *gorm.DB, ledger domain.StockLedger, recorder *audit.Recorder) *CreateInventoryHandler {
	return &CreateInventoryHandler{db: db, ledger: ledger, recorder: recorder}
}

// Handle executes the create inventory command
func (h *CreateInventoryHandler) Handle(ctx context.Context, cmd CreateInventoryCommand) (*domain.InventoryRecord, error) {
	if cmd.ProductID == 0 {
		return nil, fmt.Errorf("product_id is required")
	}
	if cmd.Quantity < 0 {
		return nil, fmt.Errorf("quantity cannot be negative")
	}
	if cmd.Warehouse == "" {
		cmd.Warehouse = "main"
	}

	record := &domain.InventoryRecord{
		ProductID: cmd.ProductID,
		Quantity:  cmd.Quantity,
		Warehouse: cmd.Warehouse,
	}

	err := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := h.ledger.WithTx(tx).Create(record); err != nil {
			return err
		}
		h.recorder.RecordInTx(ctx, tx, cmd.ActorUserID, auditdomain.ActionInsert,
			auditdomain.EntityInventory, record.ID, nil, record)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// HandleInTx creates the inventory row inside the caller's transaction.
// Product creation uses this so a product and its stock row appear
// together.
func (h *CreateInventoryHandler) HandleInTx(ctx context.Context, tx *gorm.DB, cmd CreateInventoryCommand) (*domain.InventoryRecord, error) {
	if cmd.ProductID == 0 {
		return nil, fmt.Errorf("product_id is required")
	}
	if cmd.Quantity < 0 {
		return nil, fmt.Errorf("quantity cannot be negative")
	}
	if cmd.Warehouse == "" {
		cmd.Warehouse = "main"
	}

	record := &domain.InventoryRecord{
		ProductID: cmd.ProductID,
		Quantity:  cmd.Quantity,
		Warehouse: cmd.Warehouse,
	}
	if err := h.ledger.WithTx(tx).Create(record); err != nil {
		return nil, err
	}
	h.recorder.RecordInTx(ctx, tx, cmd.ActorUserID, auditdomain.ActionInsert,
		auditdomain.EntityInventory, record.ID, nil, record)
	return record, nil
}
