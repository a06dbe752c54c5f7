package command

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/denly1/motoshop/internal/audit"
	"github.com/denly1/motoshop/internal/inventory/domain"
	"github.com/denly1/motoshop/pkg/database"
)

// CommitStockCommand represents the command to commit an order's
// reservation on delivery.
type CommitStockCommand struct {
	OrderID     uint
	ActorUserID *uint
}

// CommitStockHandler removes an order's reserved units from both the
// total and the reserved pool. Idempotent per order: once the active
// reservations are committed, a second call finds none and is a no-op.
type CommitStockHandler struct {
	settler *ReleaseStockHandler
	db      *gorm.DB
}

// NewCommitStockHandler creates a new commit stock handler
func NewCommitStockHandler(db *gorm.DB, ledger domain.StockLedger, recorder *audit.Recorder) *CommitStockHandler {
	return &CommitStockHandler{
		settler: NewReleaseStockHandler(db, ledger, recorder),
		db:      db,
	}
}

// Handle executes the commit in its own transaction.
func (h *CommitStockHandler) Handle(ctx context.Context, cmd CommitStockCommand) error {
	if cmd.OrderID == 0 {
		return fmt.Errorf("order_id is required")
	}
	return database.WithRetry(ctx, func() error {
		return h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return h.HandleInTx(ctx, tx, cmd)
		})
	})
}

// HandleInTx executes the commit inside the caller's transaction. The
// order state machine runs it alongside the delivered status write.
func (h *CommitStockHandler) HandleInTx(ctx context.Context, tx *gorm.DB, cmd CommitStockCommand) error {
	return h.settler.settle(ctx, tx, cmd.OrderID, cmd.ActorUserID, settleCommit)
}
