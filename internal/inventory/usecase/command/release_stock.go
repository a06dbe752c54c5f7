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

// ReleaseStockCommand represents the command to release an order's
// outstanding reservation.
type ReleaseStockCommand struct {
	OrderID     uint
	ActorUserID *uint
}

// ReleaseStockHandler returns an order's reserved units to the available
// pool. Idempotent: with no active reservation left the call is a no-op.
type ReleaseStockHandler struct {
	db       *gorm.DB
	ledger   domain.StockLedger
	recorder *audit.Recorder
}

// NewReleaseStockHandler creates a new release stock handler
func NewReleaseStockHandler(db *gorm.DB, ledger domain.StockLedger, recorder *audit.Recorder) *ReleaseStockHandler {
	return &ReleaseStockHandler{db: db, ledger: ledger, recorder: recorder}
}

// Handle executes the release in its own transaction.
func (h *ReleaseStockHandler) Handle(ctx context.Context, cmd ReleaseStockCommand) error {
	if cmd.OrderID == 0 {
		return fmt.Errorf("order_id is required")
	}
	return database.WithRetry(ctx, func() error {
		return h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return h.HandleInTx(ctx, tx, cmd)
		})
	})
}

// HandleInTx executes the release inside the caller's transaction. The
// order state machine runs it alongside the cancelled status write.
func (h *ReleaseStockHandler) HandleInTx(ctx context.Context, tx *gorm.DB, cmd ReleaseStockCommand) error {
	return h.settle(ctx, tx, cmd.OrderID, cmd.ActorUserID, settleRelease)
}

type settleMode int

const (
	settleRelease settleMode = iota
	settleCommit
)

// settle is the shared path of Release and Commit: both act on the
// order's active reservations, lock the affected rows in ascending
// product-id order, adjust, and close the reservations. Release returns
// units to the available pool; commit removes them from stock entirely.
func (h *ReleaseStockHandler) settle(ctx context.Context, tx *gorm.DB, orderID uint, actor *uint, mode settleMode) error {
	ledger := h.ledger.WithTx(tx)

	reservations, err := ledger.ActiveReservations(orderID)
	if err != nil {
		return err
	}
	if len(reservations) == 0 {
		return nil
	}

	totals := make(map[uint]int, len(reservations))
	ids := make([]uint, 0, len(reservations))
	for _, res := range reservations {
		if _, ok := totals[res.ProductID]; !ok {
			ids = append(ids, res.ProductID) // ActiveReservations orders by product_id
		}
		totals[res.ProductID] += res.Quantity
	}

	locked, err := ledger.LockByProductIDs(ids)
	if err != nil {
		return err
	}
	if len(locked) != len(ids) {
		return fmt.Errorf("%w: reservation for order %d references a missing inventory row",
			domain.ErrNotFound, orderID)
	}

	for _, prev := range locked {
		qty := totals[prev.ProductID]
		next := prev
		if mode == settleCommit {
			if err := adjustStock(ctx, ledger, prev.ProductID, -qty, -qty); err != nil {
				return err
			}
			next.Quantity -= qty
			next.ReservedQuantity -= qty
		} else {
			if err := adjustStock(ctx, ledger, prev.ProductID, 0, -qty); err != nil {
				return err
			}
			next.ReservedQuantity -= qty
		}
		h.recorder.RecordInTx(ctx, tx, actor, auditdomain.ActionUpdate,
			auditdomain.EntityInventory, prev.ID, prev, next)
	}

	status := domain.ReservationReleased
	if mode == settleCommit {
		status = domain.ReservationCommitted
	}
	return ledger.CloseReservations(orderID, status)
}
