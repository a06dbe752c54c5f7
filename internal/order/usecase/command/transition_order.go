package command

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/denly1/motoshop/internal/audit"
	auditdomain "github.com/denly1/motoshop/internal/audit/domain"
	invcommand "github.com/denly1/motoshop/internal/inventory/usecase/command"
	"github.com/denly1/motoshop/internal/order/domain"
	"github.com/denly1/motoshop/kafka"
	"github.com/denly1/motoshop/pkg/database"
	"github.com/denly1/motoshop/pkg/logger"
)

// StatusPublisher emits order status changes to the event stream.
type StatusPublisher interface {
	PublishOrderStatusChanged(ctx context.Context, event kafka.OrderStatusChangedEvent) error
}

// TransitionOrderCommand represents the command to move an order to a new
// status.
type TransitionOrderCommand struct {
	OrderID     uint
	Target      domain.Status
	ActorUserID *uint
}

// TransitionOrderHandler applies order-status transitions. The status
// write is a compare-and-swap against the status read at the start of the
// transaction, so two concurrent attempts on one order produce exactly one
// success. Entering cancelled releases the order's reservation; entering
// delivered commits it; both run inside the transition's transaction.
type TransitionOrderHandler struct {
	db        *gorm.DB
	orders    domain.OrderRepository
	release   *invcommand.ReleaseStockHandler
	commit    *invcommand.CommitStockHandler
	recorder  *audit.Recorder
	publisher StatusPublisher
}

// NewTransitionOrderHandler creates a new transition order handler. The
// publisher may be nil when no event stream is configured.
func NewTransitionOrderHandler(
	db *gorm.DB,
	orders domain.OrderRepository,
	release *invcommand.ReleaseStockHandler,
	commit *invcommand.CommitStockHandler,
	recorder *audit.Recorder,
	publisher StatusPublisher,
) *TransitionOrderHandler {
	return &TransitionOrderHandler{
		db:        db,
		orders:    orders,
		release:   release,
		commit:    commit,
		recorder:  recorder,
		publisher: publisher,
	}
}

// Handle executes the transition command
func (h *TransitionOrderHandler) Handle(ctx context.Context, cmd TransitionOrderCommand) error {
	if cmd.OrderID == 0 {
		return fmt.Errorf("order_id is required")
	}
	if !domain.ValidStatus(cmd.Target) {
		return fmt.Errorf("unknown order status: %s", cmd.Target)
	}

	var (
		fromStatus  domain.Status
		orderNumber string
	)

	err := database.WithRetry(ctx, func() error {
		return h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			orders := h.orders.WithTx(tx)

			order, err := orders.FindByID(cmd.OrderID)
			if err != nil {
				return err
			}
			from := order.Status

			if !domain.CanTransition(from, cmd.Target) {
				return &domain.InvalidTransitionError{From: from, To: cmd.Target}
			}

			swapped, err := orders.UpdateStatusCAS(order.ID, from, cmd.Target)
			if err != nil {
				return err
			}
			if !swapped {
				// A concurrent transition won; report against the status
				// it left behind.
				current, err := orders.FindByID(cmd.OrderID)
				if err != nil {
					return err
				}
				return &domain.InvalidTransitionError{From: current.Status, To: cmd.Target}
			}

			switch cmd.Target {
			case domain.StatusCancelled:
				if err := h.release.HandleInTx(ctx, tx, invcommand.ReleaseStockCommand{
					OrderID:     order.ID,
					ActorUserID: cmd.ActorUserID,
				}); err != nil {
					return err
				}
			case domain.StatusDelivered:
				if err := h.commit.HandleInTx(ctx, tx, invcommand.CommitStockCommand{
					OrderID:     order.ID,
					ActorUserID: cmd.ActorUserID,
				}); err != nil {
					return err
				}
			}

			after := *order
			after.Status = cmd.Target
			h.recorder.RecordInTx(ctx, tx, cmd.ActorUserID, auditdomain.ActionUpdate,
				auditdomain.EntityOrder, order.ID, order, &after)

			fromStatus = from
			orderNumber = order.OrderNumber
			return nil
		})
	})
	if err != nil {
		return err
	}

	if h.publisher != nil {
		event := kafka.OrderStatusChangedEvent{
			OrderID:     cmd.OrderID,
			OrderNumber: orderNumber,
			FromStatus:  string(fromStatus),
			ToStatus:    string(cmd.Target),
			ActorUserID: cmd.ActorUserID,
		}
		if err := h.publisher.PublishOrderStatusChanged(ctx, event); err != nil {
			logger.Error(ctx).Err(err).Uint("order_id", cmd.OrderID).
				Msg("Failed to publish order status event")
		}
	}

	return nil
}
