package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/denly1/motoshop/internal/order/domain"
	"github.com/denly1/motoshop/pkg/logger"
)

// MarkOrderPaidCommand represents the command applied when the payment
// provider confirms an order.
type MarkOrderPaidCommand struct {
	OrderID uint
}

// MarkOrderPaidHandler records a confirmed payment and moves the order
// into processing. Events are delivered at-least-once, so a repeated
// confirmation for an already-processing order is a no-op.
type MarkOrderPaidHandler struct {
	orders     domain.OrderRepository
	transition *TransitionOrderHandler
}

// NewMarkOrderPaidHandler creates a new mark order paid handler
func NewMarkOrderPaidHandler(orders domain.OrderRepository, transition *TransitionOrderHandler) *MarkOrderPaidHandler {
	return &MarkOrderPaidHandler{orders: orders, transition: transition}
}

// Handle executes the mark order paid command
func (h *MarkOrderPaidHandler) Handle(ctx context.Context, cmd MarkOrderPaidCommand) error {
	if cmd.OrderID == 0 {
		return fmt.Errorf("order_id is required")
	}

	order, err := h.orders.FindByID(cmd.OrderID)
	if err != nil {
		return err
	}
	if order.PaymentStatus == domain.PaymentPaid {
		logger.Info(ctx).Uint("order_id", cmd.OrderID).Msg("Order already marked paid, skipping")
		return nil
	}

	if err := h.orders.UpdatePaymentStatus(cmd.OrderID, domain.PaymentPaid); err != nil {
		return err
	}

	err = h.transition.Handle(ctx, TransitionOrderCommand{
		OrderID: cmd.OrderID,
		Target:  domain.StatusProcessing,
	})
	var invalid *domain.InvalidTransitionError
	if errors.As(err, &invalid) {
		// The order already left pending; payment is recorded either way.
		logger.Warn(ctx).Uint("order_id", cmd.OrderID).
			Str("status", string(invalid.From)).
			Msg("Paid order not in pending, leaving status unchanged")
		return nil
	}
	return err
}
