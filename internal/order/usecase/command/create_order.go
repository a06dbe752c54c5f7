package command

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/denly1/motoshop/internal/audit"
	auditdomain "github.com/denly1/motoshop/internal/audit/domain"
	invcommand "github.com/denly1/motoshop/internal/inventory/usecase/command"
	"github.com/denly1/motoshop/internal/order/domain"
	productdomain "github.com/denly1/motoshop/internal/product/domain"
	"github.com/denly1/motoshop/pkg/database"
)

// CheckoutItem is one requested line of a new order.
type CheckoutItem struct {
	ProductID uint
	Quantity  int
}

// CreateOrderCommand represents the command to place an order
type CreateOrderCommand struct {
	UserID      uint
	ActorUserID *uint
	Items       []CheckoutItem
}

// CreateOrderHandler places an order: it snapshots unit prices, writes the
// order and its items, and reserves stock, all in one transaction. An
// insufficient-stock failure rolls the whole order back; no partial order
// survives.
type CreateOrderHandler struct {
	db       *gorm.DB
	orders   domain.OrderRepository
	products productdomain.ProductRepository
	reserve  *invcommand.ReserveStockHandler
	recorder *audit.Recorder
}

// NewCreateOrderHandler creates a new create order handler
func NewCreateOrderHandler(
	db *gorm.DB,
	orders domain.OrderRepository,
	products productdomain.ProductRepository,
	reserve *invcommand.ReserveStockHandler,
	recorder *audit.Recorder,
) *CreateOrderHandler {
	return &CreateOrderHandler{
		db:       db,
		orders:   orders,
		products: products,
		reserve:  reserve,
		recorder: recorder,
	}
}

// Handle executes the create order command
func (h *CreateOrderHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (*domain.Order, error) {
	if cmd.UserID == 0 {
		return nil, fmt.Errorf("user_id is required")
	}
	if len(cmd.Items) == 0 {
		return nil, fmt.Errorf("at least one item is required")
	}
	for _, item := range cmd.Items {
		if item.ProductID == 0 {
			return nil, fmt.Errorf("product_id is required")
		}
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("quantity must be positive")
		}
	}

	var order *domain.Order
	err := database.WithRetry(ctx, func() error {
		order = nil
		return h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			products := h.products.WithTx(tx)

			total := decimal.Zero
			items := make([]domain.OrderItem, 0, len(cmd.Items))
			reservation := make([]invcommand.ReservationItem, 0, len(cmd.Items))
			for _, item := range cmd.Items {
				product, err := products.FindByID(item.ProductID)
				if err != nil {
					return err
				}
				if !product.IsActive {
					return fmt.Errorf("product %d is not available", item.ProductID)
				}
				items = append(items, domain.OrderItem{
					ProductID: item.ProductID,
					Quantity:  item.Quantity,
					UnitPrice: product.Price,
				})
				reservation = append(reservation, invcommand.ReservationItem{
					ProductID: item.ProductID,
					Quantity:  item.Quantity,
				})
				total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
			}

			order = &domain.Order{
				OrderNumber:   uuid.NewString(),
				UserID:        cmd.UserID,
				Status:        domain.StatusPending,
				PaymentStatus: domain.PaymentPending,
				TotalAmount:   total,
				Items:         items,
			}
			if err := h.orders.WithTx(tx).Create(order); err != nil {
				return err
			}

			if err := h.reserve.HandleInTx(ctx, tx, invcommand.ReserveStockCommand{
				OrderID:     order.ID,
				ActorUserID: cmd.ActorUserID,
				Items:       reservation,
			}); err != nil {
				return err
			}

			h.recorder.RecordInTx(ctx, tx, cmd.ActorUserID, auditdomain.ActionInsert,
				auditdomain.EntityOrder, order.ID, nil, order)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}
