package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	auditdomain "github.com/denly1/motoshop/internal/audit/domain"
	"github.com/denly1/motoshop/internal/order/domain"
	"github.com/denly1/motoshop/kafka"
)

type recordingPublisher struct {
	events []kafka.OrderStatusChangedEvent
}

func (p *recordingPublisher) PublishOrderStatusChanged(_ context.Context, event kafka.OrderStatusChangedEvent) error {
	p.events = append(p.events, event)
	return nil
}

func (e *orderTestEnv) transitionHandler(publisher StatusPublisher) *TransitionOrderHandler {
	return NewTransitionOrderHandler(e.db, e.orders, e.release, e.commit, e.recorder, publisher)
}

func (e *orderTestEnv) placeOrder(t *testing.T, quantity int) *domain.Order {
	t.Helper()
	order, err := e.create.Handle(context.Background(), CreateOrderCommand{
		UserID: 1,
		Items:  []CheckoutItem{{ProductID: 1, Quantity: quantity}},
	})
	require.NoError(t, err)
	return order
}

func (e *orderTestEnv) status(t *testing.T, orderID uint) domain.Status {
	t.Helper()
	order, err := e.orders.FindByID(orderID)
	require.NoError(t, err)
	return order.Status
}

func TestTransitionFollowsFulfillmentPath(t *testing.T) {
	env := newOrderTestEnv(t)
	env.seedProduct(t, 1, "10.00", 10, true)
	order := env.placeOrder(t, 4)
	handler := env.transitionHandler(nil)

	for _, target := range []domain.Status{domain.StatusProcessing, domain.StatusShipped} {
		require.NoError(t, handler.Handle(context.Background(), TransitionOrderCommand{
			OrderID: order.ID,
			Target:  target,
		}))
		assert.Equal(t, target, env.status(t, order.ID))
		// The reservation is untouched until a terminal state.
		assert.Equal(t, 4, env.stock(t, 1).ReservedQuantity)
	}
}

func TestTransitionRejectsSkippingAhead(t *testing.T) {
	env := newOrderTestEnv(t)
	env.seedProduct(t, 1, "10.00", 10, true)
	order := env.placeOrder(t, 4)
	handler := env.transitionHandler(nil)

	err := handler.Handle(context.Background(), TransitionOrderCommand{
		OrderID: order.ID,
		Target:  domain.StatusDelivered,
	})

	var invalid *domain.InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, domain.StatusPending, invalid.From)
	assert.Equal(t, domain.StatusDelivered, invalid.To)

	// Nothing changed.
	assert.Equal(t, domain.StatusPending, env.status(t, order.ID))
	assert.Equal(t, 4, env.stock(t, 1).ReservedQuantity)
	assert.Equal(t, 10, env.stock(t, 1).Quantity)
}

func TestTransitionRejectsUnknownStatus(t *testing.T) {
	env := newOrderTestEnv(t)
	env.seedProduct(t, 1, "10.00", 10, true)
	order := env.placeOrder(t, 1)
	handler := env.transitionHandler(nil)

	err := handler.Handle(context.Background(), TransitionOrderCommand{
		OrderID: order.ID,
		Target:  "returned",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown order status")
}

func TestCancellationReleasesReservation(t *testing.T) {
	env := newOrderTestEnv(t)
	env.seedProduct(t, 1, "10.00", 10, true)
	order := env.placeOrder(t, 4)
	handler := env.transitionHandler(nil)

	require.NoError(t, handler.Handle(context.Background(), TransitionOrderCommand{
		OrderID: order.ID,
		Target:  domain.StatusCancelled,
	}))

	assert.Equal(t, domain.StatusCancelled, env.status(t, order.ID))
	rec := env.stock(t, 1)
	assert.Equal(t, 10, rec.Quantity)
	assert.Equal(t, 0, rec.ReservedQuantity)

	active, err := env.ledger.ActiveReservations(order.ID)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestDeliveryCommitsReservation(t *testing.T) {
	env := newOrderTestEnv(t)
	env.seedProduct(t, 1, "10.00", 10, true)
	order := env.placeOrder(t, 4)
	handler := env.transitionHandler(nil)

	for _, target := range []domain.Status{domain.StatusProcessing, domain.StatusShipped, domain.StatusDelivered} {
		require.NoError(t, handler.Handle(context.Background(), TransitionOrderCommand{
			OrderID: order.ID,
			Target:  target,
		}))
	}

	rec := env.stock(t, 1)
	assert.Equal(t, 6, rec.Quantity)
	assert.Equal(t, 0, rec.ReservedQuantity)
	assert.Equal(t, domain.StatusDelivered, env.status(t, order.ID))
}

func TestTransitionPublishesStatusEvent(t *testing.T) {
	env := newOrderTestEnv(t)
	env.seedProduct(t, 1, "10.00", 10, true)
	order := env.placeOrder(t, 1)
	publisher := &recordingPublisher{}
	handler := env.transitionHandler(publisher)

	require.NoError(t, handler.Handle(context.Background(), TransitionOrderCommand{
		OrderID: order.ID,
		Target:  domain.StatusProcessing,
	}))

	require.Len(t, publisher.events, 1)
	assert.Equal(t, order.ID, publisher.events[0].OrderID)
	assert.Equal(t, order.OrderNumber, publisher.events[0].OrderNumber)
	assert.Equal(t, "pending", publisher.events[0].FromStatus)
	assert.Equal(t, "processing", publisher.events[0].ToStatus)
}

func TestTransitionWritesAuditRecord(t *testing.T) {
	env := newOrderTestEnv(t)
	env.seedProduct(t, 1, "10.00", 10, true)
	order := env.placeOrder(t, 1)
	handler := env.transitionHandler(nil)

	actor := uint(9)
	require.NoError(t, handler.Handle(context.Background(), TransitionOrderCommand{
		OrderID:     order.ID,
		Target:      domain.StatusProcessing,
		ActorUserID: &actor,
	}))

	var records []auditdomain.Record
	require.NoError(t, env.db.
		Where("table_name = ? AND record_id = ? AND action = ?",
			auditdomain.EntityOrder, order.ID, auditdomain.ActionUpdate).
		Find(&records).Error)
	require.Len(t, records, 1)
	require.NotNil(t, records[0].OldValues)
	require.NotNil(t, records[0].NewValues)
	assert.Contains(t, *records[0].OldValues, `"status":"pending"`)
	assert.Contains(t, *records[0].NewValues, `"status":"processing"`)
}

func TestUpdateStatusCASRefusesStaleFrom(t *testing.T) {
	env := newOrderTestEnv(t)
	env.seedProduct(t, 1, "10.00", 10, true)
	order := env.placeOrder(t, 1)

	swapped, err := env.orders.UpdateStatusCAS(order.ID, domain.StatusShipped, domain.StatusDelivered)
	require.NoError(t, err)
	assert.False(t, swapped)
	assert.Equal(t, domain.StatusPending, env.status(t, order.ID))

	swapped, err = env.orders.UpdateStatusCAS(order.ID, domain.StatusPending, domain.StatusProcessing)
	require.NoError(t, err)
	assert.True(t, swapped)
	assert.Equal(t, domain.StatusProcessing, env.status(t, order.ID))
}

// staleReadRepository serves a stale status on the first read, the way a
// transaction observes an order that a concurrent writer has already
// moved between the read and the guarded write.
type staleReadRepository struct {
	domain.OrderRepository
	stale domain.Status
	used  *bool
}

func (r *staleReadRepository) FindByID(id uint) (*domain.Order, error) {
	order, err := r.OrderRepository.FindByID(id)
	if err != nil {
		return nil, err
	}
	if !*r.used {
		*r.used = true
		order.Status = r.stale
	}
	return order, nil
}

func (r *staleReadRepository) WithTx(tx *gorm.DB) domain.OrderRepository {
	return &staleReadRepository{OrderRepository: r.OrderRepository.WithTx(tx), stale: r.stale, used: r.used}
}

func TestConcurrentTransitionLoserGetsInvalidTransition(t *testing.T) {
	env := newOrderTestEnv(t)
	env.seedProduct(t, 1, "10.00", 10, true)
	order := env.placeOrder(t, 1)

	// The winner moves the order first.
	require.NoError(t, env.transitionHandler(nil).Handle(context.Background(), TransitionOrderCommand{
		OrderID: order.ID,
		Target:  domain.StatusProcessing,
	}))

	// The loser read pending, so its guarded write matches zero rows and
	// it reports the status the winner left behind.
	used := false
	loser := NewTransitionOrderHandler(env.db, &staleReadRepository{
		OrderRepository: env.orders,
		stale:           domain.StatusPending,
		used:            &used,
	}, env.release, env.commit, env.recorder, nil)

	err := loser.Handle(context.Background(), TransitionOrderCommand{
		OrderID: order.ID,
		Target:  domain.StatusProcessing,
	})

	var invalid *domain.InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, domain.StatusProcessing, invalid.From)
	assert.Equal(t, domain.StatusProcessing, env.status(t, order.ID))

	// Exactly one transition was audited.
	var count int64
	require.NoError(t, env.db.Model(&auditdomain.Record{}).
		Where("table_name = ? AND record_id = ? AND action = ?",
			auditdomain.EntityOrder, order.ID, auditdomain.ActionUpdate).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestMarkPaidMovesOrderToProcessing(t *testing.T) {
	env := newOrderTestEnv(t)
	env.seedProduct(t, 1, "10.00", 10, true)
	order := env.placeOrder(t, 1)
	handler := NewMarkOrderPaidHandler(env.orders, env.transitionHandler(nil))

	require.NoError(t, handler.Handle(context.Background(), MarkOrderPaidCommand{OrderID: order.ID}))

	stored, err := env.orders.FindByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, stored.PaymentStatus)
	assert.Equal(t, domain.StatusProcessing, stored.Status)

	// Redelivered confirmations change nothing.
	require.NoError(t, handler.Handle(context.Background(), MarkOrderPaidCommand{OrderID: order.ID}))
	stored, err = env.orders.FindByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusProcessing, stored.Status)
}

func TestMarkPaidOnCancelledOrderKeepsStatus(t *testing.T) {
	env := newOrderTestEnv(t)
	env.seedProduct(t, 1, "10.00", 10, true)
	order := env.placeOrder(t, 1)
	transition := env.transitionHandler(nil)
	require.NoError(t, transition.Handle(context.Background(), TransitionOrderCommand{
		OrderID: order.ID,
		Target:  domain.StatusCancelled,
	}))

	handler := NewMarkOrderPaidHandler(env.orders, transition)
	require.NoError(t, handler.Handle(context.Background(), MarkOrderPaidCommand{OrderID: order.ID}))

	stored, err := env.orders.FindByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, stored.PaymentStatus)
	assert.Equal(t, domain.StatusCancelled, stored.Status)
}
