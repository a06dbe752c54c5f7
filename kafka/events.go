package kafka

import "time"

// OrderStatusChangedEvent is emitted after an order-status transition
// commits.
type OrderStatusChangedEvent struct {
	EventID     string    `json:"event_id"`
	EventType   string    `json:"event_type"`
	OrderID     uint      `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	FromStatus  string    `json:"from_status"`
	ToStatus    string    `json:"to_status"`
	ActorUserID *uint     `json:"actor_user_id,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// OrderPaidEvent is consumed from the external payment provider; a paid
// order is moved into fulfillment.
type OrderPaidEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	OrderID   uint      `json:"order_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Event types
const (
	EventTypeOrderStatusChanged = "order.status_changed"
	EventTypeOrderPaid          = "order.paid"
)

// Kafka topics
const (
	TopicOrderStatusChanged = "order-status-changed"
	TopicOrderPaid          = "order-paid"
)
