package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/denly1/motoshop/pkg/logger"
)

// OrderPaidHandler handles an order-paid event.
type OrderPaidHandler func(ctx context.Context, event OrderPaidEvent) error

// Consumer consumes order-paid events from the external payment provider
// and hands them to the fulfillment automation.
type Consumer struct {
	group   sarama.ConsumerGroup
	groupID string
	handler OrderPaidHandler
}

// NewConsumer creates a new Kafka consumer
func NewConsumer(brokers []string, groupID string, handler OrderPaidHandler) (*Consumer, error) {
	config := sarama.NewConfig()
	config.Version = sarama.V2_6_0_0
	config.Consumer.Group.Rebalance.Strategy = sarama.NewBalanceStrategyRoundRobin()
	config.Consumer.Offsets.Initial = sarama.OffsetNewest
	config.Consumer.Return.Errors = true

	group, err := sarama.NewConsumerGroup(brokers, groupID, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka consumer: %w", err)
	}

	logger.Logger.Info().
		Strs("brokers", brokers).
		Str("group_id", groupID).
		Msg("Kafka consumer initialized")

	return &Consumer{
		group:   group,
		groupID: groupID,
		handler: handler,
	}, nil
}

// Start starts consuming order-paid events until the context is cancelled.
func (c *Consumer) Start(ctx context.Context) {
	topics := []string{TopicOrderPaid}

	go func() {
		for {
			select {
			case <-ctx.Done():
				logger.Logger.Info().Msg("Consumer context cancelled, stopping")
				return
			default:
				if err := c.group.Consume(ctx, topics, &consumerGroupHandler{consumer: c}); err != nil {
					logger.Logger.Error().Err(err).Msg("Error from consumer")
				}
			}
		}
	}()

	go func() {
		for err := range c.group.Errors() {
			logger.Logger.Error().Err(err).Msg("Consumer error")
		}
	}()

	logger.Logger.Info().
		Strs("topics", topics).
		Str("group_id", c.groupID).
		Msg("Kafka consumer started")
}

// Close closes the Kafka consumer
func (c *Consumer) Close() error {
	if c.group != nil {
		return c.group.Close()
	}
	return nil
}

// consumerGroupHandler implements sarama.ConsumerGroupHandler
type consumerGroupHandler struct {
	consumer *Consumer
}

func (h *consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *consumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		ctx := extractTraceContext(session.Context(), msg)

		var event OrderPaidEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logger.Error(ctx).Err(err).Msg("Failed to unmarshal order-paid event")
			session.MarkMessage(msg, "")
			continue
		}

		if err := h.consumer.handler(ctx, event); err != nil {
			logger.Error(ctx).
				Err(err).
				Uint("order_id", event.OrderID).
				Msg("Failed to handle order-paid event")
		}

		session.MarkMessage(msg, "")
	}
	return nil
}

func extractTraceContext(ctx context.Context, msg *sarama.ConsumerMessage) context.Context {
	carrier := propagation.MapCarrier{}
	for _, header := range msg.Headers {
		carrier[string(header.Key)] = string(header.Value)
	}
	ctx = otel.GetTextMapPropagator().Extract(ctx, carrier)

	tracer := otel.Tracer("kafka-consumer")
	ctx, span := tracer.Start(ctx, "kafka.consume.order_paid",
		trace.WithSpanKind(trace.SpanKindConsumer),
	)
	span.End()
	return ctx
}
