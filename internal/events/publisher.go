package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Mazen-Mokhtar/logen-store-sub001/internal/config"
	"github.com/Mazen-Mokhtar/logen-store-sub001/internal/entities"

	"github.com/segmentio/kafka-go"
)

const (
	TypeOrderCreated = "order.created"
	TypeOrderPaid    = "order.paid"
	TypeOrderFailed  = "order.failed"
)

// OrderEvent is the message downstream consumers (fulfillment,
// notifications) receive when an order is created or changes payment state.
type OrderEvent struct {
	Type        string               `json:"type"`
	OrderID     string               `json:"order_id"`
	UserID      string               `json:"user_id"`
	Status      entities.OrderStatus `json:"status"`
	TotalAmount int64                `json:"total_amount"`
	Currency    entities.Currency    `json:"currency"`
	Gateway     string               `json:"gateway,omitempty"`
	OccurredAt  time.Time            `json:"occurred_at"`
}

func NewOrderEvent(eventType string, o entities.Order) OrderEvent {
	return OrderEvent{
		Type:        eventType,
		OrderID:     o.ID,
		UserID:      o.UserID,
		Status:      o.Status,
		TotalAmount: o.TotalAmount,
		Currency:    o.Currency,
		Gateway:     string(o.PaymentGateway),
		OccurredAt:  time.Now(),
	}
}

type KafkaPublisher struct {
	logger *slog.Logger
	writer *kafka.Writer
}

func NewKafkaPublisher(logger *slog.Logger, cfg config.Kafka) *KafkaPublisher {
	return &KafkaPublisher{
		logger: logger.With(slog.String("publisher", "kafka")),
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: cfg.BatchTimeout,
		},
	}
}

// Publish writes the event keyed by order id so all events of one order
// land on the same partition in order.
func (p *KafkaPublisher) Publish(ctx context.Context, event OrderEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.OrderID),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("failed to publish order event: %w", err)
	}

	p.logger.Debug("order event published",
		slog.String("type", event.Type), slog.String("order_id", event.OrderID))
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
