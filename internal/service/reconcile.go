package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Mazen-Mokhtar/logen-store-sub001/internal/entities"
	"github.com/Mazen-Mokhtar/logen-store-sub001/internal/events"
	"github.com/Mazen-Mokhtar/logen-store-sub001/internal/gateway"
	"github.com/Mazen-Mokhtar/logen-store-sub001/pkg/utils"
)

// HandleWebhook verifies and normalizes a raw gateway notification, then
// reconciles it. Signature failures surface before any business logic runs.
func (s *checkoutService) HandleWebhook(ctx context.Context, gw entities.PaymentGateway, payload []byte, signature string) (entities.ReconcileResult, error) {
	adapter, ok := s.gateways[gw]
	if !ok {
		return entities.ReconcileResult{}, entities.ErrUnsupportedGateway
	}

	notification, err := adapter.ParseNotification(payload, signature)
	if err != nil {
		return entities.ReconcileResult{}, err
	}

	return s.Reconcile(ctx, notification)
}

// Reconcile applies a normalized gateway event to the order it references.
// The payment token is the trust anchor: it originated from the gateway at
// intent creation, never from the caller. Duplicate deliveries of an
// already-applied event are a no-op, and events that would move the order
// backwards (a stale failure after paid) are ignored.
func (s *checkoutService) Reconcile(ctx context.Context, n gateway.Notification) (entities.ReconcileResult, error) {
	logger := s.logger.With(
		slog.String("gateway", string(n.Gateway)),
		slog.String("event_type", n.EventType))

	if n.Kind == gateway.KindUnhandled {
		// Gateways evolve their vocabularies; unknown events are
		// acknowledged, not failed, so delivery is not retried forever.
		logger.InfoContext(ctx, "unhandled gateway event")
		return entities.ReconcileResult{Message: "unhandled event type: " + n.EventType}, nil
	}

	if n.PaymentToken == "" {
		return entities.ReconcileResult{}, fmt.Errorf("notification carries no payment token: %w", entities.ErrOrderNotFound)
	}

	order, err := s.orders.GetOrderByPaymentToken(ctx, n.PaymentToken)
	if err != nil {
		logger.WarnContext(ctx, "notification for unknown payment token",
			slog.String("payment_token", n.PaymentToken), slog.Any("error", err))
		return entities.ReconcileResult{}, err
	}

	target := entities.StatusPaid
	if n.Kind == gateway.KindPaymentFailed {
		target = entities.StatusFailed
	}

	if order.Status == target {
		return entities.ReconcileResult{Order: order, Message: "already processed"}, nil
	}
	if !order.Status.CanTransition(target) {
		logger.WarnContext(ctx, "ignoring stale gateway event",
			slog.String("order_id", order.ID), slog.String("order_status", string(order.Status)))
		return entities.ReconcileResult{
			Order:   order,
			Message: fmt.Sprintf("ignoring %s: order is %s", n.EventType, order.Status),
		}, nil
	}

	metadata := entities.Metadata{}
	for k, v := range order.PaymentMetadata {
		metadata[k] = v
	}
	metadata["event_type"] = n.EventType
	now := time.Now().UTC().Format(time.RFC3339)
	if target == entities.StatusPaid {
		// A recovery after a failed attempt must not keep the stale
		// failure keys next to the confirmation.
		delete(metadata, "failure_reason")
		delete(metadata, "failed_at")
		metadata["transaction_id"] = n.TransactionID
		metadata["payment_method"] = n.PaymentMethod
		metadata["paid_at"] = now
	} else {
		delete(metadata, "transaction_id")
		delete(metadata, "payment_method")
		delete(metadata, "paid_at")
		metadata["failure_reason"] = n.FailureReason
		metadata["failed_at"] = now
	}

	fn := func() error {
		return s.txManager.Do(ctx, func(ctx context.Context) error {
			return s.orders.UpdateStatus(ctx, order.ID, target, metadata)
		})
	}
	if err := utils.Retry(storeRetry, fn, entities.ErrOrderNotFound); err != nil {
		return entities.ReconcileResult{}, fmt.Errorf("failed to persist reconciliation: %w", err)
	}

	order.Status = target
	order.PaymentMetadata = metadata
	order.UpdatedAt = time.Now()

	s.cache.Delete(order.ID)

	eventType := events.TypeOrderPaid
	message := "payment confirmed"
	if target == entities.StatusFailed {
		eventType = events.TypeOrderFailed
		message = "payment failure recorded"
	}
	s.publish(ctx, events.NewOrderEvent(eventType, order))

	logger.InfoContext(ctx, "order reconciled",
		slog.String("order_id", order.ID), slog.String("status", string(target)))

	return entities.ReconcileResult{Order: order, Applied: true, Message: message}, nil
}
