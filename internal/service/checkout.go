package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Mazen-Mokhtar/logen-store-sub001/internal/entities"
	"github.com/Mazen-Mokhtar/logen-store-sub001/internal/events"
	"github.com/Mazen-Mokhtar/logen-store-sub001/internal/gateway"
	"github.com/Mazen-Mokhtar/logen-store-sub001/pkg/trm"
	"github.com/Mazen-Mokhtar/logen-store-sub001/pkg/utils"

	"github.com/google/uuid"
)

type OrderRepo interface {
	CreateOrder(ctx context.Context, o entities.Order) error
	AttachPayment(ctx context.Context, orderID, token string, metadata entities.Metadata) error
	UpdateStatus(ctx context.Context, orderID string, status entities.OrderStatus, metadata entities.Metadata) error

	GetOrderByID(ctx context.Context, orderID string) (entities.Order, error)
	GetOrderByIdempotencyKey(ctx context.Context, key string) (entities.Order, error)
	GetOrderByPaymentToken(ctx context.Context, token string) (entities.Order, error)
	LatestOrders(ctx context.Context, count int) ([]entities.Order, error)
}

type UserRepo interface {
	GetGuestByEmail(ctx context.Context, email string) (entities.User, error)
	GetRegisteredByEmail(ctx context.Context, email string) (entities.User, error)
	CreateUser(ctx context.Context, u entities.User) error
	UpdateGuestContact(ctx context.Context, userID, firstName, lastName, phone string) error
}

type Publisher interface {
	Publish(ctx context.Context, event events.OrderEvent) error
}

type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	Delete(key string)
}

var storeRetry = utils.RetryConfig{
	InitialDelay: 100 * time.Millisecond,
	MaxAttempts:  5,
	Multiplier:   2,
}

type checkoutService struct {
	logger    *slog.Logger
	txManager trm.Manager
	orders    OrderRepo
	users     UserRepo
	gateways  map[entities.PaymentGateway]gateway.Gateway
	publisher Publisher
	cache     Cache
}

func NewCheckoutService(
	logger *slog.Logger,
	txManager trm.Manager,
	orders OrderRepo,
	users UserRepo,
	gateways map[entities.PaymentGateway]gateway.Gateway,
	publisher Publisher,
	cache Cache,
) *checkoutService {
	return &checkoutService{
		logger:    logger.With(slog.String("service", "checkout")),
		txManager: txManager,
		orders:    orders,
		users:     users,
		gateways:  gateways,
		publisher: publisher,
		cache:     cache,
	}
}

// Checkout runs one checkout attempt end to end: idempotency check, user
// resolution, server-side total, order creation and (for online methods)
// gateway intent creation, all inside one atomic scope. A failure anywhere
// rolls the whole attempt back, so no pending order without a payment
// token is left behind.
func (s *checkoutService) Checkout(ctx context.Context, in entities.CheckoutInput) (entities.CheckoutResult, error) {
	if in.AuthUserID == "" && in.Guest == nil {
		return entities.CheckoutResult{}, entities.ErrGuestInfoMissing
	}

	gatewayName, online := in.PaymentMethod.GatewayFor()
	if !online && in.PaymentMethod != entities.MethodCOD {
		return entities.CheckoutResult{}, entities.ErrUnsupportedMethod
	}

	var gw gateway.Gateway
	if online {
		var ok bool
		if gw, ok = s.gateways[gatewayName]; !ok {
			return entities.CheckoutResult{}, entities.ErrUnsupportedGateway
		}
	}

	now := time.Now()
	draft := entities.Order{
		ID:             uuid.NewString(),
		Items:          in.Items,
		TotalAmount:    entities.ComputeTotal(in.Items),
		Currency:       in.Currency,
		Status:         entities.StatusPending,
		IdempotencyKey: in.IdempotencyKey,
		CouponCode:     in.CouponCode,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if online {
		draft.PaymentGateway = gatewayName
	} else {
		draft.Status = entities.StatusPendingCOD
	}
	if in.Guest != nil {
		draft.Shipping = in.Guest.Shipping()
	}

	if err := draft.ValidateDraft(); err != nil {
		return entities.CheckoutResult{}, err
	}

	// Retries and double-submits short-circuit before any side effects.
	if in.IdempotencyKey != "" {
		existing, err := s.orders.GetOrderByIdempotencyKey(ctx, in.IdempotencyKey)
		if err == nil {
			return entities.CheckoutResult{Order: existing, AlreadyProcessed: true}, nil
		}
		if !errors.Is(err, entities.ErrOrderNotFound) {
			return entities.CheckoutResult{}, err
		}
	}

	var result entities.CheckoutResult
	run := func(ctx context.Context) error {
		userID, err := s.resolveUser(ctx, in)
		if err != nil {
			return err
		}
		draft.UserID = userID

		if err := s.orders.CreateOrder(ctx, draft); err != nil {
			return err
		}

		if online {
			intent, err := gw.CreateIntent(ctx, gateway.IntentRequest{
				OrderID:  draft.ID,
				Amount:   draft.TotalAmount,
				Currency: draft.Currency,
			})
			if err != nil {
				return fmt.Errorf("%w: %v", entities.ErrPaymentInitFailed, err)
			}

			draft.PaymentToken = intent.ID
			draft.PaymentMetadata = entities.Metadata{
				"gateway":    string(gatewayName),
				"intent_ref": intent.ProviderRef,
			}
			if err := s.orders.AttachPayment(ctx, draft.ID, intent.ID, draft.PaymentMetadata); err != nil {
				return err
			}
			result.ClientSecret = intent.ClientSecret
		}

		result.Order = draft
		return nil
	}

	err := s.txManager.Do(ctx, run)

	// A concurrent first-time checkout created the same guest; the
	// unique violation aborted this transaction, but the winner's row is
	// visible to a fresh one, so a single re-run reuses it.
	if errors.Is(err, entities.ErrUserAlreadyExists) {
		err = s.txManager.Do(ctx, run)
	}

	// A concurrent attempt with the same key won the create race; its
	// order is this attempt's outcome, not a failure.
	if errors.Is(err, entities.ErrDuplicateIdempotencyKey) && in.IdempotencyKey != "" {
		existing, ferr := s.orders.GetOrderByIdempotencyKey(ctx, in.IdempotencyKey)
		if ferr != nil {
			return entities.CheckoutResult{}, err
		}
		return entities.CheckoutResult{Order: existing, AlreadyProcessed: true}, nil
	}
	if err != nil {
		return entities.CheckoutResult{}, err
	}

	s.logger.InfoContext(ctx, "order created",
		slog.String("order_id", result.Order.ID),
		slog.String("status", string(result.Order.Status)),
		slog.Int64("total_amount", result.Order.TotalAmount))

	s.publish(ctx, events.NewOrderEvent(events.TypeOrderCreated, result.Order))

	return result, nil
}

// publish is best-effort: downstream feeds must never fail a committed
// business operation.
func (s *checkoutService) publish(ctx context.Context, event events.OrderEvent) {
	fn := func() error {
		return s.publisher.Publish(ctx, event)
	}
	if err := utils.Retry(utils.RetryConfig{MaxAttempts: 3, InitialDelay: 50 * time.Millisecond}, fn); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order event",
			slog.String("type", event.Type), slog.String("order_id", event.OrderID), slog.Any("error", err))
	}
}
