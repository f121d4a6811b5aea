package service

import (
	"context"
	"log/slog"

	"github.com/Mazen-Mokhtar/logen-store-sub001/internal/entities"
	"github.com/Mazen-Mokhtar/logen-store-sub001/pkg/utils"

	"golang.org/x/sync/errgroup"
)

// GetOrderStatus serves the status projection, cache first.
func (s *checkoutService) GetOrderStatus(ctx context.Context, orderID string) (entities.OrderSnapshot, error) {
	if data, ok := s.cache.Get(orderID); ok {
		var snap entities.OrderSnapshot
		if err := snap.Unmarshal(data); err == nil {
			return snap, nil
		}
		// Corrupt entry; drop it and fall through to the store.
		s.logger.ErrorContext(ctx, "failed to unmarshal cached snapshot", slog.String("order_id", orderID))
		s.cache.Delete(orderID)
	}

	var order entities.Order
	fn := func() error {
		var err error
		order, err = s.orders.GetOrderByID(ctx, orderID)
		return err
	}
	if err := utils.Retry(storeRetry, fn, entities.ErrOrderNotFound); err != nil {
		return entities.OrderSnapshot{}, err
	}

	snap := entities.SnapshotOf(order)
	if data, err := snap.Marshal(); err == nil {
		s.cache.Set(orderID, data)
	} else {
		s.logger.ErrorContext(ctx, "failed to marshal snapshot", slog.Any("error", err))
	}
	return snap, nil
}

const warmUpConcurrency = 8

// WarmUpCache preloads snapshots of the most recent orders on startup.
func (s *checkoutService) WarmUpCache(ctx context.Context, count int) error {
	orders, err := s.orders.LatestOrders(ctx, count)
	if err != nil {
		return err
	}

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(warmUpConcurrency)
	for _, order := range orders {
		order := order
		g.Go(func() error {
			snap := entities.SnapshotOf(order)
			data, err := snap.Marshal()
			if err != nil {
				return err
			}
			s.cache.Set(order.ID, data)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	s.logger.Info("cache warmed up", slog.Int("orders", len(orders)))
	return nil
}
