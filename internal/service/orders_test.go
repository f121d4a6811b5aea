package service_test

import (
	"context"
	"testing"

	"github.com/Mazen-Mokhtar/logen-store-sub001/internal/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGetOrderStatus(t *testing.T) {
	t.Run("cache miss loads from store and caches", func(t *testing.T) {
		ts := newTestService(t)

		order := pendingOrder("pi_123")
		ts.orders.On("GetOrderByID", mock.Anything, "ord-1").
			Return(order, nil).Once()

		snap, err := ts.svc.GetOrderStatus(context.Background(), "ord-1")
		require.NoError(t, err)

		assert.Equal(t, "ord-1", snap.OrderID)
		assert.Equal(t, entities.StatusPending, snap.Status)
		assert.Equal(t, int64(100), snap.TotalAmount)

		_, cached := ts.cache.Get("ord-1")
		assert.True(t, cached, "a store read must populate the cache")

		// Second call must be served from cache.
		snap2, err := ts.svc.GetOrderStatus(context.Background(), "ord-1")
		require.NoError(t, err)
		assert.Equal(t, snap, snap2)
		ts.orders.AssertNumberOfCalls(t, "GetOrderByID", 1)
	})

	t.Run("unknown order", func(t *testing.T) {
		ts := newTestService(t)

		ts.orders.On("GetOrderByID", mock.Anything, "nope").
			Return(entities.Order{}, entities.ErrOrderNotFound).Once()

		_, err := ts.svc.GetOrderStatus(context.Background(), "nope")

		assert.ErrorIs(t, err, entities.ErrOrderNotFound)
		ts.orders.AssertNumberOfCalls(t, "GetOrderByID", 1)
	})

	t.Run("corrupt cache entry falls back to store", func(t *testing.T) {
		ts := newTestService(t)
		ts.cache.Set("ord-1", []byte("not a snapshot"))

		ts.orders.On("GetOrderByID", mock.Anything, "ord-1").
			Return(pendingOrder("pi_123"), nil).Once()

		snap, err := ts.svc.GetOrderStatus(context.Background(), "ord-1")
		require.NoError(t, err)

		assert.Equal(t, "ord-1", snap.OrderID)
		assert.Contains(t, ts.cache.deletes, "ord-1")
	})
}

func TestWarmUpCache(t *testing.T) {
	ts := newTestService(t)

	orders := []entities.Order{
		{ID: "ord-1", Status: entities.StatusPaid, TotalAmount: 100, Currency: entities.CurrencyEGP},
		{ID: "ord-2", Status: entities.StatusPending, TotalAmount: 250, Currency: entities.CurrencyEGP},
	}
	ts.orders.On("LatestOrders", mock.Anything, 2).Return(orders, nil).Once()

	err := ts.svc.WarmUpCache(context.Background(), 2)
	require.NoError(t, err)

	for _, o := range orders {
		data, ok := ts.cache.Get(o.ID)
		require.True(t, ok, "order %s missing from cache", o.ID)

		var snap entities.OrderSnapshot
		require.NoError(t, snap.Unmarshal(data))
		assert.Equal(t, o.Status, snap.Status)
	}
}
