package entities_test

import (
	"testing"

	"github.com/Mazen-Mokhtar/logen-store-sub001/internal/entities"

	"github.com/stretchr/testify/assert"
)

func TestComputeTotal(t *testing.T) {
	testCases := []struct {
		name  string
		items []entities.OrderItem
		want  int64
	}{
		{
			name:  "single line",
			items: []entities.OrderItem{{Price: 50, Quantity: 2}},
			want:  100,
		},
		{
			name: "multiple lines",
			items: []entities.OrderItem{
				{Price: 50, Quantity: 2},
				{Price: 1999, Quantity: 1},
				{Price: 10, Quantity: 3},
			},
			want: 2129,
		},
		{
			name:  "free item",
			items: []entities.OrderItem{{Price: 0, Quantity: 5}},
			want:  0,
		},
		{
			name: "no items",
			want: 0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, entities.ComputeTotal(tc.items))
		})
	}
}

func TestOrderStatusCanTransition(t *testing.T) {
	testCases := []struct {
		from entities.OrderStatus
		to   entities.OrderStatus
		want bool
	}{
		{entities.StatusPending, entities.StatusPaid, true},
		{entities.StatusPending, entities.StatusFailed, true},
		{entities.StatusPending, entities.StatusRejected, true},
		{entities.StatusPending, entities.StatusDelivered, false},

		{entities.StatusPendingCOD, entities.StatusPlaced, true},
		{entities.StatusPendingCOD, entities.StatusPaid, false},

		// A recovered payment may follow a failed attempt, but a
		// confirmed payment never regresses.
		{entities.StatusFailed, entities.StatusPaid, true},
		{entities.StatusPaid, entities.StatusFailed, false},
		{entities.StatusPaid, entities.StatusPaid, false},
		{entities.StatusPaid, entities.StatusPlaced, true},

		{entities.StatusPlaced, entities.StatusOnWay, true},
		{entities.StatusOnWay, entities.StatusDelivered, true},
		{entities.StatusDelivered, entities.StatusRejected, false},
		{entities.StatusRejected, entities.StatusPending, false},
	}

	for _, tc := range testCases {
		t.Run(string(tc.from)+"_to_"+string(tc.to), func(t *testing.T) {
			assert.Equal(t, tc.want, tc.from.CanTransition(tc.to))
		})
	}
}

func TestValidateDraft(t *testing.T) {
	valid := entities.Order{
		Items:    []entities.OrderItem{{ProductID: "p1", Price: 50, Quantity: 1}},
		Currency: entities.CurrencyEGP,
	}

	t.Run("valid draft", func(t *testing.T) {
		assert.NoError(t, valid.ValidateDraft())
	})

	t.Run("no items", func(t *testing.T) {
		o := valid
		o.Items = nil
		assert.ErrorIs(t, o.ValidateDraft(), entities.ErrEmptyOrder)
	})

	t.Run("item without product", func(t *testing.T) {
		o := valid
		o.Items = []entities.OrderItem{{Price: 50, Quantity: 1}}
		assert.ErrorIs(t, o.ValidateDraft(), entities.ErrInvalidItem)
	})

	t.Run("negative price", func(t *testing.T) {
		o := valid
		o.Items = []entities.OrderItem{{ProductID: "p1", Price: -1, Quantity: 1}}
		assert.ErrorIs(t, o.ValidateDraft(), entities.ErrInvalidItem)
	})

	t.Run("zero quantity", func(t *testing.T) {
		o := valid
		o.Items = []entities.OrderItem{{ProductID: "p1", Price: 50, Quantity: 0}}
		assert.ErrorIs(t, o.ValidateDraft(), entities.ErrInvalidItem)
	})

	t.Run("unsupported currency", func(t *testing.T) {
		o := valid
		o.Currency = "BTC"
		assert.ErrorIs(t, o.ValidateDraft(), entities.ErrUnsupportedCurrency)
	})
}

func TestSnapshotRoundTrip(t *testing.T) {
	snap := entities.OrderSnapshot{
		OrderID:        "ord-1",
		Status:         entities.StatusPaid,
		TotalAmount:    100,
		Currency:       entities.CurrencyEGP,
		PaymentGateway: entities.GatewayStripe,
	}

	data, err := snap.Marshal()
	assert.NoError(t, err)

	var got entities.OrderSnapshot
	assert.NoError(t, got.Unmarshal(data))
	assert.Equal(t, snap, got)

	var corrupt entities.OrderSnapshot
	assert.ErrorIs(t, corrupt.Unmarshal([]byte("garbage")), entities.ErrInvalidSnapshot)
}
