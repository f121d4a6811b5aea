package entities

import (
	"bytes"
	"encoding/gob"
	"time"
)

// GuestInfo is the contact bundle submitted by an unauthenticated purchaser.
type GuestInfo struct {
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	Address    string
	City       string
	PostalCode string
}

func (g GuestInfo) Shipping() *ShippingInfo {
	return &ShippingInfo{
		FirstName:  g.FirstName,
		LastName:   g.LastName,
		Email:      g.Email,
		Phone:      g.Phone,
		Address:    g.Address,
		City:       g.City,
		PostalCode: g.PostalCode,
	}
}

// CheckoutInput is everything a single checkout attempt carries.
// AuthUserID is set when the caller presented a valid token; Guest is the
// fallback identity for everyone else.
type CheckoutInput struct {
	AuthUserID     string
	Guest          *GuestInfo
	Items          []OrderItem
	Currency       Currency
	PaymentMethod  PaymentMethod
	IdempotencyKey string
	CouponCode     string
}

type CheckoutResult struct {
	Order            Order
	ClientSecret     string
	AlreadyProcessed bool
}

type ReconcileResult struct {
	Order   Order
	Applied bool
	Message string
}

// OrderSnapshot is the read projection served by the status endpoint and
// kept in the LRU cache.
type OrderSnapshot struct {
	OrderID        string
	Status         OrderStatus
	TotalAmount    int64
	Currency       Currency
	PaymentGateway PaymentGateway
	UpdatedAt      time.Time
}

func SnapshotOf(o Order) OrderSnapshot {
	return OrderSnapshot{
		OrderID:        o.ID,
		Status:         o.Status,
		TotalAmount:    o.TotalAmount,
		Currency:       o.Currency,
		PaymentGateway: o.PaymentGateway,
		UpdatedAt:      o.UpdatedAt,
	}
}

func (s *OrderSnapshot) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *OrderSnapshot) Unmarshal(data []byte) error {
	if err := gob.NewDecoder(bytes.NewBuffer(data)).Decode(s); err != nil {
		return ErrInvalidSnapshot
	}
	return nil
}

func init() {
	gob.Register(OrderSnapshot{})
}
