package entities

import (
	"errors"
	"time"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusPendingCOD OrderStatus = "pending_cod"
	StatusPlaced     OrderStatus = "placed"
	StatusOnWay      OrderStatus = "on_way"
	StatusDelivered  OrderStatus = "delivered"
	StatusRejected   OrderStatus = "rejected"
	StatusPaid       OrderStatus = "paid"
	StatusFailed     OrderStatus = "failed"
)

// statusTransitions is the full lifecycle graph. Payment transitions
// (pending -> paid/failed, failed -> paid) are applied only by webhook
// reconciliation; fulfillment transitions by back-office operations.
var statusTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusPaid, StatusFailed, StatusRejected},
	StatusPendingCOD: {StatusPlaced, StatusRejected},
	StatusPaid:       {StatusPlaced, StatusRejected},
	StatusFailed:     {StatusPaid, StatusRejected},
	StatusPlaced:     {StatusOnWay, StatusRejected},
	StatusOnWay:      {StatusDelivered, StatusRejected},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPendingCOD, StatusPlaced, StatusOnWay,
		StatusDelivered, StatusRejected, StatusPaid, StatusFailed:
		return true
	}
	return false
}

// CanTransition reports whether moving from s to next is allowed.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Currency string

const (
	CurrencyEGP Currency = "EGP"
	CurrencyUSD Currency = "USD"
	CurrencySAR Currency = "SAR"
	CurrencyAED Currency = "AED"
)

func (c Currency) Valid() bool {
	switch c {
	case CurrencyEGP, CurrencyUSD, CurrencySAR, CurrencyAED:
		return true
	}
	return false
}

type PaymentGateway string

const (
	GatewayStripe PaymentGateway = "stripe"
	GatewayPaymob PaymentGateway = "paymob"
)

type PaymentMethod string

const (
	MethodCOD    PaymentMethod = "cod"
	MethodCard   PaymentMethod = "card"
	MethodWallet PaymentMethod = "wallet"
)

// GatewayFor maps an online payment method to the gateway that serves it.
// COD has no gateway.
func (m PaymentMethod) GatewayFor() (PaymentGateway, bool) {
	switch m {
	case MethodCard:
		return GatewayStripe, true
	case MethodWallet:
		return GatewayPaymob, true
	}
	return "", false
}

// OrderItem is a catalog snapshot copied at checkout time. Prices are in
// minor units (piastres, cents) and are never re-derived from the live
// catalog afterwards.
type OrderItem struct {
	ProductID string
	Title     string
	Price     int64
	Quantity  int
	Size      string
	Color     string
}

// ShippingInfo is the contact snapshot captured for guest checkouts.
type ShippingInfo struct {
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	Address    string
	City       string
	PostalCode string
}

type Metadata map[string]any

type Order struct {
	ID              string
	UserID          string
	Items           []OrderItem
	TotalAmount     int64
	Currency        Currency
	Status          OrderStatus
	PaymentGateway  PaymentGateway
	PaymentToken    string
	PaymentMetadata Metadata
	IdempotencyKey  string
	CouponCode      string
	Shipping        *ShippingInfo
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ComputeTotal sums price*quantity over the item snapshot. This is the only
// place a total is derived; client-submitted totals are never trusted.
func ComputeTotal(items []OrderItem) int64 {
	var total int64
	for _, it := range items {
		total += it.Price * int64(it.Quantity)
	}
	return total
}

var (
	ErrOrderNotFound           = errors.New("order not found")
	ErrEmptyOrder              = errors.New("order has no items")
	ErrInvalidItem             = errors.New("invalid order item")
	ErrUnsupportedCurrency     = errors.New("unsupported currency")
	ErrUnsupportedMethod       = errors.New("unsupported payment method")
	ErrUnsupportedGateway      = errors.New("unsupported payment gateway")
	ErrDuplicateIdempotencyKey = errors.New("idempotency key already used")
	ErrPaymentInitFailed       = errors.New("payment initiation failed")
	ErrInvalidSignature        = errors.New("invalid webhook signature")
	ErrInvalidSnapshot         = errors.New("invalid order snapshot")
)

// ValidateDraft checks the invariants a checkout draft must satisfy before
// any transactional work begins.
func (o Order) ValidateDraft() error {
	if len(o.Items) == 0 {
		return ErrEmptyOrder
	}
	for _, it := range o.Items {
		if it.ProductID == "" || it.Price < 0 || it.Quantity < 1 {
			return ErrInvalidItem
		}
	}
	if !o.Currency.Valid() {
		return ErrUnsupportedCurrency
	}
	return nil
}
