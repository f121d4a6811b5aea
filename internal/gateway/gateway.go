package gateway

import (
	"context"

	"github.com/Mazen-Mokhtar/logen-store-sub001/internal/entities"
)

// EventKind is the normalized class of a gateway notification. Each
// adapter maps its own event vocabulary onto these; the reconciler only
// ever sees the normalized kind plus the raw event type for audit.
type EventKind string

const (
	KindPaymentSucceeded EventKind = "payment_succeeded"
	KindPaymentFailed    EventKind = "payment_failed"
	KindUnhandled        EventKind = "unhandled"
)

// IntentRequest carries everything needed to open a payment intent.
// Amount is in minor units.
type IntentRequest struct {
	OrderID  string
	Amount   int64
	Currency entities.Currency
}

// Intent is the gateway-side handle for a pending charge. ID is the token
// webhooks will later be reconciled by; ClientSecret goes back to the
// client to complete the payment; ProviderRef is the gateway's own object
// id when it differs from the reconciliation token.
type Intent struct {
	ID           string
	ClientSecret string
	ProviderRef  string
}

// Notification is a verified, normalized webhook event.
type Notification struct {
	Gateway       entities.PaymentGateway
	EventType     string
	Kind          EventKind
	PaymentToken  string
	TransactionID string
	PaymentMethod string
	FailureReason string
}

type Gateway interface {
	Name() entities.PaymentGateway
	CreateIntent(ctx context.Context, req IntentRequest) (Intent, error)
	// ParseNotification verifies the signature before anything else;
	// a verification failure surfaces as entities.ErrInvalidSignature.
	ParseNotification(payload []byte, signature string) (Notification, error)
}
