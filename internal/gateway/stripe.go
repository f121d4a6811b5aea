package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Mazen-Mokhtar/logen-store-sub001/internal/config"
	"github.com/Mazen-Mokhtar/logen-store-sub001/internal/entities"
)

const stripeRequestTimeout = 15 * time.Second

// Stripe talks to the PaymentIntents API directly and verifies webhook
// payloads against the Stripe-Signature scheme (t=...,v1=... with
// HMAC-SHA256 over "<t>.<payload>").
type Stripe struct {
	secretKey     string
	webhookSecret string
	baseURL       string
	tolerance     time.Duration
	client        *http.Client
	now           func() time.Time
}

func NewStripe(cfg config.Stripe) *Stripe {
	return &Stripe{
		secretKey:     cfg.SecretKey,
		webhookSecret: cfg.WebhookSecret,
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		tolerance:     cfg.Tolerance,
		client:        &http.Client{Timeout: stripeRequestTimeout},
		now:           time.Now,
	}
}

func (s *Stripe) Name() entities.PaymentGateway {
	return entities.GatewayStripe
}

type stripeIntentResponse struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
}

type stripeErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (s *Stripe) CreateIntent(ctx context.Context, req IntentRequest) (Intent, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(req.Amount, 10))
	form.Set("currency", strings.ToLower(string(req.Currency)))
	form.Set("metadata[order_id]", req.OrderID)
	form.Set("automatic_payment_methods[enabled]", "true")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.baseURL+"/v1/payment_intents", strings.NewReader(form.Encode()))
	if err != nil {
		return Intent{}, fmt.Errorf("stripe: failed to build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+s.secretKey)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Idempotency-Key", req.OrderID)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return Intent{}, fmt.Errorf("stripe: create intent request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Intent{}, fmt.Errorf("stripe: failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr stripeErrorResponse
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
			return Intent{}, fmt.Errorf("stripe: create intent rejected: %s", apiErr.Error.Message)
		}
		return Intent{}, fmt.Errorf("stripe: create intent failed with status %d", resp.StatusCode)
	}

	var intent stripeIntentResponse
	if err := json.Unmarshal(body, &intent); err != nil {
		return Intent{}, fmt.Errorf("stripe: failed to decode intent: %w", err)
	}

	return Intent{
		ID:           intent.ID,
		ClientSecret: intent.ClientSecret,
		ProviderRef:  intent.ID,
	}, nil
}

type stripeEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object stripeObject `json:"object"`
	} `json:"data"`
}

type stripeObject struct {
	ID                 string   `json:"id"`
	Object             string   `json:"object"`
	PaymentIntent      string   `json:"payment_intent"`
	LatestCharge       string   `json:"latest_charge"`
	PaymentMethodTypes []string `json:"payment_method_types"`
	FailureMessage     string   `json:"failure_message"`
	LastPaymentError   *struct {
		Message string `json:"message"`
	} `json:"last_payment_error"`
	Outcome *struct {
		SellerMessage string `json:"seller_message"`
	} `json:"outcome"`
}

func (s *Stripe) ParseNotification(payload []byte, signature string) (Notification, error) {
	if err := s.verifySignature(payload, signature); err != nil {
		return Notification{}, err
	}

	var event stripeEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return Notification{}, fmt.Errorf("stripe: failed to decode event: %w", err)
	}

	obj := event.Data.Object
	n := Notification{
		Gateway:   entities.GatewayStripe,
		EventType: event.Type,
	}

	// Charge events reference the intent indirectly; intent events are
	// the token themselves.
	if obj.Object == "charge" {
		n.PaymentToken = obj.PaymentIntent
		n.TransactionID = obj.ID
	} else {
		n.PaymentToken = obj.ID
		n.TransactionID = obj.LatestCharge
		if n.TransactionID == "" {
			n.TransactionID = obj.ID
		}
	}
	if len(obj.PaymentMethodTypes) > 0 {
		n.PaymentMethod = obj.PaymentMethodTypes[0]
	}

	switch event.Type {
	case "payment_intent.succeeded", "charge.succeeded":
		n.Kind = KindPaymentSucceeded
	case "payment_intent.payment_failed", "charge.failed":
		n.Kind = KindPaymentFailed
		n.FailureReason = failureReason(obj)
	default:
		n.Kind = KindUnhandled
	}

	return n, nil
}

func failureReason(obj stripeObject) string {
	if obj.LastPaymentError != nil && obj.LastPaymentError.Message != "" {
		return obj.LastPaymentError.Message
	}
	if obj.FailureMessage != "" {
		return obj.FailureMessage
	}
	if obj.Outcome != nil && obj.Outcome.SellerMessage != "" {
		return obj.Outcome.SellerMessage
	}
	return "payment failed"
}

func (s *Stripe) verifySignature(payload []byte, header string) error {
	var timestamp int64
	var signatures [][]byte

	for _, part := range strings.Split(header, ",") {
		k, v, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch k {
		case "t":
			ts, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return entities.ErrInvalidSignature
			}
			timestamp = ts
		case "v1":
			sig, err := hex.DecodeString(v)
			if err != nil {
				continue
			}
			signatures = append(signatures, sig)
		}
	}

	if timestamp == 0 || len(signatures) == 0 {
		return entities.ErrInvalidSignature
	}

	age := s.now().Sub(time.Unix(timestamp, 0))
	if age > s.tolerance || age < -s.tolerance {
		return entities.ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, []byte(s.webhookSecret))
	mac.Write([]byte(strconv.FormatInt(timestamp, 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := mac.Sum(nil)

	for _, sig := range signatures {
		if hmac.Equal(expected, sig) {
			return nil
		}
	}
	return entities.ErrInvalidSignature
}
