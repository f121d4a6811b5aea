package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Mazen-Mokhtar/logen-store-sub001/internal/config"
	"github.com/Mazen-Mokhtar/logen-store-sub001/internal/entities"
)

const paymobRequestTimeout = 15 * time.Second

// Paymob uses the Intention API for intent creation and HMAC-SHA512 over
// an ordered field list for transaction callbacks. The reconciliation
// token is a merchant reference we generate and pass as special_reference;
// Paymob echoes it back as order.merchant_order_id in the callback.
type Paymob struct {
	secretKey  string
	publicKey  string
	hmacSecret string
	baseURL    string
	client     *http.Client
}

func NewPaymob(cfg config.Paymob) *Paymob {
	return &Paymob{
		secretKey:  cfg.SecretKey,
		publicKey:  cfg.PublicKey,
		hmacSecret: cfg.HMACSecret,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		client:     &http.Client{Timeout: paymobRequestTimeout},
	}
}

func (p *Paymob) Name() entities.PaymentGateway {
	return entities.GatewayPaymob
}

type paymobIntentionRequest struct {
	Amount           int64          `json:"amount"`
	Currency         string         `json:"currency"`
	PaymentMethods   []string       `json:"payment_methods"`
	SpecialReference string         `json:"special_reference"`
	Extras           map[string]any `json:"extras,omitempty"`
}

type paymobIntentionResponse struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
}

func (p *Paymob) CreateIntent(ctx context.Context, req IntentRequest) (Intent, error) {
	// The merchant reference doubles as the payment token the callback
	// is later matched by.
	reference := "pmb-" + req.OrderID

	body, err := json.Marshal(paymobIntentionRequest{
		Amount:           req.Amount,
		Currency:         string(req.Currency),
		PaymentMethods:   []string{"wallet", "card"},
		SpecialReference: reference,
		Extras:           map[string]any{"order_id": req.OrderID},
	})
	if err != nil {
		return Intent{}, fmt.Errorf("paymob: failed to marshal intention: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.baseURL+"/v1/intention/", bytes.NewReader(body))
	if err != nil {
		return Intent{}, fmt.Errorf("paymob: failed to build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Token "+p.secretKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return Intent{}, fmt.Errorf("paymob: create intention request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Intent{}, fmt.Errorf("paymob: failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Intent{}, fmt.Errorf("paymob: create intention failed with status %d", resp.StatusCode)
	}

	var intention paymobIntentionResponse
	if err := json.Unmarshal(respBody, &intention); err != nil {
		return Intent{}, fmt.Errorf("paymob: failed to decode intention: %w", err)
	}

	return Intent{
		ID:           reference,
		ClientSecret: intention.ClientSecret,
		ProviderRef:  intention.ID,
	}, nil
}

type paymobCallback struct {
	Type string            `json:"type"`
	Obj  paymobTransaction `json:"obj"`
}

type paymobTransaction struct {
	ID                   json.Number `json:"id"`
	AmountCents          json.Number `json:"amount_cents"`
	CreatedAt            string      `json:"created_at"`
	Currency             string      `json:"currency"`
	ErrorOccured         bool        `json:"error_occured"`
	HasParentTransaction bool        `json:"has_parent_transaction"`
	IntegrationID        json.Number `json:"integration_id"`
	Is3DSecure           bool        `json:"is_3d_secure"`
	IsAuth               bool        `json:"is_auth"`
	IsCapture            bool        `json:"is_capture"`
	IsRefunded           bool        `json:"is_refunded"`
	IsStandalonePayment  bool        `json:"is_standalone_payment"`
	IsVoided             bool        `json:"is_voided"`
	Owner                json.Number `json:"owner"`
	Pending              bool        `json:"pending"`
	Success              bool        `json:"success"`

	Order struct {
		ID              json.Number `json:"id"`
		MerchantOrderID string      `json:"merchant_order_id"`
	} `json:"order"`

	SourceData struct {
		Pan     string `json:"pan"`
		SubType string `json:"sub_type"`
		Type    string `json:"type"`
	} `json:"source_data"`

	Data struct {
		Message string `json:"message"`
	} `json:"data"`
}

// Normalized event names for the Paymob transaction vocabulary.
const (
	paymobEventProcessed = "transaction.processed"
	paymobEventDeclined  = "transaction.declined"
	paymobEventPending   = "transaction.pending"
)

func (p *Paymob) ParseNotification(payload []byte, signature string) (Notification, error) {
	var cb paymobCallback
	if err := json.Unmarshal(payload, &cb); err != nil {
		return Notification{}, fmt.Errorf("paymob: failed to decode callback: %w", err)
	}

	// The HMAC scheme only covers transaction fields, so non-TRANSACTION
	// callbacks (TOKEN, DELIVERY_STATUS) cannot be verified. They carry
	// KindUnhandled, which the reconciler acknowledges without touching
	// any order state.
	if cb.Type != "TRANSACTION" {
		return Notification{
			Gateway:   entities.GatewayPaymob,
			EventType: strings.ToLower(cb.Type),
			Kind:      KindUnhandled,
		}, nil
	}

	if err := p.verifyTransaction(cb.Obj, signature); err != nil {
		return Notification{}, err
	}

	n := Notification{
		Gateway:       entities.GatewayPaymob,
		PaymentToken:  cb.Obj.Order.MerchantOrderID,
		TransactionID: cb.Obj.ID.String(),
		PaymentMethod: cb.Obj.SourceData.Type,
	}

	switch {
	case cb.Obj.Pending:
		n.EventType = paymobEventPending
		n.Kind = KindUnhandled
	case cb.Obj.Success:
		n.EventType = paymobEventProcessed
		n.Kind = KindPaymentSucceeded
	default:
		n.EventType = paymobEventDeclined
		n.Kind = KindPaymentFailed
		n.FailureReason = cb.Obj.Data.Message
		if n.FailureReason == "" {
			n.FailureReason = "transaction declined"
		}
	}

	return n, nil
}

// verifyTransaction recomputes the callback HMAC: SHA-512 over the
// documented field list in lexicographic order, hex encoded.
func (p *Paymob) verifyTransaction(tx paymobTransaction, signature string) error {
	if signature == "" {
		return entities.ErrInvalidSignature
	}

	var sb strings.Builder
	for _, field := range []string{
		tx.AmountCents.String(),
		tx.CreatedAt,
		tx.Currency,
		formatBool(tx.ErrorOccured),
		formatBool(tx.HasParentTransaction),
		tx.ID.String(),
		tx.IntegrationID.String(),
		formatBool(tx.Is3DSecure),
		formatBool(tx.IsAuth),
		formatBool(tx.IsCapture),
		formatBool(tx.IsRefunded),
		formatBool(tx.IsStandalonePayment),
		formatBool(tx.IsVoided),
		tx.Order.ID.String(),
		tx.Owner.String(),
		formatBool(tx.Pending),
		tx.SourceData.Pan,
		tx.SourceData.SubType,
		tx.SourceData.Type,
		formatBool(tx.Success),
	} {
		sb.WriteString(field)
	}

	mac := hmac.New(sha512.New, []byte(p.hmacSecret))
	mac.Write([]byte(sb.String()))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(signature))) {
		return entities.ErrInvalidSignature
	}
	return nil
}

func formatBool(b bool) string {
	return strconv.FormatBool(b)
}
