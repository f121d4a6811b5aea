package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Mazen-Mokhtar/logen-store-sub001/internal/config"
	"github.com/Mazen-Mokhtar/logen-store-sub001/internal/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPaymob(baseURL string) *Paymob {
	return NewPaymob(config.Paymob{
		SecretKey:  "egy_sk_test",
		PublicKey:  "egy_pk_test",
		HMACSecret: "hmac_test",
		BaseURL:    baseURL,
	})
}

// paymobTxFixture mirrors the transaction object of a Paymob callback.
// String values of numeric fields must survive round trips untouched, so
// the fixture keeps them as raw JSON numbers.
type paymobTxFixture struct {
	success bool
	pending bool
	message string
}

func (f paymobTxFixture) payload() []byte {
	return []byte(fmt.Sprintf(`{
		"type": "TRANSACTION",
		"obj": {
			"id": 9001,
			"amount_cents": 10000,
			"created_at": "2026-08-30T12:00:00",
			"currency": "EGP",
			"error_occured": false,
			"has_parent_transaction": false,
			"integration_id": 42,
			"is_3d_secure": true,
			"is_auth": false,
			"is_capture": false,
			"is_refunded": false,
			"is_standalone_payment": true,
			"is_voided": false,
			"owner": 7,
			"pending": %t,
			"success": %t,
			"order": {"id": 555, "merchant_order_id": "pmb-ord-1"},
			"source_data": {"pan": "1234", "sub_type": "MasterCard", "type": "card"},
			"data": {"message": %q}
		}
	}`, f.pending, f.success, f.message))
}

func (f paymobTxFixture) sign(secret string) string {
	concat := "10000" + "2026-08-30T12:00:00" + "EGP" +
		"false" + "false" + // error_occured, has_parent_transaction
		"9001" + "42" +
		"true" + "false" + "false" + "false" + "true" + "false" + // is_* flags
		"555" + "7" +
		fmt.Sprintf("%t", f.pending) +
		"1234" + "MasterCard" + "card" +
		fmt.Sprintf("%t", f.success)

	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(concat))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestPaymobCreateIntent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/intention/", r.URL.Path)
		assert.Equal(t, "Token egy_sk_test", r.Header.Get("Authorization"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, float64(100), req["amount"])
		assert.Equal(t, "EGP", req["currency"])
		assert.Equal(t, "pmb-ord-1", req["special_reference"])

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"int_abc","client_secret":"egy_csk_xyz"}`)
	}))
	defer srv.Close()

	p := newTestPaymob(srv.URL)
	intent, err := p.CreateIntent(context.Background(), IntentRequest{
		OrderID:  "ord-1",
		Amount:   100,
		Currency: entities.CurrencyEGP,
	})
	require.NoError(t, err)

	assert.Equal(t, "pmb-ord-1", intent.ID, "merchant reference is the reconciliation token")
	assert.Equal(t, "egy_csk_xyz", intent.ClientSecret)
	assert.Equal(t, "int_abc", intent.ProviderRef)
}

func TestPaymobCreateIntent_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	p := newTestPaymob(srv.URL)
	_, err := p.CreateIntent(context.Background(), IntentRequest{OrderID: "ord-1", Amount: 100, Currency: entities.CurrencyEGP})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestPaymobParseNotification(t *testing.T) {
	p := newTestPaymob("https://accept.paymob.com")

	t.Run("successful transaction", func(t *testing.T) {
		f := paymobTxFixture{success: true}

		n, err := p.ParseNotification(f.payload(), f.sign("hmac_test"))
		require.NoError(t, err)

		assert.Equal(t, KindPaymentSucceeded, n.Kind)
		assert.Equal(t, "transaction.processed", n.EventType)
		assert.Equal(t, "pmb-ord-1", n.PaymentToken)
		assert.Equal(t, "9001", n.TransactionID)
		assert.Equal(t, "card", n.PaymentMethod)
	})

	t.Run("declined transaction", func(t *testing.T) {
		f := paymobTxFixture{message: "BALANCE IS NOT ENOUGH"}

		n, err := p.ParseNotification(f.payload(), f.sign("hmac_test"))
		require.NoError(t, err)

		assert.Equal(t, KindPaymentFailed, n.Kind)
		assert.Equal(t, "transaction.declined", n.EventType)
		assert.Equal(t, "BALANCE IS NOT ENOUGH", n.FailureReason)
	})

	t.Run("declined without a message", func(t *testing.T) {
		f := paymobTxFixture{}

		n, err := p.ParseNotification(f.payload(), f.sign("hmac_test"))
		require.NoError(t, err)

		assert.Equal(t, KindPaymentFailed, n.Kind)
		assert.Equal(t, "transaction declined", n.FailureReason)
	})

	t.Run("pending transaction is not applied", func(t *testing.T) {
		f := paymobTxFixture{pending: true}

		n, err := p.ParseNotification(f.payload(), f.sign("hmac_test"))
		require.NoError(t, err)

		assert.Equal(t, KindUnhandled, n.Kind)
		assert.Equal(t, "transaction.pending", n.EventType)
	})

	t.Run("uppercase hmac is accepted", func(t *testing.T) {
		f := paymobTxFixture{success: true}

		n, err := p.ParseNotification(f.payload(), strings.ToUpper(f.sign("hmac_test")))
		require.NoError(t, err)
		assert.Equal(t, KindPaymentSucceeded, n.Kind)
	})

	t.Run("wrong hmac secret", func(t *testing.T) {
		f := paymobTxFixture{success: true}

		_, err := p.ParseNotification(f.payload(), f.sign("other_secret"))

		assert.ErrorIs(t, err, entities.ErrInvalidSignature)
	})

	t.Run("missing hmac", func(t *testing.T) {
		f := paymobTxFixture{success: true}

		_, err := p.ParseNotification(f.payload(), "")

		assert.ErrorIs(t, err, entities.ErrInvalidSignature)
	})

	t.Run("non-transaction callback", func(t *testing.T) {
		n, err := p.ParseNotification([]byte(`{"type":"TOKEN","obj":{}}`), "")
		require.NoError(t, err)

		assert.Equal(t, KindUnhandled, n.Kind)
		assert.Equal(t, "token", n.EventType)
	})

	t.Run("malformed payload", func(t *testing.T) {
		_, err := p.ParseNotification([]byte(`not json`), "sig")

		assert.Error(t, err)
	})
}
