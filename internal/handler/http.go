package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/Mazen-Mokhtar/logen-store-sub001/internal/entities"
	"github.com/Mazen-Mokhtar/logen-store-sub001/internal/middleware"
	"github.com/Mazen-Mokhtar/logen-store-sub001/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type CheckoutService interface {
	Checkout(ctx context.Context, in entities.CheckoutInput) (entities.CheckoutResult, error)
	HandleWebhook(ctx context.Context, gw entities.PaymentGateway, payload []byte, signature string) (entities.ReconcileResult, error)
	GetOrderStatus(ctx context.Context, orderID string) (entities.OrderSnapshot, error)
}

type HTTPHandler struct {
	logger   *slog.Logger
	validate *validator.Validate
	svc      CheckoutService
}

func NewHTTPHandler(logger *slog.Logger, svc CheckoutService) *HTTPHandler {
	return &HTTPHandler{
		logger:   logger.With(slog.String("handler", "http")),
		validate: validator.New(),
		svc:      svc,
	}
}

func (h *HTTPHandler) Init(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/checkout", h.Checkout)
		r.Get("/orders/{order_id}", h.GetOrderStatus)
		r.Post("/webhooks/stripe", h.StripeWebhook)
		r.Post("/webhooks/paymob", h.PaymobWebhook)
	})
}

// Checkout creates an order.
// @Summary      Submit a checkout
// @Description  Creates an order from a cart snapshot, resolving the guest or authenticated user and, for online payment methods, opening a payment intent
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header    string           false  "Idempotency key, overrides the body field"
// @Param        request          body      CheckoutRequest  true   "Checkout payload"
// @Success      201  {object}  CheckoutResponse
// @Success      200  {object}  CheckoutResponse "Idempotent replay of an already processed checkout"
// @Failure      400  {object}  utils.ValidationErrorResponse
// @Failure      409  {object}  utils.ErrorResponse "Guest email belongs to a registered account"
// @Failure      502  {object}  utils.ErrorResponse "Payment gateway rejected the intent"
// @Router       /api/checkout [post]
func (h *HTTPHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	var req CheckoutRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if key := r.Header.Get("Idempotency-Key"); key != "" {
		req.IdempotencyKey = key
	}

	if err := h.validate.Struct(req); err != nil {
		checkoutsTotal.WithLabelValues(req.PaymentMethod, outcomeRejected).Inc()
		utils.WriteValidationError(w, err)
		return
	}

	var authUserID string
	if id, ok := middleware.IdentityFromContext(ctx); ok {
		authUserID = id.UserID
	}

	// Reject guest checkouts without contact info before any work starts.
	if authUserID == "" && req.GuestInfo == nil {
		checkoutsTotal.WithLabelValues(req.PaymentMethod, outcomeRejected).Inc()
		utils.WriteError(w, "guest info is required for unauthenticated checkout", http.StatusBadRequest)
		return
	}

	result, err := h.svc.Checkout(ctx, CheckoutRequestToInput(req, authUserID))
	checkoutDuration.Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
	case errors.Is(err, entities.ErrEmailTaken):
		checkoutsTotal.WithLabelValues(req.PaymentMethod, outcomeRejected).Inc()
		utils.WriteError(w, "email belongs to a registered account, please log in", http.StatusConflict)
		return
	case errors.Is(err, entities.ErrPaymentInitFailed):
		checkoutsTotal.WithLabelValues(req.PaymentMethod, outcomeError).Inc()
		h.logger.ErrorContext(ctx, "payment initiation failed", slog.Any("error", err))
		utils.WriteError(w, "payment initiation failed", http.StatusBadGateway)
		return
	case errors.Is(err, entities.ErrGuestInfoMissing),
		errors.Is(err, entities.ErrEmptyOrder),
		errors.Is(err, entities.ErrInvalidItem),
		errors.Is(err, entities.ErrUnsupportedCurrency),
		errors.Is(err, entities.ErrUnsupportedMethod),
		errors.Is(err, entities.ErrUnsupportedGateway):
		checkoutsTotal.WithLabelValues(req.PaymentMethod, outcomeRejected).Inc()
		utils.WriteError(w, err.Error(), http.StatusBadRequest)
		return
	default:
		checkoutsTotal.WithLabelValues(req.PaymentMethod, outcomeError).Inc()
		h.logger.ErrorContext(ctx, "checkout failed", slog.Any("error", err))
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	code := http.StatusCreated
	outcome := outcomeCreated
	if result.AlreadyProcessed {
		code = http.StatusOK
		outcome = outcomeAlreadyProcessed
	}
	checkoutsTotal.WithLabelValues(req.PaymentMethod, outcome).Inc()

	utils.WriteJSON(w, CheckoutResultToResponse(result), code)
}

// StripeWebhook consumes Stripe payment notifications.
// @Summary      Stripe webhook endpoint
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Param        Stripe-Signature  header  string  true  "Stripe signature header"
// @Success      200  {object}  WebhookResponse
// @Failure      400  {object}  utils.ErrorResponse "Signature verification failed"
// @Failure      404  {object}  utils.ErrorResponse "Unknown payment token"
// @Router       /api/webhooks/stripe [post]
func (h *HTTPHandler) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	h.handleWebhook(w, r, entities.GatewayStripe, r.Header.Get("Stripe-Signature"))
}

// PaymobWebhook consumes Paymob transaction callbacks.
// @Summary      Paymob webhook endpoint
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Param        hmac  query  string  true  "Callback HMAC"
// @Success      200  {object}  WebhookResponse
// @Failure      400  {object}  utils.ErrorResponse "HMAC verification failed"
// @Failure      404  {object}  utils.ErrorResponse "Unknown payment token"
// @Router       /api/webhooks/paymob [post]
func (h *HTTPHandler) PaymobWebhook(w http.ResponseWriter, r *http.Request) {
	h.handleWebhook(w, r, entities.GatewayPaymob, r.URL.Query().Get("hmac"))
}

func (h *HTTPHandler) handleWebhook(w http.ResponseWriter, r *http.Request, gw entities.PaymentGateway, signature string) {
	ctx := r.Context()
	name := string(gw)

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		utils.WriteError(w, "failed to read payload", http.StatusBadRequest)
		return
	}

	result, err := h.svc.HandleWebhook(ctx, gw, payload, signature)

	switch {
	case err == nil:
	case errors.Is(err, entities.ErrInvalidSignature):
		webhooksTotal.WithLabelValues(name, outcomeInvalidSignature).Inc()
		h.logger.WarnContext(ctx, "webhook signature verification failed", slog.String("gateway", name))
		utils.WriteError(w, "invalid signature", http.StatusBadRequest)
		return
	case errors.Is(err, entities.ErrOrderNotFound):
		// Not silently dropped: the gateway gets an error so it retries,
		// and the miss is visible in logs and metrics.
		webhooksTotal.WithLabelValues(name, outcomeUnknownOrder).Inc()
		utils.WriteError(w, "unknown payment token", http.StatusNotFound)
		return
	default:
		webhooksTotal.WithLabelValues(name, outcomeError).Inc()
		h.logger.ErrorContext(ctx, "webhook processing failed", slog.String("gateway", name), slog.Any("error", err))
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	outcome := outcomeSkipped
	if result.Applied {
		outcome = outcomeApplied
	}
	webhooksTotal.WithLabelValues(name, outcome).Inc()

	message := result.Message
	if message == "" {
		message = "processed"
	}
	utils.WriteJSON(w, WebhookResponse{Received: true, Message: message}, http.StatusOK)
}

// GetOrderStatus returns the order status snapshot.
// @Summary      Get order status
// @Tags         orders
// @Produce      json
// @Param        order_id  path  string  true  "Order id"
// @Success      200  {object}  OrderStatusResponse
// @Failure      404  {object}  utils.ErrorResponse "Order not found"
// @Router       /api/orders/{order_id} [get]
func (h *HTTPHandler) GetOrderStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orderID := chi.URLParam(r, "order_id")

	if err := h.validate.Var(orderID, "required,uuid4"); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	snap, err := h.svc.GetOrderStatus(ctx, orderID)

	if errors.Is(err, entities.ErrOrderNotFound) {
		utils.WriteError(w, "order not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get order status", slog.Any("error", err), slog.String("order_id", orderID))
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, SnapshotToResponse(snap), http.StatusOK)
}
