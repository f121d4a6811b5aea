package handler

import (
	"time"

	"github.com/Mazen-Mokhtar/logen-store-sub001/internal/entities"
)

// Item is a cart line-item snapshot submitted at checkout. Price is in
// minor units; the server never trusts a client-submitted total.
type Item struct {
	ProductID string `json:"product_id" validate:"required"`
	Title     string `json:"title" validate:"required"`
	Price     int64  `json:"price" validate:"gte=0"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
}

// GuestInfo is the contact bundle for unauthenticated checkouts
type GuestInfo struct {
	FirstName  string `json:"first_name" validate:"required"`
	LastName   string `json:"last_name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phone" validate:"required"`
	Address    string `json:"address" validate:"required"`
	City       string `json:"city" validate:"required"`
	PostalCode string `json:"postal_code,omitempty"`
}

// CheckoutRequest is the checkout payload
type CheckoutRequest struct {
	Items          []Item     `json:"items" validate:"required,min=1,dive"`
	Currency       string     `json:"currency" validate:"required,oneof=EGP USD SAR AED"`
	PaymentMethod  string     `json:"payment_method" validate:"required,oneof=cod card wallet"`
	GuestInfo      *GuestInfo `json:"guest_info,omitempty"`
	IdempotencyKey string     `json:"idempotency_key,omitempty"`
	CouponCode     string     `json:"coupon_code,omitempty"`
}

// CheckoutResponse is returned by the checkout endpoint
type CheckoutResponse struct {
	Success      bool   `json:"success"`
	OrderID      string `json:"order_id"`
	Status       string `json:"status"`
	TotalAmount  int64  `json:"total_amount"`
	Currency     string `json:"currency"`
	ClientSecret string `json:"client_secret,omitempty"`
	Message      string `json:"message,omitempty"`
}

// WebhookResponse acknowledges a gateway notification
type WebhookResponse struct {
	Received bool   `json:"received"`
	Message  string `json:"message"`
}

// OrderStatusResponse is the order status snapshot
type OrderStatusResponse struct {
	OrderID        string    `json:"order_id"`
	Status         string    `json:"status"`
	TotalAmount    int64     `json:"total_amount"`
	Currency       string    `json:"currency"`
	PaymentGateway string    `json:"payment_gateway,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func ItemToEntity(i Item) entities.OrderItem {
	return entities.OrderItem{
		ProductID: i.ProductID,
		Title:     i.Title,
		Price:     i.Price,
		Quantity:  i.Quantity,
		Size:      i.Size,
		Color:     i.Color,
	}
}

func GuestInfoToEntity(g *GuestInfo) *entities.GuestInfo {
	if g == nil {
		return nil
	}
	return &entities.GuestInfo{
		FirstName:  g.FirstName,
		LastName:   g.LastName,
		Email:      g.Email,
		Phone:      g.Phone,
		Address:    g.Address,
		City:       g.City,
		PostalCode: g.PostalCode,
	}
}

func CheckoutRequestToInput(req CheckoutRequest, authUserID string) entities.CheckoutInput {
	items := make([]entities.OrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, ItemToEntity(it))
	}

	return entities.CheckoutInput{
		AuthUserID:     authUserID,
		Guest:          GuestInfoToEntity(req.GuestInfo),
		Items:          items,
		Currency:       entities.Currency(req.Currency),
		PaymentMethod:  entities.PaymentMethod(req.PaymentMethod),
		IdempotencyKey: req.IdempotencyKey,
		CouponCode:     req.CouponCode,
	}
}

func CheckoutResultToResponse(res entities.CheckoutResult) CheckoutResponse {
	resp := CheckoutResponse{
		Success:      true,
		OrderID:      res.Order.ID,
		Status:       string(res.Order.Status),
		TotalAmount:  res.Order.TotalAmount,
		Currency:     string(res.Order.Currency),
		ClientSecret: res.ClientSecret,
	}
	if res.AlreadyProcessed {
		resp.Message = "order already processed"
	}
	return resp
}

func SnapshotToResponse(s entities.OrderSnapshot) OrderStatusResponse {
	return OrderStatusResponse{
		OrderID:        s.OrderID,
		Status:         string(s.Status),
		TotalAmount:    s.TotalAmount,
		Currency:       string(s.Currency),
		PaymentGateway: string(s.PaymentGateway),
		UpdatedAt:      s.UpdatedAt,
	}
}
