package repo

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/Mazen-Mokhtar/logen-store-sub001/internal/entities"

	"github.com/jmoiron/sqlx/types"
)

type Order struct {
	ID              string         `db:"id"`
	UserID          string         `db:"user_id"`
	TotalAmount     int64          `db:"total_amount"`
	Currency        string         `db:"currency"`
	Status          string         `db:"status"`
	PaymentGateway  sql.NullString `db:"payment_gateway"`
	PaymentToken    sql.NullString `db:"payment_token"`
	PaymentMetadata types.JSONText `db:"payment_metadata"`
	IdempotencyKey  sql.NullString `db:"idempotency_key"`
	CouponCode      sql.NullString `db:"coupon_code"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

type OrderItem struct {
	OrderID   string         `db:"order_id"`
	ProductID string         `db:"product_id"`
	Title     string         `db:"title"`
	Price     int64          `db:"price"`
	Quantity  int            `db:"quantity"`
	Size      sql.NullString `db:"size"`
	Color     sql.NullString `db:"color"`
}

type OrderShipping struct {
	OrderID    string         `db:"order_id"`
	FirstName  string         `db:"first_name"`
	LastName   sql.NullString `db:"last_name"`
	Email      string         `db:"email"`
	Phone      sql.NullString `db:"phone"`
	Address    string         `db:"address"`
	City       sql.NullString `db:"city"`
	PostalCode sql.NullString `db:"postal_code"`
}

type User struct {
	ID        string         `db:"id"`
	Email     string         `db:"email"`
	FirstName sql.NullString `db:"first_name"`
	LastName  sql.NullString `db:"last_name"`
	Phone     sql.NullString `db:"phone"`
	Provider  string         `db:"provider"`
	Confirmed bool           `db:"confirmed"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

func ItemToEntity(i OrderItem) entities.OrderItem {
	return entities.OrderItem{
		ProductID: i.ProductID,
		Title:     i.Title,
		Price:     i.Price,
		Quantity:  i.Quantity,
		Size:      nullStringToString(i.Size),
		Color:     nullStringToString(i.Color),
	}
}

func ShippingToEntity(s OrderShipping) *entities.ShippingInfo {
	return &entities.ShippingInfo{
		FirstName:  s.FirstName,
		LastName:   nullStringToString(s.LastName),
		Email:      s.Email,
		Phone:      nullStringToString(s.Phone),
		Address:    s.Address,
		City:       nullStringToString(s.City),
		PostalCode: nullStringToString(s.PostalCode),
	}
}

func OrderToEntity(o Order, shipping *OrderShipping, items []OrderItem) entities.Order {
	order := entities.Order{
		ID:             o.ID,
		UserID:         o.UserID,
		TotalAmount:    o.TotalAmount,
		Currency:       entities.Currency(o.Currency),
		Status:         entities.OrderStatus(o.Status),
		PaymentGateway: entities.PaymentGateway(nullStringToString(o.PaymentGateway)),
		PaymentToken:   nullStringToString(o.PaymentToken),
		IdempotencyKey: nullStringToString(o.IdempotencyKey),
		CouponCode:     nullStringToString(o.CouponCode),
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}

	if len(o.PaymentMetadata) > 0 {
		meta := entities.Metadata{}
		if err := json.Unmarshal(o.PaymentMetadata, &meta); err == nil && len(meta) > 0 {
			order.PaymentMetadata = meta
		}
	}

	if shipping != nil {
		order.Shipping = ShippingToEntity(*shipping)
	}

	if len(items) > 0 {
		order.Items = make([]entities.OrderItem, 0, len(items))
		for _, it := range items {
			order.Items = append(order.Items, ItemToEntity(it))
		}
	}

	return order
}

func UserToEntity(u User) entities.User {
	return entities.User{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: nullStringToString(u.FirstName),
		LastName:  nullStringToString(u.LastName),
		Phone:     nullStringToString(u.Phone),
		Provider:  entities.Provider(u.Provider),
		Confirmed: u.Confirmed,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func metadataToJSON(m entities.Metadata) (types.JSONText, error) {
	if len(m) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return types.JSONText(data), nil
}

func nullStringToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
