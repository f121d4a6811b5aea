package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Mazen-Mokhtar/logen-store-sub001/internal/entities"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

var orderColumns = []string{
	"id", "user_id", "total_amount", "currency", "status",
	"payment_gateway", "payment_token", "payment_metadata",
	"idempotency_key", "coupon_code", "created_at", "updated_at",
}

type OrdersRepo struct {
	base
}

func NewOrdersRepo(db *sqlx.DB) *OrdersRepo {
	return &OrdersRepo{base: newBase(db)}
}

// CreateOrder persists the order aggregate: order row, shipping snapshot
// and item snapshots. A unique violation on the idempotency key means a
// concurrent attempt with the same key already won the race.
func (r *OrdersRepo) CreateOrder(ctx context.Context, o entities.Order) error {
	metadata, err := metadataToJSON(o.PaymentMetadata)
	if err != nil {
		return fmt.Errorf("failed to marshal payment metadata: %w", err)
	}

	query, args := r.qb.Insert("orders").
		Columns(orderColumns...).
		Values(
			o.ID, o.UserID, o.TotalAmount, string(o.Currency), string(o.Status),
			nullString(string(o.PaymentGateway)), nullString(o.PaymentToken), metadata,
			nullString(o.IdempotencyKey), nullString(o.CouponCode), o.CreatedAt, o.UpdatedAt,
		).
		MustSql()

	if _, err := r.execContext(ctx, query, args...); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return entities.ErrDuplicateIdempotencyKey
		}
		return fmt.Errorf("failed to insert order: %w", err)
	}

	if o.Shipping != nil {
		if err := r.saveShipping(ctx, o.ID, *o.Shipping); err != nil {
			return err
		}
	}

	return r.saveItems(ctx, o.ID, o.Items)
}

func (r *OrdersRepo) saveShipping(ctx context.Context, orderID string, s entities.ShippingInfo) error {
	query, args := r.qb.Insert("order_shipping").
		Columns("order_id", "first_name", "last_name", "email", "phone", "address", "city", "postal_code").
		Values(
			orderID, s.FirstName, nullString(s.LastName), s.Email,
			nullString(s.Phone), s.Address, nullString(s.City), nullString(s.PostalCode),
		).
		MustSql()

	if _, err := r.execContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert shipping: %w", err)
	}
	return nil
}

func (r *OrdersRepo) saveItems(ctx context.Context, orderID string, items []entities.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	q := r.qb.Insert("order_items").
		Columns("order_id", "product_id", "title", "price", "quantity", "size", "color")

	for _, it := range items {
		q = q.Values(orderID, it.ProductID, it.Title, it.Price, it.Quantity,
			nullString(it.Size), nullString(it.Color))
	}

	query, args := q.MustSql()
	if _, err := r.execContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert items: %w", err)
	}
	return nil
}

// AttachPayment records the gateway linkage produced by intent creation.
func (r *OrdersRepo) AttachPayment(ctx context.Context, orderID, token string, metadata entities.Metadata) error {
	meta, err := metadataToJSON(metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal payment metadata: %w", err)
	}

	query, args := r.qb.Update("orders").
		Set("payment_token", token).
		Set("payment_metadata", meta).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": orderID}).
		MustSql()

	res, err := r.execContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to attach payment: %w", err)
	}
	return requireRowUpdated(res)
}

// UpdateStatus moves the order to the given status and replaces its payment
// metadata in one statement; callers decide the merged metadata beforehand.
func (r *OrdersRepo) UpdateStatus(ctx context.Context, orderID string, status entities.OrderStatus, metadata entities.Metadata) error {
	meta, err := metadataToJSON(metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal payment metadata: %w", err)
	}

	query, args := r.qb.Update("orders").
		Set("status", string(status)).
		Set("payment_metadata", meta).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": orderID}).
		MustSql()

	res, err := r.execContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	return requireRowUpdated(res)
}

func (r *OrdersRepo) GetOrderByID(ctx context.Context, orderID string) (entities.Order, error) {
	return r.findOne(ctx, sq.Eq{"id": orderID})
}

func (r *OrdersRepo) GetOrderByIdempotencyKey(ctx context.Context, key string) (entities.Order, error) {
	return r.findOne(ctx, sq.Eq{"idempotency_key": key})
}

func (r *OrdersRepo) GetOrderByPaymentToken(ctx context.Context, token string) (entities.Order, error) {
	return r.findOne(ctx, sq.Eq{"payment_token": token})
}

func (r *OrdersRepo) findOne(ctx context.Context, pred sq.Eq) (entities.Order, error) {
	query, args := r.qb.Select(orderColumns...).
		From("orders").
		Where(pred).
		MustSql()

	var order Order
	err := r.getContext(ctx, &order, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.Order{}, entities.ErrOrderNotFound
	}
	if err != nil {
		return entities.Order{}, fmt.Errorf("failed to get order: %w", err)
	}

	query, args = r.qb.Select(
		"order_id", "first_name", "last_name", "email", "phone", "address", "city", "postal_code").
		From("order_shipping").
		Where(sq.Eq{"order_id": order.ID}).
		MustSql()

	var shipping *OrderShipping
	var sh OrderShipping
	err = r.getContext(ctx, &sh, query, args...)
	if err == nil {
		shipping = &sh
	} else if !errors.Is(err, sql.ErrNoRows) {
		return entities.Order{}, fmt.Errorf("failed to get shipping: %w", err)
	}

	query, args = r.qb.Select(
		"order_id", "product_id", "title", "price", "quantity", "size", "color").
		From("order_items").
		Where(sq.Eq{"order_id": order.ID}).
		MustSql()

	var items []OrderItem
	if err := r.selectContext(ctx, &items, query, args...); err != nil {
		return entities.Order{}, fmt.Errorf("failed to get items: %w", err)
	}

	return OrderToEntity(order, shipping, items), nil
}

// LatestOrders returns the most recent order rows without loading item or
// shipping snapshots; the warm-up path only needs status projections.
func (r *OrdersRepo) LatestOrders(ctx context.Context, count int) ([]entities.Order, error) {
	query, args := r.qb.Select(orderColumns...).
		From("orders").
		OrderBy("created_at DESC").
		Limit(uint64(count)).
		MustSql()

	var orders []Order
	if err := r.selectContext(ctx, &orders, query, args...); err != nil {
		return nil, fmt.Errorf("failed to select latest orders: %w", err)
	}

	result := make([]entities.Order, 0, len(orders))
	for _, o := range orders {
		result = append(result, OrderToEntity(o, nil, nil))
	}
	return result, nil
}

func requireRowUpdated(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return entities.ErrOrderNotFound
	}
	return nil
}
