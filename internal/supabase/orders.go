package supabase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"woodlinks-backend/internal/models"
)

const orderColumns = `id, user_id, card_id, status, material, quantity,
	shipping_name, shipping_postal_code, shipping_address1, shipping_address2, shipping_phone,
	currency, unit_price, subtotal, tax, shipping_fee, total,
	stripe_payment_intent_id, stripe_checkout_session_id, carrier, tracking_number,
	paid_at, shipped_at, created_at, updated_at`

func scanOrder(row rowScanner) (*models.Order, error) {
	var o models.Order
	err := row.Scan(
		&o.ID, &o.UserID, &o.CardID, &o.Status, &o.Material, &o.Quantity,
		&o.ShippingName, &o.ShippingPostalCode, &o.ShippingAddress1, &o.ShippingAddress2, &o.ShippingPhone,
		&o.Currency, &o.UnitPrice, &o.Subtotal, &o.Tax, &o.ShippingFee, &o.Total,
		&o.StripePaymentIntentID, &o.StripeCheckoutSessionID, &o.Carrier, &o.TrackingNumber,
		&o.PaidAt, &o.ShippedAt, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (d *DatabaseClient) CreateOrder(ctx context.Context, order *models.Order) error {
	err := d.db.QueryRowContext(ctx, `
		INSERT INTO orders (id, user_id, card_id, status, material, quantity,
			shipping_name, shipping_postal_code, shipping_address1, shipping_address2, shipping_phone)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`, order.ID, order.UserID, order.CardID, order.Status, order.Material, order.Quantity,
		order.ShippingName, order.ShippingPostalCode, order.ShippingAddress1, order.ShippingAddress2, order.ShippingPhone,
	).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (d *DatabaseClient) GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	row := d.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, orderID)
	order, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return order, nil
}

func (d *DatabaseClient) ListOrders(ctx context.Context, filter models.OrderFilter) ([]models.Order, error) {
	query := d.psql.Select(orderColumns).From("orders").OrderBy("created_at DESC")

	if filter.Status != nil {
		query = query.Where(sq.Eq{"status": string(*filter.Status)})
	}
	if filter.CardID != nil {
		query = query.Where(sq.Eq{"card_id": *filter.CardID})
	}
	if filter.UserID != nil {
		query = query.Where(sq.Eq{"user_id": *filter.UserID})
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build order query: %w", err)
	}

	rows, err := d.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order rows: %w", err)
	}

	return orders, nil
}

// ListOrdersByCard returns newest first; the first entry is the canonical order.
func (d *DatabaseClient) ListOrdersByCard(ctx context.Context, cardID uuid.UUID) ([]models.Order, error) {
	return d.ListOrders(ctx, models.OrderFilter{CardID: &cardID})
}

func (d *DatabaseClient) SetCheckoutDetails(ctx context.Context, orderID uuid.UUID, details models.CheckoutDetails) error {
	_, err := d.db.ExecContext(ctx, `
		UPDATE orders
		SET stripe_checkout_session_id = $1, currency = $2, unit_price = $3, subtotal = $4, total = $5
		WHERE id = $6
	`, details.SessionID, details.Currency, details.UnitPrice, details.Subtotal, details.Total, orderID)
	if err != nil {
		return fmt.Errorf("failed to save checkout session: %w", err)
	}
	return nil
}

// MarkOrderPaid is a flat assignment with no status precondition, so a
// redelivered webhook leaves the row unchanged.
func (d *DatabaseClient) MarkOrderPaid(ctx context.Context, orderID uuid.UUID, paymentIntentID string, paidAt time.Time) (int64, error) {
	res, err := d.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $1, paid_at = $2,
			stripe_payment_intent_id = COALESCE(NULLIF($3, ''), stripe_payment_intent_id)
		WHERE id = $4
	`, models.OrderStatusPaid, paidAt, paymentIntentID, orderID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark order paid: %w", err)
	}
	return res.RowsAffected()
}

func (d *DatabaseClient) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, update models.OrderStatusUpdate) (int64, error) {
	values := map[string]interface{}{"status": string(update.Status)}
	if update.TrackingNumber != nil {
		values["tracking_number"] = *update.TrackingNumber
	}
	if update.Carrier != nil {
		values["carrier"] = *update.Carrier
	}
	if update.PaidAt != nil {
		values["paid_at"] = *update.PaidAt
	}
	if update.ShippedAt != nil {
		values["shipped_at"] = *update.ShippedAt
	}

	sqlStr, args, err := d.psql.Update("orders").SetMap(values).Where(sq.Eq{"id": orderID}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build order update: %w", err)
	}

	res, err := d.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to update order status: %w", err)
	}
	return res.RowsAffected()
}

// DeletePendingOrder removes the order only while it is owned by userID and
// still awaiting payment.
func (d *DatabaseClient) DeletePendingOrder(ctx context.Context, orderID, userID uuid.UUID) (int64, error) {
	res, err := d.db.ExecContext(ctx, `
		DELETE FROM orders
		WHERE id = $1 AND user_id = $2 AND status = $3
	`, orderID, userID, models.OrderStatusPendingPayment)
	if err != nil {
		return 0, fmt.Errorf("failed to delete order: %w", err)
	}
	return res.RowsAffected()
}

func (d *DatabaseClient) CountOrdersByStatus(ctx context.Context) (map[models.OrderStatus]int64, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM orders GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.OrderStatus]int64)
	for rows.Next() {
		var status models.OrderStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan order count: %w", err)
		}
		counts[status] = count
	}
	return counts, rows.Err()
}
