package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPendingPayment OrderStatus = "pending_payment"
	OrderStatusPaid           OrderStatus = "paid"
	OrderStatusInProduction   OrderStatus = "in_production"
	OrderStatusShipped        OrderStatus = "shipped"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"
	OrderStatusRefunded       OrderStatus = "refunded"
)

var OrderStatuses = []OrderStatus{
	OrderStatusPendingPayment,
	OrderStatusPaid,
	OrderStatusInProduction,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
	OrderStatusRefunded,
}

func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// CommittedStatuses are the states in which money has been taken for a card.
// A card with an order in any of them cannot be deleted.
var CommittedStatuses = []OrderStatus{
	OrderStatusPaid,
	OrderStatusInProduction,
	OrderStatusShipped,
	OrderStatusDelivered,
}

type Material string

const (
	MaterialSugi   Material = "sugi"
	MaterialHinoki Material = "hinoki"
	MaterialKeyaki Material = "keyaki"
)

var Materials = []Material{MaterialSugi, MaterialHinoki, MaterialKeyaki}

func (m Material) Valid() bool {
	for _, known := range Materials {
		if m == known {
			return true
		}
	}
	return false
}

type Order struct {
	ID     uuid.UUID
	UserID uuid.UUID
	CardID uuid.UUID
	Status OrderStatus

	Material Material
	Quantity int

	ShippingName       string
	ShippingPostalCode string
	ShippingAddress1   string
	ShippingAddress2   sql.NullString
	ShippingPhone      string

	Currency    sql.NullString
	UnitPrice   sql.NullInt64
	Subtotal    sql.NullInt64
	Tax         sql.NullInt64
	ShippingFee sql.NullInt64
	Total       sql.NullInt64

	StripePaymentIntentID   sql.NullString
	StripeCheckoutSessionID sql.NullString

	Carrier        sql.NullString
	TrackingNumber sql.NullString

	PaidAt    sql.NullTime
	ShippedAt sql.NullTime
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OrderStatusUpdate carries an admin transition. Timestamps are derived from
// the target status by the service layer before reaching storage.
type OrderStatusUpdate struct {
	Status         OrderStatus
	TrackingNumber *string
	Carrier        *string
	PaidAt         *time.Time
	ShippedAt      *time.Time
}

// CheckoutDetails is persisted best-effort once a hosted session exists.
type CheckoutDetails struct {
	SessionID string
	Currency  string
	UnitPrice int64
	Subtotal  int64
	Total     int64
}

type OrderFilter struct {
	Status *OrderStatus
	CardID *uuid.UUID
	UserID *uuid.UUID
	Limit  uint64
	Offset uint64
}
