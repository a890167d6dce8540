package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"woodlinks-backend/internal/config"
	"woodlinks-backend/internal/logger"
	"woodlinks-backend/internal/models"
	"woodlinks-backend/internal/notify"
	"woodlinks-backend/internal/payments"
)

type OrderInput struct {
	CardID             uuid.UUID
	Material           string
	Quantity           int
	ShippingName       string
	ShippingPostalCode string
	ShippingAddress1   string
	ShippingAddress2   string
	ShippingPhone      string
}

type StatusChange struct {
	Status         string
	TrackingNumber *string
	Carrier        *string
}

type CheckoutResult struct {
	OrderID   uuid.UUID
	SessionID string
	URL       string
}

type OrderService struct {
	orders   OrderStore
	cards    CardStore
	gateway  payments.Gateway
	notifier notify.Notifier
	config   *config.Config
	logger   logger.Logger
	now      func() time.Time

	background sync.WaitGroup
}

func NewOrderService(
	orders OrderStore,
	cards CardStore,
	gateway payments.Gateway,
	notifier notify.Notifier,
	cfg *config.Config,
	log logger.Logger,
) *OrderService {
	return &OrderService{
		orders:   orders,
		cards:    cards,
		gateway:  gateway,
		notifier: notifier,
		config:   cfg,
		logger:   log,
		now:      time.Now,
	}
}

// Wait blocks until pending paid-order notifications have been sent.
func (s *OrderService) Wait() {
	s.background.Wait()
}

// CreateOrder records a purchase intent for one of the caller's cards. No
// price is stored until checkout.
func (s *OrderService) CreateOrder(ctx context.Context, caller Caller, input OrderInput) (*models.Order, error) {
	if err := requireUser(caller); err != nil {
		return nil, err
	}
	if err := validateOrderInput(input); err != nil {
		return nil, err
	}

	card, err := s.cards.GetCard(ctx, input.CardID)
	if err != nil {
		return nil, err
	}
	if !card.OwnedBy(caller.UserID) {
		return nil, ErrForbidden
	}

	order := &models.Order{
		ID:                 uuid.New(),
		UserID:             caller.UserID,
		CardID:             card.ID,
		Status:             models.OrderStatusPendingPayment,
		Material:           models.Material(input.Material),
		Quantity:           input.Quantity,
		ShippingName:       strings.TrimSpace(input.ShippingName),
		ShippingPostalCode: strings.TrimSpace(input.ShippingPostalCode),
		ShippingAddress1:   strings.TrimSpace(input.ShippingAddress1),
		ShippingPhone:      strings.TrimSpace(input.ShippingPhone),
	}
	if line2 := strings.TrimSpace(input.ShippingAddress2); line2 != "" {
		order.ShippingAddress2 = sql.NullString{String: line2, Valid: true}
	}

	if err := s.orders.CreateOrder(ctx, order); err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"order_id": order.ID.String(),
		"card_id":  order.CardID.String(),
		"user_id":  caller.UserID.String(),
	}).Info("Order created")

	return order, nil
}

func validateOrderInput(input OrderInput) error {
	if input.CardID == uuid.Nil {
		return invalid("card_id", "is required")
	}
	if !models.Material(input.Material).Valid() {
		return ErrUnknownMaterial
	}
	if input.Quantity < 1 {
		return invalid("quantity", "must be at least 1")
	}
	required := []struct{ field, value string }{
		{"shipping_name", input.ShippingName},
		{"shipping_postal_code", input.ShippingPostalCode},
		{"shipping_address1", input.ShippingAddress1},
		{"shipping_phone", input.ShippingPhone},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return invalid(r.field, "is required")
		}
	}
	return nil
}

// StartCheckout prices the order and opens a hosted checkout session for it.
func (s *OrderService) StartCheckout(ctx context.Context, caller Caller, orderID uuid.UUID) (*CheckoutResult, error) {
	if err := requireUser(caller); err != nil {
		return nil, err
	}

	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != caller.UserID {
		return nil, ErrForbidden
	}
	if order.Status != models.OrderStatusPendingPayment {
		return nil, ErrOrderNotPending
	}

	quote, err := payments.PriceFor(order.Material, order.Quantity)
	if err != nil {
		return nil, err
	}

	if s.gateway == nil || !s.config.PaymentsEnabled() {
		return nil, ErrPaymentsDisabled
	}

	currency := strings.ToLower(s.config.CheckoutCurrency)
	session, err := s.gateway.CreateCheckoutSession(ctx, payments.CheckoutRequest{
		OrderID:     order.ID,
		UserID:      order.UserID,
		CardID:      order.CardID,
		ProductName: fmt.Sprintf("WoodLinks card (%s) x %d", order.Material, order.Quantity),
		Amount:      quote.Total,
		Currency:    currency,
		SuccessURL:  fmt.Sprintf("%s/orders/%s?checkout=success", s.config.BaseURL, order.ID),
		CancelURL:   fmt.Sprintf("%s/cards/%s/order?checkout=cancelled", s.config.BaseURL, order.CardID),
	})
	if errors.Is(err, payments.ErrNotConfigured) {
		return nil, ErrPaymentsDisabled
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaymentProvider, err)
	}

	// The webhook correlates on metadata, so losing this write is tolerable.
	details := models.CheckoutDetails{
		SessionID: session.ID,
		Currency:  currency,
		UnitPrice: quote.UnitPrice,
		Subtotal:  quote.Total,
		Total:     quote.Total,
	}
	if err := s.orders.SetCheckoutDetails(ctx, order.ID, details); err != nil {
		s.logger.WithFields(map[string]interface{}{
			"order_id":   order.ID.String(),
			"session_id": session.ID,
			"error":      err.Error(),
		}).Error("Failed to persist checkout session")
	}

	return &CheckoutResult{OrderID: order.ID, SessionID: session.ID, URL: session.URL}, nil
}

// HandlePaymentEvent verifies and applies a provider webhook delivery.
// Signature problems return payments.ErrInvalidSignature or
// payments.ErrNotConfigured; storage failures are returned so the provider
// retries. Everything else is acknowledged.
func (s *OrderService) HandlePaymentEvent(ctx context.Context, payload []byte, signature string) error {
	if s.gateway == nil {
		return payments.ErrNotConfigured
	}

	event, err := s.gateway.ParseWebhook(payload, signature)
	if err != nil {
		return err
	}

	log := s.logger.WithFields(map[string]interface{}{
		"event_id":   event.ID,
		"event_type": event.Type,
	})

	if event.Type != payments.EventCheckoutSessionCompleted {
		log.Debug("Ignoring webhook event")
		return nil
	}
	if event.OrderID == "" {
		log.Warn("Checkout completed without order_id metadata")
		return nil
	}

	orderID, err := uuid.Parse(event.OrderID)
	if err != nil {
		log.WithField("order_id", event.OrderID).Warn("Checkout completed with malformed order_id")
		return nil
	}
	log = log.WithField("order_id", orderID.String())

	previous, err := s.orders.GetOrder(ctx, orderID)
	if errors.Is(err, models.ErrNotFound) {
		log.Warn("Checkout completed for unknown order")
		return nil
	}
	if err != nil {
		return err
	}

	if _, err := s.orders.MarkOrderPaid(ctx, orderID, event.PaymentIntentID, s.now().UTC()); err != nil {
		return err
	}
	log.Info("Order marked paid")

	if previous.Status == models.OrderStatusPaid {
		return nil
	}

	paid, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		log.WithField("error", err.Error()).Warn("Failed to reload paid order for notification")
		return nil
	}
	s.notifyPaid(paid, log)
	return nil
}

// notifyPaid sends the admin email in the background; see Wait.
func (s *OrderService) notifyPaid(order *models.Order, log logger.Logger) {
	if s.notifier == nil {
		return
	}
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		if err := s.notifier.OrderPaid(order); err != nil {
			log.WithField("error", err.Error()).Warn("Failed to send paid order notification")
		}
	}()
}

// AdminUpdateStatus applies any known status to any order. Moving to paid or
// shipped stamps the matching timestamp.
func (s *OrderService) AdminUpdateStatus(ctx context.Context, caller Caller, orderID uuid.UUID, change StatusChange) (*models.Order, error) {
	if err := requireAdmin(s.config, caller); err != nil {
		return nil, err
	}

	status := models.OrderStatus(change.Status)
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	update := models.OrderStatusUpdate{
		Status:         status,
		TrackingNumber: change.TrackingNumber,
		Carrier:        change.Carrier,
	}
	now := s.now().UTC()
	switch status {
	case models.OrderStatusPaid:
		update.PaidAt = &now
	case models.OrderStatusShipped:
		update.ShippedAt = &now
	}

	rows, err := s.orders.UpdateOrderStatus(ctx, orderID, update)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, models.ErrNotFound
	}

	s.logger.WithFields(map[string]interface{}{
		"order_id": orderID.String(),
		"status":   string(status),
		"admin":    caller.Email,
	}).Info("Order status updated")

	return s.orders.GetOrder(ctx, orderID)
}

// DeleteOrder removes one of the caller's orders while it awaits payment.
func (s *OrderService) DeleteOrder(ctx context.Context, caller Caller, orderID uuid.UUID) error {
	if err := requireUser(caller); err != nil {
		return err
	}

	rows, err := s.orders.DeletePendingOrder(ctx, orderID, caller.UserID)
	if err != nil {
		return err
	}
	if rows > 0 {
		return nil
	}

	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if order.UserID != caller.UserID {
		return ErrForbidden
	}
	return ErrOrderNotDeletable
}

func (s *OrderService) GetOrder(ctx context.Context, caller Caller, orderID uuid.UUID) (*models.Order, error) {
	if err := requireUser(caller); err != nil {
		return nil, err
	}
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != caller.UserID && !s.config.IsAdminEmail(caller.Email) {
		return nil, ErrForbidden
	}
	return order, nil
}

func (s *OrderService) ListMyOrders(ctx context.Context, caller Caller) ([]models.Order, error) {
	if err := requireUser(caller); err != nil {
		return nil, err
	}
	return s.orders.ListOrders(ctx, models.OrderFilter{UserID: &caller.UserID})
}

func (s *OrderService) AdminListOrders(ctx context.Context, caller Caller, filter models.OrderFilter) ([]models.Order, error) {
	if err := requireAdmin(s.config, caller); err != nil {
		return nil, err
	}
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	if filter.Limit == 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	return s.orders.ListOrders(ctx, filter)
}
