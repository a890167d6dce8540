package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"woodlinks-backend/internal/logger"
	"woodlinks-backend/internal/mocks"
	"woodlinks-backend/internal/models"
	"woodlinks-backend/internal/payments"
	"woodlinks-backend/internal/services"
	"woodlinks-backend/internal/test/testutil"
)

type orderFixture struct {
	store    *testutil.MemoryStore
	gateway  *mocks.MockGateway
	notifier *mocks.MockNotifier
	svc      *services.OrderService
	owner    services.Caller
	admin    services.Caller
	card     *models.Card
}

func newOrderFixture(t *testing.T) *orderFixture {
	ctrl := gomock.NewController(t)
	store := testutil.NewMemoryStore()
	gateway := mocks.NewMockGateway(ctrl)
	notifier := mocks.NewMockNotifier(ctrl)

	owner := services.Caller{UserID: uuid.New(), Email: "owner@example.com"}
	card := store.AddCard(models.Card{
		Slug:    "owner-card",
		Title:   "Owner",
		OwnerID: uuid.NullUUID{UUID: owner.UserID, Valid: true},
	})

	svc := services.NewOrderService(store, store, gateway, notifier, testutil.Config(), logger.NewTestLogger(t))
	t.Cleanup(svc.Wait)

	return &orderFixture{
		store:    store,
		gateway:  gateway,
		notifier: notifier,
		svc:      svc,
		owner:    owner,
		admin:    services.Caller{UserID: uuid.New(), Email: testutil.AdminEmail},
		card:     card,
	}
}

func validOrderInput(cardID uuid.UUID) services.OrderInput {
	return services.OrderInput{
		CardID:             cardID,
		Material:           "hinoki",
		Quantity:           3,
		ShippingName:       "Yamada Taro",
		ShippingPostalCode: "100-0001",
		ShippingAddress1:   "1-1 Chiyoda",
		ShippingPhone:      "090-1234-5678",
	}
}

func (f *orderFixture) pendingOrder(material models.Material, qty int) *models.Order {
	return f.store.AddOrder(models.Order{
		UserID:   f.owner.UserID,
		CardID:   f.card.ID,
		Status:   models.OrderStatusPendingPayment,
		Material: material,
		Quantity: qty,
	})
}

func TestCreateOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("creates pending order without price", func(t *testing.T) {
		f := newOrderFixture(t)
		order, err := f.svc.CreateOrder(ctx, f.owner, validOrderInput(f.card.ID))
		require.NoError(t, err)

		assert.Equal(t, models.OrderStatusPendingPayment, order.Status)
		assert.Equal(t, f.owner.UserID, order.UserID)
		assert.False(t, order.Total.Valid)

		stored, err := f.store.GetOrder(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, models.MaterialHinoki, stored.Material)
	})

	t.Run("requires authentication", func(t *testing.T) {
		f := newOrderFixture(t)
		_, err := f.svc.CreateOrder(ctx, services.Caller{}, validOrderInput(f.card.ID))
		assert.ErrorIs(t, err, services.ErrUnauthenticated)
	})

	t.Run("rejects unknown material", func(t *testing.T) {
		f := newOrderFixture(t)
		input := validOrderInput(f.card.ID)
		input.Material = "oak"
		_, err := f.svc.CreateOrder(ctx, f.owner, input)
		assert.ErrorIs(t, err, services.ErrUnknownMaterial)
	})

	t.Run("rejects zero quantity", func(t *testing.T) {
		f := newOrderFixture(t)
		input := validOrderInput(f.card.ID)
		input.Quantity = 0
		_, err := f.svc.CreateOrder(ctx, f.owner, input)
		assert.True(t, services.IsValidationError(err))
	})

	t.Run("rejects blank shipping field", func(t *testing.T) {
		f := newOrderFixture(t)
		input := validOrderInput(f.card.ID)
		input.ShippingPhone = "   "
		_, err := f.svc.CreateOrder(ctx, f.owner, input)

		var validation *services.ValidationError
		require.True(t, errors.As(err, &validation))
		assert.Equal(t, "shipping_phone", validation.Field)
	})

	t.Run("rejects someone else's card", func(t *testing.T) {
		f := newOrderFixture(t)
		stranger := services.Caller{UserID: uuid.New()}
		_, err := f.svc.CreateOrder(ctx, stranger, validOrderInput(f.card.ID))
		assert.ErrorIs(t, err, services.ErrForbidden)
	})

	t.Run("unknown card is not found", func(t *testing.T) {
		f := newOrderFixture(t)
		_, err := f.svc.CreateOrder(ctx, f.owner, validOrderInput(uuid.New()))
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestStartCheckout(t *testing.T) {
	ctx := context.Background()

	t.Run("prices with ceiling rounding and stores session", func(t *testing.T) {
		f := newOrderFixture(t)
		order := f.pendingOrder(models.MaterialSugi, 3)

		f.gateway.EXPECT().
			CreateCheckoutSession(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req payments.CheckoutRequest) (*payments.CheckoutSession, error) {
				// 33000 * 3 / 100 = 990
				assert.Equal(t, int64(990), req.Amount)
				assert.Equal(t, "jpy", req.Currency)
				assert.Equal(t, order.ID, req.OrderID)
				assert.Equal(t, "https://woodlinks.test/orders/"+order.ID.String()+"?checkout=success", req.SuccessURL)
				return &payments.CheckoutSession{ID: "cs_test_1", URL: "https://checkout.stripe.test/cs_test_1"}, nil
			})

		result, err := f.svc.StartCheckout(ctx, f.owner, order.ID)
		require.NoError(t, err)
		assert.Equal(t, "cs_test_1", result.SessionID)
		assert.Equal(t, "https://checkout.stripe.test/cs_test_1", result.URL)

		stored, _ := f.store.GetOrder(ctx, order.ID)
		assert.Equal(t, "cs_test_1", stored.StripeCheckoutSessionID.String)
		assert.Equal(t, int64(990), stored.Total.Int64)
		assert.Equal(t, models.OrderStatusPendingPayment, stored.Status)
	})

	t.Run("rejects non-pending orders", func(t *testing.T) {
		f := newOrderFixture(t)
		order := f.store.AddOrder(models.Order{
			UserID: f.owner.UserID, CardID: f.card.ID, Status: models.OrderStatusPaid,
			Material: models.MaterialSugi, Quantity: 1,
		})
		_, err := f.svc.StartCheckout(ctx, f.owner, order.ID)
		assert.ErrorIs(t, err, services.ErrOrderNotPending)
	})

	t.Run("rejects other users", func(t *testing.T) {
		f := newOrderFixture(t)
		order := f.pendingOrder(models.MaterialSugi, 1)
		_, err := f.svc.StartCheckout(ctx, services.Caller{UserID: uuid.New()}, order.ID)
		assert.ErrorIs(t, err, services.ErrForbidden)
	})

	t.Run("provider failure is wrapped", func(t *testing.T) {
		f := newOrderFixture(t)
		order := f.pendingOrder(models.MaterialKeyaki, 1)
		f.gateway.EXPECT().CreateCheckoutSession(gomock.Any(), gomock.Any()).
			Return(nil, errors.New("card_declined"))

		_, err := f.svc.StartCheckout(ctx, f.owner, order.ID)
		assert.ErrorIs(t, err, services.ErrPaymentProvider)
	})

	t.Run("payments disabled without secret key", func(t *testing.T) {
		cfg := testutil.Config()
		cfg.StripeSecretKey = ""
		store := testutil.NewMemoryStore()
		owner := services.Caller{UserID: uuid.New()}
		order := store.AddOrder(models.Order{
			UserID: owner.UserID, CardID: uuid.New(), Status: models.OrderStatusPendingPayment,
			Material: models.MaterialSugi, Quantity: 1,
		})
		svc := services.NewOrderService(store, store, mocks.NewMockGateway(gomock.NewController(t)), nil, cfg, logger.NewTestLogger(t))

		_, err := svc.StartCheckout(ctx, owner, order.ID)
		assert.ErrorIs(t, err, services.ErrPaymentsDisabled)
	})
}

func TestHandlePaymentEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("marks order paid and notifies once", func(t *testing.T) {
		f := newOrderFixture(t)
		order := f.pendingOrder(models.MaterialHinoki, 1)
		event := &payments.WebhookEvent{
			ID: "evt_1", Type: payments.EventCheckoutSessionCompleted,
			OrderID: order.ID.String(), PaymentIntentID: "pi_1",
		}

		f.gateway.EXPECT().ParseWebhook(gomock.Any(), "sig").Return(event, nil).Times(2)
		f.notifier.EXPECT().OrderPaid(gomock.Any()).Return(nil).Times(1)

		require.NoError(t, f.svc.HandlePaymentEvent(ctx, []byte("{}"), "sig"))
		first, _ := f.store.GetOrder(ctx, order.ID)
		assert.Equal(t, models.OrderStatusPaid, first.Status)
		assert.Equal(t, "pi_1", first.StripePaymentIntentID.String)
		assert.True(t, first.PaidAt.Valid)

		// Redelivery leaves the order paid and sends no second notification.
		require.NoError(t, f.svc.HandlePaymentEvent(ctx, []byte("{}"), "sig"))
		second, _ := f.store.GetOrder(ctx, order.ID)
		assert.Equal(t, models.OrderStatusPaid, second.Status)
	})

	t.Run("acknowledges before the notification is sent", func(t *testing.T) {
		f := newOrderFixture(t)
		order := f.pendingOrder(models.MaterialSugi, 1)
		f.gateway.EXPECT().ParseWebhook(gomock.Any(), gomock.Any()).Return(&payments.WebhookEvent{
			ID: "evt_slow", Type: payments.EventCheckoutSessionCompleted, OrderID: order.ID.String(),
		}, nil)

		release := make(chan struct{})
		defer close(release)
		f.notifier.EXPECT().OrderPaid(gomock.Any()).DoAndReturn(func(*models.Order) error {
			<-release
			return nil
		})

		done := make(chan error, 1)
		go func() { done <- f.svc.HandlePaymentEvent(ctx, []byte("{}"), "sig") }()

		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("webhook handling blocked on the notifier")
		}
		stored, _ := f.store.GetOrder(ctx, order.ID)
		assert.Equal(t, models.OrderStatusPaid, stored.Status)
	})

	t.Run("signature failure mutates nothing", func(t *testing.T) {
		f := newOrderFixture(t)
		order := f.pendingOrder(models.MaterialHinoki, 1)
		f.gateway.EXPECT().ParseWebhook(gomock.Any(), "bad").Return(nil, payments.ErrInvalidSignature)

		err := f.svc.HandlePaymentEvent(ctx, []byte("{}"), "bad")
		assert.ErrorIs(t, err, payments.ErrInvalidSignature)

		stored, _ := f.store.GetOrder(ctx, order.ID)
		assert.Equal(t, models.OrderStatusPendingPayment, stored.Status)
	})

	t.Run("ignores other event types", func(t *testing.T) {
		f := newOrderFixture(t)
		order := f.pendingOrder(models.MaterialHinoki, 1)
		f.gateway.EXPECT().ParseWebhook(gomock.Any(), gomock.Any()).Return(&payments.WebhookEvent{
			ID: "evt_2", Type: "payment_intent.created", OrderID: order.ID.String(),
		}, nil)

		require.NoError(t, f.svc.HandlePaymentEvent(ctx, []byte("{}"), "sig"))
		stored, _ := f.store.GetOrder(ctx, order.ID)
		assert.Equal(t, models.OrderStatusPendingPayment, stored.Status)
	})

	t.Run("acknowledges unknown or malformed order ids", func(t *testing.T) {
		f := newOrderFixture(t)
		f.gateway.EXPECT().ParseWebhook(gomock.Any(), gomock.Any()).Return(&payments.WebhookEvent{
			Type: payments.EventCheckoutSessionCompleted, OrderID: uuid.NewString(),
		}, nil)
		f.gateway.EXPECT().ParseWebhook(gomock.Any(), gomock.Any()).Return(&payments.WebhookEvent{
			Type: payments.EventCheckoutSessionCompleted, OrderID: "not-a-uuid",
		}, nil)

		assert.NoError(t, f.svc.HandlePaymentEvent(ctx, []byte("{}"), "sig"))
		assert.NoError(t, f.svc.HandlePaymentEvent(ctx, []byte("{}"), "sig"))
	})
}

func TestAdminUpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("non-admin is forbidden", func(t *testing.T) {
		f := newOrderFixture(t)
		order := f.pendingOrder(models.MaterialSugi, 1)
		_, err := f.svc.AdminUpdateStatus(ctx, f.owner, order.ID, services.StatusChange{Status: "shipped"})
		assert.ErrorIs(t, err, services.ErrForbidden)
	})

	t.Run("shipped stamps shipped_at and tracking", func(t *testing.T) {
		f := newOrderFixture(t)
		order := f.pendingOrder(models.MaterialSugi, 1)
		tracking, carrier := "1234-5678", "yamato"

		updated, err := f.svc.AdminUpdateStatus(ctx, f.admin, order.ID, services.StatusChange{
			Status: "shipped", TrackingNumber: &tracking, Carrier: &carrier,
		})
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusShipped, updated.Status)
		assert.True(t, updated.ShippedAt.Valid)
		assert.WithinDuration(t, time.Now(), updated.ShippedAt.Time, time.Minute)
		assert.Equal(t, tracking, updated.TrackingNumber.String)
		assert.Equal(t, carrier, updated.Carrier.String)
	})

	t.Run("paid stamps paid_at", func(t *testing.T) {
		f := newOrderFixture(t)
		order := f.pendingOrder(models.MaterialSugi, 1)
		updated, err := f.svc.AdminUpdateStatus(ctx, f.admin, order.ID, services.StatusChange{Status: "paid"})
		require.NoError(t, err)
		assert.True(t, updated.PaidAt.Valid)
	})

	t.Run("unknown status", func(t *testing.T) {
		f := newOrderFixture(t)
		order := f.pendingOrder(models.MaterialSugi, 1)
		_, err := f.svc.AdminUpdateStatus(ctx, f.admin, order.ID, services.StatusChange{Status: "lost"})
		assert.ErrorIs(t, err, services.ErrInvalidStatus)
	})

	t.Run("unknown order", func(t *testing.T) {
		f := newOrderFixture(t)
		_, err := f.svc.AdminUpdateStatus(ctx, f.admin, uuid.New(), services.StatusChange{Status: "paid"})
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestDeleteOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("pending order is deleted", func(t *testing.T) {
		f := newOrderFixture(t)
		order := f.pendingOrder(models.MaterialSugi, 1)
		require.NoError(t, f.svc.DeleteOrder(ctx, f.owner, order.ID))
		_, err := f.store.GetOrder(ctx, order.ID)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("paid order cannot be deleted", func(t *testing.T) {
		f := newOrderFixture(t)
		order := f.store.AddOrder(models.Order{
			UserID: f.owner.UserID, CardID: f.card.ID, Status: models.OrderStatusPaid,
			Material: models.MaterialSugi, Quantity: 1,
		})
		assert.ErrorIs(t, f.svc.DeleteOrder(ctx, f.owner, order.ID), services.ErrOrderNotDeletable)
	})

	t.Run("other user's order is forbidden", func(t *testing.T) {
		f := newOrderFixture(t)
		order := f.pendingOrder(models.MaterialSugi, 1)
		err := f.svc.DeleteOrder(ctx, services.Caller{UserID: uuid.New()}, order.ID)
		assert.ErrorIs(t, err, services.ErrForbidden)
	})

	t.Run("missing order", func(t *testing.T) {
		f := newOrderFixture(t)
		assert.ErrorIs(t, f.svc.DeleteOrder(ctx, f.owner, uuid.New()), models.ErrNotFound)
	})
}

func TestGetAndListOrders(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	order := f.pendingOrder(models.MaterialSugi, 1)

	got, err := f.svc.GetOrder(ctx, f.admin, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	_, err = f.svc.GetOrder(ctx, services.Caller{UserID: uuid.New()}, order.ID)
	assert.ErrorIs(t, err, services.ErrForbidden)

	mine, err := f.svc.ListMyOrders(ctx, f.owner)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	_, err = f.svc.AdminListOrders(ctx, f.owner, models.OrderFilter{})
	assert.ErrorIs(t, err, services.ErrForbidden)

	bogus := models.OrderStatus("bogus")
	_, err = f.svc.AdminListOrders(ctx, f.admin, models.OrderFilter{Status: &bogus})
	assert.ErrorIs(t, err, services.ErrInvalidStatus)

	pending := models.OrderStatusPendingPayment
	all, err := f.svc.AdminListOrders(ctx, f.admin, models.OrderFilter{Status: &pending})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
