package payments_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v81/webhook"
	"woodlinks-backend/internal/payments"
)

const webhookSecret = "whsec_test_secret"

func checkoutCompletedPayload(orderID string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": "evt_test_1",
		"object": "event",
		"api_version": "2020-08-27",
		"type": "checkout.session.completed",
		"data": {
			"object": {
				"id": "cs_test_1",
				"object": "checkout.session",
				"payment_intent": "pi_test_1",
				"metadata": {"order_id": %q}
			}
		}
	}`, orderID))
}

func sign(payload []byte, secret string) string {
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: time.Now(),
	})
	return signed.Header
}

func TestParseWebhook_Valid(t *testing.T) {
	gateway := payments.NewStripeGateway("", webhookSecret)
	orderID := uuid.NewString()
	payload := checkoutCompletedPayload(orderID)

	event, err := gateway.ParseWebhook(payload, sign(payload, webhookSecret))
	require.NoError(t, err)
	assert.Equal(t, "evt_test_1", event.ID)
	assert.Equal(t, payments.EventCheckoutSessionCompleted, event.Type)
	assert.Equal(t, orderID, event.OrderID)
	assert.Equal(t, "pi_test_1", event.PaymentIntentID)
}

func TestParseWebhook_EventWithoutData(t *testing.T) {
	gateway := payments.NewStripeGateway("", webhookSecret)
	payload := []byte(`{"id":"evt_ping","object":"event","type":"ping"}`)

	var event *payments.WebhookEvent
	var err error
	require.NotPanics(t, func() {
		event, err = gateway.ParseWebhook(payload, sign(payload, webhookSecret))
	})
	require.NoError(t, err)
	assert.Equal(t, "evt_ping", event.ID)
	assert.Equal(t, "ping", event.Type)
	assert.Empty(t, event.OrderID)
	assert.Empty(t, event.PaymentIntentID)
}

func TestParseWebhook_Rejects(t *testing.T) {
	gateway := payments.NewStripeGateway("", webhookSecret)
	payload := checkoutCompletedPayload(uuid.NewString())

	t.Run("missing signature", func(t *testing.T) {
		_, err := gateway.ParseWebhook(payload, "")
		assert.ErrorIs(t, err, payments.ErrInvalidSignature)
	})

	t.Run("wrong secret", func(t *testing.T) {
		_, err := gateway.ParseWebhook(payload, sign(payload, "whsec_other"))
		assert.ErrorIs(t, err, payments.ErrInvalidSignature)
	})

	t.Run("tampered body", func(t *testing.T) {
		header := sign(payload, webhookSecret)
		tampered := checkoutCompletedPayload(uuid.NewString())
		_, err := gateway.ParseWebhook(tampered, header)
		assert.ErrorIs(t, err, payments.ErrInvalidSignature)
	})

	t.Run("garbage header", func(t *testing.T) {
		_, err := gateway.ParseWebhook(payload, "t=1,v1=deadbeef")
		assert.ErrorIs(t, err, payments.ErrInvalidSignature)
	})
}

func TestParseWebhook_NoSecret(t *testing.T) {
	gateway := payments.NewStripeGateway("", "")
	_, err := gateway.ParseWebhook([]byte("{}"), "t=1,v1=abc")
	assert.ErrorIs(t, err, payments.ErrNotConfigured)
}

func TestCreateCheckoutSession_NoKey(t *testing.T) {
	gateway := payments.NewStripeGateway("", webhookSecret)
	_, err := gateway.CreateCheckoutSession(context.Background(), payments.CheckoutRequest{OrderID: uuid.New()})
	assert.ErrorIs(t, err, payments.ErrNotConfigured)
}
