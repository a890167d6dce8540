package payments

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

//go:generate mockgen -destination=../mocks/mock_gateway.go -package=mocks woodlinks-backend/internal/payments Gateway

const EventCheckoutSessionCompleted = "checkout.session.completed"

var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrNotConfigured    = errors.New("payments are not configured")
)

type CheckoutRequest struct {
	OrderID     uuid.UUID
	UserID      uuid.UUID
	CardID      uuid.UUID
	ProductName string
	Amount      int64
	Currency    string
	SuccessURL  string
	CancelURL   string
}

type CheckoutSession struct {
	ID  string
	URL string
}

// WebhookEvent is the subset of a verified provider event the service acts on.
type WebhookEvent struct {
	ID              string
	Type            string
	OrderID         string
	PaymentIntentID string
}

type Gateway interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	ParseWebhook(payload []byte, signature string) (*WebhookEvent, error)
}
