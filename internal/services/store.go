package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"woodlinks-backend/internal/models"
)

// The stores below are implemented by supabase.DatabaseClient.

type OrderStore interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, filter models.OrderFilter) ([]models.Order, error)
	SetCheckoutDetails(ctx context.Context, orderID uuid.UUID, details models.CheckoutDetails) error
	MarkOrderPaid(ctx context.Context, orderID uuid.UUID, paymentIntentID string, paidAt time.Time) (int64, error)
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, update models.OrderStatusUpdate) (int64, error)
	DeletePendingOrder(ctx context.Context, orderID, userID uuid.UUID) (int64, error)
	CountOrdersByStatus(ctx context.Context) (map[models.OrderStatus]int64, error)
}

type CardStore interface {
	CreateCard(ctx context.Context, card *models.Card) error
	GetCard(ctx context.Context, cardID uuid.UUID) (*models.Card, error)
	GetCardBySlug(ctx context.Context, slug string) (*models.Card, error)
	ListCardsByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Card, error)
	ListCards(ctx context.Context, limit, offset uint64) ([]models.Card, error)
	UpdateCard(ctx context.Context, cardID, ownerID uuid.UUID, patch models.CardPatch) (int64, error)
	UpdateCardStatus(ctx context.Context, cardID uuid.UUID, status models.CardStatus) (int64, error)
	ClaimCard(ctx context.Context, cardID, userID uuid.UUID) (int64, error)
	DeleteCard(ctx context.Context, cardID, ownerID uuid.UUID) (int64, error)
	IncrementCardViews(ctx context.Context, cardID uuid.UUID) error
	CountCards(ctx context.Context) (total int64, claimed int64, err error)
	SumCardViews(ctx context.Context) (int64, error)
	ListContents(ctx context.Context, cardID uuid.UUID) ([]models.CardContent, error)
	ReplaceContents(ctx context.Context, cardID uuid.UUID, blocks []models.CardContent) error
	ListOrdersByCard(ctx context.Context, cardID uuid.UUID) ([]models.Order, error)
}

type InventoryStore interface {
	CreateWoodItem(ctx context.Context, item *models.WoodItem) error
	GetWoodItem(ctx context.Context, id uuid.UUID) (*models.WoodItem, error)
	GetWoodItemBySlug(ctx context.Context, slug string) (*models.WoodItem, error)
	ListWoodItems(ctx context.Context, filter models.WoodFilter) ([]models.WoodItem, error)
	UpdateWoodItem(ctx context.Context, item *models.WoodItem) error
	DeleteWoodItem(ctx context.Context, id uuid.UUID) (int64, error)
	IncrementWoodViews(ctx context.Context, id uuid.UUID) error
	CountWoodItems(ctx context.Context) (int64, error)
}

type AnalyticsStore interface {
	RecordEvent(ctx context.Context, event *models.AnalyticsEvent) error
	DailyViews(ctx context.Context, cardID uuid.UUID, since time.Time) ([]models.DailyViews, error)
}

type ProfileStore interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	UpsertProfile(ctx context.Context, profile *models.Profile) error
}

// AvatarStorage is implemented by supabase.StorageClient.
type AvatarStorage interface {
	UploadAvatar(userID, cardID uuid.UUID, filename, contentType string, data []byte) (string, error)
	DeleteCardFiles(userID, cardID uuid.UUID) error
}
