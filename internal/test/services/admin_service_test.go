package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"woodlinks-backend/internal/models"
	"woodlinks-backend/internal/services"
	"woodlinks-backend/internal/test/testutil"
)

func TestAdminStats(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemoryStore()
	svc := services.NewAdminService(store, store, store, testutil.Config())

	owner := uuid.New()
	card := store.AddCard(models.Card{Slug: "a", OwnerID: uuid.NullUUID{UUID: owner, Valid: true}, ViewCount: 7})
	store.AddCard(models.Card{Slug: "b", ViewCount: 2})
	store.AddOrder(models.Order{CardID: card.ID, UserID: owner, Status: models.OrderStatusPaid})
	store.AddOrder(models.Order{CardID: card.ID, UserID: owner, Status: models.OrderStatusPaid})
	store.AddOrder(models.Order{CardID: card.ID, UserID: owner, Status: models.OrderStatusPendingPayment})

	_, err := svc.Stats(ctx, services.Caller{UserID: owner, Email: "owner@example.com"})
	assert.ErrorIs(t, err, services.ErrForbidden)

	_, err = svc.Stats(ctx, services.Caller{})
	assert.ErrorIs(t, err, services.ErrUnauthenticated)

	stats, err := svc.Stats(ctx, services.Caller{UserID: uuid.New(), Email: testutil.AdminEmail})
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Cards)
	assert.Equal(t, int64(1), stats.ClaimedCards)
	assert.Equal(t, int64(9), stats.TotalViews)
	assert.Equal(t, int64(2), stats.OrdersByStatus[models.OrderStatusPaid])
	assert.Equal(t, int64(1), stats.OrdersByStatus[models.OrderStatusPendingPayment])
}
